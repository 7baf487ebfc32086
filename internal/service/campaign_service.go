package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/xenolabs/engage-backend/internal/model"
	"github.com/xenolabs/engage-backend/internal/queue"
	"github.com/xenolabs/engage-backend/internal/repository"
	"github.com/xenolabs/engage-backend/internal/segment"
)

type CampaignService struct {
	CampaignRepo repository.CampaignRepositoryInterface
	CustomerRepo repository.CustomerRepositoryInterface
	Broker       queue.Publisher
	SendKey      string
}

// Result struct for CreateCampaign
type CreateCampaignResult struct {
	CampaignID   int
	AudienceSize int
	TasksQueued  int
}

// PreviewAudience resolves the rule set to a live customer count. Advisory
// only: the data may change before a commit, and the commit wins.
func (s *CampaignService) PreviewAudience(ctx context.Context, rules segment.RuleSet) (int, error) {
	return s.CustomerRepo.CountAudience(ctx, segment.Compile(rules))
}

// CreateCampaign persists the campaign and its delivery log atomically, then
// fans out one send task per committed log entry. A publish failure after
// commit never fails the request — the PENDING rows are the source of truth
// and an external sweep may redispatch them — so it is only logged here.
func (s *CampaignService) CreateCampaign(ctx context.Context, name string, rules segment.RuleSet) (*CreateCampaignResult, error) {
	campaign, tasks, err := s.CampaignRepo.CreateWithAudience(ctx, name, rules, OfferMessage)
	if err != nil {
		return nil, err
	}

	queued := 0
	for _, task := range tasks {
		if err := s.Broker.Publish(s.SendKey, task); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"campaign_id": campaign.ID,
				"log_id":      task.LogID,
			}).Warn("failed to enqueue send task, entry remains PENDING")
			continue
		}
		queued++
	}

	if queued < len(tasks) {
		logrus.WithFields(logrus.Fields{
			"campaign_id": campaign.ID,
			"queued":      queued,
			"total":       len(tasks),
		}).Warn("campaign dispatched partially")
	} else {
		logrus.WithFields(logrus.Fields{
			"campaign_id": campaign.ID,
			"queued":      queued,
		}).Info("campaign dispatched")
	}

	return &CreateCampaignResult{
		CampaignID:   campaign.ID,
		AudienceSize: campaign.AudienceSize,
		TasksQueued:  queued,
	}, nil
}

// ListCampaigns returns all campaigns with their delivery stats.
func (s *CampaignService) ListCampaigns(ctx context.Context) ([]model.CampaignSummary, error) {
	return s.CampaignRepo.ListWithStats(ctx)
}
