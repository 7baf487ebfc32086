package service

import (
	"context"

	"github.com/sirupsen/logrus"

	appErrors "github.com/xenolabs/engage-backend/internal/errors"
	"github.com/xenolabs/engage-backend/internal/model"
	"github.com/xenolabs/engage-backend/internal/repository"
)

// ReceiptService reconciles out-of-band delivery acknowledgments into the
// delivery log. Receipts may arrive in any order and arbitrarily late, long
// after the creating request has returned.
type ReceiptService struct {
	CampaignRepo repository.CampaignRepositoryInterface
}

// RecordReceipt validates and applies one receipt. Malformed input is
// rejected before any store access. The update is a pure overwrite keyed by
// log id, so it is idempotent and last-write-wins across duplicates.
func (s *ReceiptService) RecordReceipt(ctx context.Context, logID int, status string) error {
	if logID <= 0 {
		return appErrors.NewInvalidReceipt("logId is required")
	}
	switch status {
	case model.StatusSent, model.StatusFailed:
	default:
		return appErrors.NewInvalidReceipt("status must be SENT or FAILED")
	}

	if err := s.CampaignRepo.UpdateDeliveryStatus(ctx, logID, status); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"log_id": logID,
		"status": status,
	}).Info("delivery receipt recorded")
	return nil
}
