package controller

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	appErrors "github.com/xenolabs/engage-backend/internal/errors"
	"github.com/xenolabs/engage-backend/internal/segment"
	"github.com/xenolabs/engage-backend/internal/service"
)

// CampaignController holds the dependencies for campaign-related HTTP handlers
type CampaignController struct {
	CampaignService *service.CampaignService
	ReceiptService  *service.ReceiptService
	Validate        *validator.Validate
}

func NewCampaignController(campaigns *service.CampaignService, receipts *service.ReceiptService) *CampaignController {
	return &CampaignController{
		CampaignService: campaigns,
		ReceiptService:  receipts,
		Validate:        validator.New(),
	}
}

type previewRequest struct {
	Rules []segment.Rule `json:"rules" validate:"required"`
}

type createCampaignRequest struct {
	CampaignName string         `json:"campaignName" validate:"required"`
	Rules        []segment.Rule `json:"rules" validate:"required"`
}

type receiptRequest struct {
	LogID  int    `json:"logId"`
	Status string `json:"status"`
}

// PreviewSegment returns the live audience size for a rule set. No query
// runs when the rules are malformed.
func (c *CampaignController) PreviewSegment(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid rules format", http.StatusBadRequest)
		return
	}
	if err := c.Validate.Struct(req); err != nil {
		http.Error(w, "invalid rules format", http.StatusBadRequest)
		return
	}

	size, err := c.CampaignService.PreviewAudience(r.Context(), req.Rules)
	if err != nil {
		logrus.WithError(err).Error("failed to resolve audience size")
		http.Error(w, "failed to fetch audience size", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int{"audienceSize": size})
}

// CreateCampaign materializes the audience, persists the campaign and its
// delivery log, and fans out send tasks. An empty audience is a distinct
// 400-class rejection, not a server fault.
func (c *CampaignController) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	var req createCampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := c.Validate.Struct(req); err != nil {
		http.Error(w, "campaignName and rules are required", http.StatusBadRequest)
		return
	}

	result, err := c.CampaignService.CreateCampaign(r.Context(), req.CampaignName, req.Rules)
	if err != nil {
		var emptyAudience *appErrors.ErrEmptyAudience
		if errors.As(err, &emptyAudience) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"message": emptyAudience.Error()})
			return
		}
		logrus.WithError(err).Error("failed to create campaign")
		http.Error(w, "failed to create campaign", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]any{
		"message":      "Campaign created successfully",
		"campaignId":   result.CampaignID,
		"audienceSize": result.AudienceSize,
	})
}

// ListCampaigns returns all campaigns with sent/failed counts, newest first.
func (c *CampaignController) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	summaries, err := c.CampaignService.ListCampaigns(r.Context())
	if err != nil {
		logrus.WithError(err).Error("failed to list campaigns")
		http.Error(w, "failed to fetch campaigns", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summaries)
}

// DeliveryReceipt is the sole external write path into delivery_log.status.
func (c *CampaignController) DeliveryReceipt(w http.ResponseWriter, r *http.Request) {
	var req receiptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	if err := c.ReceiptService.RecordReceipt(r.Context(), req.LogID, req.Status); err != nil {
		var invalid *appErrors.ErrInvalidReceipt
		if errors.As(err, &invalid) {
			http.Error(w, invalid.Error(), http.StatusBadRequest)
			return
		}
		logrus.WithError(err).WithField("log_id", req.LogID).Error("failed to record delivery receipt")
		http.Error(w, "error processing receipt", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Receipt acknowledged."))
}
