package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/citydex/outreach/internal/models"
	"github.com/citydex/outreach/internal/services"
	appErrors "github.com/citydex/outreach/pkg/errors"
	"github.com/citydex/outreach/pkg/logger"
	"github.com/citydex/outreach/pkg/response"
)

// CampaignHandler exposes campaign orchestration endpoints: creation, status
// transitions, progress reporting, and the manual batch trigger.
type CampaignHandler struct {
	campaigns *services.CampaignService
	worker    *services.InvitationWorker
}

// NewCampaignHandler constructs a CampaignHandler.
func NewCampaignHandler(campaigns *services.CampaignService, worker *services.InvitationWorker) *CampaignHandler {
	return &CampaignHandler{campaigns: campaigns, worker: worker}
}

type runBatchRequest struct {
	BatchSize int `json:"batch_size" validate:"gte=0"`
}

// POST /api/campaigns
func (h *CampaignHandler) Create(c *gin.Context) {
	if h.campaigns == nil {
		response.Error(c, appErrors.ErrInternalServer)
		return
	}

	var req services.CreateCampaignInput
	if !bindAndValidate(c, &req) {
		return
	}

	campaign, err := h.campaigns.Create(requestContext(c), req)
	if err != nil {
		if errors.Is(err, services.ErrTemplateNotFound) {
			response.Error(c, appErrors.NewBadRequest("Selected template could not be found"))
			return
		}
		response.Error(c, appErrors.ErrInternalServer)
		return
	}

	response.Success(c, http.StatusCreated, campaign)
}

// GET /api/campaigns
func (h *CampaignHandler) List(c *gin.Context) {
	if h.campaigns == nil {
		response.Error(c, appErrors.ErrInternalServer)
		return
	}

	campaigns, err := h.campaigns.List(requestContext(c), strings.TrimSpace(c.Query("status")))
	if err != nil {
		response.Error(c, appErrors.ErrInternalServer)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"campaigns": campaigns})
}

// GET /api/campaigns/:id
func (h *CampaignHandler) Get(c *gin.Context) {
	if h.campaigns == nil {
		response.Error(c, appErrors.ErrInternalServer)
		return
	}

	campaign, err := h.campaigns.Get(requestContext(c), c.Param("id"))
	if err != nil {
		h.writeCampaignError(c, err)
		return
	}

	response.Success(c, http.StatusOK, campaign)
}

// GET /api/campaigns/:id/progress
func (h *CampaignHandler) Progress(c *gin.Context) {
	if h.campaigns == nil {
		response.Error(c, appErrors.ErrInternalServer)
		return
	}

	progress, err := h.campaigns.Progress(requestContext(c), c.Param("id"))
	if err != nil {
		h.writeCampaignError(c, err)
		return
	}

	response.Success(c, http.StatusOK, progress)
}

// POST /api/campaigns/:id/start
//
// Starting a campaign also dispatches its first batch, so sending begins
// immediately instead of on the next scheduler tick.
func (h *CampaignHandler) Start(c *gin.Context) {
	if h.campaigns == nil {
		response.Error(c, appErrors.ErrInternalServer)
		return
	}

	campaignID := strings.TrimSpace(c.Param("id"))
	if campaignID == "" {
		response.Error(c, appErrors.NewBadRequest("Campaign ID is required"))
		return
	}

	campaign, err := h.campaigns.Start(requestContext(c), campaignID)
	if err != nil {
		h.writeCampaignError(c, err)
		return
	}

	if h.worker != nil {
		// A lease held by a concurrent invocation is fine; that invocation
		// is already doing the work this kick-off would have done.
		if _, err := h.worker.RunBatch(requestContext(c), campaignID, 0); err != nil && !errors.Is(err, services.ErrCampaignBusy) {
			logger.WithModule("handlers").Warn("first batch after start failed",
				zap.String("campaign_id", campaignID),
				zap.Error(err),
			)
		}
		if refreshed, err := h.campaigns.Get(requestContext(c), campaignID); err == nil {
			campaign = refreshed
		}
	}

	response.Success(c, http.StatusOK, campaign)
}

// POST /api/campaigns/:id/pause
func (h *CampaignHandler) Pause(c *gin.Context) {
	h.applyTransition(c, func(ctx context.Context, id string) (*models.Campaign, error) {
		return h.campaigns.Pause(ctx, id)
	})
}

// POST /api/campaigns/:id/resume
func (h *CampaignHandler) Resume(c *gin.Context) {
	h.applyTransition(c, func(ctx context.Context, id string) (*models.Campaign, error) {
		return h.campaigns.Resume(ctx, id)
	})
}

// POST /api/campaigns/:id/cancel
func (h *CampaignHandler) Cancel(c *gin.Context) {
	h.applyTransition(c, func(ctx context.Context, id string) (*models.Campaign, error) {
		return h.campaigns.Cancel(ctx, id)
	})
}

// POST /api/campaigns/:id/batches
func (h *CampaignHandler) RunBatch(c *gin.Context) {
	if h.worker == nil {
		response.Error(c, appErrors.ErrInternalServer)
		return
	}

	campaignID := strings.TrimSpace(c.Param("id"))
	if campaignID == "" {
		response.Error(c, appErrors.NewBadRequest("Campaign ID is required"))
		return
	}

	req := runBatchRequest{}
	if c.Request != nil && c.Request.ContentLength > 0 {
		if !bindAndValidate(c, &req) {
			return
		}
	}

	result, err := h.worker.RunBatch(requestContext(c), campaignID, req.BatchSize)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCampaignNotFound):
			response.Error(c, appErrors.ErrNotFound)
		case errors.Is(err, services.ErrCampaignBusy):
			response.Error(c, appErrors.ErrCampaignBusy)
		default:
			response.Error(c, appErrors.ErrInternalServer)
		}
		return
	}

	response.Success(c, http.StatusOK, result)
}

func (h *CampaignHandler) applyTransition(c *gin.Context, apply func(ctx context.Context, id string) (*models.Campaign, error)) {
	if h.campaigns == nil {
		response.Error(c, appErrors.ErrInternalServer)
		return
	}

	campaignID := strings.TrimSpace(c.Param("id"))
	if campaignID == "" {
		response.Error(c, appErrors.NewBadRequest("Campaign ID is required"))
		return
	}

	campaign, err := apply(requestContext(c), campaignID)
	if err != nil {
		h.writeCampaignError(c, err)
		return
	}

	response.Success(c, http.StatusOK, campaign)
}

func (h *CampaignHandler) writeCampaignError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrCampaignNotFound):
		response.Error(c, appErrors.ErrNotFound)
	case errors.Is(err, services.ErrInvalidTransition):
		response.Error(c, appErrors.NewConflict(err.Error()))
	case errors.Is(err, services.ErrCampaignBusy):
		response.Error(c, appErrors.ErrCampaignBusy)
	default:
		response.Error(c, appErrors.ErrInternalServer)
	}
}
