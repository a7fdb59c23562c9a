package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/citydex/outreach/internal/services"
	appErrors "github.com/citydex/outreach/pkg/errors"
	"github.com/citydex/outreach/pkg/response"
)

// LeadHandler exposes lead ingestion, listing, and engagement endpoints.
type LeadHandler struct {
	leads *services.LeadService
}

// NewLeadHandler constructs a LeadHandler.
func NewLeadHandler(leads *services.LeadService) *LeadHandler {
	return &LeadHandler{leads: leads}
}

type importLeadsRequest struct {
	Leads []services.LeadImportInput `json:"leads" validate:"required,min=1,dive"`
}

type engagementRequest struct {
	Kind string `json:"kind" validate:"required,oneof=opened clicked bounced claimed"`
}

// POST /api/leads/import
func (h *LeadHandler) Import(c *gin.Context) {
	if h.leads == nil {
		response.Error(c, appErrors.ErrInternalServer)
		return
	}

	var req importLeadsRequest
	if !bindAndValidate(c, &req) {
		return
	}

	result, err := h.leads.ImportLeads(requestContext(c), req.Leads)
	if err != nil {
		response.Error(c, appErrors.ErrInternalServer)
		return
	}

	response.Success(c, http.StatusCreated, result)
}

// GET /api/leads
func (h *LeadHandler) List(c *gin.Context) {
	if h.leads == nil {
		response.Error(c, appErrors.ErrInternalServer)
		return
	}

	filter := services.LeadFilter{
		Category: strings.TrimSpace(c.Query("category")),
		City:     strings.TrimSpace(c.Query("city")),
		State:    strings.TrimSpace(c.Query("state")),
		Page:     parseIntQuery(c, "page", 1),
		PerPage:  parseIntQuery(c, "per_page", 50),
	}
	if status := strings.TrimSpace(c.Query("email_status")); status != "" {
		filter.EmailStatus = &status
	}

	leads, total, err := h.leads.List(requestContext(c), filter)
	if err != nil {
		response.Error(c, appErrors.ErrInternalServer)
		return
	}

	perPage := filter.PerPage
	if perPage < 1 {
		perPage = 50
	}
	totalPages := int(total) / perPage
	if int(total)%perPage != 0 {
		totalPages++
	}

	response.SuccessWithMeta(c, http.StatusOK, gin.H{"leads": leads}, &response.Meta{
		Page:       filter.Page,
		PerPage:    perPage,
		Total:      int(total),
		TotalPages: totalPages,
	})
}

// GET /api/leads/:id
func (h *LeadHandler) Get(c *gin.Context) {
	if h.leads == nil {
		response.Error(c, appErrors.ErrInternalServer)
		return
	}

	leadID := strings.TrimSpace(c.Param("id"))
	if leadID == "" {
		response.Error(c, appErrors.NewBadRequest("Lead ID is required"))
		return
	}

	lead, err := h.leads.Get(requestContext(c), leadID)
	if err != nil {
		if errors.Is(err, services.ErrLeadNotFound) {
			response.Error(c, appErrors.ErrNotFound)
			return
		}
		response.Error(c, appErrors.ErrInternalServer)
		return
	}

	response.Success(c, http.StatusOK, lead)
}

// POST /api/leads/:id/events
func (h *LeadHandler) RecordEvent(c *gin.Context) {
	if h.leads == nil {
		response.Error(c, appErrors.ErrInternalServer)
		return
	}

	leadID := strings.TrimSpace(c.Param("id"))
	if leadID == "" {
		response.Error(c, appErrors.NewBadRequest("Lead ID is required"))
		return
	}

	var req engagementRequest
	if !bindAndValidate(c, &req) {
		return
	}

	lead, err := h.leads.RecordEngagement(requestContext(c), leadID, req.Kind)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrLeadNotFound):
			response.Error(c, appErrors.ErrNotFound)
		case errors.Is(err, services.ErrUnknownEngagement):
			response.Error(c, appErrors.NewBadRequest("Unknown engagement kind"))
		default:
			response.Error(c, appErrors.ErrInternalServer)
		}
		return
	}

	response.Success(c, http.StatusOK, lead)
}
