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

// TemplateHandler exposes invitation template management endpoints.
type TemplateHandler struct {
	templates *services.TemplateService
}

// NewTemplateHandler constructs a TemplateHandler.
func NewTemplateHandler(templates *services.TemplateService) *TemplateHandler {
	return &TemplateHandler{templates: templates}
}

type setActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// POST /api/templates
func (h *TemplateHandler) Create(c *gin.Context) {
	if h.templates == nil {
		response.Error(c, appErrors.ErrInternalServer)
		return
	}

	var req services.CreateTemplateInput
	if !bindAndValidate(c, &req) {
		return
	}

	template, err := h.templates.Create(requestContext(c), req)
	if err != nil {
		response.Error(c, appErrors.ErrInternalServer)
		return
	}

	response.Success(c, http.StatusCreated, template)
}

// GET /api/templates
func (h *TemplateHandler) List(c *gin.Context) {
	if h.templates == nil {
		response.Error(c, appErrors.ErrInternalServer)
		return
	}

	activeOnly := strings.EqualFold(strings.TrimSpace(c.Query("active")), "true")

	templates, err := h.templates.List(requestContext(c), activeOnly)
	if err != nil {
		response.Error(c, appErrors.ErrInternalServer)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"templates": templates})
}

// GET /api/templates/:id
func (h *TemplateHandler) Get(c *gin.Context) {
	if h.templates == nil {
		response.Error(c, appErrors.ErrInternalServer)
		return
	}

	templateID := strings.TrimSpace(c.Param("id"))
	if templateID == "" {
		response.Error(c, appErrors.NewBadRequest("Template ID is required"))
		return
	}

	template, err := h.templates.Get(requestContext(c), templateID)
	if err != nil {
		if errors.Is(err, services.ErrTemplateNotFound) {
			response.Error(c, appErrors.ErrNotFound)
			return
		}
		response.Error(c, appErrors.ErrInternalServer)
		return
	}

	response.Success(c, http.StatusOK, template)
}

// PATCH /api/templates/:id/active
func (h *TemplateHandler) SetActive(c *gin.Context) {
	if h.templates == nil {
		response.Error(c, appErrors.ErrInternalServer)
		return
	}

	templateID := strings.TrimSpace(c.Param("id"))
	if templateID == "" {
		response.Error(c, appErrors.NewBadRequest("Template ID is required"))
		return
	}

	var req setActiveRequest
	if !bindAndValidate(c, &req) {
		return
	}

	template, err := h.templates.SetActive(requestContext(c), templateID, *req.Active)
	if err != nil {
		if errors.Is(err, services.ErrTemplateNotFound) {
			response.Error(c, appErrors.ErrNotFound)
			return
		}
		response.Error(c, appErrors.ErrInternalServer)
		return
	}

	response.Success(c, http.StatusOK, template)
}
