package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/citydex/outreach/internal/models"
)

// TemplateService manages the invitation templates campaigns bind to.
type TemplateService struct {
	db *gorm.DB
}

// NewTemplateService constructs a TemplateService.
func NewTemplateService(db *gorm.DB) (*TemplateService, error) {
	if db == nil {
		return nil, errors.New("template service: db is required")
	}
	return &TemplateService{db: db}, nil
}

// CreateTemplateInput carries the fields for a new invitation template.
type CreateTemplateInput struct {
	Name      string   `json:"name" validate:"required"`
	Type      string   `json:"type" validate:"omitempty,oneof=email sms both"`
	Subject   string   `json:"subject" validate:"required"`
	Body      string   `json:"body" validate:"required"`
	Variables []string `json:"variables"`
	IsDefault bool     `json:"is_default"`
}

// Create persists a new template. Marking a template as default clears the
// flag on any previous default.
func (s *TemplateService) Create(ctx context.Context, input CreateTemplateInput) (*models.InviteTemplate, error) {
	templateType := strings.TrimSpace(input.Type)
	if templateType == "" {
		templateType = models.TemplateTypeEmail
	}

	template := models.InviteTemplate{
		Name:      strings.TrimSpace(input.Name),
		Type:      templateType,
		Subject:   input.Subject,
		Body:      input.Body,
		Variables: input.Variables,
		IsDefault: input.IsDefault,
		IsActive:  true,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if input.IsDefault {
			if err := tx.Model(&models.InviteTemplate{}).
				Where("is_default = ?", true).
				UpdateColumn("is_default", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(&template).Error
	})
	if err != nil {
		return nil, fmt.Errorf("template service: create template: %w", err)
	}

	return &template, nil
}

// List returns templates, optionally restricted to active ones.
func (s *TemplateService) List(ctx context.Context, activeOnly bool) ([]models.InviteTemplate, error) {
	query := s.db.WithContext(ctx).Model(&models.InviteTemplate{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var templates []models.InviteTemplate
	if err := query.Order("created_at ASC").Find(&templates).Error; err != nil {
		return nil, fmt.Errorf("template service: list templates: %w", err)
	}
	return templates, nil
}

// Get returns a single template by id.
func (s *TemplateService) Get(ctx context.Context, id string) (*models.InviteTemplate, error) {
	var template models.InviteTemplate
	if err := s.db.WithContext(ctx).First(&template, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("template service: find template: %w", err)
	}
	return &template, nil
}

// SetActive toggles whether a template may be used for new sends.
func (s *TemplateService) SetActive(ctx context.Context, id string, active bool) (*models.InviteTemplate, error) {
	template, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).
		Model(template).
		UpdateColumn("is_active", active).Error; err != nil {
		return nil, fmt.Errorf("template service: set active: %w", err)
	}

	template.IsActive = active
	return template, nil
}

// Default returns the active default template, or nil when none is configured.
func (s *TemplateService) Default(ctx context.Context) (*models.InviteTemplate, error) {
	var template models.InviteTemplate
	err := s.db.WithContext(ctx).
		Where("is_default = ? AND is_active = ?", true, true).
		First(&template).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("template service: find default: %w", err)
	}
	return &template, nil
}
