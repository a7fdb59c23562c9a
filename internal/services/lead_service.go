package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/citydex/outreach/internal/models"
	"github.com/citydex/outreach/pkg/metrics"
)

// Engagement event kinds accepted by RecordEngagement.
const (
	EngagementOpened  = "opened"
	EngagementClicked = "clicked"
	EngagementBounced = "bounced"
	EngagementClaimed = "claimed"
)

// LeadOption customises LeadService behaviour.
type LeadOption func(*LeadService)

// WithLeadClock injects a custom clock primarily for testing.
func WithLeadClock(clock func() time.Time) LeadOption {
	return func(s *LeadService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// LeadService ingests prospect records and records engagement events coming
// back from the delivery provider and the claim workflow.
type LeadService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewLeadService constructs a LeadService with the provided dependencies.
func NewLeadService(db *gorm.DB, opts ...LeadOption) (*LeadService, error) {
	if db == nil {
		return nil, errors.New("lead service: db is required")
	}

	service := &LeadService{
		db:  db,
		now: time.Now,
	}

	for _, opt := range opts {
		opt(service)
	}

	return service, nil
}

// LeadImportInput is one prospect record from an upstream CRM export.
type LeadImportInput struct {
	BusinessName string `json:"business_name" validate:"required"`
	Category     string `json:"category"`
	City         string `json:"city"`
	State        string `json:"state"`
	OwnerName    string `json:"owner_name"`
	OwnerEmail   string `json:"owner_email" validate:"omitempty,email"`
}

// ImportResult summarises one import batch.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// ImportLeads inserts prospect records, skipping duplicates. A record is a
// duplicate when its owner email already exists, or, for records without an
// email, when the business name and city pair already exists.
func (s *LeadService) ImportLeads(ctx context.Context, inputs []LeadImportInput) (ImportResult, error) {
	result := ImportResult{}

	for _, input := range inputs {
		name := strings.TrimSpace(input.BusinessName)
		if name == "" {
			result.Skipped++
			continue
		}

		email := strings.ToLower(strings.TrimSpace(input.OwnerEmail))

		var count int64
		query := s.db.WithContext(ctx).Model(&models.Lead{})
		if email != "" {
			query = query.Where("owner_email = ?", email)
		} else {
			query = query.Where("business_name = ? AND city = ?", name, strings.TrimSpace(input.City))
		}
		if err := query.Count(&count).Error; err != nil {
			return result, fmt.Errorf("lead service: check duplicate: %w", err)
		}
		if count > 0 {
			result.Skipped++
			continue
		}

		lead := models.Lead{
			BusinessName: name,
			Category:     strings.TrimSpace(input.Category),
			City:         strings.TrimSpace(input.City),
			State:        strings.TrimSpace(input.State),
			OwnerName:    strings.TrimSpace(input.OwnerName),
			OwnerEmail:   email,
			EmailStatus:  models.EmailStatusNotSent,
		}
		if err := s.db.WithContext(ctx).Create(&lead).Error; err != nil {
			return result, fmt.Errorf("lead service: create lead: %w", err)
		}
		result.Imported++
	}

	return result, nil
}

// LeadFilter narrows List results.
type LeadFilter struct {
	Category    string
	City        string
	State       string
	EmailStatus *string
	Page        int
	PerPage     int
}

// List returns leads matching the filter together with the total match count.
func (s *LeadService) List(ctx context.Context, filter LeadFilter) ([]models.Lead, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Lead{})

	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.City != "" {
		query = query.Where("city = ?", filter.City)
	}
	if filter.State != "" {
		query = query.Where("state = ?", filter.State)
	}
	if filter.EmailStatus != nil {
		query = query.Where("email_status = ?", *filter.EmailStatus)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("lead service: count leads: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage < 1 {
		perPage = 50
	}

	var leads []models.Lead
	if err := query.
		Order("created_at ASC, id ASC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&leads).Error; err != nil {
		return nil, 0, fmt.Errorf("lead service: list leads: %w", err)
	}

	return leads, total, nil
}

// Get returns a single lead by id.
func (s *LeadService) Get(ctx context.Context, id string) (*models.Lead, error) {
	var lead models.Lead
	if err := s.db.WithContext(ctx).First(&lead, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("lead service: find lead: %w", err)
	}
	return &lead, nil
}

// RecordEngagement applies an engagement event reported by the delivery
// provider (opened, clicked, bounced) or the claim workflow (claimed) and
// rolls the event up into the originating campaign's and template's counters.
// A weaker status never overwrites a stronger one.
func (s *LeadService) RecordEngagement(ctx context.Context, leadID, kind string) (*models.Lead, error) {
	lead, err := s.Get(ctx, leadID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	var campaignColumn string

	switch kind {
	case EngagementOpened:
		campaignColumn = "opened_count"
		if models.EngagementRank(models.EmailStatusOpened) > models.EngagementRank(lead.EmailStatus) {
			updates["email_status"] = models.EmailStatusOpened
		}
	case EngagementClicked:
		campaignColumn = "clicked_count"
		if models.EngagementRank(models.EmailStatusClicked) > models.EngagementRank(lead.EmailStatus) {
			updates["email_status"] = models.EmailStatusClicked
		}
	case EngagementBounced:
		campaignColumn = "bounced_count"
		if models.EngagementRank(models.EmailStatusBounced) > models.EngagementRank(lead.EmailStatus) {
			updates["email_status"] = models.EmailStatusBounced
		}
	case EngagementClaimed:
		campaignColumn = "claimed_count"
		updates["is_converted"] = true
	default:
		return nil, ErrUnknownEngagement
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).
			Model(&models.Lead{}).
			Where("id = ?", lead.ID).
			Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("lead service: apply engagement: %w", err)
		}
	}

	if lead.LastCampaignID != nil {
		if err := s.rollupCampaign(ctx, *lead.LastCampaignID, campaignColumn, kind); err != nil {
			return nil, err
		}
	}

	metrics.EngagementEvents.WithLabelValues(kind).Inc()

	return s.Get(ctx, lead.ID)
}

// rollupCampaign bumps the campaign counter for an engagement event and, for
// opens and clicks, the counter of the template the campaign is bound to.
// Increments are expressed in SQL so concurrent events cannot lose updates.
func (s *LeadService) rollupCampaign(ctx context.Context, campaignID, column, kind string) error {
	if err := s.db.WithContext(ctx).
		Model(&models.Campaign{}).
		Where("id = ?", campaignID).
		UpdateColumn(column, gorm.Expr(column+" + 1")).Error; err != nil {
		return fmt.Errorf("lead service: bump campaign %s: %w", column, err)
	}

	var templateColumn string
	switch kind {
	case EngagementOpened:
		templateColumn = "open_count"
	case EngagementClicked:
		templateColumn = "click_count"
	default:
		return nil
	}

	var campaign models.Campaign
	if err := s.db.WithContext(ctx).
		Select("template_id").
		First(&campaign, "id = ?", campaignID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("lead service: load campaign template: %w", err)
	}
	if campaign.TemplateID == nil {
		return nil
	}

	if err := s.db.WithContext(ctx).
		Model(&models.InviteTemplate{}).
		Where("id = ?", *campaign.TemplateID).
		UpdateColumn(templateColumn, gorm.Expr(templateColumn+" + 1")).Error; err != nil {
		return fmt.Errorf("lead service: bump template %s: %w", templateColumn, err)
	}

	return nil
}
