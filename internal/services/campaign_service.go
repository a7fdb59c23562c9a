package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/citydex/outreach/internal/models"
)

// CampaignOption customises CampaignService behaviour.
type CampaignOption func(*CampaignService)

// WithCampaignClock injects a custom clock primarily for testing.
func WithCampaignClock(clock func() time.Time) CampaignOption {
	return func(s *CampaignService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// CampaignService creates campaigns, guards their status state machine, and
// reports progress. It contains no sending logic of its own; batches are the
// invitation worker's job.
type CampaignService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewCampaignService constructs a CampaignService.
func NewCampaignService(db *gorm.DB, opts ...CampaignOption) (*CampaignService, error) {
	if db == nil {
		return nil, errors.New("campaign service: db is required")
	}

	service := &CampaignService{
		db:  db,
		now: time.Now,
	}

	for _, opt := range opts {
		opt(service)
	}

	return service, nil
}

// CreateCampaignInput carries the definition of a new campaign.
type CreateCampaignInput struct {
	Name                     string     `json:"name" validate:"required"`
	Description              string     `json:"description"`
	TargetCategories         []string   `json:"target_categories"`
	TargetCities             []string   `json:"target_cities"`
	TargetStates             []string   `json:"target_states"`
	ExcludePreviouslyInvited bool       `json:"exclude_previously_invited"`
	MinDaysBetweenInvites    int        `json:"min_days_between_invites" validate:"gte=0"`
	TemplateID               string     `json:"template_id"`
	SendRatePerHour          int        `json:"send_rate_per_hour" validate:"gte=0"`
	ScheduledAt              *time.Time `json:"scheduled_at"`
}

// Create persists a campaign definition and snapshots total_targets using the
// same predicate the worker will use at send time. The snapshot is not
// recomputed as leads come and go.
func (s *CampaignService) Create(ctx context.Context, input CreateCampaignInput) (*models.Campaign, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errors.New("campaign service: name is required")
	}

	campaign := models.Campaign{
		Name:                     name,
		Description:              strings.TrimSpace(input.Description),
		TargetCategories:         input.TargetCategories,
		TargetCities:             input.TargetCities,
		TargetStates:             input.TargetStates,
		ExcludePreviouslyInvited: input.ExcludePreviouslyInvited,
		MinDaysBetweenInvites:    input.MinDaysBetweenInvites,
		SendRatePerHour:          input.SendRatePerHour,
		Status:                   models.CampaignStatusDraft,
	}

	if templateID := strings.TrimSpace(input.TemplateID); templateID != "" {
		var template models.InviteTemplate
		if err := s.db.WithContext(ctx).First(&template, "id = ?", templateID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrTemplateNotFound
			}
			return nil, fmt.Errorf("campaign service: find template: %w", err)
		}
		campaign.TemplateID = &template.ID
	}

	now := s.now()
	if input.ScheduledAt != nil && input.ScheduledAt.After(now) {
		scheduledAt := *input.ScheduledAt
		campaign.Status = models.CampaignStatusScheduled
		campaign.ScheduledAt = &scheduledAt
	}

	total, err := CountEligibleLeads(ctx, s.db, &campaign)
	if err != nil {
		return nil, fmt.Errorf("campaign service: snapshot targets: %w", err)
	}
	campaign.TotalTargets = int(total)

	if err := s.db.WithContext(ctx).Create(&campaign).Error; err != nil {
		return nil, fmt.Errorf("campaign service: create campaign: %w", err)
	}

	return &campaign, nil
}

// Get returns a single campaign by id.
func (s *CampaignService) Get(ctx context.Context, id string) (*models.Campaign, error) {
	var campaign models.Campaign
	if err := s.db.WithContext(ctx).First(&campaign, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCampaignNotFound
		}
		return nil, fmt.Errorf("campaign service: find campaign: %w", err)
	}
	return &campaign, nil
}

// List returns campaigns, optionally filtered by status.
func (s *CampaignService) List(ctx context.Context, status string) ([]models.Campaign, error) {
	query := s.db.WithContext(ctx).Model(&models.Campaign{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var campaigns []models.Campaign
	if err := query.Order("created_at DESC").Find(&campaigns).Error; err != nil {
		return nil, fmt.Errorf("campaign service: list campaigns: %w", err)
	}
	return campaigns, nil
}

// Start moves a draft or scheduled campaign into sending.
func (s *CampaignService) Start(ctx context.Context, id string) (*models.Campaign, error) {
	return s.transition(ctx, id, models.CampaignStatusSending)
}

// Pause suspends a sending campaign. An in-flight batch notices the change
// before its next send and stops early.
func (s *CampaignService) Pause(ctx context.Context, id string) (*models.Campaign, error) {
	return s.transition(ctx, id, models.CampaignStatusPaused)
}

// Resume moves a paused campaign back into sending.
func (s *CampaignService) Resume(ctx context.Context, id string) (*models.Campaign, error) {
	return s.transition(ctx, id, models.CampaignStatusSending)
}

// Cancel terminates a sending or paused campaign. Cancelled is terminal.
func (s *CampaignService) Cancel(ctx context.Context, id string) (*models.Campaign, error) {
	return s.transition(ctx, id, models.CampaignStatusCancelled)
}

// transition applies an operator-initiated status change, enforcing the legal
// state machine with a compare-and-swap on the current status so concurrent
// operators cannot double-apply.
func (s *CampaignService) transition(ctx context.Context, id, to string) (*models.Campaign, error) {
	campaign, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !models.CanTransition(campaign.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, campaign.Status, to)
	}

	now := s.now()
	updates := map[string]any{"status": to}
	if to == models.CampaignStatusSending && campaign.StartedAt == nil {
		updates["started_at"] = now
	}

	result := s.db.WithContext(ctx).
		Model(&models.Campaign{}).
		Where("id = ? AND status = ?", id, campaign.Status).
		Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("campaign service: transition: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: campaign status changed concurrently", ErrInvalidTransition)
	}

	return s.Get(ctx, id)
}

// PromoteScheduled flips scheduled campaigns whose start time has passed into
// sending, returning how many were promoted. Invoked by the dispatcher.
func (s *CampaignService) PromoteScheduled(ctx context.Context) (int64, error) {
	now := s.now()
	result := s.db.WithContext(ctx).
		Model(&models.Campaign{}).
		Where("status = ? AND scheduled_at IS NOT NULL AND scheduled_at <= ?", models.CampaignStatusScheduled, now).
		Updates(map[string]any{
			"status":     models.CampaignStatusSending,
			"started_at": now,
		})
	if result.Error != nil {
		return 0, fmt.Errorf("campaign service: promote scheduled: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// CampaignProgress reports a campaign's counters to operators.
type CampaignProgress struct {
	CampaignID   string  `json:"campaign_id"`
	Status       string  `json:"status"`
	TotalTargets int     `json:"total_targets"`
	SentCount    int     `json:"sent_count"`
	OpenedCount  int     `json:"opened_count"`
	ClickedCount int     `json:"clicked_count"`
	ClaimedCount int     `json:"claimed_count"`
	BouncedCount int     `json:"bounced_count"`
	Percent      float64 `json:"percent"`
}

// Progress returns a campaign's counters and completion percentage.
func (s *CampaignService) Progress(ctx context.Context, id string) (*CampaignProgress, error) {
	campaign, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	total := campaign.TotalTargets
	if total < 1 {
		total = 1
	}

	return &CampaignProgress{
		CampaignID:   campaign.ID,
		Status:       campaign.Status,
		TotalTargets: campaign.TotalTargets,
		SentCount:    campaign.SentCount,
		OpenedCount:  campaign.OpenedCount,
		ClickedCount: campaign.ClickedCount,
		ClaimedCount: campaign.ClaimedCount,
		BouncedCount: campaign.BouncedCount,
		Percent:      float64(campaign.SentCount) / float64(total) * 100,
	}, nil
}
