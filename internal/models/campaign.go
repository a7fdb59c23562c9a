package models

import (
	"time"

	"gorm.io/datatypes"
)

// Campaign status values.
const (
	CampaignStatusDraft     = "draft"
	CampaignStatusScheduled = "scheduled"
	CampaignStatusSending   = "sending"
	CampaignStatusPaused    = "paused"
	CampaignStatusCompleted = "completed"
	CampaignStatusCancelled = "cancelled"
)

// Campaign is a targeted, templated bulk-invitation job. Progress counters
// are owned by the invitation worker and only ever incremented; total_targets
// is a snapshot taken at creation time and never recomputed.
type Campaign struct {
	BaseModel

	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`

	TargetCategories datatypes.JSONSlice[string] `json:"target_categories"`
	TargetCities     datatypes.JSONSlice[string] `json:"target_cities"`
	TargetStates     datatypes.JSONSlice[string] `json:"target_states"`

	ExcludePreviouslyInvited bool `gorm:"not null;default:false" json:"exclude_previously_invited"`
	MinDaysBetweenInvites    int  `gorm:"not null;default:0" json:"min_days_between_invites"`

	TemplateID *string         `gorm:"type:uuid;index" json:"template_id,omitempty"`
	Template   *InviteTemplate `gorm:"constraint:OnDelete:SET NULL" json:"template,omitempty"`

	TotalTargets int `gorm:"not null;default:0" json:"total_targets"`

	SentCount    int `gorm:"not null;default:0" json:"sent_count"`
	OpenedCount  int `gorm:"not null;default:0" json:"opened_count"`
	ClickedCount int `gorm:"not null;default:0" json:"clicked_count"`
	ClaimedCount int `gorm:"not null;default:0" json:"claimed_count"`
	BouncedCount int `gorm:"not null;default:0" json:"bounced_count"`

	Status string `gorm:"not null;default:'draft';index" json:"status"`

	SendRatePerHour int `gorm:"not null;default:0" json:"send_rate_per_hour"`

	ScheduledAt *time.Time `gorm:"index" json:"scheduled_at,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Worker lease. At most one batch invocation may hold the lease at a
	// time; an expired lease may be reclaimed.
	LeaseOwner     string     `gorm:"default:''" json:"-"`
	LeaseExpiresAt *time.Time `json:"-"`
}

var campaignTransitions = map[string][]string{
	CampaignStatusDraft:     {CampaignStatusScheduled, CampaignStatusSending},
	CampaignStatusScheduled: {CampaignStatusSending},
	CampaignStatusSending:   {CampaignStatusPaused, CampaignStatusCompleted, CampaignStatusCancelled},
	CampaignStatusPaused:    {CampaignStatusSending, CampaignStatusCancelled},
	CampaignStatusCompleted: nil,
	CampaignStatusCancelled: nil,
}

// CanTransition reports whether moving a campaign from one status to another
// is legal. Completed and cancelled are terminal.
func CanTransition(from, to string) bool {
	for _, next := range campaignTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminalStatus reports whether a campaign status has no outbound transitions.
func IsTerminalStatus(status string) bool {
	return status == CampaignStatusCompleted || status == CampaignStatusCancelled
}
