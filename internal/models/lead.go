package models

import "time"

// Lead engagement states. An empty string means the lead has never been
// considered for outreach; "not_sent" means it was ingested with outreach in
// mind but nothing has gone out yet. Both are eligible for selection.
const (
	EmailStatusUnset   = ""
	EmailStatusNotSent = "not_sent"
	EmailStatusSent    = "sent"
	EmailStatusOpened  = "opened"
	EmailStatusClicked = "clicked"
	EmailStatusBounced = "bounced"
)

// Lead is a prospective business record eligible for claim invitations.
// Targeting attributes are read-only once ingested; invitation fields are
// mutated only by the invitation worker, and is_converted only by the
// external claim workflow.
type Lead struct {
	BaseModel

	BusinessName string `gorm:"not null;index" json:"business_name"`
	Category     string `gorm:"index" json:"category"`
	City         string `gorm:"index" json:"city"`
	State        string `gorm:"index" json:"state"`

	OwnerName  string `json:"owner_name"`
	OwnerEmail string `gorm:"index" json:"owner_email"`

	EmailStatus     string     `gorm:"index;default:''" json:"email_status"`
	InvitationCount int        `gorm:"not null;default:0" json:"invitation_count"`
	IsInvited       bool       `gorm:"not null;default:false" json:"is_invited"`
	InvitedAt       *time.Time `json:"invited_at,omitempty"`
	LastInvitedAt   *time.Time `json:"last_invited_at,omitempty"`
	LastCampaignID  *string    `gorm:"type:uuid;index" json:"last_campaign_id,omitempty"`

	// SHA-256 of the issued claim token. The raw token is never persisted.
	ClaimToken          string     `gorm:"index" json:"-"`
	ClaimTokenExpiresAt *time.Time `json:"claim_token_expires_at,omitempty"`
	IsConverted         bool       `gorm:"not null;default:false" json:"is_converted"`
}

// EngagementRank orders email statuses from weakest to strongest signal so
// that webhook updates never regress a lead. A bounce outranks a bare send
// but not an open or a click (those prove delivery).
func EngagementRank(status string) int {
	switch status {
	case EmailStatusUnset:
		return 0
	case EmailStatusNotSent:
		return 1
	case EmailStatusSent:
		return 2
	case EmailStatusBounced:
		return 3
	case EmailStatusOpened:
		return 4
	case EmailStatusClicked:
		return 5
	default:
		return -1
	}
}
