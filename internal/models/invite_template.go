package models

import "gorm.io/datatypes"

// Invite template delivery channels.
const (
	TemplateTypeEmail = "email"
	TemplateTypeSMS   = "sms"
	TemplateTypeBoth  = "both"
)

// InviteTemplate holds the subject/body pair merged with lead attributes when
// sending claim invitations. Templates are authored by operators and are
// read-only to the invitation worker apart from the aggregate counters.
type InviteTemplate struct {
	BaseModel

	Name    string `gorm:"not null" json:"name"`
	Type    string `gorm:"not null;default:'email'" json:"type"`
	Subject string `gorm:"not null" json:"subject"`
	Body    string `gorm:"not null" json:"body"`

	Variables datatypes.JSONSlice[string] `json:"variables"`

	IsDefault bool `gorm:"not null;default:false;index" json:"is_default"`
	IsActive  bool `gorm:"not null;default:true;index" json:"is_active"`

	SendCount  int `gorm:"not null;default:0" json:"send_count"`
	OpenCount  int `gorm:"not null;default:0" json:"open_count"`
	ClickCount int `gorm:"not null;default:0" json:"click_count"`
}
