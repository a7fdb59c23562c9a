package database

import (
	"errors"

	"gorm.io/gorm"

	"github.com/citydex/outreach/internal/models"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	if db == nil {
		return errors.New("nil database handle")
	}

	return db.AutoMigrate(
		&models.Lead{},
		&models.InviteTemplate{},
		&models.Campaign{},
	)
}

// SeedData inserts the built-in default invitation template when none exists.
func SeedData(db *gorm.DB) error {
	if db == nil {
		return errors.New("nil database handle")
	}

	defaultTemplate := models.InviteTemplate{
		BaseModel: models.BaseModel{ID: "default-claim-invite"},
		Name:      "Default Claim Invitation",
		Type:      models.TemplateTypeEmail,
		Subject:   "Claim your {{business_name}} listing on Citydex",
		Body: "<p>Hi {{owner_name}},</p>" +
			"<p>{{business_name}} is already listed on Citydex, the local business " +
			"directory for {{city}}. Claim your free listing to update your details, " +
			"respond to reviews, and reach new customers.</p>" +
			"<p><a href=\"{{claim_url}}\">Claim your listing</a></p>" +
			"<p>This link expires in 7 days.</p>",
		Variables: []string{"business_name", "owner_name", "city", "claim_url"},
		IsDefault: true,
		IsActive:  true,
	}

	return db.
		Where(models.InviteTemplate{BaseModel: models.BaseModel{ID: defaultTemplate.ID}}).
		Attrs(defaultTemplate).
		FirstOrCreate(&models.InviteTemplate{}).Error
}

// AutoMigrateAndSeed convenience helper used during application start-up.
func AutoMigrateAndSeed(db *gorm.DB) error {
	if err := AutoMigrate(db); err != nil {
		return err
	}
	return SeedData(db)
}
