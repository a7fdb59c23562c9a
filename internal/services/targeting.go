package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/citydex/outreach/internal/models"
)

// EligibleLeads returns the GORM scope selecting leads that a campaign may
// still invite: a contactable owner, no send recorded yet, and membership in
// every targeting dimension the campaign constrains (AND across dimensions,
// OR within a dimension's set).
//
// Both the total_targets snapshot at creation time and batch selection at
// send time go through this single scope; keeping one definition is what
// makes the progress percentage trustworthy.
func EligibleLeads(campaign *models.Campaign) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		tx = tx.
			Where("owner_email IS NOT NULL AND owner_email <> ''").
			Where("email_status IN ?", []string{models.EmailStatusUnset, models.EmailStatusNotSent})

		if len(campaign.TargetCategories) > 0 {
			tx = tx.Where("category IN ?", []string(campaign.TargetCategories))
		}
		if len(campaign.TargetCities) > 0 {
			tx = tx.Where("city IN ?", []string(campaign.TargetCities))
		}
		if len(campaign.TargetStates) > 0 {
			tx = tx.Where("state IN ?", []string(campaign.TargetStates))
		}

		if campaign.ExcludePreviouslyInvited {
			tx = tx.Where("invitation_count = 0")
		}

		return tx
	}
}

// CountEligibleLeads evaluates the targeting predicate and returns the number
// of matching leads. Pure read; no side effects.
func CountEligibleLeads(ctx context.Context, db *gorm.DB, campaign *models.Campaign) (int64, error) {
	var count int64
	if err := db.WithContext(ctx).
		Model(&models.Lead{}).
		Scopes(EligibleLeads(campaign)).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("targeting: count eligible leads: %w", err)
	}
	return count, nil
}
