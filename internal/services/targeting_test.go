package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/citydex/outreach/internal/database/testutil"
	"github.com/citydex/outreach/internal/models"
)

func seedTargetingLeads(t *testing.T, db *gorm.DB) {
	t.Helper()

	leads := []models.Lead{
		{BusinessName: "Oakland Cafe", Category: "cafe", City: "Oakland", State: "CA", OwnerEmail: "a@example.com", EmailStatus: models.EmailStatusNotSent},
		{BusinessName: "Oakland Gym", Category: "gym", City: "Oakland", State: "CA", OwnerEmail: "b@example.com", EmailStatus: models.EmailStatusUnset},
		{BusinessName: "Reno Cafe", Category: "cafe", City: "Reno", State: "NV", OwnerEmail: "c@example.com", EmailStatus: models.EmailStatusNotSent},
		{BusinessName: "No Email Cafe", Category: "cafe", City: "Oakland", State: "CA", OwnerEmail: "", EmailStatus: models.EmailStatusNotSent},
		{BusinessName: "Already Sent Cafe", Category: "cafe", City: "Oakland", State: "CA", OwnerEmail: "d@example.com", EmailStatus: models.EmailStatusSent},
		{BusinessName: "Bounced Cafe", Category: "cafe", City: "Oakland", State: "CA", OwnerEmail: "e@example.com", EmailStatus: models.EmailStatusBounced},
		{BusinessName: "Invited Before", Category: "cafe", City: "Oakland", State: "CA", OwnerEmail: "f@example.com", EmailStatus: models.EmailStatusNotSent, InvitationCount: 2},
	}
	for i := range leads {
		require.NoError(t, db.Create(&leads[i]).Error)
	}
}

func selectEligible(t *testing.T, db *gorm.DB, campaign *models.Campaign) []models.Lead {
	t.Helper()

	var leads []models.Lead
	require.NoError(t, db.Model(&models.Lead{}).
		Scopes(EligibleLeads(campaign)).
		Order("created_at ASC, id ASC").
		Find(&leads).Error)
	return leads
}

func businessNames(leads []models.Lead) []string {
	names := make([]string, 0, len(leads))
	for _, lead := range leads {
		names = append(names, lead.BusinessName)
	}
	return names
}

func TestEligibleLeadsRequiresContactableUnsentOwner(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	seedTargetingLeads(t, db)

	campaign := &models.Campaign{}
	leads := selectEligible(t, db, campaign)

	// No email, sent, and bounced leads are out; previous invites stay in
	// unless the campaign excludes them.
	require.ElementsMatch(t,
		[]string{"Oakland Cafe", "Oakland Gym", "Reno Cafe", "Invited Before"},
		businessNames(leads))
}

func TestEligibleLeadsTargetingDimensionsCombineWithAnd(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	seedTargetingLeads(t, db)

	campaign := &models.Campaign{
		TargetCategories: datatypes.NewJSONSlice([]string{"cafe"}),
		TargetCities:     datatypes.NewJSONSlice([]string{"Oakland"}),
	}
	leads := selectEligible(t, db, campaign)

	require.ElementsMatch(t, []string{"Oakland Cafe", "Invited Before"}, businessNames(leads))
}

func TestEligibleLeadsSetMembershipIsOrWithinDimension(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	seedTargetingLeads(t, db)

	campaign := &models.Campaign{
		TargetCities: datatypes.NewJSONSlice([]string{"Oakland", "Reno"}),
	}
	leads := selectEligible(t, db, campaign)

	require.ElementsMatch(t,
		[]string{"Oakland Cafe", "Oakland Gym", "Reno Cafe", "Invited Before"},
		businessNames(leads))
}

func TestEligibleLeadsExcludePreviouslyInvited(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	seedTargetingLeads(t, db)

	campaign := &models.Campaign{ExcludePreviouslyInvited: true}
	leads := selectEligible(t, db, campaign)

	require.NotContains(t, businessNames(leads), "Invited Before")
}

func TestCountEligibleLeadsMatchesSelection(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	seedTargetingLeads(t, db)

	campaign := &models.Campaign{
		TargetCategories: datatypes.NewJSONSlice([]string{"cafe"}),
	}

	count, err := CountEligibleLeads(context.Background(), db, campaign)
	require.NoError(t, err)
	require.Equal(t, int64(len(selectEligible(t, db, campaign))), count)
}
