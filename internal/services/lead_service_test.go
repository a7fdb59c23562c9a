package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/citydex/outreach/internal/database/testutil"
	"github.com/citydex/outreach/internal/models"
)

func TestImportLeadsSkipsDuplicates(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	svc, err := NewLeadService(db)
	require.NoError(t, err)

	first, err := svc.ImportLeads(context.Background(), []LeadImportInput{
		{BusinessName: "Mission Tacos", Category: "restaurant", City: "San Francisco", State: "CA", OwnerEmail: "Owner@Example.com"},
		{BusinessName: "Nameless Laundry", City: "San Francisco"},
	})
	require.NoError(t, err)
	require.Equal(t, 2, first.Imported)
	require.Equal(t, 0, first.Skipped)

	second, err := svc.ImportLeads(context.Background(), []LeadImportInput{
		// Duplicate by email, case-insensitive.
		{BusinessName: "Mission Tacos II", OwnerEmail: "owner@example.com"},
		// Duplicate by business name + city for email-less records.
		{BusinessName: "Nameless Laundry", City: "San Francisco"},
		// Same name in another city is a new lead.
		{BusinessName: "Nameless Laundry", City: "Oakland"},
		// Blank business name is skipped.
		{BusinessName: "   "},
	})
	require.NoError(t, err)
	require.Equal(t, 1, second.Imported)
	require.Equal(t, 3, second.Skipped)

	var lead models.Lead
	require.NoError(t, db.First(&lead, "owner_email = ?", "owner@example.com").Error)
	require.Equal(t, models.EmailStatusNotSent, lead.EmailStatus)
}

func TestListLeadsFilterAndPagination(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	svc, err := NewLeadService(db)
	require.NoError(t, err)

	inputs := []LeadImportInput{
		{BusinessName: "A Cafe", Category: "cafe", City: "Oakland", OwnerEmail: "a@example.com"},
		{BusinessName: "B Cafe", Category: "cafe", City: "Oakland", OwnerEmail: "b@example.com"},
		{BusinessName: "C Gym", Category: "gym", City: "Oakland", OwnerEmail: "c@example.com"},
	}
	_, err = svc.ImportLeads(context.Background(), inputs)
	require.NoError(t, err)

	leads, total, err := svc.List(context.Background(), LeadFilter{Category: "cafe", Page: 1, PerPage: 1})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, leads, 1)
	require.Equal(t, "A Cafe", leads[0].BusinessName)

	leads, _, err = svc.List(context.Background(), LeadFilter{Category: "cafe", Page: 2, PerPage: 1})
	require.NoError(t, err)
	require.Len(t, leads, 1)
	require.Equal(t, "B Cafe", leads[0].BusinessName)

	status := models.EmailStatusNotSent
	leads, total, err = svc.List(context.Background(), LeadFilter{EmailStatus: &status})
	require.NoError(t, err)
	require.Equal(t, int64(3), total)
	require.Len(t, leads, 3)
}

func TestRecordEngagementUpgradesStatusAndRollsUp(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	template := models.InviteTemplate{Name: "t", Type: models.TemplateTypeEmail, Subject: "s", Body: "b", IsActive: true}
	require.NoError(t, db.Create(&template).Error)

	campaign := models.Campaign{Name: "Spring", Status: models.CampaignStatusSending, TemplateID: &template.ID}
	require.NoError(t, db.Create(&campaign).Error)

	lead := models.Lead{
		BusinessName:   "Corner Bakery",
		OwnerEmail:     "bakery@example.com",
		EmailStatus:    models.EmailStatusSent,
		LastCampaignID: &campaign.ID,
	}
	require.NoError(t, db.Create(&lead).Error)

	svc, err := NewLeadService(db)
	require.NoError(t, err)

	updated, err := svc.RecordEngagement(context.Background(), lead.ID, EngagementOpened)
	require.NoError(t, err)
	require.Equal(t, models.EmailStatusOpened, updated.EmailStatus)

	// A later bounce must not regress the proven open.
	updated, err = svc.RecordEngagement(context.Background(), lead.ID, EngagementBounced)
	require.NoError(t, err)
	require.Equal(t, models.EmailStatusOpened, updated.EmailStatus)

	updated, err = svc.RecordEngagement(context.Background(), lead.ID, EngagementClicked)
	require.NoError(t, err)
	require.Equal(t, models.EmailStatusClicked, updated.EmailStatus)

	require.NoError(t, db.First(&campaign, "id = ?", campaign.ID).Error)
	require.Equal(t, 1, campaign.OpenedCount)
	require.Equal(t, 1, campaign.BouncedCount)
	require.Equal(t, 1, campaign.ClickedCount)

	require.NoError(t, db.First(&template, "id = ?", template.ID).Error)
	require.Equal(t, 1, template.OpenCount)
	require.Equal(t, 1, template.ClickCount)
}

func TestRecordEngagementClaimedMarksConversion(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	campaign := models.Campaign{Name: "Spring", Status: models.CampaignStatusSending}
	require.NoError(t, db.Create(&campaign).Error)

	lead := models.Lead{
		BusinessName:   "Hill Hardware",
		OwnerEmail:     "hw@example.com",
		EmailStatus:    models.EmailStatusClicked,
		LastCampaignID: &campaign.ID,
	}
	require.NoError(t, db.Create(&lead).Error)

	svc, err := NewLeadService(db)
	require.NoError(t, err)

	updated, err := svc.RecordEngagement(context.Background(), lead.ID, EngagementClaimed)
	require.NoError(t, err)
	require.True(t, updated.IsConverted)
	// Claiming records conversion without touching the email status.
	require.Equal(t, models.EmailStatusClicked, updated.EmailStatus)

	require.NoError(t, db.First(&campaign, "id = ?", campaign.ID).Error)
	require.Equal(t, 1, campaign.ClaimedCount)
}

func TestRecordEngagementRejectsUnknownKind(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	lead := models.Lead{BusinessName: "X", OwnerEmail: "x@example.com"}
	require.NoError(t, db.Create(&lead).Error)

	svc, err := NewLeadService(db)
	require.NoError(t, err)

	_, err = svc.RecordEngagement(context.Background(), lead.ID, "unsubscribed")
	require.ErrorIs(t, err, ErrUnknownEngagement)

	_, err = svc.RecordEngagement(context.Background(), "missing", EngagementOpened)
	require.ErrorIs(t, err, ErrLeadNotFound)
}
