package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/citydex/outreach/internal/database/testutil"
	"github.com/citydex/outreach/internal/models"
)

func TestTemplateCreateDefaultClearsPreviousDefault(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	svc, err := NewTemplateService(db)
	require.NoError(t, err)

	first, err := svc.Create(context.Background(), CreateTemplateInput{
		Name:      "original",
		Subject:   "s",
		Body:      "b",
		IsDefault: true,
	})
	require.NoError(t, err)
	require.True(t, first.IsDefault)
	require.Equal(t, models.TemplateTypeEmail, first.Type)

	second, err := svc.Create(context.Background(), CreateTemplateInput{
		Name:      "replacement",
		Subject:   "s2",
		Body:      "b2",
		IsDefault: true,
	})
	require.NoError(t, err)
	require.True(t, second.IsDefault)

	reloaded, err := svc.Get(context.Background(), first.ID)
	require.NoError(t, err)
	require.False(t, reloaded.IsDefault)

	current, err := svc.Default(context.Background())
	require.NoError(t, err)
	require.NotNil(t, current)
	require.Equal(t, second.ID, current.ID)
}

func TestTemplateListActiveOnly(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	svc, err := NewTemplateService(db)
	require.NoError(t, err)

	active, err := svc.Create(context.Background(), CreateTemplateInput{Name: "active", Subject: "s", Body: "b"})
	require.NoError(t, err)

	retired, err := svc.Create(context.Background(), CreateTemplateInput{Name: "retired", Subject: "s", Body: "b"})
	require.NoError(t, err)
	_, err = svc.SetActive(context.Background(), retired.ID, false)
	require.NoError(t, err)

	all, err := svc.List(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, all, 2)

	onlyActive, err := svc.List(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, onlyActive, 1)
	require.Equal(t, active.ID, onlyActive[0].ID)
}

func TestTemplateDefaultIgnoresInactive(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	svc, err := NewTemplateService(db)
	require.NoError(t, err)

	tmpl, err := svc.Create(context.Background(), CreateTemplateInput{
		Name:      "seasonal",
		Subject:   "s",
		Body:      "b",
		IsDefault: true,
	})
	require.NoError(t, err)

	_, err = svc.SetActive(context.Background(), tmpl.ID, false)
	require.NoError(t, err)

	current, err := svc.Default(context.Background())
	require.NoError(t, err)
	require.Nil(t, current)
}

func TestTemplateGetNotFound(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	svc, err := NewTemplateService(db)
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), "does-not-exist")
	require.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestSeedDataInsertsDefaultTemplate(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())

	svc, err := NewTemplateService(db)
	require.NoError(t, err)

	current, err := svc.Default(context.Background())
	require.NoError(t, err)
	require.NotNil(t, current)
	require.True(t, current.IsActive)
}
