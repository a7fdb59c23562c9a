package database

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/citydex/outreach/internal/models"
)

func TestOpenSQLiteInMemory(t *testing.T) {
	db, err := Open(Config{Driver: "sqlite", DSN: "file::memory:?cache=shared"})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, AutoMigrate(db))
	require.True(t, db.Migrator().HasTable(&models.Lead{}))
	require.True(t, db.Migrator().HasTable(&models.Campaign{}))
	require.True(t, db.Migrator().HasTable(&models.InviteTemplate{}))
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(Config{Driver: "oracle"})
	require.Error(t, err)
}

func TestSeedDataIsIdempotent(t *testing.T) {
	db, err := Open(Config{Driver: "sqlite", DSN: "file:seedtest?mode=memory&cache=shared"})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, AutoMigrateAndSeed(db))
	require.NoError(t, AutoMigrateAndSeed(db))

	var count int64
	require.NoError(t, db.Model(&models.InviteTemplate{}).Where("is_default = ?", true).Count(&count).Error)
	require.Equal(t, int64(1), count)

	var template models.InviteTemplate
	require.NoError(t, db.First(&template, "id = ?", "default-claim-invite").Error)
	require.True(t, template.IsActive)
	require.Contains(t, template.Body, "{{claim_url}}")
}

func TestBuildPostgresDSN(t *testing.T) {
	dsn, err := buildPostgresDSN(Config{
		User:     "outreach",
		Password: "secret",
		Name:     "citydex",
		Host:     "db.internal",
		Port:     5433,
	})
	require.NoError(t, err)
	require.Equal(t, "host=db.internal port=5433 user=outreach dbname=citydex password=secret sslmode=disable", dsn)

	// Explicit options override defaults.
	dsn, err = buildPostgresDSN(Config{
		User:    "outreach",
		Name:    "citydex",
		Options: map[string]string{"sslmode": "require"},
	})
	require.NoError(t, err)
	require.Contains(t, dsn, "sslmode=require")
	require.Contains(t, dsn, "host=localhost")
	require.Contains(t, dsn, "port=5432")

	_, err = buildPostgresDSN(Config{Name: "citydex"})
	require.Error(t, err)
}

func TestBuildMySQLDSN(t *testing.T) {
	dsn, err := buildMySQLDSN(Config{
		User:     "outreach",
		Password: "secret",
		Name:     "citydex",
	})
	require.NoError(t, err)
	require.Equal(t, "outreach:secret@tcp(127.0.0.1:3306)/citydex?charset=utf8mb4&loc=Local&parseTime=True", dsn)

	_, err = buildMySQLDSN(Config{User: "outreach"})
	require.Error(t, err)
}

func TestDSNOverrideWins(t *testing.T) {
	dsn, err := buildPostgresDSN(Config{DSN: "postgres://custom"})
	require.NoError(t, err)
	require.Equal(t, "postgres://custom", dsn)

	dsn, err = buildMySQLDSN(Config{DSN: "custom-mysql-dsn"})
	require.NoError(t, err)
	require.Equal(t, "custom-mysql-dsn", dsn)
}
