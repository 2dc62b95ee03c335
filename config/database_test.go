package config

import (
	"path/filepath"
	"testing"

	"rkive-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenDBRejectsUnknownDriver(t *testing.T) {
	s := Defaults()
	s.DBDriver = "oracle"
	_, err := OpenDB(s)
	assert.Error(t, err)
}

func TestAutoMigrateBackfillsManuscriptSearch(t *testing.T) {
	s := Defaults()
	s.DBDriver = "sqlite"
	s.DBDSN = filepath.Join(t.TempDir(), "rkive.db")

	db, err := OpenDB(s)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, AutoMigrate(db))

	m := models.Manuscript{Title: "THÈSE", Description: "Notes", PDF: "manuscripts/a.pdf"}
	require.NoError(t, db.Create(&m).Error)
	assert.Equal(t, "thèse\x1fnotes", m.SearchText)

	// a row written before the column existed
	require.NoError(t, db.Model(&models.Manuscript{}).Where("id = ?", m.ID).UpdateColumn("search_text", "").Error)
	require.NoError(t, AutoMigrate(db))

	var stored models.Manuscript
	require.NoError(t, db.First(&stored, m.ID).Error)
	assert.Equal(t, "thèse\x1fnotes", stored.SearchText)
}
