// Package testutil builds throwaway databases and media roots for tests.
package testutil

import (
	"fmt"
	"regexp"
	"testing"

	"rkive-api/config"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var unsafeName = regexp.MustCompile(`[^a-zA-Z0-9_]+`)

// NewDB opens a private in-memory SQLite database with the full schema.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", unsafeName.ReplaceAllString(t.Name(), "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := config.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// NewSettings returns default settings rooted in temporary directories.
func NewSettings(t testing.TB) *config.Settings {
	t.Helper()

	s := config.Defaults()
	s.MediaRoot = t.TempDir()
	s.TemplateDir = t.TempDir()
	s.JWTSecret = "test-secret"
	s.CookieSecure = false
	return s
}
