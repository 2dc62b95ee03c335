package config

import (
	"fmt"
	"log"

	"rkive-api/models"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// InitDB opens the configured database and migrates the schema.
func InitDB() {
	db, err := OpenDB(Current)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if err := AutoMigrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	DB = db
	log.Println("Database connected successfully")
}

// OpenDB builds the dialector for s.DBDriver and opens a gorm handle.
func OpenDB(s *Settings) (*gorm.DB, error) {
	dialector, err := dialectorFor(s)
	if err != nil {
		return nil, err
	}

	// In production, suppress SQL logs unless explicitly re-enabled via DEBUG_SQL=true.
	logLevel := logger.Info
	if s.IsProduction() && !s.DebugSQL {
		logLevel = logger.Warn
	}

	return gorm.Open(dialector, &gorm.Config{
		Logger: logger.New(
			log.New(LogWriter, "\r\n", log.LstdFlags),
			logger.Config{LogLevel: logLevel},
		),
	})
}

func dialectorFor(s *Settings) (gorm.Dialector, error) {
	switch s.DBDriver {
	case "", "mysql":
		dsn := s.DBDSN
		if dsn == "" {
			dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
				s.DBUsername,
				s.DBPassword,
				s.DBHost,
				s.DBPort,
				s.DBDatabase,
			)
		}
		return mysql.Open(dsn), nil
	case "postgres":
		dsn := s.DBDSN
		if dsn == "" {
			dsn = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
				s.DBHost,
				s.DBPort,
				s.DBUsername,
				s.DBPassword,
				s.DBDatabase,
			)
		}
		return postgres.Open(dsn), nil
	case "sqlite":
		dsn := s.DBDSN
		if dsn == "" {
			dsn = s.DBDatabase + ".db"
		}
		return sqlite.Open(dsn), nil
	}
	return nil, fmt.Errorf("unsupported DB_DRIVER %q", s.DBDriver)
}

// AutoMigrate creates or updates every table the service owns.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return err
	}
	return backfillManuscriptSearch(db)
}

// backfillManuscriptSearch fills search_text for rows stored before the column existed.
func backfillManuscriptSearch(db *gorm.DB) error {
	var pending []models.Manuscript
	if err := db.Where("search_text IS NULL OR search_text = ''").Find(&pending).Error; err != nil {
		return err
	}
	for i := range pending {
		if err := db.Model(&models.Manuscript{}).
			Where("id = ?", pending[i].ID).
			UpdateColumn("search_text", pending[i].SearchKey()).Error; err != nil {
			return err
		}
	}
	if len(pending) > 0 {
		log.Printf("Backfilled search text for %d manuscripts", len(pending))
	}
	return nil
}
