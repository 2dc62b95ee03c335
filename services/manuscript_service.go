package services

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"rkive-api/config"
	"rkive-api/models"
	"rkive-api/utils"

	"github.com/gabriel-vasile/mimetype"
	"gorm.io/gorm"
)

// MaxManuscriptSize caps an uploaded manuscript.
const MaxManuscriptSize = 20 << 20

var (
	ErrNotPDF       = errors.New("uploaded file is not a PDF")
	ErrFileTooLarge = fmt.Errorf("file exceeds %d MB", MaxManuscriptSize>>20)

	unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)
)

type ManuscriptService struct {
	db       *gorm.DB
	settings *config.Settings
	now      func() time.Time
}

func NewManuscriptService(db *gorm.DB, settings *config.Settings) *ManuscriptService {
	if db == nil {
		db = config.DB
	}
	if settings == nil {
		settings = config.Current
	}
	return &ManuscriptService{db: db, settings: settings, now: time.Now}
}

type ManuscriptInput struct {
	Title       string  `form:"title" validate:"required,max=200"`
	Description string  `form:"description"`
	FirstName   *string `form:"first_name" validate:"omitempty,max=255"`
	LastName    *string `form:"last_name" validate:"omitempty,max=255"`
	OwnerID     *uint   `form:"-"`
}

// Create stores the uploaded PDF under manuscripts/ and inserts the row. The
// stored file is removed again when the insert fails.
func (s *ManuscriptService) Create(input ManuscriptInput, filename string, src io.Reader) (*models.Manuscript, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if src == nil {
		return nil, ErrFileRequired
	}

	data, err := io.ReadAll(io.LimitReader(src, MaxManuscriptSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrFileRequired
	}
	if len(data) > MaxManuscriptSize {
		return nil, ErrFileTooLarge
	}
	if !mimetype.Detect(data).Is("application/pdf") {
		return nil, ErrNotPDF
	}

	now := s.now()
	dir := filepath.Join(s.settings.MediaRoot, utils.ManuscriptDir)
	name, err := utils.ReserveFile(dir, manuscriptStem(filename), "pdf", now)
	if err != nil {
		return nil, err
	}
	fullPath := filepath.Join(dir, name)
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		utils.RemoveQuietly(fullPath)
		return nil, fmt.Errorf("failed to store manuscript: %w", err)
	}

	manuscript := models.Manuscript{
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		PDF:         path.Join(utils.ManuscriptDir, name),
		CreatedAt:   now,
		OwnerID:     input.OwnerID,
	}
	if err := s.db.Create(&manuscript).Error; err != nil {
		utils.RemoveQuietly(fullPath)
		return nil, fmt.Errorf("failed to save manuscript: %w", err)
	}
	return &manuscript, nil
}

func manuscriptStem(filename string) string {
	stem := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	stem = strings.Trim(unsafeFileChars.ReplaceAllString(stem, "_"), "._")
	if stem == "" || stem == "/" {
		return "Manuscript"
	}
	if len(stem) > 80 {
		stem = stem[:80]
	}
	return stem
}

func escapeLike(q string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(q)
}

// Search returns manuscripts whose title or description contains q, ignoring
// case, newest first. An empty q returns every manuscript.
func (s *ManuscriptService) Search(q string) ([]models.Manuscript, error) {
	query := s.db.Model(&models.Manuscript{})
	if q = strings.TrimSpace(q); q != "" {
		pattern := "%" + escapeLike(models.FoldSearch(q)) + "%"
		query = query.Where("search_text LIKE ? ESCAPE '!'", pattern)
	}

	var items []models.Manuscript
	if err := query.Order("created_at DESC, id DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Count returns the number of stored manuscripts.
func (s *ManuscriptService) Count() (int64, error) {
	var total int64
	err := s.db.Model(&models.Manuscript{}).Count(&total).Error
	return total, err
}
