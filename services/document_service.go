package services

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"time"

	"rkive-api/config"
	"rkive-api/models"
	"rkive-api/utils"

	"gorm.io/gorm"
)

// DocumentCounts backs the dashboard counters.
type DocumentCounts struct {
	Application    int64 `json:"application"`
	Panel          int64 `json:"panel"`
	Manuscripts    int64 `json:"manuscripts"`
	ReviewsPending int64 `json:"reviews_pending"`
}

// StoredFile is one entry of a media listing.
type StoredFile struct {
	Name       string    `json:"name"`
	URL        string    `json:"url"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modified_at"`
}

var listingDirs = map[string]string{
	string(models.DocumentApplication): utils.ApplicationDir,
	string(models.DocumentPanel):       utils.PanelDir,
	"manuscripts":                      utils.ManuscriptDir,
}

var ErrUnknownListing = errors.New("kind must be one of application, panel, manuscripts")

type DocumentService struct {
	db       *gorm.DB
	settings *config.Settings
}

func NewDocumentService(db *gorm.DB, settings *config.Settings) *DocumentService {
	if db == nil {
		db = config.DB
	}
	if settings == nil {
		settings = config.Current
	}
	return &DocumentService{db: db, settings: settings}
}

func (s *DocumentService) Counts() (*DocumentCounts, error) {
	var counts DocumentCounts
	for _, item := range []struct {
		model interface{}
		dest  *int64
		where string
	}{
		{&models.ApplicationDefense{}, &counts.Application, ""},
		{&models.PanelDefense{}, &counts.Panel, ""},
		{&models.Manuscript{}, &counts.Manuscripts, ""},
		{&models.SubmissionReview{}, &counts.ReviewsPending, "status = 'pending'"},
	} {
		q := s.db.Model(item.model)
		if item.where != "" {
			q = q.Where(item.where)
		}
		if err := q.Count(item.dest).Error; err != nil {
			return nil, fmt.Errorf("failed to count documents: %w", err)
		}
	}
	return &counts, nil
}

// ListFiles returns the files of a media directory, newest first.
func (s *DocumentService) ListFiles(kind string) ([]StoredFile, error) {
	dir, ok := listingDirs[kind]
	if !ok {
		return nil, ErrUnknownListing
	}

	entries, err := os.ReadDir(filepath.Join(s.settings.MediaRoot, dir))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []StoredFile{}, nil
		}
		return nil, err
	}

	files := make([]StoredFile, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || entry.Name()[0] == '.' {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.Size() == 0 {
			// reserved but not yet written
			continue
		}
		files = append(files, StoredFile{
			Name:       entry.Name(),
			URL:        utils.MediaURL(s.settings.MediaURL, path.Join(dir, entry.Name())),
			Size:       info.Size(),
			ModifiedAt: info.ModTime(),
		})
	}

	sort.SliceStable(files, func(i, j int) bool {
		if files[i].ModifiedAt.Equal(files[j].ModifiedAt) {
			return files[i].Name > files[j].Name
		}
		return files[i].ModifiedAt.After(files[j].ModifiedAt)
	})
	return files, nil
}
