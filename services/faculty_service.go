package services

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"rkive-api/config"
	"rkive-api/models"

	"gorm.io/gorm"
)

// UnknownFaculty is rendered in place of a faculty reference that cannot be resolved.
const UnknownFaculty = "Unknown"

// facultyListKey holds the ordered directory served by List.
const facultyListKey = "faculty:list"

type FacultyService struct {
	db    *gorm.DB
	cache Cache
	ttl   time.Duration
}

// NewFacultyService caches through cache; nil disables caching.
func NewFacultyService(db *gorm.DB, cache Cache) *FacultyService {
	if db == nil {
		db = config.DB
	}
	if cache == nil {
		cache = &RedisService{}
	}
	ttl := config.Current.FacultyCacheTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &FacultyService{db: db, cache: cache, ttl: ttl}
}

func facultyCacheKey(id uint) string {
	return "faculty:" + strconv.FormatUint(uint64(id), 10)
}

// List returns the directory ordered by name, consulting the cache first.
func (s *FacultyService) List() ([]models.Faculty, error) {
	var items []models.Faculty
	if err := s.cache.Get(facultyListKey, &items); err == nil {
		return items, nil
	}

	if err := s.db.Order("name ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	if err := s.cache.Set(facultyListKey, items, s.ttl); err != nil {
		log.Printf("[faculty] cache set list failed: %v", err)
	}
	return items, nil
}

// evict drops the cached list and the given entries.
func (s *FacultyService) evict(ids ...uint) {
	keys := []string{facultyListKey}
	for _, id := range ids {
		keys = append(keys, facultyCacheKey(id))
	}
	if err := s.cache.Delete(keys...); err != nil {
		log.Printf("[faculty] cache evict %v failed: %v", ids, err)
	}
}

// Get loads a faculty row, consulting the cache first.
func (s *FacultyService) Get(id uint) (*models.Faculty, error) {
	var faculty models.Faculty
	if err := s.cache.Get(facultyCacheKey(id), &faculty); err == nil {
		return &faculty, nil
	}

	if err := s.db.First(&faculty, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := s.cache.Set(facultyCacheKey(id), faculty, s.ttl); err != nil {
		log.Printf("[faculty] cache set %d failed: %v", id, err)
	}
	return &faculty, nil
}

type FacultyInput struct {
	Name       string  `json:"name" validate:"required,max=255"`
	Title      *string `json:"title" validate:"omitempty,max=255"`
	Department *string `json:"department" validate:"omitempty,max=255"`
	AccountID  *uint   `json:"account_id"`
}

func (s *FacultyService) Create(input FacultyInput) (*models.Faculty, error) {
	faculty := models.Faculty{
		Name:       strings.TrimSpace(input.Name),
		Title:      input.Title,
		Department: input.Department,
		AccountID:  input.AccountID,
	}
	if err := s.db.Create(&faculty).Error; err != nil {
		return nil, fmt.Errorf("failed to create faculty: %w", err)
	}
	s.evict()
	return &faculty, nil
}

// Resolve turns a raw faculty identifier from a request into the name to render
// and the reference to persist. Blank input renders blank; anything that does not
// resolve renders UnknownFaculty and persists no reference.
func (s *FacultyService) Resolve(raw string) (string, *uint) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}

	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return UnknownFaculty, nil
	}

	faculty, err := s.Get(uint(id))
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Printf("[faculty] lookup %d failed: %v", id, err)
		}
		return UnknownFaculty, nil
	}

	ref := faculty.ID
	return faculty.Name, &ref
}

// Delete removes a faculty row and clears every reference to it.
func (s *FacultyService) Delete(id uint) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Faculty{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return clearFacultyReferences(tx, []uint{id})
	})
	if err != nil {
		return err
	}

	s.evict(id)
	return nil
}

// clearFacultyReferences sets every adviser/panel reference and every reviewer
// reference pointing at ids to NULL.
func clearFacultyReferences(tx *gorm.DB, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}

	for _, model := range []interface{}{&models.ApplicationDefense{}, &models.PanelDefense{}} {
		for _, column := range models.FacultyRefColumns {
			if err := tx.Model(model).
				Where(column+" IN ?", ids).
				Update(column, nil).Error; err != nil {
				return fmt.Errorf("failed to clear %s: %w", column, err)
			}
		}
	}

	if err := tx.Model(&models.SubmissionReview{}).
		Where("reviewer_id IN ?", ids).
		Update("reviewer_id", nil).Error; err != nil {
		return fmt.Errorf("failed to clear reviewer_id: %w", err)
	}
	return nil
}
