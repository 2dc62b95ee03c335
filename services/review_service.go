package services

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"rkive-api/config"
	"rkive-api/models"
	"rkive-api/utils"

	"gorm.io/gorm"
)

type ReviewService struct {
	db       *gorm.DB
	mailer   config.Mailer
	mediaURL string
}

func NewReviewService(db *gorm.DB, mailer config.Mailer) *ReviewService {
	if db == nil {
		db = config.DB
	}
	return &ReviewService{db: db, mailer: mailer, mediaURL: config.Current.MediaURL}
}

type ReviewFilter struct {
	Status     string
	Kind       string
	DocumentID uint
}

type ReviewInput struct {
	ReviewerID   *uint  `json:"reviewer"`
	DocumentKind string `json:"document_kind" validate:"required,oneof=application panel"`
	DocumentID   uint   `json:"document_id" validate:"required"`
	Comment      string `json:"comment"`
	Status       string `json:"status" validate:"omitempty,oneof=pending approved rejected"`
}

type ReviewPatch struct {
	ReviewerID *uint   `json:"reviewer"`
	Comment    *string `json:"comment"`
	Status     *string `json:"status" validate:"omitempty,oneof=pending approved rejected"`
}

// reviewedDocument is what a review needs to know about its target.
type reviewedDocument struct {
	Title   string
	OwnerID *uint
	PDF     string
}

// lookupDocument resolves a DocumentRef against the table of its kind.
func lookupDocument(db *gorm.DB, ref models.DocumentRef) (*reviewedDocument, error) {
	switch ref.Kind {
	case models.DocumentApplication:
		var record models.ApplicationDefense
		if err := db.First(&record, ref.ID).Error; err != nil {
			return nil, notFoundAs(err, ErrDocumentNotFound)
		}
		return &reviewedDocument{Title: record.ResearchTitle, OwnerID: record.OwnerID, PDF: record.PDFFile}, nil
	case models.DocumentPanel:
		var record models.PanelDefense
		if err := db.First(&record, ref.ID).Error; err != nil {
			return nil, notFoundAs(err, ErrDocumentNotFound)
		}
		return &reviewedDocument{Title: record.ResearchTitle, OwnerID: record.OwnerID, PDF: record.PDFFile}, nil
	default:
		return nil, fmt.Errorf("unknown document kind %q", ref.Kind)
	}
}

func notFoundAs(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

func (s *ReviewService) List(filter ReviewFilter) ([]models.SubmissionReview, error) {
	q := s.db.Model(&models.SubmissionReview{}).Preload("Reviewer")
	if filter.Status != "" {
		status, err := models.ParseReviewStatus(filter.Status)
		if err != nil {
			return nil, err
		}
		q = q.Where("status = ?", status)
	}
	if filter.Kind != "" {
		kind, err := models.ParseDocumentKind(filter.Kind)
		if err != nil {
			return nil, err
		}
		q = q.Where("document_kind = ?", kind)
	}
	if filter.DocumentID != 0 {
		q = q.Where("document_id = ?", filter.DocumentID)
	}

	var reviews []models.SubmissionReview
	if err := q.Order("created_at DESC, id DESC").Find(&reviews).Error; err != nil {
		return nil, err
	}
	return reviews, nil
}

func (s *ReviewService) Get(id uint) (*models.SubmissionReview, error) {
	var review models.SubmissionReview
	if err := s.db.Preload("Reviewer").First(&review, id).Error; err != nil {
		return nil, notFoundAs(err, ErrNotFound)
	}
	return &review, nil
}

func (s *ReviewService) checkReviewer(tx *gorm.DB, id *uint) error {
	if id == nil {
		return nil
	}
	var count int64
	if err := tx.Model(&models.Faculty{}).Where("id = ?", *id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("reviewer %d: %w", *id, ErrNotFound)
	}
	return nil
}

func (s *ReviewService) Create(input ReviewInput) (*models.SubmissionReview, error) {
	kind, err := models.ParseDocumentKind(input.DocumentKind)
	if err != nil {
		return nil, err
	}
	status := models.ReviewPending
	if input.Status != "" {
		if status, err = models.ParseReviewStatus(input.Status); err != nil {
			return nil, err
		}
	}

	review := models.SubmissionReview{
		ReviewerID: input.ReviewerID,
		Document:   models.DocumentRef{Kind: kind, ID: input.DocumentID},
		Comment:    strings.TrimSpace(input.Comment),
		Status:     status,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := lookupDocument(tx, review.Document); err != nil {
			return err
		}
		if err := s.checkReviewer(tx, review.ReviewerID); err != nil {
			return err
		}
		return tx.Create(&review).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(review.ID)
}

// Update applies patch; a status change notifies the document owner by mail.
func (s *ReviewService) Update(id uint, patch ReviewPatch) (*models.SubmissionReview, error) {
	review, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	previous := review.Status

	updates := map[string]interface{}{}
	if patch.Comment != nil {
		updates["comment"] = strings.TrimSpace(*patch.Comment)
	}
	if patch.Status != nil {
		status, err := models.ParseReviewStatus(*patch.Status)
		if err != nil {
			return nil, err
		}
		updates["status"] = status
	}
	if patch.ReviewerID != nil {
		if err := s.checkReviewer(s.db, patch.ReviewerID); err != nil {
			return nil, err
		}
		updates["reviewer_id"] = *patch.ReviewerID
	}

	if len(updates) > 0 {
		if err := s.db.Model(review).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	review, err = s.Get(id)
	if err != nil {
		return nil, err
	}
	if review.Status != previous {
		s.notifyOwner(review)
	}
	return review, nil
}

func (s *ReviewService) Delete(id uint) error {
	res := s.db.Delete(&models.SubmissionReview{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountPending returns the number of reviews still waiting for a decision.
func (s *ReviewService) CountPending() (int64, error) {
	var total int64
	err := s.db.Model(&models.SubmissionReview{}).Where("status = ?", models.ReviewPending).Count(&total).Error
	return total, err
}

func (s *ReviewService) notifyOwner(review *models.SubmissionReview) {
	if s.mailer == nil {
		return
	}

	doc, err := lookupDocument(s.db, review.Document)
	if err != nil || doc.OwnerID == nil {
		return
	}
	var owner models.Account
	if err := s.db.Select("id", "email").First(&owner, *doc.OwnerID).Error; err != nil {
		return
	}

	reviewer := ""
	if review.Reviewer != nil {
		reviewer = review.Reviewer.Name
	}
	subject, html, err := reviewStatusMail(review, doc.Title, reviewer, utils.MediaURL(s.mediaURL, doc.PDF))
	if err != nil {
		log.Printf("[mail] render review %d: %v", review.ID, err)
		return
	}
	if err := s.mailer.Send([]string{owner.Email}, subject, html); err != nil {
		log.Printf("[mail] review %d to %s: %v", review.ID, owner.Email, err)
	}
}
