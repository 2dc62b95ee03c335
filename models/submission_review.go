package models

import (
	"fmt"
	"strings"
	"time"
)

// ReviewStatus is the decision recorded on a SubmissionReview.
type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "pending"
	ReviewApproved ReviewStatus = "approved"
	ReviewRejected ReviewStatus = "rejected"
)

// ParseReviewStatus validates a status coming from a request.
func ParseReviewStatus(raw string) (ReviewStatus, error) {
	switch ReviewStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case ReviewPending:
		return ReviewPending, nil
	case ReviewApproved:
		return ReviewApproved, nil
	case ReviewRejected:
		return ReviewRejected, nil
	}
	return "", fmt.Errorf("%w: unknown review status %q", ErrInvalidValue, raw)
}

// DocumentRef points at either an ApplicationDefense or a PanelDefense.
type DocumentRef struct {
	Kind DocumentKind `gorm:"column:document_kind;size:20;index:idx_review_document" json:"kind"`
	ID   uint         `gorm:"column:document_id;index:idx_review_document" json:"id"`
}

func ApplicationRef(id uint) DocumentRef { return DocumentRef{Kind: DocumentApplication, ID: id} }

func PanelRef(id uint) DocumentRef { return DocumentRef{Kind: DocumentPanel, ID: id} }

func (r DocumentRef) String() string {
	return fmt.Sprintf("%s#%d", r.Kind, r.ID)
}

// SubmissionReview records a faculty decision on a generated defense document.
type SubmissionReview struct {
	ID         uint         `gorm:"primaryKey;column:id" json:"id"`
	ReviewerID *uint        `gorm:"column:reviewer_id;index" json:"reviewer"`
	Document   DocumentRef  `gorm:"embedded" json:"document"`
	Comment    string       `gorm:"column:comment;type:text" json:"comment"`
	Status     ReviewStatus `gorm:"column:status;size:20;default:pending;index" json:"status"`
	CreatedAt  time.Time    `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time    `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	Reviewer *Faculty `gorm:"foreignKey:ReviewerID;constraint:OnDelete:SET NULL" json:"reviewer_detail,omitempty"`
}

// TableName specifies the table name for SubmissionReview.
func (SubmissionReview) TableName() string {
	return "submission_reviews"
}
