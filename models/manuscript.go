package models

import (
	"path"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Manuscript is a student submission. Rows are immutable once created.
type Manuscript struct {
	ID          uint      `gorm:"primaryKey;column:id" json:"id"`
	FirstName   *string   `gorm:"column:first_name;size:255" json:"first_name,omitempty"`
	LastName    *string   `gorm:"column:last_name;size:255" json:"last_name,omitempty"`
	Title       string    `gorm:"column:title;size:200;not null" json:"title"`
	Description string    `gorm:"column:description;type:text" json:"description"`
	PDF         string    `gorm:"column:pdf;size:255;not null" json:"pdf"`
	CreatedAt   time.Time `gorm:"column:created_at;index" json:"created_at"`
	OwnerID     *uint     `gorm:"column:owner_id;index" json:"owner_id,omitempty"`
	// SearchText is title and description folded by FoldSearch. Database
	// LOWER() differs per driver (SQLite folds ASCII only), so folding
	// happens here.
	SearchText string `gorm:"column:search_text;type:text" json:"-"`
}

func (Manuscript) TableName() string {
	return "manuscripts"
}

// Filename returns the base name of the stored PDF.
func (m Manuscript) Filename() string {
	return path.Base(m.PDF)
}

// FoldSearch is the case folding applied to stored search text and queries.
func FoldSearch(s string) string {
	return strings.ToLower(s)
}

// SearchKey joins the folded title and description. The separator keeps a
// query from matching across the two fields.
func (m Manuscript) SearchKey() string {
	return FoldSearch(m.Title) + "\x1f" + FoldSearch(m.Description)
}

func (m *Manuscript) BeforeSave(tx *gorm.DB) error {
	m.SearchText = m.SearchKey()
	return nil
}
