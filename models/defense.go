package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidValue wraps every parse failure of an enumerated field.
var ErrInvalidValue = errors.New("invalid value")

// DocumentKind tags the two generated paperwork workflows around a defense.
type DocumentKind string

const (
	DocumentApplication DocumentKind = "application"
	DocumentPanel       DocumentKind = "panel"
)

// ParseDocumentKind validates a kind coming from a request.
func ParseDocumentKind(raw string) (DocumentKind, error) {
	switch DocumentKind(strings.ToLower(strings.TrimSpace(raw))) {
	case DocumentApplication:
		return DocumentApplication, nil
	case DocumentPanel:
		return DocumentPanel, nil
	}
	return "", fmt.Errorf("%w: unknown document kind %q", ErrInvalidValue, raw)
}

// PanelRefs holds the five faculty references shared by both defense records.
// Every reference is nullable and is cleared when the faculty row is deleted.
type PanelRefs struct {
	AdviserID    *uint `gorm:"column:adviser_id;index" json:"adviser"`
	PanelChairID *uint `gorm:"column:panel_chair_id;index" json:"panel_chair"`
	Panel1ID     *uint `gorm:"column:panel1_id;index" json:"panel1"`
	Panel2ID     *uint `gorm:"column:panel2_id;index" json:"panel2"`
	Panel3ID     *uint `gorm:"column:panel3_id;index" json:"panel3"`
}

// FacultyRefColumns are the columns of PanelRefs, keyed by request field name.
var FacultyRefColumns = map[string]string{
	"adviser":     "adviser_id",
	"panel_chair": "panel_chair_id",
	"panel1":      "panel1_id",
	"panel2":      "panel2_id",
	"panel3":      "panel3_id",
}

// Set assigns the reference for a request field name.
func (p *PanelRefs) Set(field string, id *uint) {
	switch field {
	case "adviser":
		p.AdviserID = id
	case "panel_chair":
		p.PanelChairID = id
	case "panel1":
		p.Panel1ID = id
	case "panel2":
		p.Panel2ID = id
	case "panel3":
		p.Panel3ID = id
	}
}

// Researchers holds the lead and up to five co-researcher names.
type Researchers struct {
	LeadResearcher string  `gorm:"column:lead_researcher;size:255" json:"lead_researcher"`
	CoResearcher   *string `gorm:"column:co_researcher;size:255" json:"co_researcher,omitempty"`
	CoResearcher1  *string `gorm:"column:co_researcher1;size:255" json:"co_researcher1,omitempty"`
	CoResearcher2  *string `gorm:"column:co_researcher2;size:255" json:"co_researcher2,omitempty"`
	CoResearcher3  *string `gorm:"column:co_researcher3;size:255" json:"co_researcher3,omitempty"`
	CoResearcher4  *string `gorm:"column:co_researcher4;size:255" json:"co_researcher4,omitempty"`
}

type ApplicationDefense struct {
	ID              uint    `gorm:"primaryKey;column:id" json:"id"`
	FirstName       *string `gorm:"column:first_name;size:255" json:"first_name,omitempty"`
	LastName        *string `gorm:"column:last_name;size:255" json:"last_name,omitempty"`
	Department      string  `gorm:"column:department;size:255" json:"department"`
	ResearchTitle   string  `gorm:"column:research_title;type:text" json:"research_title"`
	LeadContactNo   string  `gorm:"column:lead_contactno;size:15" json:"lead_contactno"`
	DatetimeDefense string  `gorm:"column:datetime_defense;size:255" json:"datetime_defense"`
	PlaceDefense    string  `gorm:"column:place_defense;size:255" json:"place_defense"`
	Documenter      string  `gorm:"column:documenter;size:255" json:"documenter"`
	Researchers     `gorm:"embedded"`
	PanelRefs       `gorm:"embedded"`
	PDFFile         string    `gorm:"column:pdf_file;size:255" json:"pdf_file"`
	JobID           string    `gorm:"column:job_id;size:36;index" json:"job_id"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	OwnerID         *uint     `gorm:"column:owner_id;index" json:"owner_id,omitempty"`
}

func (ApplicationDefense) TableName() string {
	return "application_defenses"
}

type PanelDefense struct {
	ID            uint    `gorm:"primaryKey;column:id" json:"id"`
	FirstName     *string `gorm:"column:first_name;size:255" json:"first_name,omitempty"`
	LastName      *string `gorm:"column:last_name;size:255" json:"last_name,omitempty"`
	ResearchTitle string  `gorm:"column:research_title;type:text" json:"research_title"`
	Researchers   `gorm:"embedded"`
	PanelRefs     `gorm:"embedded"`
	DocxFile      string    `gorm:"column:docx_file;size:255" json:"docx_file"`
	PDFFile       string    `gorm:"column:pdf_file;size:255" json:"pdf_file"`
	JobID         string    `gorm:"column:job_id;size:36;index" json:"job_id"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	OwnerID       *uint     `gorm:"column:owner_id;index" json:"owner_id,omitempty"`
}

func (PanelDefense) TableName() string {
	return "panel_defenses"
}
