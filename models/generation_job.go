package models

import (
	"time"

	"gorm.io/datatypes"
)

// JobStatus tracks how far a document generation got.
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRendered  JobStatus = "rendered"
	JobConverted JobStatus = "converted"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// Terminal reports whether no further step will run for the job.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

// GenerationJob is the saga record for one render/convert/persist run.
// File paths are relative to the media root.
type GenerationJob struct {
	ID          string            `gorm:"primaryKey;column:id;size:36" json:"id"`
	Kind        DocumentKind      `gorm:"column:kind;size:20;not null" json:"kind"`
	Status      JobStatus         `gorm:"column:status;size:20;not null;index" json:"status"`
	OwnerID     *uint             `gorm:"column:owner_id;index" json:"owner_id,omitempty"`
	Context     datatypes.JSONMap `gorm:"column:context" json:"context"`
	WorkingPath string            `gorm:"column:working_path;size:255" json:"working_path,omitempty"`
	DocxPath    string            `gorm:"column:docx_path;size:255" json:"docx_path,omitempty"`
	PDFPath     string            `gorm:"column:pdf_path;size:255" json:"pdf_path,omitempty"`
	RecordID    *uint             `gorm:"column:record_id" json:"record_id,omitempty"`
	Error       string            `gorm:"column:error;type:text" json:"error,omitempty"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime;index" json:"updated_at"`
}

func (GenerationJob) TableName() string {
	return "generation_jobs"
}
