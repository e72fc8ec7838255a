package cytometry

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	IngestStatusRunning   = "running"
	IngestStatusSucceeded = "succeeded"
	IngestStatusFailed    = "failed"
	IngestStatusSkipped   = "skipped"
)

// IngestRun is the audit record of one ingestion attempt.
type IngestRun struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Source           string         `gorm:"column:source;not null" json:"source"`
	Status           string         `gorm:"column:status;not null;index" json:"status"`
	Rows             int            `gorm:"column:rows;not null;default:0" json:"rows"`
	Projects         int            `gorm:"column:projects;not null;default:0" json:"projects"`
	Subjects         int            `gorm:"column:subjects;not null;default:0" json:"subjects"`
	Samples          int            `gorm:"column:samples;not null;default:0" json:"samples"`
	SubjectConflicts int            `gorm:"column:subject_conflicts;not null;default:0" json:"subject_conflicts"`
	Error            string         `gorm:"column:error" json:"error,omitempty"`
	Details          datatypes.JSON `gorm:"column:details" json:"details,omitempty"`
	StartedAt        time.Time      `gorm:"column:started_at;not null;index" json:"started_at"`
	FinishedAt       *time.Time     `gorm:"column:finished_at" json:"finished_at,omitempty"`
}

func (IngestRun) TableName() string { return "ingest_run" }

func (r *IngestRun) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.StartedAt.IsZero() {
		r.StartedAt = time.Now().UTC()
	}
	return nil
}
