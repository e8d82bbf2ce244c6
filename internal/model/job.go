package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Field length limits enforced before any write reaches the database.
const (
	MaxCompanyNameLen = 255
	MaxJobTitleLen    = 255
	MaxNotesLen       = 2000
	MaxDescriptionLen = 10000
)

// DefaultCurrency is applied when a job is created without a currency code.
const DefaultCurrency = "USD"

// EditableJobInfo holds the fields a user may set or patch directly.
// Status lives outside of it because status changes go through the
// transition policy, never through a plain field patch.
type EditableJobInfo struct {
	CompanyName    string         `gorm:"type:text;not null" json:"company_name"`
	JobTitle       string         `gorm:"type:text;not null" json:"job_title"`
	JobURL         *string        `gorm:"type:text" json:"job_url,omitempty"`
	Source         *JobSource     `gorm:"type:text" json:"source,omitempty"`
	SalaryMin      *float64       `json:"salary_min,omitempty"`
	SalaryMax      *float64       `json:"salary_max,omitempty"`
	Currency       string         `gorm:"type:text" json:"currency,omitempty"`
	Location       *string        `gorm:"type:text" json:"location,omitempty"`
	AppliedDate    *time.Time     `gorm:"type:timestamp" json:"applied_date,omitempty"`
	DeadlineDate   *time.Time     `gorm:"type:timestamp" json:"deadline_date,omitempty"`
	Notes          *string        `gorm:"type:text" json:"notes,omitempty"`
	JobDescription *string        `gorm:"type:text" json:"job_description,omitempty"`
	Tags           pq.StringArray `gorm:"type:text[]" json:"tags,omitempty"`
}

// Job is the gorm model for one tracked application. Dependent rows are
// removed by the database when the job is deleted.
type Job struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index;<-:create" json:"user_id"`

	EditableJobInfo `gorm:"embedded"`

	Status JobStatus `gorm:"type:text;not null" json:"status"`

	CreatedAt time.Time `gorm:"type:timestamp" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:timestamp" json:"updated_at"`

	History   []StatusHistory `gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE" json:"-"`
	JobNotes  []Note          `gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE" json:"-"`
	Documents []Document      `gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE" json:"-"`
}

// BeforeCreate assigns an id and fills defaults before the insert runs.
func (j *Job) BeforeCreate(_ *gorm.DB) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	if j.Status == "" {
		j.Status = StatusSaved
	}
	if j.Currency == "" {
		j.Currency = DefaultCurrency
	}
	return nil
}

func init() {
	MigrateAble = append(MigrateAble, &Job{})
}
