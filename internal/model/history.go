package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StatusHistory is one append-only audit record of a status transition.
// FromStatus is nil only on the record written at job creation. No code in
// this repository updates or deletes a history row once written.
type StatusHistory struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	JobID  uuid.UUID `gorm:"type:uuid;not null;index" json:"job_id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`

	FromStatus *JobStatus `gorm:"type:text" json:"from_status"`
	ToStatus   JobStatus  `gorm:"type:text;not null" json:"to_status"`
	Reason     *string    `gorm:"type:text" json:"reason,omitempty"`

	ChangedAt time.Time `gorm:"type:timestamp" json:"changed_at"`
}

// TableName pins the storage table name.
func (StatusHistory) TableName() string { return "job_status_history" }

// BeforeCreate assigns an id and stamps the change time.
func (h *StatusHistory) BeforeCreate(_ *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	if h.ChangedAt.IsZero() {
		h.ChangedAt = time.Now()
	}
	return nil
}

func init() {
	MigrateAble = append(MigrateAble, &StatusHistory{})
}
