package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Note is a timestamped annotation on a job. Notes are created and deleted,
// never edited in place.
type Note struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	JobID  uuid.UUID `gorm:"type:uuid;not null;index" json:"job_id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`

	Content  string       `gorm:"type:text;not null" json:"content"`
	Category NoteCategory `gorm:"type:text;not null" json:"category"`

	CreatedAt time.Time `gorm:"type:timestamp" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:timestamp" json:"updated_at"`
}

// TableName pins the storage table name.
func (Note) TableName() string { return "job_notes" }

// BeforeCreate assigns an id and the default category before the insert runs.
func (n *Note) BeforeCreate(_ *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.Category == "" {
		n.Category = CategoryGeneral
	}
	return nil
}

func init() {
	MigrateAble = append(MigrateAble, &Note{})
}
