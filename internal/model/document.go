package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Document is metadata for an uploaded file. The binary payload lives in the
// blob store keyed by FilePath; the row and the blob are deleted together.
type Document struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	JobID  uuid.UUID `gorm:"type:uuid;not null;index" json:"job_id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`

	FileName string       `gorm:"type:text;not null" json:"file_name"`
	FilePath string       `gorm:"type:text;not null" json:"file_path"`
	FileSize int64        `json:"file_size"`
	DocType  DocumentType `gorm:"type:text;not null;column:document_type" json:"document_type"`

	// IsPrimary marks the first uploaded document of its type.
	IsPrimary bool `json:"is_primary"`

	UploadedAt time.Time `gorm:"type:timestamp" json:"uploaded_at"`
}

// TableName pins the storage table name.
func (Document) TableName() string { return "job_documents" }

// BeforeCreate assigns an id and stamps the upload time.
func (d *Document) BeforeCreate(_ *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.UploadedAt.IsZero() {
		d.UploadedAt = time.Now()
	}
	return nil
}

func init() {
	MigrateAble = append(MigrateAble, &Document{})
}
