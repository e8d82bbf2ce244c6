package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"jobtrail-backend/internal/apperr"
	"jobtrail-backend/internal/database"
	"jobtrail-backend/internal/model"
)

// DocumentStore persists Document metadata rows. The binary payload lives in
// the blob store, keyed by the row's FilePath.
type DocumentStore struct {
	db  *database.DBInstance
	bus Bus
}

// List fetches the documents of one job, owner-scoped, newest upload first.
func (s *DocumentStore) List(ctx context.Context, owner, jobID uuid.UUID) ([]model.Document, error) {
	var docs []model.Document
	q, arg := ownerScope(owner)
	err := s.db.WithContext(ctx).
		Where(q, arg).
		Where("job_id = ?", jobID).
		Order("uploaded_at DESC").
		Find(&docs).Error
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// Get fetches one document by id, owner-scoped.
func (s *DocumentStore) Get(ctx context.Context, owner, id uuid.UUID) (*model.Document, error) {
	var doc model.Document
	q, arg := ownerScope(owner)
	err := s.db.WithContext(ctx).Where(q, arg).Where("id = ?", id).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &apperr.NotFoundError{Entity: "document", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// CountByType counts the job's existing documents of one type. Used to mark
// the first upload of a type as primary.
func (s *DocumentStore) CountByType(ctx context.Context, owner, jobID uuid.UUID, docType model.DocumentType) (int64, error) {
	var count int64
	q, arg := ownerScope(owner)
	err := s.db.WithContext(ctx).
		Model(&model.Document{}).
		Where(q, arg).
		Where("job_id = ?", jobID).
		Where("document_type = ?", docType).
		Count(&count).Error
	return count, err
}

// Insert writes a new document metadata row.
func (s *DocumentStore) Insert(ctx context.Context, doc *model.Document) error {
	if err := s.db.WithContext(ctx).Create(doc).Error; err != nil {
		return err
	}
	publish(ctx, s.bus, Event{
		Type:    EventInsert,
		Table:   TableDocuments,
		OwnerID: doc.UserID,
		JobID:   doc.JobID,
		RowID:   doc.ID,
	}, doc)
	return nil
}

// Delete removes one document metadata row, owner-scoped.
func (s *DocumentStore) Delete(ctx context.Context, owner, id uuid.UUID) error {
	q, arg := ownerScope(owner)
	res := s.db.WithContext(ctx).Where(q, arg).Where("id = ?", id).Delete(&model.Document{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &apperr.NotFoundError{Entity: "document", ID: id}
	}
	publish(ctx, s.bus, Event{
		Type:    EventDelete,
		Table:   TableDocuments,
		OwnerID: owner,
		RowID:   id,
	}, nil)
	return nil
}
