package store

import (
	"context"

	"github.com/google/uuid"

	"jobtrail-backend/internal/apperr"
	"jobtrail-backend/internal/database"
	"jobtrail-backend/internal/model"
)

// NoteStore persists Note rows scoped to one job and owner.
type NoteStore struct {
	db  *database.DBInstance
	bus Bus
}

// List fetches the notes of one job, owner-scoped, newest first.
func (s *NoteStore) List(ctx context.Context, owner, jobID uuid.UUID) ([]model.Note, error) {
	var notes []model.Note
	q, arg := ownerScope(owner)
	err := s.db.WithContext(ctx).
		Where(q, arg).
		Where("job_id = ?", jobID).
		Order("created_at DESC").
		Find(&notes).Error
	if err != nil {
		return nil, err
	}
	return notes, nil
}

// Insert writes a new note row.
func (s *NoteStore) Insert(ctx context.Context, note *model.Note) error {
	if err := s.db.WithContext(ctx).Create(note).Error; err != nil {
		return err
	}
	publish(ctx, s.bus, Event{
		Type:    EventInsert,
		Table:   TableNotes,
		OwnerID: note.UserID,
		JobID:   note.JobID,
		RowID:   note.ID,
	}, note)
	return nil
}

// Delete removes one note permanently, owner-scoped.
func (s *NoteStore) Delete(ctx context.Context, owner, jobID, noteID uuid.UUID) error {
	q, arg := ownerScope(owner)
	res := s.db.WithContext(ctx).
		Where(q, arg).
		Where("job_id = ?", jobID).
		Where("id = ?", noteID).
		Delete(&model.Note{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &apperr.NotFoundError{Entity: "note", ID: noteID}
	}
	publish(ctx, s.bus, Event{
		Type:    EventDelete,
		Table:   TableNotes,
		OwnerID: owner,
		JobID:   jobID,
		RowID:   noteID,
	}, nil)
	return nil
}
