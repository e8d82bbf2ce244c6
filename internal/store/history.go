package store

import (
	"context"

	"github.com/google/uuid"

	"jobtrail-backend/internal/database"
	"jobtrail-backend/internal/model"
)

// HistoryStore appends and reads StatusHistory rows. The audit trail is
// append-only: there is no update or delete here on purpose.
type HistoryStore struct {
	db  *database.DBInstance
	bus Bus
}

// List fetches the status history of one job, owner-scoped, newest first.
func (s *HistoryStore) List(ctx context.Context, owner, jobID uuid.UUID) ([]model.StatusHistory, error) {
	var entries []model.StatusHistory
	q, arg := ownerScope(owner)
	err := s.db.WithContext(ctx).
		Where(q, arg).
		Where("job_id = ?", jobID).
		Order("changed_at DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Insert appends one audit record.
func (s *HistoryStore) Insert(ctx context.Context, entry *model.StatusHistory) error {
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return err
	}
	publish(ctx, s.bus, Event{
		Type:    EventInsert,
		Table:   TableHistory,
		OwnerID: entry.UserID,
		JobID:   entry.JobID,
		RowID:   entry.ID,
	}, entry)
	return nil
}
