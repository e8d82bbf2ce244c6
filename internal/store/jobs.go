package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"jobtrail-backend/internal/apperr"
	"jobtrail-backend/internal/database"
	"jobtrail-backend/internal/model"
)

// JobStore persists Job rows, owner-scoped, and publishes a change event
// after every committed write.
type JobStore struct {
	db  *database.DBInstance
	bus Bus
}

// List fetches all jobs of the owner, newest first.
func (s *JobStore) List(ctx context.Context, owner uuid.UUID) ([]model.Job, error) {
	var jobs []model.Job
	q, arg := ownerScope(owner)
	err := s.db.WithContext(ctx).
		Where(q, arg).
		Order("created_at DESC").
		Find(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

// Get fetches one job by id, owner-scoped.
func (s *JobStore) Get(ctx context.Context, owner, id uuid.UUID) (*model.Job, error) {
	var job model.Job
	q, arg := ownerScope(owner)
	err := s.db.WithContext(ctx).Where(q, arg).Where("id = ?", id).First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &apperr.NotFoundError{Entity: "job", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// Insert writes a new job row. The owner comes from job.UserID.
func (s *JobStore) Insert(ctx context.Context, job *model.Job) error {
	if err := s.db.WithContext(ctx).Create(job).Error; err != nil {
		return err
	}
	publish(ctx, s.bus, Event{
		Type:    EventInsert,
		Table:   TableJobs,
		OwnerID: job.UserID,
		JobID:   job.ID,
		RowID:   job.ID,
	}, job)
	return nil
}

// Update applies a column patch to one job, owner-scoped, and returns the
// reloaded row. A patch that matches no row yields NotFoundError.
func (s *JobStore) Update(ctx context.Context, owner, id uuid.UUID, patch map[string]interface{}) (*model.Job, error) {
	if _, ok := patch["updated_at"]; !ok {
		patch["updated_at"] = time.Now()
	}
	q, arg := ownerScope(owner)
	res := s.db.WithContext(ctx).
		Model(&model.Job{}).
		Where(q, arg).
		Where("id = ?", id).
		Updates(patch)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, &apperr.NotFoundError{Entity: "job", ID: id}
	}

	job, err := s.Get(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	publish(ctx, s.bus, Event{
		Type:    EventUpdate,
		Table:   TableJobs,
		OwnerID: owner,
		JobID:   id,
		RowID:   id,
	}, job)
	return job, nil
}

// Delete removes one job row, owner-scoped, cascading to its notes, history
// and document rows in one transaction. Callers above the store never
// orchestrate per-child deletes.
func (s *JobStore) Delete(ctx context.Context, owner, id uuid.UUID) error {
	q, arg := ownerScope(owner)
	var affected int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, child := range []interface{}{&model.Note{}, &model.StatusHistory{}, &model.Document{}} {
			if err := tx.Where(q, arg).Where("job_id = ?", id).Delete(child).Error; err != nil {
				return err
			}
		}
		res := tx.Where(q, arg).Where("id = ?", id).Delete(&model.Job{})
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return &apperr.NotFoundError{Entity: "job", ID: id}
	}
	publish(ctx, s.bus, Event{
		Type:    EventDelete,
		Table:   TableJobs,
		OwnerID: owner,
		JobID:   id,
		RowID:   id,
	}, nil)
	return nil
}
