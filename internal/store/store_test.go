package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"jobtrail-backend/internal/apperr"
	"jobtrail-backend/internal/database"
	"jobtrail-backend/internal/model"
)

func newFixture(t *testing.T) (*Stores, *MemoryBus) {
	t.Helper()
	db, err := database.GetTestDB()
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	bus := NewMemoryBus()
	t.Cleanup(bus.Close)
	return New(db, bus), bus
}

func recvEvent(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev, ok := <-ch:
		if !ok {
			t.Fatal("event channel closed")
		}
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change event")
	}
	return Event{}
}

func TestJobStore_insertPublishesEvent(t *testing.T) {
	s, bus := newFixture(t)
	owner := database.TestUser1.ID

	events, cancel := bus.Subscribe(TableJobs, Filter{OwnerID: owner})
	defer cancel()

	job := model.Job{UserID: owner, Status: model.StatusSaved, EditableJobInfo: model.EditableJobInfo{CompanyName: "Acme", JobTitle: "Dev"}}
	assert.NoError(t, s.Jobs.Insert(context.Background(), &job))

	ev := recvEvent(t, events)
	assert.Equal(t, EventInsert, ev.Type)
	assert.Equal(t, TableJobs, ev.Table)
	assert.Equal(t, job.ID, ev.RowID)

	var decoded model.Job
	assert.NoError(t, ev.Decode(&decoded))
	assert.Equal(t, "Acme", decoded.CompanyName)
}

func TestJobStore_updateIsOwnerScoped(t *testing.T) {
	s, _ := newFixture(t)
	owner := database.TestUser1.ID

	job := model.Job{UserID: owner, Status: model.StatusSaved, EditableJobInfo: model.EditableJobInfo{CompanyName: "Acme", JobTitle: "Dev"}}
	assert.NoError(t, s.Jobs.Insert(context.Background(), &job))

	_, err := s.Jobs.Update(context.Background(), database.TestUser2.ID, job.ID, map[string]interface{}{"location": "Berlin"})
	assert.True(t, apperr.IsNotFound(err), "foreign owner must not see the row")

	updated, err := s.Jobs.Update(context.Background(), owner, job.ID, map[string]interface{}{"location": "Berlin"})
	assert.NoError(t, err)
	if assert.NotNil(t, updated.Location) {
		assert.Equal(t, "Berlin", *updated.Location)
	}
	assert.False(t, updated.UpdatedAt.Before(job.UpdatedAt))
}

func TestJobStore_listOrderedNewestFirst(t *testing.T) {
	s, _ := newFixture(t)
	owner := database.TestUser1.ID
	ctx := context.Background()

	older := model.Job{UserID: owner, Status: model.StatusSaved, EditableJobInfo: model.EditableJobInfo{CompanyName: "Old", JobTitle: "Dev"}, CreatedAt: time.Now().Add(-time.Hour)}
	newer := model.Job{UserID: owner, Status: model.StatusSaved, EditableJobInfo: model.EditableJobInfo{CompanyName: "New", JobTitle: "Dev"}, CreatedAt: time.Now()}
	assert.NoError(t, s.Jobs.Insert(ctx, &older))
	assert.NoError(t, s.Jobs.Insert(ctx, &newer))

	// another owner's job never shows up
	foreign := model.Job{UserID: database.TestUser2.ID, Status: model.StatusSaved, EditableJobInfo: model.EditableJobInfo{CompanyName: "Foreign", JobTitle: "Dev"}}
	assert.NoError(t, s.Jobs.Insert(ctx, &foreign))

	jobs, err := s.Jobs.List(ctx, owner)
	assert.NoError(t, err)
	if assert.Len(t, jobs, 2) {
		assert.Equal(t, "New", jobs[0].CompanyName)
		assert.Equal(t, "Old", jobs[1].CompanyName)
	}
}

func TestJobStore_deleteCascades(t *testing.T) {
	s, bus := newFixture(t)
	owner := database.TestUser1.ID
	ctx := context.Background()

	job := model.Job{UserID: owner, Status: model.StatusApplied, EditableJobInfo: model.EditableJobInfo{CompanyName: "Acme", JobTitle: "Dev"}}
	assert.NoError(t, s.Jobs.Insert(ctx, &job))
	assert.NoError(t, s.Notes.Insert(ctx, &model.Note{JobID: job.ID, UserID: owner, Content: "call back"}))
	assert.NoError(t, s.History.Insert(ctx, &model.StatusHistory{JobID: job.ID, UserID: owner, ToStatus: model.StatusApplied}))

	events, cancel := bus.Subscribe(TableJobs, Filter{OwnerID: owner})
	defer cancel()

	assert.NoError(t, s.Jobs.Delete(ctx, owner, job.ID))

	ev := recvEvent(t, events)
	assert.Equal(t, EventDelete, ev.Type)
	assert.Equal(t, job.ID, ev.RowID)

	notes, err := s.Notes.List(ctx, owner, job.ID)
	assert.NoError(t, err)
	assert.Empty(t, notes)
	history, err := s.History.List(ctx, owner, job.ID)
	assert.NoError(t, err)
	assert.Empty(t, history)
}

func TestHistoryStore_orderedNewestFirst(t *testing.T) {
	s, _ := newFixture(t)
	owner := database.TestUser1.ID
	ctx := context.Background()

	job := model.Job{UserID: owner, Status: model.StatusSaved, EditableJobInfo: model.EditableJobInfo{CompanyName: "Acme", JobTitle: "Dev"}}
	assert.NoError(t, s.Jobs.Insert(ctx, &job))

	first := model.StatusHistory{JobID: job.ID, UserID: owner, ToStatus: model.StatusSaved, ChangedAt: time.Now().Add(-time.Minute)}
	from := model.StatusSaved
	second := model.StatusHistory{JobID: job.ID, UserID: owner, FromStatus: &from, ToStatus: model.StatusApplied, ChangedAt: time.Now()}
	assert.NoError(t, s.History.Insert(ctx, &first))
	assert.NoError(t, s.History.Insert(ctx, &second))

	entries, err := s.History.List(ctx, owner, job.ID)
	assert.NoError(t, err)
	if assert.Len(t, entries, 2) {
		assert.Equal(t, model.StatusApplied, entries[0].ToStatus)
		assert.Nil(t, entries[1].FromStatus)
	}
}

func TestMemoryBus_filterAndCancel(t *testing.T) {
	bus := NewMemoryBus()
	defer bus.Close()
	owner := database.TestUser1.ID

	mine, cancelMine := bus.Subscribe(TableNotes, Filter{OwnerID: owner})
	other, cancelOther := bus.Subscribe(TableNotes, Filter{OwnerID: database.TestUser2.ID})
	defer cancelOther()

	ev := Event{Type: EventInsert, Table: TableNotes, OwnerID: owner}
	assert.NoError(t, bus.Publish(context.Background(), ev))

	got := recvEvent(t, mine)
	assert.Equal(t, owner, got.OwnerID)

	select {
	case unexpected := <-other:
		t.Fatalf("filtered subscriber received %+v", unexpected)
	case <-time.After(50 * time.Millisecond):
	}

	// cancel closes the channel and later publishes are not delivered
	cancelMine()
	_, open := <-mine
	assert.False(t, open)
}
