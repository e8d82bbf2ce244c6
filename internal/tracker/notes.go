package tracker

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"jobtrail-backend/internal/apperr"
	"jobtrail-backend/internal/model"
	"jobtrail-backend/internal/store"
)

// NoteCollection owns the cached notes of a single job. Scoped by job id at
// construction; one instance per open job view.
type NoteCollection struct {
	owner uuid.UUID
	jobID uuid.UUID
	notes *store.NoteStore
	bus   store.Bus

	mu   sync.Mutex
	byID map[uuid.UUID]model.Note

	cancelFeed func()
	done       chan struct{}
}

// NewNoteCollection builds a note manager for one job.
func NewNoteCollection(s *store.Stores, owner, jobID uuid.UUID) *NoteCollection {
	return &NoteCollection{
		owner: owner,
		jobID: jobID,
		notes: s.Notes,
		bus:   s.Bus,
		byID:  make(map[uuid.UUID]model.Note),
	}
}

// Load fetches the job's notes. On failure the cache is left empty.
func (c *NoteCollection) Load(ctx context.Context) error {
	if c.owner == uuid.Nil {
		return apperr.ErrNotAuthenticated
	}

	notes, err := c.notes.List(ctx, c.owner, c.jobID)
	if err != nil {
		c.mu.Lock()
		c.byID = make(map[uuid.UUID]model.Note)
		c.mu.Unlock()
		return &apperr.RemoteError{Op: "load notes", Err: err}
	}

	fresh := make(map[uuid.UUID]model.Note, len(notes))
	for _, n := range notes {
		fresh[n.ID] = n
	}
	c.mu.Lock()
	c.byID = fresh
	c.mu.Unlock()
	return nil
}

// Start subscribes to the notes change feed scoped to this job.
func (c *NoteCollection) Start() {
	events, cancel := c.bus.Subscribe(store.TableNotes, store.Filter{JobID: c.jobID})
	c.cancelFeed = cancel
	c.done = make(chan struct{})

	go func() {
		defer close(c.done)
		for ev := range events {
			c.applyEvent(ev)
		}
	}()
}

// Unsubscribe stops applying change events for this view. In-flight writes
// complete regardless.
func (c *NoteCollection) Unsubscribe() {
	if c.cancelFeed != nil {
		c.cancelFeed()
		<-c.done
		c.cancelFeed = nil
	}
}

// Snapshot returns the cached notes, newest first.
func (c *NoteCollection) Snapshot() []model.Note {
	c.mu.Lock()
	notes := make([]model.Note, 0, len(c.byID))
	for _, n := range c.byID {
		notes = append(notes, n)
	}
	c.mu.Unlock()

	sort.Slice(notes, func(i, k int) bool {
		if notes[i].CreatedAt.Equal(notes[k].CreatedAt) {
			return notes[i].ID.String() > notes[k].ID.String()
		}
		return notes[i].CreatedAt.After(notes[k].CreatedAt)
	})
	return notes
}

// Create trims content and persists a new note. Content that is empty after
// trimming is rejected before any write; category defaults to general.
func (c *NoteCollection) Create(ctx context.Context, content string, category model.NoteCategory) (*model.Note, error) {
	if c.owner == uuid.Nil {
		return nil, apperr.ErrNotAuthenticated
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, &apperr.ValidationError{Field: "content", Reason: "must not be empty"}
	}
	if len(content) > model.MaxNotesLen {
		return nil, &apperr.ValidationError{Field: "content", Reason: fmt.Sprintf("longer than %d characters", model.MaxNotesLen)}
	}
	if category == "" {
		category = model.CategoryGeneral
	}
	if !category.Valid() {
		return nil, &apperr.ValidationError{Field: "category", Reason: fmt.Sprintf("unknown category %q", category)}
	}

	note := model.Note{
		JobID:    c.jobID,
		UserID:   c.owner,
		Content:  content,
		Category: category,
	}
	if err := c.notes.Insert(ctx, &note); err != nil {
		return nil, &apperr.RemoteError{Op: "create note", Err: err}
	}

	c.mu.Lock()
	c.byID[note.ID] = note
	c.mu.Unlock()
	return &note, nil
}

// Delete removes a note permanently.
func (c *NoteCollection) Delete(ctx context.Context, noteID uuid.UUID) error {
	if c.owner == uuid.Nil {
		return apperr.ErrNotAuthenticated
	}

	if err := c.notes.Delete(ctx, c.owner, c.jobID, noteID); err != nil {
		if apperr.IsNotFound(err) {
			return err
		}
		return &apperr.RemoteError{Op: "delete note", Err: err}
	}

	c.mu.Lock()
	delete(c.byID, noteID)
	c.mu.Unlock()
	return nil
}

// applyEvent reconciles one observed note change. Inserts land at the front
// of the snapshot order because the sort is newest first.
func (c *NoteCollection) applyEvent(ev store.Event) {
	switch ev.Type {
	case store.EventInsert, store.EventUpdate:
		var note model.Note
		if err := ev.Decode(&note); err != nil {
			log.Printf("tracker: undecodable %s event for note %s: %v", ev.Type, ev.RowID, err)
			return
		}
		if note.UserID != c.owner || note.JobID != c.jobID {
			return
		}
		c.mu.Lock()
		c.byID[note.ID] = note
		c.mu.Unlock()

	case store.EventDelete:
		c.mu.Lock()
		delete(c.byID, ev.RowID)
		c.mu.Unlock()
	}
}
