// Package store wraps the database with typed, owner-scoped record stores.
// Every committed write is published as a change event on a Bus, which is
// how open sessions keep their cached collections synchronized.
package store

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
)

// Table names carried on change events.
const (
	TableJobs      = "jobs"
	TableNotes     = "job_notes"
	TableHistory   = "job_status_history"
	TableDocuments = "job_documents"
)

// EventType is the kind of change a row went through.
type EventType string

// Change event kinds.
const (
	EventInsert EventType = "insert"
	EventUpdate EventType = "update"
	EventDelete EventType = "delete"
)

// Event is one observed row change. Row carries the full row JSON for
// inserts and updates; deletes carry only the ids.
type Event struct {
	Type    EventType       `json:"type"`
	Table   string          `json:"table"`
	OwnerID uuid.UUID       `json:"owner_id"`
	JobID   uuid.UUID       `json:"job_id,omitempty"`
	RowID   uuid.UUID       `json:"row_id"`
	Row     json.RawMessage `json:"row,omitempty"`
}

// Decode unmarshals the row payload into dst.
func (e Event) Decode(dst interface{}) error {
	return json.Unmarshal(e.Row, dst)
}

// Filter scopes a subscription. The zero value matches everything on the
// subscribed table; a set OwnerID or JobID must match the event's.
type Filter struct {
	OwnerID uuid.UUID
	JobID   uuid.UUID
}

// Match reports whether ev falls inside the filter's scope.
func (f Filter) Match(ev Event) bool {
	if f.OwnerID != uuid.Nil && ev.OwnerID != f.OwnerID {
		return false
	}
	if f.JobID != uuid.Nil && ev.JobID != f.JobID {
		return false
	}
	return true
}

// Bus delivers change events to subscribers. Per-record delivery order
// matches commit order: stores publish synchronously after each committed
// write, and implementations must not reorder.
type Bus interface {
	// Publish delivers ev to every live subscription on ev.Table whose
	// filter matches.
	Publish(ctx context.Context, ev Event) error

	// Subscribe opens one logical subscription for a (table, scope) pair.
	// The returned cancel func tears the subscription down and closes the
	// channel; it must be called when the owning view is discarded.
	Subscribe(table string, f Filter) (<-chan Event, func())
}
