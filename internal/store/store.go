package store

import (
	"context"
	"encoding/json"
	"log"

	"github.com/google/uuid"

	"jobtrail-backend/internal/database"
)

// Stores bundles the typed record stores sharing one database handle and
// one change-event bus.
type Stores struct {
	Jobs      *JobStore
	Notes     *NoteStore
	History   *HistoryStore
	Documents *DocumentStore
	Bus       Bus
}

// New builds the store set on top of db, publishing change events on bus.
func New(db *database.DBInstance, bus Bus) *Stores {
	return &Stores{
		Jobs:      &JobStore{db: db, bus: bus},
		Notes:     &NoteStore{db: db, bus: bus},
		History:   &HistoryStore{db: db, bus: bus},
		Documents: &DocumentStore{db: db, bus: bus},
		Bus:       bus,
	}
}

// publish emits a change event for a committed write. The write already
// stands, so a publish failure is logged, not surfaced.
func publish(ctx context.Context, bus Bus, ev Event, row interface{}) {
	if row != nil {
		raw, err := json.Marshal(row)
		if err != nil {
			log.Printf("store: failed to encode %s row for event: %v", ev.Table, err)
			return
		}
		ev.Row = raw
	}
	if err := bus.Publish(ctx, ev); err != nil {
		log.Printf("store: failed to publish %s event on %s: %v", ev.Type, ev.Table, err)
	}
}

// ownerScope is the owner equality filter every query carries. Ownership is
// enforced here, on the caller side, not assumed from the database.
func ownerScope(owner uuid.UUID) (string, uuid.UUID) {
	return "user_id = ?", owner
}
