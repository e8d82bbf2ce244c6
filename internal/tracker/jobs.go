// Package tracker holds the collection managers: cached, owner-scoped views
// of records that apply local mutations optimistically and reconcile change
// events pushed by the store.
package tracker

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"jobtrail-backend/internal/apperr"
	"jobtrail-backend/internal/model"
	"jobtrail-backend/internal/store"
)

// JobInput carries the fields accepted when creating a job.
type JobInput struct {
	CompanyName    string           `json:"company_name"`
	JobTitle       string           `json:"job_title"`
	JobURL         *string          `json:"job_url,omitempty"`
	Status         model.JobStatus  `json:"status,omitempty"`
	Source         *model.JobSource `json:"source,omitempty"`
	SalaryMin      *float64         `json:"salary_min,omitempty"`
	SalaryMax      *float64         `json:"salary_max,omitempty"`
	Currency       string           `json:"currency,omitempty"`
	Location       *string          `json:"location,omitempty"`
	AppliedDate    *time.Time       `json:"applied_date,omitempty"`
	DeadlineDate   *time.Time       `json:"deadline_date,omitempty"`
	Notes          *string          `json:"notes,omitempty"`
	JobDescription *string          `json:"job_description,omitempty"`
	Tags           []string         `json:"tags,omitempty"`
}

// Change is a local notification: something in the cached collection moved,
// whether from a local mutation, a rollback or a reconciled remote event.
type Change struct {
	Type  store.EventType
	JobID uuid.UUID
	Job   *model.Job // nil on delete
}

// JobCollection owns the cached set of jobs of one identity. All mutation
// entry points funnel through its methods; the mutex serializes them with
// the reconciliation goroutine.
type JobCollection struct {
	owner   uuid.UUID
	jobs    *store.JobStore
	history *store.HistoryStore
	bus     store.Bus

	mu       sync.Mutex
	byID     map[uuid.UUID]model.Job
	inflight map[uuid.UUID]struct{}

	subMu   sync.Mutex
	subs    map[int]chan Change
	nextSub int

	cancelFeed func()
	done       chan struct{}
}

// NewJobCollection builds a manager for owner on top of the given stores.
// Call Load to populate it and Start to begin reconciling change events.
func NewJobCollection(s *store.Stores, owner uuid.UUID) *JobCollection {
	return &JobCollection{
		owner:    owner,
		jobs:     s.Jobs,
		history:  s.History,
		bus:      s.Bus,
		byID:     make(map[uuid.UUID]model.Job),
		inflight: make(map[uuid.UUID]struct{}),
		subs:     make(map[int]chan Change),
	}
}

// Load fetches every job of the owner and populates the cache. On failure
// the cache is left empty, never partially populated.
func (c *JobCollection) Load(ctx context.Context) error {
	if c.owner == uuid.Nil {
		return apperr.ErrNotAuthenticated
	}

	jobs, err := c.jobs.List(ctx, c.owner)
	if err != nil {
		c.mu.Lock()
		c.byID = make(map[uuid.UUID]model.Job)
		c.mu.Unlock()
		return &apperr.RemoteError{Op: "load jobs", Err: err}
	}

	fresh := make(map[uuid.UUID]model.Job, len(jobs))
	for _, j := range jobs {
		fresh[j.ID] = j
	}
	c.mu.Lock()
	c.byID = fresh
	c.mu.Unlock()
	return nil
}

// Start subscribes to the jobs change feed scoped to the owner and applies
// events until Close is called.
func (c *JobCollection) Start() {
	events, cancel := c.bus.Subscribe(store.TableJobs, store.Filter{OwnerID: c.owner})
	c.cancelFeed = cancel
	c.done = make(chan struct{})

	go func() {
		defer close(c.done)
		for ev := range events {
			c.applyEvent(ev)
		}
	}()
}

// Close tears the subscription down and waits for the reconciliation
// goroutine to drain. In-flight writes are not aborted.
func (c *JobCollection) Close() {
	if c.cancelFeed != nil {
		c.cancelFeed()
		<-c.done
	}
	c.subMu.Lock()
	defer c.subMu.Unlock()
	for id, ch := range c.subs {
		delete(c.subs, id)
		close(ch)
	}
}

// Changes subscribes to local change notifications. Consumers use it to
// re-render without touching the remote feed directly; tests use it to
// observe reconciliation.
func (c *JobCollection) Changes() (<-chan Change, func()) {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	id := c.nextSub
	c.nextSub++
	ch := make(chan Change, subNotifyBuffer)
	c.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			c.subMu.Lock()
			defer c.subMu.Unlock()
			if _, ok := c.subs[id]; ok {
				delete(c.subs, id)
				close(ch)
			}
		})
	}
	return ch, cancel
}

const subNotifyBuffer = 64

func (c *JobCollection) notify(change Change) {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	for _, ch := range c.subs {
		select {
		case ch <- change:
		default:
			// slow consumer loses the notification, the snapshot stays correct
		}
	}
}

// Snapshot returns the cached jobs ordered by creation time descending.
// The slice and its elements are copies.
func (c *JobCollection) Snapshot() []model.Job {
	c.mu.Lock()
	jobs := make([]model.Job, 0, len(c.byID))
	for _, j := range c.byID {
		jobs = append(jobs, j)
	}
	c.mu.Unlock()

	sort.Slice(jobs, func(i, k int) bool {
		if jobs[i].CreatedAt.Equal(jobs[k].CreatedAt) {
			return jobs[i].ID.String() > jobs[k].ID.String()
		}
		return jobs[i].CreatedAt.After(jobs[k].CreatedAt)
	})
	return jobs
}

// Get returns one cached job by id.
func (c *JobCollection) Get(id uuid.UUID) (model.Job, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	j, ok := c.byID[id]
	return j, ok
}

// validateInput checks the bounds against the trimmed values, since the
// trimmed string is what gets stored.
func validateInput(in JobInput) error {
	company := strings.TrimSpace(in.CompanyName)
	if company == "" {
		return &apperr.ValidationError{Field: "company_name", Reason: "must not be empty"}
	}
	if len(company) > model.MaxCompanyNameLen {
		return &apperr.ValidationError{Field: "company_name", Reason: fmt.Sprintf("longer than %d characters", model.MaxCompanyNameLen)}
	}
	title := strings.TrimSpace(in.JobTitle)
	if title == "" {
		return &apperr.ValidationError{Field: "job_title", Reason: "must not be empty"}
	}
	if len(title) > model.MaxJobTitleLen {
		return &apperr.ValidationError{Field: "job_title", Reason: fmt.Sprintf("longer than %d characters", model.MaxJobTitleLen)}
	}
	if in.Status != "" && !in.Status.Valid() {
		return &apperr.ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", in.Status)}
	}
	if in.Source != nil && !in.Source.Valid() {
		return &apperr.ValidationError{Field: "source", Reason: fmt.Sprintf("unknown source %q", *in.Source)}
	}
	if in.SalaryMin != nil && *in.SalaryMin < 0 {
		return &apperr.ValidationError{Field: "salary_min", Reason: "must not be negative"}
	}
	if in.SalaryMax != nil && *in.SalaryMax < 0 {
		return &apperr.ValidationError{Field: "salary_max", Reason: "must not be negative"}
	}
	if in.SalaryMin != nil && in.SalaryMax != nil && *in.SalaryMin > *in.SalaryMax {
		return &apperr.ValidationError{Field: "salary_min", Reason: "must not exceed salary_max"}
	}
	if in.Notes != nil && len(*in.Notes) > model.MaxNotesLen {
		return &apperr.ValidationError{Field: "notes", Reason: fmt.Sprintf("longer than %d characters", model.MaxNotesLen)}
	}
	if in.JobDescription != nil && len(*in.JobDescription) > model.MaxDescriptionLen {
		return &apperr.ValidationError{Field: "job_description", Reason: fmt.Sprintf("longer than %d characters", model.MaxDescriptionLen)}
	}
	return nil
}

// Create validates input, writes the job and appends the initial history
// record {from: nil, to: status}. The history write is best-effort audit: if
// it fails the job stands and a PartialFailureError is returned alongside it.
func (c *JobCollection) Create(ctx context.Context, in JobInput) (*model.Job, error) {
	if c.owner == uuid.Nil {
		return nil, apperr.ErrNotAuthenticated
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	status := in.Status
	if status == "" {
		status = model.StatusSaved
	}

	job := model.Job{
		UserID: c.owner,
		Status: status,
		EditableJobInfo: model.EditableJobInfo{
			CompanyName:    strings.TrimSpace(in.CompanyName),
			JobTitle:       strings.TrimSpace(in.JobTitle),
			JobURL:         in.JobURL,
			Source:         in.Source,
			SalaryMin:      in.SalaryMin,
			SalaryMax:      in.SalaryMax,
			Currency:       in.Currency,
			Location:       in.Location,
			AppliedDate:    in.AppliedDate,
			DeadlineDate:   in.DeadlineDate,
			Notes:          in.Notes,
			JobDescription: in.JobDescription,
			Tags:           in.Tags,
		},
	}

	if err := c.jobs.Insert(ctx, &job); err != nil {
		return nil, &apperr.RemoteError{Op: "create job", Err: err}
	}

	c.mu.Lock()
	c.byID[job.ID] = job
	c.mu.Unlock()
	c.notify(Change{Type: store.EventInsert, JobID: job.ID, Job: &job})

	entry := model.StatusHistory{
		JobID:    job.ID,
		UserID:   c.owner,
		ToStatus: status,
	}
	if err := c.history.Insert(ctx, &entry); err != nil {
		log.Printf("tracker: job %s created but initial history write failed: %v", job.ID, err)
		return &job, &apperr.PartialFailureError{Op: "create job", Err: err}
	}

	return &job, nil
}

// UpdateFields applies a direct field patch. Status never moves through
// here; ChangeStatus owns that path.
func (c *JobCollection) UpdateFields(ctx context.Context, id uuid.UUID, patch map[string]interface{}) (*model.Job, error) {
	if c.owner == uuid.Nil {
		return nil, apperr.ErrNotAuthenticated
	}
	if _, ok := patch["status"]; ok {
		return nil, &apperr.ValidationError{Field: "status", Reason: "status changes must go through the status operation"}
	}
	if _, ok := patch["user_id"]; ok {
		return nil, &apperr.ValidationError{Field: "user_id", Reason: "ownership is immutable"}
	}

	updated, err := c.jobs.Update(ctx, c.owner, id, patch)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, err
		}
		return nil, &apperr.RemoteError{Op: "update job", Err: err}
	}

	c.mu.Lock()
	c.byID[id] = *updated
	c.mu.Unlock()
	c.notify(Change{Type: store.EventUpdate, JobID: id, Job: updated})
	return updated, nil
}

// ChangeStatus moves a job through the lifecycle. The transition is checked
// against the policy before any write; the new status is applied optimistically
// and rolled back if the remote write fails. A second change on the same job
// while one is in flight is dropped with BusyError. Setting the current
// status again is a guarded no-op: no write, no history entry.
func (c *JobCollection) ChangeStatus(ctx context.Context, id uuid.UUID, to model.JobStatus, reason *string) (*model.Job, error) {
	if c.owner == uuid.Nil {
		return nil, apperr.ErrNotAuthenticated
	}
	if !to.Valid() {
		return nil, &apperr.ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", to)}
	}

	c.mu.Lock()
	cur, ok := c.byID[id]
	if !ok {
		c.mu.Unlock()
		return nil, &apperr.NotFoundError{Entity: "job", ID: id}
	}
	if cur.Status == to {
		c.mu.Unlock()
		return &cur, nil
	}
	if _, busy := c.inflight[id]; busy {
		c.mu.Unlock()
		return nil, &apperr.BusyError{JobID: id}
	}
	if !model.CanTransition(cur.Status, to) {
		c.mu.Unlock()
		return nil, &apperr.InvalidTransitionError{From: cur.Status, To: to}
	}

	// phase 1: snapshot, phase 2: optimistic apply + notify
	snapshot := cur
	optimistic := cur
	optimistic.Status = to
	optimistic.UpdatedAt = time.Now()
	c.byID[id] = optimistic
	c.inflight[id] = struct{}{}
	c.mu.Unlock()
	c.notify(Change{Type: store.EventUpdate, JobID: id, Job: &optimistic})

	// phase 3: confirm remotely, restore the snapshot on failure
	updated, err := c.jobs.Update(ctx, c.owner, id, map[string]interface{}{"status": to})

	c.mu.Lock()
	delete(c.inflight, id)
	if err != nil {
		c.byID[id] = snapshot
		c.mu.Unlock()
		c.notify(Change{Type: store.EventUpdate, JobID: id, Job: &snapshot})
		if apperr.IsNotFound(err) {
			return nil, err
		}
		return nil, &apperr.RemoteError{Op: "change status", Err: err}
	}
	c.byID[id] = *updated
	c.mu.Unlock()
	c.notify(Change{Type: store.EventUpdate, JobID: id, Job: updated})

	entry := model.StatusHistory{
		JobID:      id,
		UserID:     c.owner,
		FromStatus: &snapshot.Status,
		ToStatus:   to,
		Reason:     reason,
	}
	if herr := c.history.Insert(ctx, &entry); herr != nil {
		log.Printf("tracker: status of job %s changed but history write failed: %v", id, herr)
		return updated, &apperr.PartialFailureError{Op: "change status", Err: herr}
	}

	return updated, nil
}

// Delete removes a job. Dependent rows disappear through the database
// cascade; the manager does not orchestrate per-child deletes.
func (c *JobCollection) Delete(ctx context.Context, id uuid.UUID) error {
	if c.owner == uuid.Nil {
		return apperr.ErrNotAuthenticated
	}

	if err := c.jobs.Delete(ctx, c.owner, id); err != nil {
		if apperr.IsNotFound(err) {
			return err
		}
		return &apperr.RemoteError{Op: "delete job", Err: err}
	}

	c.mu.Lock()
	delete(c.byID, id)
	c.mu.Unlock()
	c.notify(Change{Type: store.EventDelete, JobID: id})
	return nil
}

// applyEvent reconciles one observed change into the cache. The event
// payload is treated as current truth for the row (last write wins), so
// applying the echo of an optimistic write converges to the same state.
func (c *JobCollection) applyEvent(ev store.Event) {
	switch ev.Type {
	case store.EventInsert, store.EventUpdate:
		var job model.Job
		if err := ev.Decode(&job); err != nil {
			log.Printf("tracker: undecodable %s event for job %s: %v", ev.Type, ev.RowID, err)
			return
		}
		if job.UserID != c.owner {
			return
		}
		c.mu.Lock()
		c.byID[job.ID] = job
		c.mu.Unlock()
		c.notify(Change{Type: ev.Type, JobID: job.ID, Job: &job})

	case store.EventDelete:
		c.mu.Lock()
		_, existed := c.byID[ev.RowID]
		delete(c.byID, ev.RowID)
		c.mu.Unlock()
		if existed {
			c.notify(Change{Type: store.EventDelete, JobID: ev.RowID})
		}
	}
}
