package model

// JobStatus is the position of a tracked application in its lifecycle.
type JobStatus string

// Enumerated job statuses, in canonical order.
const (
	StatusSaved        JobStatus = "saved"
	StatusApplied      JobStatus = "applied"
	StatusInterviewing JobStatus = "interviewing"
	StatusOffered      JobStatus = "offered"
	StatusAccepted     JobStatus = "accepted"
	StatusRejected     JobStatus = "rejected"
	StatusWithdrawn    JobStatus = "withdrawn"
)

// AllJobStatuses lists every status in canonical order.
var AllJobStatuses = []JobStatus{
	StatusSaved,
	StatusApplied,
	StatusInterviewing,
	StatusOffered,
	StatusAccepted,
	StatusRejected,
	StatusWithdrawn,
}

// validTransitions is the legal transition table for the job lifecycle.
// accepted is terminal; rejected and withdrawn each keep a single recovery
// edge back to applied.
var validTransitions = map[JobStatus][]JobStatus{
	StatusSaved:        {StatusApplied, StatusRejected, StatusWithdrawn},
	StatusApplied:      {StatusInterviewing, StatusRejected, StatusWithdrawn},
	StatusInterviewing: {StatusOffered, StatusRejected, StatusWithdrawn},
	StatusOffered:      {StatusAccepted, StatusRejected, StatusWithdrawn},
	StatusAccepted:     {},
	StatusRejected:     {StatusApplied},
	StatusWithdrawn:    {StatusApplied},
}

// Valid reports whether s is a member of the enumerated status set.
func (s JobStatus) Valid() bool {
	_, ok := validTransitions[s]
	return ok
}

// ValidTransitions returns the statuses reachable from s. The returned slice
// is a copy, callers may not mutate the table through it. Unknown statuses
// yield an empty set.
func ValidTransitions(s JobStatus) []JobStatus {
	next, ok := validTransitions[s]
	if !ok {
		return nil
	}
	out := make([]JobStatus, len(next))
	copy(out, next)
	return out
}

// CanTransition reports whether moving from one status to another is legal.
func CanTransition(from, to JobStatus) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ColorKey returns the stable styling key clients map to their theme.
func (s JobStatus) ColorKey() string {
	switch s {
	case StatusSaved:
		return "gray"
	case StatusApplied:
		return "blue"
	case StatusInterviewing:
		return "purple"
	case StatusOffered:
		return "green"
	case StatusAccepted:
		return "emerald"
	case StatusRejected:
		return "red"
	case StatusWithdrawn:
		return "slate"
	}
	return "gray"
}

// Label returns the display label for a status.
func (s JobStatus) Label() string {
	switch s {
	case StatusSaved:
		return "Saved"
	case StatusApplied:
		return "Applied"
	case StatusInterviewing:
		return "Interviewing"
	case StatusOffered:
		return "Offered"
	case StatusAccepted:
		return "Accepted"
	case StatusRejected:
		return "Rejected"
	case StatusWithdrawn:
		return "Withdrawn"
	}
	return string(s)
}
