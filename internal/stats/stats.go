// Package stats computes derived statistics over a snapshot of the job
// collection. Pure: same snapshot in, same numbers out, input untouched.
package stats

import (
	"jobtrail-backend/internal/model"
)

// minSourceTotal is the noise floor: a source needs at least this many jobs
// before it counts toward best/worst ranking.
const minSourceTotal = 2

// SourceStats holds the per-source breakdown.
type SourceStats struct {
	Total        int `json:"total"`
	Applied      int `json:"applied"`
	Interviewing int `json:"interviewing"`
	Offered      int `json:"offered"`
	Accepted     int `json:"accepted"`
}

// SourceRate names a source together with its (offered+accepted)/total
// percentage.
type SourceRate struct {
	Source model.JobSource `json:"source"`
	Rate   float64         `json:"rate"`
}

// Stats is the full aggregation over one job collection snapshot.
type Stats struct {
	Total       int                               `json:"total"`
	ByStatus    map[model.JobStatus]int           `json:"by_status"`
	BySource    map[model.JobSource]*SourceStats  `json:"by_source"`
	SuccessRate float64                           `json:"success_rate"`
	BestSource  *SourceRate                       `json:"best_source"`
	WorstSource *SourceRate                       `json:"worst_source"`
}

// Compute aggregates jobs. Every enumerated status and source appears in the
// maps even when its count is zero. Best/worst ties resolve to the source
// encountered first in canonical enumeration order.
func Compute(jobs []model.Job) Stats {
	byStatus := make(map[model.JobStatus]int, len(model.AllJobStatuses))
	for _, s := range model.AllJobStatuses {
		byStatus[s] = 0
	}
	bySource := make(map[model.JobSource]*SourceStats, len(model.AllJobSources))
	for _, s := range model.AllJobSources {
		bySource[s] = &SourceStats{}
	}

	for _, job := range jobs {
		byStatus[job.Status]++

		if job.Source == nil {
			continue
		}
		src, ok := bySource[*job.Source]
		if !ok {
			continue
		}
		src.Total++
		switch job.Status {
		case model.StatusApplied:
			src.Applied++
		case model.StatusInterviewing:
			src.Interviewing++
		case model.StatusOffered:
			src.Offered++
		case model.StatusAccepted:
			src.Accepted++
		}
	}

	successRate := 0.0
	totalApplied := len(jobs) - byStatus[model.StatusSaved]
	if totalApplied > 0 {
		successful := byStatus[model.StatusOffered] + byStatus[model.StatusAccepted]
		successRate = float64(successful) / float64(totalApplied) * 100
	}

	var best, worst *SourceRate
	for _, source := range model.AllJobSources {
		data := bySource[source]
		if data.Total < minSourceTotal {
			continue
		}
		rate := float64(data.Offered+data.Accepted) / float64(data.Total) * 100
		if best == nil || rate > best.Rate {
			best = &SourceRate{Source: source, Rate: rate}
		}
		if worst == nil || rate < worst.Rate {
			worst = &SourceRate{Source: source, Rate: rate}
		}
	}

	return Stats{
		Total:       len(jobs),
		ByStatus:    byStatus,
		BySource:    bySource,
		SuccessRate: successRate,
		BestSource:  best,
		WorstSource: worst,
	}
}
