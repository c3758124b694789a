// Package monitoring summarises the run ledger over a lookback window.
package monitoring

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/landsuit/internal/model"
	"github.com/sells-group/landsuit/internal/store"
)

// MetricsSnapshot holds a point-in-time view of recent suitability runs.
type MetricsSnapshot struct {
	Total    int     `json:"total"`
	Complete int     `json:"complete"`
	Failed   int     `json:"failed"`
	InFlight int     `json:"in_flight"`
	FailRate float64 `json:"fail_rate"`

	// Averages over complete runs.
	AvgDurationMs       float64 `json:"avg_duration_ms"`
	AvgSuitableFraction float64 `json:"avg_suitable_fraction"`
	AvgNoDataFraction   float64 `json:"avg_nodata_fraction"`

	// Datasets counts how many runs in the window used each dataset.
	Datasets map[string]int `json:"datasets"`

	LookbackHours int       `json:"lookback_hours"`
	CollectedAt   time.Time `json:"collected_at"`
}

// RunLister is the part of the store the collector reads.
type RunLister interface {
	ListRuns(ctx context.Context, filter store.RunFilter) ([]model.Run, error)
}

// Collector gathers metrics from the run ledger.
type Collector struct {
	runs RunLister
	now  func() time.Time
}

// NewCollector creates a new metrics collector.
func NewCollector(runs RunLister) *Collector {
	return &Collector{runs: runs, now: time.Now}
}

// Collect gathers a snapshot of run metrics over the given lookback window.
func (c *Collector) Collect(ctx context.Context, lookbackHours int) (*MetricsSnapshot, error) {
	now := c.now().UTC()
	snap := &MetricsSnapshot{
		Datasets:      map[string]int{},
		LookbackHours: lookbackHours,
		CollectedAt:   now,
	}

	runs, err := c.runs.ListRuns(ctx, store.RunFilter{
		CreatedAfter: now.Add(-time.Duration(lookbackHours) * time.Hour),
		Limit:        10000,
	})
	if err != nil {
		return nil, eris.Wrap(err, "monitoring: list runs")
	}

	snap.Total = len(runs)
	var totalDur int64
	var totalSuitable, totalNoData float64
	var withResult int

	for _, r := range runs {
		for _, id := range r.Datasets {
			snap.Datasets[id]++
		}
		switch r.Status {
		case model.RunStatusComplete:
			snap.Complete++
		case model.RunStatusFailed:
			snap.Failed++
			continue
		default:
			snap.InFlight++
			continue
		}
		if r.Result == nil {
			continue
		}
		withResult++
		totalDur += r.Result.DurationMs
		totalSuitable += r.Result.Summary.SuitableFraction()
		if n := r.Result.Summary.Height * r.Result.Summary.Width; n > 0 {
			totalNoData += float64(r.Result.Summary.NoData) / float64(n)
		}
	}

	if finished := snap.Complete + snap.Failed; finished > 0 {
		snap.FailRate = float64(snap.Failed) / float64(finished)
	}
	if withResult > 0 {
		snap.AvgDurationMs = float64(totalDur) / float64(withResult)
		snap.AvgSuitableFraction = totalSuitable / float64(withResult)
		snap.AvgNoDataFraction = totalNoData / float64(withResult)
	}
	return snap, nil
}
