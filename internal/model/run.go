package model

import (
	"time"
)

// RunStatus represents the current state of a suitability run.
type RunStatus string

const (
	RunStatusQueued    RunStatus = "queued"
	RunStatusAligning  RunStatus = "aligning"
	RunStatusCombining RunStatus = "combining"
	RunStatusEncoding  RunStatus = "encoding"
	RunStatusComplete  RunStatus = "complete"
	RunStatusFailed    RunStatus = "failed"
)

// Run represents a single suitability computation.
type Run struct {
	ID        string     `json:"id"`
	Datasets  []string   `json:"datasets"`
	Status    RunStatus  `json:"status"`
	Result    *RunResult `json:"result,omitempty"`
	Error     string     `json:"error,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// RunResult holds the final outcome of a run.
type RunResult struct {
	URL        string  `json:"url"`
	Summary    Summary `json:"summary"`
	DurationMs int64   `json:"duration_ms"`
}

// Summary counts the samples of a suitability grid by class.
type Summary struct {
	Height     int `json:"height"`
	Width      int `json:"width"`
	Suitable   int `json:"suitable"`
	Unsuitable int `json:"unsuitable"`
	NoData     int `json:"nodata"`
}

// SuitableFraction is the share of valid samples that are suitable.
func (s Summary) SuitableFraction() float64 {
	valid := s.Suitable + s.Unsuitable
	if valid == 0 {
		return 0
	}
	return float64(s.Suitable) / float64(valid)
}
