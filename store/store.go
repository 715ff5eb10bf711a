// Package store persists suite runs and their raw timings.
package store

import (
	"context"
	"time"

	"github.com/ahmedtd/lcals/suite"
	"github.com/oklog/ulid/v2"
)

// NewRunID returns a new time-sortable run identifier.
func NewRunID() string {
	return ulid.Make().String()
}

// Run describes one invocation of the suite.
type Run struct {
	ID           string
	StartedAt    time.Time
	Precision    string
	ChecksumMode bool
	Platform     string

	// Config is the YAML configuration the run executed.
	Config string
}

// Timing is one stored loop measurement.
type Timing struct {
	RunID     string
	Pass      int
	Variant   string
	Loop      string
	Class     string
	Length    int
	Samples   int
	ElapsedNS int64
	Checksum  float64
}

// TimingFromResult converts a suite result for storage.
func TimingFromResult(r suite.Result) Timing {
	return Timing{
		RunID:     r.RunID,
		Pass:      r.Pass,
		Variant:   r.Variant.String(),
		Loop:      r.Loop.String(),
		Class:     r.Class.String(),
		Length:    r.Length,
		Samples:   r.Samples,
		ElapsedNS: r.Elapsed.Nanoseconds(),
		Checksum:  r.Checksum,
	}
}

// Store defines the persistence operations for runs.
type Store interface {
	CreateRun(ctx context.Context, r *Run) error
	GetRun(ctx context.Context, id string) (*Run, error)
	ListRuns(ctx context.Context, limit int) ([]*Run, error)
	RecordTiming(ctx context.Context, t Timing) error
	ListTimings(ctx context.Context, runID string) ([]Timing, error)
	Close() error
}

// Sink adapts a Store to receive suite results as they are measured.
type Sink struct {
	Store Store
}

var _ suite.Sink = Sink{}

func (s Sink) Record(ctx context.Context, r suite.Result) error {
	return s.Store.RecordTiming(ctx, TimingFromResult(r))
}
