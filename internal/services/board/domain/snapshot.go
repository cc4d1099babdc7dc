package domain

import (
	"context"

	"github.com/louisbranch/beanmachine/internal/core/pacer"
	"github.com/louisbranch/beanmachine/internal/core/pinfield"
	"github.com/louisbranch/beanmachine/internal/core/stats"
)

// Snapshot is a copy of the board taken under its lock.
// Renderers read snapshots and never touch the live field.
type Snapshot struct {
	Field       *pinfield.Field
	Rate        float64
	BatchSize   int
	Policy      pacer.Policy
	Accumulated float64
	// Generation increments on every reset.
	Generation uint64
	// Batches counts triggered updates since the last reset.
	Batches uint64
	// LastBin is the landing bin of the most recent particle, -1 when none.
	LastBin int
}

// RowCount returns the number of pin rows.
func (s Snapshot) RowCount() int {
	return s.Field.RowCount()
}

// TotalPaths returns the number of completed particles.
func (s Snapshot) TotalPaths() uint64 {
	return s.Field.TotalPaths()
}

// LastPath returns the pins the most recent particle occupied.
func (s Snapshot) LastPath() []int {
	return s.Field.LastPath()
}

// Histogram returns the bin counts of the snapshot.
func (s Snapshot) Histogram() stats.Histogram {
	return stats.NewHistogram(s.Field)
}

// Segments returns the weighted edges of the snapshot.
func (s Snapshot) Segments() []stats.Segment {
	return stats.Segments(s.Field)
}

// FrameSource delivers monotonic timestamps in seconds, one per frame.
// The channel closes when ctx is done.
type FrameSource interface {
	Frames(ctx context.Context) <-chan float64
}
