// Package stats derives display values from a pin field without mutating it.
package stats

import (
	"fmt"
	"math"

	"github.com/louisbranch/beanmachine/internal/core/pinfield"
)

// SegmentAlpha returns how often particles took the edge from (row, pinA)
// to pinB in the next row, as a fraction of all completed paths.
//
// pinB must equal pinA (left edge) or pinA+1 (right edge).
func SegmentAlpha(field *pinfield.Field, row, pinA, pinB int) float64 {
	counts := field.Counts(row, pinA)
	var taken uint64
	switch pinB {
	case pinA:
		taken = counts.TimesLeft
	case pinA + 1:
		taken = counts.TimesRight
	default:
		panic(fmt.Sprintf("stats: pin %d in row %d is not adjacent to pin %d", pinB, row+1, pinA))
	}
	total := field.TotalPaths()
	if total == 0 {
		return 0
	}
	return float64(taken) / float64(total)
}

// Segment is one weighted edge between a pin and a pin (or bin) below it.
type Segment struct {
	Row   int
	Pin   int
	ToPin int
	Alpha float64
}

// Segments lists both outgoing edges of every pin, top row first.
// Edges leaving the last row point at bins.
func Segments(field *pinfield.Field) []Segment {
	rows := field.RowCount()
	segments := make([]Segment, 0, rows*(rows+1))
	for row := 0; row < rows; row++ {
		for pin := 0; pin <= row; pin++ {
			segments = append(segments,
				Segment{Row: row, Pin: pin, ToPin: pin, Alpha: SegmentAlpha(field, row, pin, pin)},
				Segment{Row: row, Pin: pin, ToPin: pin + 1, Alpha: SegmentAlpha(field, row, pin, pin+1)},
			)
		}
	}
	return segments
}

// Histogram holds the landing counts of the bins below the last row.
type Histogram struct {
	Bins []uint64
	Max  uint64
}

// NewHistogram sums the last row's outgoing counts into row_count+1 bins.
func NewHistogram(field *pinfield.Field) Histogram {
	rows := field.RowCount()
	last := rows - 1
	bins := make([]uint64, rows+1)
	var maxCount uint64
	for i := range bins {
		if i >= 1 {
			bins[i] += field.Counts(last, i-1).TimesRight
		}
		if i < rows {
			bins[i] += field.Counts(last, i).TimesLeft
		}
		if bins[i] > maxCount {
			maxCount = bins[i]
		}
	}
	return Histogram{Bins: bins, Max: maxCount}
}

// Total returns the sum of all bins.
func (h Histogram) Total() uint64 {
	var total uint64
	for _, count := range h.Bins {
		total += count
	}
	return total
}

// Normalized returns bar heights in [0, 1] relative to the tallest bin.
func (h Histogram) Normalized() []float64 {
	heights := make([]float64, len(h.Bins))
	if h.Max == 0 {
		return heights
	}
	for i, count := range h.Bins {
		heights[i] = float64(count) / float64(h.Max)
	}
	return heights
}

// Mean returns the average landing bin, or 0 for an empty histogram.
func (h Histogram) Mean() float64 {
	total := h.Total()
	if total == 0 {
		return 0
	}
	var weighted float64
	for i, count := range h.Bins {
		weighted += float64(i) * float64(count)
	}
	return weighted / float64(total)
}

// Expected returns the binomial expectation for each bin of a board with
// rowCount rows after total paths: total * C(rowCount, k) / 2^rowCount.
func Expected(rowCount int, total uint64) []float64 {
	if rowCount <= 0 {
		return nil
	}
	expected := make([]float64, rowCount+1)
	// Work in log space so large boards do not overflow.
	logTotal := math.Log(float64(total))
	logHalf := float64(rowCount) * math.Log(0.5)
	for k := range expected {
		if total == 0 {
			continue
		}
		expected[k] = math.Exp(logTotal + logBinomial(rowCount, k) + logHalf)
	}
	return expected
}

func logBinomial(n, k int) float64 {
	a, _ := math.Lgamma(float64(n + 1))
	b, _ := math.Lgamma(float64(k + 1))
	c, _ := math.Lgamma(float64(n - k + 1))
	return a - b - c
}
