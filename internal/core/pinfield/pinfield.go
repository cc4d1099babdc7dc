// Package pinfield holds the per-pin traversal counters of a Galton board.
//
// A Field is a triangular grid: row i holds i+1 pin slots. Every particle
// that falls through the board makes exactly one left/right decision per row,
// so after n complete particles the counters of each row sum to n.
//
// # Preconditions
//
// Out-of-range rows and pins are programming errors in the caller (the path
// simulator), not input failures. They panic instead of returning errors.
package pinfield

import "fmt"

// PinCounts records how many particles left a pin slot in each direction.
type PinCounts struct {
	TimesLeft  uint64
	TimesRight uint64
}

// Total returns the number of particles that passed through the slot.
func (c PinCounts) Total() uint64 {
	return c.TimesLeft + c.TimesRight
}

// Field is the triangular grid of pin counters plus path bookkeeping.
//
// Field is not safe for concurrent use; the board aggregate owns one and
// guards it with its lock.
type Field struct {
	rows       [][]PinCounts
	totalPaths uint64
	lastPath   []int
}

// New creates a field with rowCount rows, all counters zero.
func New(rowCount int) *Field {
	if rowCount <= 0 {
		panic(fmt.Sprintf("pinfield: row count must be positive, got %d", rowCount))
	}
	return &Field{
		rows:     newRows(rowCount),
		lastPath: make([]int, rowCount),
	}
}

func newRows(rowCount int) [][]PinCounts {
	rows := make([][]PinCounts, rowCount)
	for i := range rows {
		rows[i] = make([]PinCounts, i+1)
	}
	return rows
}

// RowCount returns the number of pin rows.
func (f *Field) RowCount() int {
	return len(f.rows)
}

// RecordChoice increments the left or right counter of the slot at (row, pin).
func (f *Field) RecordChoice(row, pin int, wentLeft bool) {
	f.checkSlot(row, pin)
	if wentLeft {
		f.rows[row][pin].TimesLeft++
		return
	}
	f.rows[row][pin].TimesRight++
}

// SetLastPath stores the pin the most recent particle occupied in row.
func (f *Field) SetLastPath(row, pin int) {
	f.checkSlot(row, pin)
	f.lastPath[row] = pin
}

// CompletePath marks one particle as having traversed every row.
func (f *Field) CompletePath() {
	f.totalPaths++
}

// Counts returns the counters of the slot at (row, pin).
func (f *Field) Counts(row, pin int) PinCounts {
	f.checkSlot(row, pin)
	return f.rows[row][pin]
}

// Row returns a copy of the counters in row.
func (f *Field) Row(row int) []PinCounts {
	if row < 0 || row >= len(f.rows) {
		panic(fmt.Sprintf("pinfield: row %d out of range [0, %d)", row, len(f.rows)))
	}
	out := make([]PinCounts, len(f.rows[row]))
	copy(out, f.rows[row])
	return out
}

// TotalPaths returns the number of complete particles since the last reset.
func (f *Field) TotalPaths() uint64 {
	return f.totalPaths
}

// LastPath returns a copy of the most recent particle's per-row pins.
func (f *Field) LastPath() []int {
	out := make([]int, len(f.lastPath))
	copy(out, f.lastPath)
	return out
}

// Reset zeroes every counter, the path total and the last path.
// The row count is preserved.
func (f *Field) Reset() {
	for i := range f.rows {
		clear(f.rows[i])
	}
	clear(f.lastPath)
	f.totalPaths = 0
}

// Clone returns a deep copy of the field.
func (f *Field) Clone() *Field {
	clone := &Field{
		rows:       make([][]PinCounts, len(f.rows)),
		totalPaths: f.totalPaths,
		lastPath:   make([]int, len(f.lastPath)),
	}
	for i, row := range f.rows {
		clone.rows[i] = make([]PinCounts, len(row))
		copy(clone.rows[i], row)
	}
	copy(clone.lastPath, f.lastPath)
	return clone
}

func (f *Field) checkSlot(row, pin int) {
	if row < 0 || row >= len(f.rows) {
		panic(fmt.Sprintf("pinfield: row %d out of range [0, %d)", row, len(f.rows)))
	}
	if pin < 0 || pin > row {
		panic(fmt.Sprintf("pinfield: pin %d out of range [0, %d] for row %d", pin, row, row))
	}
}
