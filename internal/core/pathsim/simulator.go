// Package pathsim drops particles through a pin field.
//
// # Descent
//
// A particle starts at pin 0 of row 0. At every row, including the last, it
// draws one fair decision from the Coin, records it on the pin it occupies,
// stores that pin in the field's last path and moves one pin right when the
// decision was "right". The final row's decision picks the landing bin, so a
// field with n rows has n+1 bins.
//
// # Batches
//
// SimulateBatch runs particles one after another on the same field. Counters
// are commutative, so the order of particles does not matter for aggregates,
// but the last path always describes only the last particle of the batch.
package pathsim

import (
	"fmt"

	"github.com/louisbranch/beanmachine/internal/core/pinfield"
)

// Simulator folds particle descents into a pin field.
type Simulator struct {
	field *pinfield.Field
	coin  Coin
}

// New creates a simulator that mutates field using decisions from coin.
func New(field *pinfield.Field, coin Coin) *Simulator {
	if field == nil {
		panic("pathsim: field is required")
	}
	if coin == nil {
		panic("pathsim: coin is required")
	}
	return &Simulator{field: field, coin: coin}
}

// Field returns the field the simulator mutates.
func (s *Simulator) Field() *pinfield.Field {
	return s.field
}

// SetCoin replaces the decision source for subsequent particles.
func (s *Simulator) SetCoin(coin Coin) {
	if coin == nil {
		panic("pathsim: coin is required")
	}
	s.coin = coin
}

// Simulate drops one particle and returns the bin it landed in.
func (s *Simulator) Simulate() int {
	current := 0
	for row := 0; row < s.field.RowCount(); row++ {
		wentLeft := s.coin.Left()
		s.field.RecordChoice(row, current, wentLeft)
		s.field.SetLastPath(row, current)
		if !wentLeft {
			current++
		}
	}
	s.field.CompletePath()
	return current
}

// SimulateBatch drops n particles and returns the bin of the last one.
// A batch of zero particles is a no-op and returns -1.
func (s *Simulator) SimulateBatch(n int) int {
	if n < 0 {
		panic(fmt.Sprintf("pathsim: batch size must not be negative, got %d", n))
	}
	bin := -1
	for i := 0; i < n; i++ {
		bin = s.Simulate()
	}
	return bin
}
