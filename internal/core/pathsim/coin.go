package pathsim

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
)

// ErrInvalidChoices is returned when a choice string contains anything
// other than L or R.
var ErrInvalidChoices = errors.New("choices must contain only L or R")

// Coin draws the fair left/right decision a particle makes at a pin.
type Coin interface {
	// Left reports whether the particle goes left.
	Left() bool
}

// RandomCoin draws independent fair decisions from a seeded source.
//
// Given the same seed, a RandomCoin produces the same sequence of decisions.
type RandomCoin struct {
	rng *rand.Rand
}

// NewRandomCoin creates a coin backed by math/rand seeded with seed.
func NewRandomCoin(seed int64) *RandomCoin {
	return &RandomCoin{rng: rand.New(rand.NewSource(seed))}
}

// NewCoinWithRng creates a coin that draws from a caller-controlled source.
func NewCoinWithRng(rng *rand.Rand) *RandomCoin {
	return &RandomCoin{rng: rng}
}

// Left implements Coin.
func (c *RandomCoin) Left() bool {
	return c.rng.Int63()&1 == 0
}

// SequenceCoin replays a fixed list of decisions.
//
// Running past the end of the list is a caller bug and panics.
type SequenceCoin struct {
	choices []bool
	next    int
}

// NewSequenceCoin creates a coin that replays choices in order (true = left).
func NewSequenceCoin(choices []bool) *SequenceCoin {
	copied := make([]bool, len(choices))
	copy(copied, choices)
	return &SequenceCoin{choices: copied}
}

// Left implements Coin.
func (c *SequenceCoin) Left() bool {
	if c.next >= len(c.choices) {
		panic(fmt.Sprintf("pathsim: forced sequence exhausted after %d choices", len(c.choices)))
	}
	choice := c.choices[c.next]
	c.next++
	return choice
}

// Remaining returns how many forced choices are left.
func (c *SequenceCoin) Remaining() int {
	return len(c.choices) - c.next
}

// Push appends more forced choices to the end of the sequence.
func (c *SequenceCoin) Push(choices ...bool) {
	c.choices = append(c.choices, choices...)
}

// ParseChoices converts a string such as "LRL" into decisions (true = left).
// Whitespace and commas are ignored so "LL, LR" is accepted.
func ParseChoices(value string) ([]bool, error) {
	choices := make([]bool, 0, len(value))
	for _, r := range strings.ToUpper(value) {
		switch r {
		case 'L':
			choices = append(choices, true)
		case 'R':
			choices = append(choices, false)
		case ' ', ',', '\t', '\n':
		default:
			return nil, fmt.Errorf("%w: unexpected %q", ErrInvalidChoices, r)
		}
	}
	return choices, nil
}
