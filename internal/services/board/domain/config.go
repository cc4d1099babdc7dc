package domain

import (
	"fmt"
	"strconv"

	"github.com/louisbranch/beanmachine/internal/core/pacer"
	apperrors "github.com/louisbranch/beanmachine/internal/platform/errors"
)

const (
	// DefaultRows is the number of pin rows on a new board.
	DefaultRows = 15
	// DefaultRate is the initial number of batch updates per second.
	DefaultRate = 15.0
	// DefaultBatchSize is the number of particles simulated per update.
	DefaultBatchSize = 50
)

// Config holds the construction-time parameters of a board.
type Config struct {
	Rows       int
	Rate       float64
	BatchSize  int
	Policy     pacer.Policy
	// MaxCatchUp caps the batches one tick may run; zero removes the cap.
	MaxCatchUp int
}

// DefaultConfig returns the configuration of a standard 15-row board.
func DefaultConfig() Config {
	return Config{
		Rows:      DefaultRows,
		Rate:      DefaultRate,
		BatchSize:  DefaultBatchSize,
		Policy:     pacer.PolicyDrain,
		MaxCatchUp: pacer.DefaultMaxCatchUp,
	}
}

// Validate checks that every field can build a board.
func (c Config) Validate() error {
	if c.Rows <= 0 {
		return apperrors.WithMetadata(apperrors.CodeInvalidRowCount,
			fmt.Sprintf("row count must be positive, got %d", c.Rows),
			map[string]string{"Rows": strconv.Itoa(c.Rows)})
	}
	if c.BatchSize <= 0 {
		return apperrors.WithMetadata(apperrors.CodeInvalidBatchSize,
			fmt.Sprintf("batch size must be positive, got %d", c.BatchSize),
			map[string]string{"BatchSize": strconv.Itoa(c.BatchSize)})
	}
	if err := pacer.ValidateRate(c.Rate); err != nil {
		return err
	}
	if c.Policy != "" {
		if _, err := pacer.ParsePolicy(string(c.Policy)); err != nil {
			return err
		}
	}
	if c.MaxCatchUp < 0 {
		return apperrors.WithMetadata(apperrors.CodeInvalidConfiguration,
			fmt.Sprintf("max catch-up must not be negative, got %d", c.MaxCatchUp),
			map[string]string{"Reason": "max catch-up must not be negative"})
	}
	return nil
}
