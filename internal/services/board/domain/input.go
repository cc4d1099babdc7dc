package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/louisbranch/beanmachine/internal/core/pacer"
	apperrors "github.com/louisbranch/beanmachine/internal/platform/errors"
)

// InputKind identifies a user input event.
type InputKind string

const (
	// InputReset clears the board.
	InputReset InputKind = "reset"
	// InputSetRate changes the animation speed.
	InputSetRate InputKind = "set_rate"
)

// Source names where an input came from.
type Source string

const (
	SourceLocal     Source = "local"
	SourceGRPC      Source = "grpc"
	SourceWebSocket Source = "websocket"
	SourceMCP       Source = "mcp"
	SourceTUI       Source = "tui"
	SourceScenario  Source = "scenario"
)

// ParseSource converts a transport label to a Source, defaulting to local.
func ParseSource(value string) Source {
	switch Source(strings.ToLower(strings.TrimSpace(value))) {
	case SourceGRPC:
		return SourceGRPC
	case SourceWebSocket:
		return SourceWebSocket
	case SourceMCP:
		return SourceMCP
	case SourceTUI:
		return SourceTUI
	case SourceScenario:
		return SourceScenario
	default:
		return SourceLocal
	}
}

// Input is one reset or speed-change event.
type Input struct {
	Kind   InputKind
	Rate   float64
	Source Source
}

// ParseRate converts user-entered text into a valid rate.
func ParseRate(value string) (float64, error) {
	trimmed := strings.TrimSpace(value)
	rate, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.CodeInvalidRate, fmt.Sprintf("parse rate %q", value),
			map[string]string{"Rate": trimmed}, err)
	}
	if err := pacer.ValidateRate(rate); err != nil {
		return 0, err
	}
	return rate, nil
}

// ControlKind identifies a journaled control event.
type ControlKind string

const (
	ControlReset           ControlKind = "reset"
	ControlSetRate         ControlKind = "set_rate"
	ControlSetRateRejected ControlKind = "set_rate_rejected"
)

// ControlEvent records an applied or rejected input.
type ControlEvent struct {
	ID         int64
	Kind       ControlKind
	Source     Source
	Rate       float64
	TotalPaths uint64
	Message    string
	CreatedAt  time.Time
}
