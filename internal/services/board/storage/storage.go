// Package storage defines the control journal contract of the board service.
package storage

import (
	"context"

	"github.com/louisbranch/beanmachine/internal/services/board/domain"
)

// ControlEventPage stores one page of journaled control events.
type ControlEventPage struct {
	Events        []domain.ControlEvent
	NextPageToken string
}

// ControlEventStore journals control events. The journal is an audit trail
// and is never replayed into a board.
type ControlEventStore interface {
	AppendControlEvent(ctx context.Context, event domain.ControlEvent) (domain.ControlEvent, error)
	ListControlEvents(ctx context.Context, pageSize int, pageToken string, filter string) (ControlEventPage, error)
}
