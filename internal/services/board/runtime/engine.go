// Package runtime drives a board from a frame source and fans snapshots out
// to renderers.
package runtime

import (
	"context"
	"errors"
	"sync"

	"github.com/louisbranch/beanmachine/internal/services/board/domain"
)

// ErrSourceClosed is returned by Run when the frame source stops before
// the context is cancelled.
var ErrSourceClosed = errors.New("frame source closed")

// Engine ticks a board once per frame.
type Engine struct {
	board  *domain.Board
	source domain.FrameSource

	mu          sync.Mutex
	subscribers map[int]chan domain.Snapshot
	nextID      int
}

// New creates an engine for board fed by source.
func New(board *domain.Board, source domain.FrameSource) *Engine {
	return &Engine{
		board:       board,
		source:      source,
		subscribers: make(map[int]chan domain.Snapshot),
	}
}

// Board returns the driven board.
func (e *Engine) Board() *domain.Board {
	return e.board
}

// Run consumes frames until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	if e == nil || e.board == nil || e.source == nil {
		return errors.New("engine is not configured")
	}
	frames := e.source.Frames(ctx)
	generation := e.board.Generation()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now, ok := <-frames:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return ErrSourceClosed
			}
			due := e.board.Tick(now)
			current := e.board.Generation()
			if due > 0 || current != generation {
				generation = current
				e.Publish()
			}
		}
	}
}

// Subscribe registers for snapshots. Each subscriber holds at most one
// pending snapshot; a newer one replaces it. Call cancel to unsubscribe.
func (e *Engine) Subscribe() (<-chan domain.Snapshot, func()) {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.nextID
	e.nextID++
	ch := make(chan domain.Snapshot, 1)
	e.subscribers[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			delete(e.subscribers, id)
			close(ch)
		})
	}
	return ch, cancel
}

// Publish sends the current snapshot to every subscriber.
func (e *Engine) Publish() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.subscribers) == 0 {
		return
	}
	snap := e.board.Snapshot()
	for _, ch := range e.subscribers {
		offer(ch, snap)
	}
}

func offer(ch chan domain.Snapshot, snap domain.Snapshot) {
	select {
	case ch <- snap:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- snap:
	default:
	}
}
