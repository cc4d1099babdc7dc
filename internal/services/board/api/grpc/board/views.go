package board

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/louisbranch/beanmachine/internal/services/board/domain"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// SnapshotView is the wire shape of a board snapshot.
type SnapshotView struct {
	Rows       int      `json:"rows"`
	TotalPaths uint64   `json:"total_paths"`
	LastPath   []int    `json:"last_path"`
	LastBin    int      `json:"last_bin"`
	Bins       []uint64 `json:"bins"`
	Max        uint64   `json:"max"`
	Mean       float64  `json:"mean"`
	Rate       float64  `json:"rate"`
	BatchSize  int      `json:"batch_size"`
	Policy     string   `json:"policy"`
	Generation uint64   `json:"generation"`
	Batches    uint64   `json:"batches"`
}

// NewSnapshotView summarizes snap for transport.
func NewSnapshotView(snap domain.Snapshot) SnapshotView {
	histogram := snap.Histogram()
	return SnapshotView{
		Rows:       snap.RowCount(),
		TotalPaths: snap.TotalPaths(),
		LastPath:   snap.LastPath(),
		LastBin:    snap.LastBin,
		Bins:       histogram.Bins,
		Max:        histogram.Max,
		Mean:       histogram.Mean(),
		Rate:       snap.Rate,
		BatchSize:  snap.BatchSize,
		Policy:     string(snap.Policy),
		Generation: snap.Generation,
		Batches:    snap.Batches,
	}
}

// ControlEventView is the wire shape of a journaled control event.
// Rate is nil when the requested value was not a finite number.
type ControlEventView struct {
	ID         int64    `json:"id"`
	Kind       string   `json:"kind"`
	Source     string   `json:"source"`
	Rate       *float64 `json:"rate,omitempty"`
	TotalPaths uint64   `json:"total_paths"`
	Message    string   `json:"message,omitempty"`
	CreatedAt  string   `json:"created_at"`
}

// NewControlEventView converts a journaled event for transport.
func NewControlEventView(event domain.ControlEvent) ControlEventView {
	view := ControlEventView{
		ID:         event.ID,
		Kind:       string(event.Kind),
		Source:     string(event.Source),
		TotalPaths: event.TotalPaths,
		Message:    event.Message,
		CreatedAt:  event.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if !math.IsNaN(event.Rate) && !math.IsInf(event.Rate, 0) {
		rate := event.Rate
		view.Rate = &rate
	}
	return view
}

// ControlEventList is one page of control events.
type ControlEventList struct {
	Events        []ControlEventView `json:"events"`
	NextPageToken string             `json:"next_page_token,omitempty"`
}

// ListRequest selects a page of control events.
type ListRequest struct {
	PageSize  int    `json:"page_size,omitempty"`
	PageToken string `json:"page_token,omitempty"`
	Filter    string `json:"filter,omitempty"`
}

// toStruct encodes a JSON-tagged value as a protobuf Struct.
func toStruct(value any) (*structpb.Struct, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode struct: %w", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("encode struct: %w", err)
	}
	return out, nil
}

// fromStruct decodes a protobuf Struct into a JSON-tagged value.
func fromStruct(in *structpb.Struct, out any) error {
	if in == nil {
		in = &structpb.Struct{}
	}
	data, err := protojson.Marshal(in)
	if err != nil {
		return fmt.Errorf("decode struct: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode struct: %w", err)
	}
	return nil
}
