package domain

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/louisbranch/beanmachine/internal/platform/timeouts"
	boardservice "github.com/louisbranch/beanmachine/internal/services/board/api/grpc/board"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// SnapshotURI addresses the live snapshot resource.
const SnapshotURI = "board://snapshot"

// BoardClient is the subset of the board gRPC client the tools call.
type BoardClient interface {
	Reset(ctx context.Context, opts ...grpc.CallOption) (boardservice.SnapshotView, error)
	SetRate(ctx context.Context, rate float64, opts ...grpc.CallOption) (float64, error)
	Snapshot(ctx context.Context, opts ...grpc.CallOption) (boardservice.SnapshotView, error)
	ListControlEvents(ctx context.Context, req boardservice.ListRequest, opts ...grpc.CallOption) (boardservice.ControlEventList, error)
}

// SnapshotInput takes no arguments.
type SnapshotInput struct{}

// ResetInput takes no arguments.
type ResetInput struct{}

// SnapshotResult is the board state returned by snapshot and reset.
type SnapshotResult struct {
	Rows       int      `json:"rows" jsonschema:"number of pin rows"`
	TotalPaths uint64   `json:"total_paths" jsonschema:"particles dropped since the last reset"`
	LastPath   []int    `json:"last_path,omitempty" jsonschema:"pin index per row of the most recent particle"`
	LastBin    int      `json:"last_bin" jsonschema:"landing bin of the most recent particle, -1 when none"`
	Bins       []uint64 `json:"bins,omitempty" jsonschema:"particle count per bin"`
	Mean       float64  `json:"mean" jsonschema:"mean landing bin"`
	Rate       float64  `json:"rate" jsonschema:"animation updates per second"`
	BatchSize  int      `json:"batch_size" jsonschema:"particles simulated per update"`
	Generation uint64   `json:"generation" jsonschema:"number of resets so far"`
}

func newSnapshotResult(view boardservice.SnapshotView) SnapshotResult {
	return SnapshotResult{
		Rows:       view.Rows,
		TotalPaths: view.TotalPaths,
		LastPath:   view.LastPath,
		LastBin:    view.LastBin,
		Bins:       view.Bins,
		Mean:       view.Mean,
		Rate:       view.Rate,
		BatchSize:  view.BatchSize,
		Generation: view.Generation,
	}
}

// SetRateInput is the requested animation speed.
type SetRateInput struct {
	Rate float64 `json:"rate" jsonschema:"updates per second, must be positive"`
}

// SetRateResult is the accepted animation speed.
type SetRateResult struct {
	Rate float64 `json:"rate" jsonschema:"accepted updates per second"`
}

// ControlEventsInput selects a page of the control journal.
type ControlEventsInput struct {
	PageSize  int    `json:"page_size,omitempty" jsonschema:"maximum events to return (default 20, max 100)"`
	PageToken string `json:"page_token,omitempty" jsonschema:"next_page_token from a previous call"`
	Filter    string `json:"filter,omitempty" jsonschema:"AIP-160 filter over kind, source, rate, total_paths and created_at"`
}

// ControlEvent is one journaled reset or speed change.
type ControlEvent struct {
	ID         int64    `json:"id"`
	Kind       string   `json:"kind" jsonschema:"reset, set_rate or set_rate_rejected"`
	Source     string   `json:"source" jsonschema:"where the input came from"`
	Rate       *float64 `json:"rate,omitempty"`
	TotalPaths uint64   `json:"total_paths" jsonschema:"total paths when the event was applied"`
	Message    string   `json:"message,omitempty"`
	CreatedAt  string   `json:"created_at" jsonschema:"RFC3339 timestamp"`
}

// ControlEventsResult is one page of control events.
type ControlEventsResult struct {
	Events        []ControlEvent `json:"events"`
	NextPageToken string         `json:"next_page_token,omitempty"`
}

// SnapshotTool defines the board_snapshot tool.
func SnapshotTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "board_snapshot",
		Description: "Returns the current histogram, latest path and speed of the bean machine.",
	}
}

// SnapshotHandler reads the current board.
func SnapshotHandler(client BoardClient) mcp.ToolHandlerFor[SnapshotInput, SnapshotResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ SnapshotInput) (*mcp.CallToolResult, SnapshotResult, error) {
		callCtx, cancel := context.WithTimeout(ctx, timeouts.GRPCRequest)
		defer cancel()
		view, err := client.Snapshot(callCtx)
		if err != nil {
			return nil, SnapshotResult{}, toolError("board snapshot", err)
		}
		return nil, newSnapshotResult(view), nil
	}
}

// ResetTool defines the board_reset tool.
func ResetTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "board_reset",
		Description: "Clears every counter and the histogram. The animation speed is kept.",
	}
}

// ResetHandler resets the board.
func ResetHandler(client BoardClient) mcp.ToolHandlerFor[ResetInput, SnapshotResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ ResetInput) (*mcp.CallToolResult, SnapshotResult, error) {
		callCtx, cancel := context.WithTimeout(ctx, timeouts.GRPCRequest)
		defer cancel()
		view, err := client.Reset(callCtx)
		if err != nil {
			return nil, SnapshotResult{}, toolError("board reset", err)
		}
		return nil, newSnapshotResult(view), nil
	}
}

// SetRateTool defines the board_set_rate tool.
func SetRateTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "board_set_rate",
		Description: "Changes how many updates per second the board animates. Non-positive rates are rejected.",
	}
}

// SetRateHandler changes the animation speed.
func SetRateHandler(client BoardClient) mcp.ToolHandlerFor[SetRateInput, SetRateResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SetRateInput) (*mcp.CallToolResult, SetRateResult, error) {
		callCtx, cancel := context.WithTimeout(ctx, timeouts.GRPCRequest)
		defer cancel()
		rate, err := client.SetRate(callCtx, input.Rate)
		if err != nil {
			return nil, SetRateResult{}, toolError("board set rate", err)
		}
		return nil, SetRateResult{Rate: rate}, nil
	}
}

// ControlEventsTool defines the board_control_events tool.
func ControlEventsTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "board_control_events",
		Description: "Lists journaled resets and speed changes, oldest first.",
	}
}

// ControlEventsHandler pages through the control journal.
func ControlEventsHandler(client BoardClient) mcp.ToolHandlerFor[ControlEventsInput, ControlEventsResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ControlEventsInput) (*mcp.CallToolResult, ControlEventsResult, error) {
		callCtx, cancel := context.WithTimeout(ctx, timeouts.GRPCRequest)
		defer cancel()
		list, err := client.ListControlEvents(callCtx, boardservice.ListRequest{
			PageSize:  input.PageSize,
			PageToken: input.PageToken,
			Filter:    input.Filter,
		})
		if err != nil {
			return nil, ControlEventsResult{}, toolError("board control events", err)
		}
		result := ControlEventsResult{
			Events:        make([]ControlEvent, 0, len(list.Events)),
			NextPageToken: list.NextPageToken,
		}
		for _, event := range list.Events {
			result.Events = append(result.Events, ControlEvent{
				ID:         event.ID,
				Kind:       event.Kind,
				Source:     event.Source,
				Rate:       event.Rate,
				TotalPaths: event.TotalPaths,
				Message:    event.Message,
				CreatedAt:  event.CreatedAt,
			})
		}
		return nil, result, nil
	}
}

// SnapshotResource defines the readable live snapshot.
func SnapshotResource() *mcp.Resource {
	return &mcp.Resource{
		Name:        "board_snapshot",
		Title:       "Board snapshot",
		Description: "Current histogram and counters of the bean machine",
		MIMEType:    "application/json",
		URI:         SnapshotURI,
	}
}

// SnapshotResourceHandler serves SnapshotURI as JSON.
func SnapshotResourceHandler(client BoardClient) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if client == nil {
			return nil, fmt.Errorf("board client is not configured")
		}
		callCtx, cancel := context.WithTimeout(ctx, timeouts.GRPCRequest)
		defer cancel()
		view, err := client.Snapshot(callCtx)
		if err != nil {
			return nil, toolError("board snapshot", err)
		}
		data, err := json.MarshalIndent(newSnapshotResult(view), "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal snapshot: %w", err)
		}
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{
				URI:      SnapshotURI,
				MIMEType: "application/json",
				Text:     string(data),
			}},
		}, nil
	}
}

// toolError prefers the localized message the board attached to a status.
func toolError(op string, err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("%s failed: %w", op, err)
	}
	for _, detail := range st.Details() {
		if localized, ok := detail.(*errdetails.LocalizedMessage); ok && localized.GetMessage() != "" {
			return fmt.Errorf("%s failed: %s", op, localized.GetMessage())
		}
	}
	return fmt.Errorf("%s failed: %s", op, st.Message())
}
