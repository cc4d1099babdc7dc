package board

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Client calls BoardService with typed requests and responses.
type Client struct {
	conn   grpc.ClientConnInterface
	source string
	locale string
}

// NewClient wraps conn. source labels every control call (for example
// "mcp"); empty means the server's default.
func NewClient(conn grpc.ClientConnInterface, source string) *Client {
	return &Client{conn: conn, source: source}
}

// WithLocale returns a copy of c that asks for error messages in locale.
func (c *Client) WithLocale(locale string) *Client {
	clone := *c
	clone.locale = strings.TrimSpace(locale)
	return &clone
}

// Reset clears the board and returns the new snapshot.
func (c *Client) Reset(ctx context.Context, opts ...grpc.CallOption) (SnapshotView, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(c.outgoing(ctx), methodReset, &emptypb.Empty{}, out, opts...); err != nil {
		return SnapshotView{}, err
	}
	var view SnapshotView
	if err := fromStruct(out, &view); err != nil {
		return SnapshotView{}, fmt.Errorf("reset: %w", err)
	}
	return view, nil
}

// SetRate changes the animation speed and returns the accepted rate.
func (c *Client) SetRate(ctx context.Context, rate float64, opts ...grpc.CallOption) (float64, error) {
	out := new(wrapperspb.DoubleValue)
	if err := c.conn.Invoke(c.outgoing(ctx), methodSetRate, wrapperspb.Double(rate), out, opts...); err != nil {
		return 0, err
	}
	return out.GetValue(), nil
}

// Snapshot returns the current board summary.
func (c *Client) Snapshot(ctx context.Context, opts ...grpc.CallOption) (SnapshotView, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(c.outgoing(ctx), methodGetSnapshot, &emptypb.Empty{}, out, opts...); err != nil {
		return SnapshotView{}, err
	}
	var view SnapshotView
	if err := fromStruct(out, &view); err != nil {
		return SnapshotView{}, fmt.Errorf("get snapshot: %w", err)
	}
	return view, nil
}

// ListControlEvents returns one page of the control journal.
func (c *Client) ListControlEvents(ctx context.Context, req ListRequest, opts ...grpc.CallOption) (ControlEventList, error) {
	in, err := toStruct(req)
	if err != nil {
		return ControlEventList{}, fmt.Errorf("list control events: %w", err)
	}
	out := new(structpb.Struct)
	if err := c.conn.Invoke(c.outgoing(ctx), methodListControlEvents, in, out, opts...); err != nil {
		return ControlEventList{}, err
	}
	var list ControlEventList
	if err := fromStruct(out, &list); err != nil {
		return ControlEventList{}, fmt.Errorf("list control events: %w", err)
	}
	return list, nil
}

func (c *Client) outgoing(ctx context.Context) context.Context {
	var pairs []string
	if c.source != "" {
		pairs = append(pairs, SourceHeader, c.source)
	}
	if c.locale != "" {
		pairs = append(pairs, LocaleHeader, c.locale)
	}
	if len(pairs) == 0 {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, pairs...)
}
