package board

import (
	"context"
	"strconv"
	"strings"

	apperrors "github.com/louisbranch/beanmachine/internal/platform/errors"
	"github.com/louisbranch/beanmachine/internal/platform/grpc/pagination"
	"github.com/louisbranch/beanmachine/internal/services/board/domain"
	"github.com/louisbranch/beanmachine/internal/services/board/storage"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	defaultListControlEventsPageSize = 20
	maxListControlEventsPageSize     = 100
)

// Service exposes BoardService operations on a live board.
type Service struct {
	board   *domain.Board
	events  storage.ControlEventStore
	publish func()
	tracer  trace.Tracer
}

// NewService creates a board service. events may be nil when the journal is
// disabled; publish, when set, is called after every accepted control.
func NewService(board *domain.Board, events storage.ControlEventStore, publish func()) *Service {
	return &Service{
		board:   board,
		events:  events,
		publish: publish,
		tracer:  otel.Tracer("github.com/louisbranch/beanmachine/internal/services/board/api/grpc/board"),
	}
}

// Reset clears the board and returns the resulting snapshot.
func (s *Service) Reset(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	if s == nil || s.board == nil {
		return nil, status.Error(codes.Internal, "board is not configured")
	}
	ctx, span := s.tracer.Start(ctx, "board.Reset")
	defer span.End()

	source := sourceFromContext(ctx)
	span.SetAttributes(attribute.String("board.source", string(source)))
	if err := s.board.Apply(domain.Input{Kind: domain.InputReset, Source: source}); err != nil {
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, apperrors.HandleErrorLocale(err, localeFromContext(ctx))
	}
	s.notify()
	return s.snapshotStruct(ctx)
}

// SetRate changes the animation speed and echoes the accepted rate.
func (s *Service) SetRate(ctx context.Context, in *wrapperspb.DoubleValue) (*wrapperspb.DoubleValue, error) {
	if in == nil {
		return nil, status.Error(codes.InvalidArgument, "set rate request is required")
	}
	if s == nil || s.board == nil {
		return nil, status.Error(codes.Internal, "board is not configured")
	}
	_, span := s.tracer.Start(ctx, "board.SetRate")
	defer span.End()

	source := sourceFromContext(ctx)
	span.SetAttributes(
		attribute.String("board.source", string(source)),
		attribute.Float64("board.rate", in.GetValue()),
	)
	if err := s.board.Apply(domain.Input{Kind: domain.InputSetRate, Rate: in.GetValue(), Source: source}); err != nil {
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, apperrors.HandleErrorLocale(err, localeFromContext(ctx))
	}
	s.notify()
	return wrapperspb.Double(s.board.Rate()), nil
}

// GetSnapshot returns a summary of the current board.
func (s *Service) GetSnapshot(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	if s == nil || s.board == nil {
		return nil, status.Error(codes.Internal, "board is not configured")
	}
	return s.snapshotStruct(ctx)
}

// ListControlEvents returns one page of the control journal.
func (s *Service) ListControlEvents(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if s == nil || s.events == nil {
		return nil, status.Error(codes.FailedPrecondition, "control journal is not configured")
	}
	var req ListRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "list control events request: %v", err)
	}
	pageSize := pagination.ClampPageSize(req.PageSize, pagination.PageSizeConfig{
		Default: defaultListControlEventsPageSize,
		Max:     maxListControlEventsPageSize,
	})

	ctx, span := s.tracer.Start(ctx, "board.ListControlEvents")
	defer span.End()
	span.SetAttributes(attribute.Int("board.page_size", pageSize), attribute.String("board.filter", req.Filter))

	page, err := s.events.ListControlEvents(ctx, pageSize, strings.TrimSpace(req.PageToken), req.Filter)
	if err != nil {
		span.SetStatus(otelcodes.Error, err.Error())
		if apperrors.GetCode(err) != apperrors.CodeUnknown {
			return nil, apperrors.HandleErrorLocale(err, localeFromContext(ctx))
		}
		return nil, status.Errorf(codes.Internal, "list control events: %v", err)
	}

	list := ControlEventList{
		Events:        make([]ControlEventView, 0, len(page.Events)),
		NextPageToken: page.NextPageToken,
	}
	for _, event := range page.Events {
		list.Events = append(list.Events, NewControlEventView(event))
	}
	out, err := toStruct(list)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode control events: %v", err)
	}
	return out, nil
}

func (s *Service) snapshotStruct(ctx context.Context) (*structpb.Struct, error) {
	snap := s.board.Snapshot()
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.String("board.total_paths", strconv.FormatUint(snap.TotalPaths(), 10)),
		attribute.Int64("board.generation", int64(snap.Generation)),
	)
	out, err := toStruct(NewSnapshotView(snap))
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode snapshot: %v", err)
	}
	return out, nil
}

func (s *Service) notify() {
	if s.publish != nil {
		s.publish()
	}
}

func sourceFromContext(ctx context.Context) domain.Source {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return domain.SourceGRPC
	}
	values := md.Get(SourceHeader)
	if len(values) == 0 || strings.TrimSpace(values[0]) == "" {
		return domain.SourceGRPC
	}
	return domain.ParseSource(values[0])
}

// localeFromContext reads LocaleHeader, then the first Accept-Language tag.
// An empty result renders en-US.
func localeFromContext(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if values := md.Get(LocaleHeader); len(values) > 0 && strings.TrimSpace(values[0]) != "" {
		return strings.TrimSpace(values[0])
	}
	if values := md.Get("accept-language"); len(values) > 0 {
		first, _, _ := strings.Cut(values[0], ",")
		tag, _, _ := strings.Cut(first, ";")
		return strings.TrimSpace(tag)
	}
	return ""
}

var _ BoardServer = (*Service)(nil)
