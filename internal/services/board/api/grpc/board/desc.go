// Package board exposes the board control API over gRPC.
//
// The service is declared by hand on top of protobuf well-known types, so
// no generated stubs are needed:
//
//	service BoardService {
//	  rpc Reset(google.protobuf.Empty) returns (google.protobuf.Struct);
//	  rpc SetRate(google.protobuf.DoubleValue) returns (google.protobuf.DoubleValue);
//	  rpc GetSnapshot(google.protobuf.Empty) returns (google.protobuf.Struct);
//	  rpc ListControlEvents(google.protobuf.Struct) returns (google.protobuf.Struct);
//	}
package board

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "beanmachine.board.v1.BoardService"

// SourceHeader carries the caller's input source (for example "mcp").
const SourceHeader = "x-beanmachine-source"

// LocaleHeader selects the language of LocalizedMessage error details.
const LocaleHeader = "x-beanmachine-locale"

const (
	methodReset             = "/" + ServiceName + "/Reset"
	methodSetRate           = "/" + ServiceName + "/SetRate"
	methodGetSnapshot       = "/" + ServiceName + "/GetSnapshot"
	methodListControlEvents = "/" + ServiceName + "/ListControlEvents"
)

// BoardServer is the server API for BoardService.
type BoardServer interface {
	Reset(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	SetRate(context.Context, *wrapperspb.DoubleValue) (*wrapperspb.DoubleValue, error)
	GetSnapshot(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	ListControlEvents(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterBoardServer registers srv on s.
func RegisterBoardServer(s grpc.ServiceRegistrar, srv BoardServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// ServiceDesc describes BoardService for grpc.Server.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BoardServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Reset", Handler: resetHandler},
		{MethodName: "SetRate", Handler: setRateHandler},
		{MethodName: "GetSnapshot", Handler: getSnapshotHandler},
		{MethodName: "ListControlEvents", Handler: listControlEventsHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "beanmachine/board/v1/board.proto",
}

func resetHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BoardServer).Reset(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodReset}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(BoardServer).Reset(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func setRateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.DoubleValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BoardServer).SetRate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodSetRate}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(BoardServer).SetRate(ctx, req.(*wrapperspb.DoubleValue))
	}
	return interceptor(ctx, in, info, handler)
}

func getSnapshotHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BoardServer).GetSnapshot(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodGetSnapshot}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(BoardServer).GetSnapshot(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func listControlEventsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BoardServer).ListControlEvents(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodListControlEvents}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(BoardServer).ListControlEvents(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}
