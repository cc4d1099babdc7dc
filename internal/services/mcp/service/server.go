package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	platformgrpc "github.com/louisbranch/beanmachine/internal/platform/grpc"
	"github.com/louisbranch/beanmachine/internal/platform/timeouts"
	boardservice "github.com/louisbranch/beanmachine/internal/services/board/api/grpc/board"
	"github.com/louisbranch/beanmachine/internal/services/mcp/domain"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"google.golang.org/grpc"
)

const (
	serverName    = "beanmachine MCP"
	serverVersion = "0.1.0"
	// DefaultBoardAddr is the board gRPC address used when none is configured.
	DefaultBoardAddr = "localhost:8095"
)

// Config configures the MCP server.
type Config struct {
	BoardAddr string `env:"BEANMACHINE_MCP_BOARD_ADDR" envDefault:"localhost:8095"`
	// Locale selects the language of board error messages returned to tools.
	Locale string `env:"BEANMACHINE_MCP_LOCALE" envDefault:"en-US"`
}

// Server hosts the MCP server.
type Server struct {
	mcpServer *mcp.Server
	conn      *grpc.ClientConn
}

// New creates an MCP server whose tools call client.
func New(client domain.BoardClient) (*Server, error) {
	if client == nil {
		return nil, errors.New("board client is required")
	}
	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, &mcp.ServerOptions{
		SubscribeHandler:   resourceSubscribeHandler,
		UnsubscribeHandler: resourceUnsubscribeHandler,
	})
	registerBoardTools(mcpServer, client)
	mcpServer.AddResource(domain.SnapshotResource(), domain.SnapshotResourceHandler(client))
	return &Server{mcpServer: mcpServer}, nil
}

func registerBoardTools(server *mcp.Server, client domain.BoardClient) {
	mcp.AddTool(server, domain.SnapshotTool(), domain.SnapshotHandler(client))
	mcp.AddTool(server, domain.ResetTool(), domain.ResetHandler(client))
	mcp.AddTool(server, domain.SetRateTool(), domain.SetRateHandler(client))
	mcp.AddTool(server, domain.ControlEventsTool(), domain.ControlEventsHandler(client))
}

func resourceSubscribeHandler(_ context.Context, req *mcp.SubscribeRequest) error {
	if req == nil || req.Params == nil || strings.TrimSpace(req.Params.URI) == "" {
		return fmt.Errorf("resource uri is required")
	}
	return nil
}

func resourceUnsubscribeHandler(_ context.Context, req *mcp.UnsubscribeRequest) error {
	if req == nil || req.Params == nil || strings.TrimSpace(req.Params.URI) == "" {
		return fmt.Errorf("resource uri is required")
	}
	return nil
}

// Run dials the board and serves MCP on stdio until ctx ends or the client
// disconnects.
func Run(ctx context.Context, cfg Config) error {
	return runWithTransport(ctx, cfg, &mcp.StdioTransport{})
}

func runWithTransport(ctx context.Context, cfg Config, transport mcp.Transport) error {
	addr := strings.TrimSpace(cfg.BoardAddr)
	if addr == "" {
		addr = DefaultBoardAddr
	}
	conn, err := dialBoard(ctx, addr)
	if err != nil {
		return err
	}
	server, err := New(boardservice.NewClient(conn, boardSource).WithLocale(cfg.Locale))
	if err != nil {
		_ = conn.Close()
		return err
	}
	server.conn = conn
	return server.serveWithTransport(ctx, transport)
}

// boardSource tags every control request this server forwards.
const boardSource = "mcp"

func dialBoard(ctx context.Context, addr string) (*grpc.ClientConn, error) {
	logf := func(format string, args ...any) {
		log.Printf("board %s", fmt.Sprintf(format, args...))
	}
	conn, err := platformgrpc.DialWithHealth(
		ctx,
		addr,
		boardservice.ServiceName,
		timeouts.GRPCDial,
		logf,
		platformgrpc.DefaultClientDialOptions()...,
	)
	if err != nil {
		var dialErr *platformgrpc.DialError
		if errors.As(err, &dialErr) {
			if dialErr.Stage == platformgrpc.DialStageConnect {
				return nil, fmt.Errorf("connect to board at %s: %w", addr, dialErr.Err)
			}
			return nil, fmt.Errorf("board at %s is not healthy: %w", addr, dialErr.Err)
		}
		return nil, err
	}
	return conn, nil
}

// Close releases the gRPC connection held by the server.
func (s *Server) Close() error {
	if s == nil || s.conn == nil {
		return nil
	}
	if err := s.conn.Close(); err != nil {
		return err
	}
	s.conn = nil
	return nil
}

// serveWithTransport runs the MCP session and closes the board connection
// on every exit path.
func (s *Server) serveWithTransport(ctx context.Context, transport mcp.Transport) error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	closeErr := s.Close()
	if closeErr != nil {
		if err == nil {
			return fmt.Errorf("close gRPC connection: %w", closeErr)
		}
		return fmt.Errorf("serve MCP: %v; close gRPC connection: %w", err, closeErr)
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}
