// Package server wires the board runtime, its control journal and the gRPC
// and web lifecycles.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/louisbranch/beanmachine/internal/platform/config"
	"github.com/louisbranch/beanmachine/internal/platform/timeouts"
	boardservice "github.com/louisbranch/beanmachine/internal/services/board/api/grpc/board"
	"github.com/louisbranch/beanmachine/internal/services/board/domain"
	"github.com/louisbranch/beanmachine/internal/services/board/runtime"
	boardsqlite "github.com/louisbranch/beanmachine/internal/services/board/storage/sqlite"
	"github.com/louisbranch/beanmachine/internal/services/board/web"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

type serverEnv struct {
	DBPath string `env:"BEANMACHINE_BOARD_DB_PATH"`
}

func loadServerEnv() serverEnv {
	var cfg serverEnv
	_ = config.ParseEnv(&cfg)
	if strings.TrimSpace(cfg.DBPath) == "" {
		cfg.DBPath = filepath.Join("data", "board.db")
	}
	return cfg
}

// Options configures a board server.
type Options struct {
	// Addr is the gRPC listen address.
	Addr string
	// HTTPAddr is the web view listen address. Empty disables the web view.
	HTTPAddr      string
	Board         domain.Config
	Seed          int64
	FrameInterval time.Duration
}

// Server hosts the animated board behind gRPC and HTTP.
type Server struct {
	listener     net.Listener
	httpListener net.Listener
	grpcServer   *grpc.Server
	httpServer   *http.Server
	health       *health.Server
	store        *boardsqlite.Store
	engine       *runtime.Engine
}

// New builds the board, opens the journal and binds both listeners.
func New(opts Options) (*Server, error) {
	board, err := domain.New(opts.Board, opts.Seed)
	if err != nil {
		return nil, fmt.Errorf("build board: %w", err)
	}

	env := loadServerEnv()
	store, err := openBoardStore(env.DBPath)
	if err != nil {
		return nil, err
	}
	board.OnControl(journal(store))

	listener, err := net.Listen("tcp", opts.Addr)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("listen on %s: %w", opts.Addr, err)
	}

	interval := opts.FrameInterval
	if interval <= 0 {
		interval = runtime.DefaultFrameInterval
	}
	engine := runtime.New(board, runtime.NewTickerSource(interval))

	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthServer := health.NewServer()
	boardservice.RegisterBoardServer(grpcServer, boardservice.NewService(board, store, engine.Publish))
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(boardservice.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	srv := &Server{
		listener:   listener,
		grpcServer: grpcServer,
		health:     healthServer,
		store:      store,
		engine:     engine,
	}

	if strings.TrimSpace(opts.HTTPAddr) != "" {
		httpListener, err := net.Listen("tcp", opts.HTTPAddr)
		if err != nil {
			srv.Close()
			return nil, fmt.Errorf("listen on %s: %w", opts.HTTPAddr, err)
		}
		srv.httpListener = httpListener
		srv.httpServer = &http.Server{
			Handler:           web.NewHandler(engine),
			ReadHeaderTimeout: timeouts.ReadHeader,
		}
	}
	return srv, nil
}

// journal records every control event and logs it.
func journal(store *boardsqlite.Store) func(domain.ControlEvent) {
	return func(event domain.ControlEvent) {
		if event.Kind == domain.ControlSetRateRejected {
			log.Printf("board: %s from %s rejected: %s", event.Kind, event.Source, event.Message)
		} else {
			log.Printf("board: %s from %s (rate %.2f, %d paths)", event.Kind, event.Source, event.Rate, event.TotalPaths)
		}
		if _, err := store.AppendControlEvent(context.Background(), event); err != nil {
			log.Printf("board: journal %s: %v", event.Kind, err)
		}
	}
}

// Addr returns the gRPC listener address.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// HTTPAddr returns the web view listener address, or "" when disabled.
func (s *Server) HTTPAddr() string {
	if s == nil || s.httpListener == nil {
		return ""
	}
	return s.httpListener.Addr().String()
}

// Engine returns the runtime driving the board.
func (s *Server) Engine() *runtime.Engine {
	if s == nil {
		return nil
	}
	return s.engine
}

// Run creates and serves a board server until context cancellation.
func Run(ctx context.Context, opts Options) error {
	server, err := New(opts)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// Serve runs the frame loop, the gRPC API and the web view until ctx is
// cancelled or one of them fails.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil {
		return errors.New("server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.Close()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	errs := make(chan error, 3)
	running := 2

	go func() {
		if err := s.engine.Run(runCtx); err != nil {
			errs <- fmt.Errorf("run board: %w", err)
			return
		}
		errs <- nil
	}()

	log.Printf("board gRPC listening at %v", s.listener.Addr())
	go func() {
		err := s.grpcServer.Serve(s.listener)
		if err == nil || errors.Is(err, grpc.ErrServerStopped) {
			errs <- nil
			return
		}
		errs <- fmt.Errorf("serve gRPC: %w", err)
	}()

	if s.httpServer != nil {
		running++
		log.Printf("board web view listening at http://%v", s.httpListener.Addr())
		go func() {
			err := s.httpServer.Serve(s.httpListener)
			if err == nil || errors.Is(err, http.ErrServerClosed) {
				errs <- nil
				return
			}
			errs <- fmt.Errorf("serve http: %w", err)
		}()
	}

	var firstErr error
	select {
	case <-ctx.Done():
	case firstErr = <-errs:
		running--
	}

	cancel()
	if s.health != nil {
		s.health.Shutdown()
	}
	if s.httpServer != nil {
		shutdownCtx, stop := context.WithTimeout(context.Background(), timeouts.Shutdown)
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("shutdown http server: %w", err)
		}
		stop()
	}
	s.grpcServer.GracefulStop()

	for ; running > 0; running-- {
		if err := <-errs; err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Close releases server resources.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.health != nil {
		s.health.Shutdown()
	}
	if s.grpcServer != nil {
		s.grpcServer.Stop()
	}
	if s.listener != nil {
		_ = s.listener.Close()
	}
	if s.httpServer != nil {
		_ = s.httpServer.Close()
	}
	if s.httpListener != nil {
		_ = s.httpListener.Close()
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			log.Printf("close board store: %v", err)
		}
	}
}

func openBoardStore(path string) (*boardsqlite.Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	store, err := boardsqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open board sqlite store: %w", err)
	}
	return store, nil
}
