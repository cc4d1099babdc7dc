// Package web serves the board as an SVG page with a websocket live feed.
package web

import (
	"bytes"
	"context"
	"log"
	"net/http"

	"github.com/louisbranch/beanmachine/internal/services/board/runtime"
	"golang.org/x/net/websocket"
)

// NewHandler creates the web routes for engine's board.
func NewHandler(engine *runtime.Engine) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/up", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		if !allowGet(w, r) {
			return
		}
		snap := engine.Board().Snapshot()
		render(w, r.Context(), "text/html; charset=utf-8", func(ctx context.Context, buf *bytes.Buffer) error {
			return Page(ResolveTag(r), snap).Render(ctx, buf)
		})
	})

	mux.HandleFunc("/board.svg", func(w http.ResponseWriter, r *http.Request) {
		if !allowGet(w, r) {
			return
		}
		snap := engine.Board().Snapshot()
		render(w, r.Context(), "image/svg+xml", func(ctx context.Context, buf *bytes.Buffer) error {
			return BoardSVG(snap).Render(ctx, buf)
		})
	})

	wsHandler := websocket.Handler(func(conn *websocket.Conn) {
		handleWSConn(conn, engine)
	})
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		if !allowGet(w, r) {
			return
		}
		wsHandler.ServeHTTP(w, r)
	})

	return mux
}

func allowGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return true
	}
	w.Header().Set("Allow", http.MethodGet)
	http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	return false
}

func render(w http.ResponseWriter, ctx context.Context, contentType string, fn func(context.Context, *bytes.Buffer) error) {
	var buf bytes.Buffer
	if err := fn(ctx, &buf); err != nil {
		log.Printf("board: render %s: %v", contentType, err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}
