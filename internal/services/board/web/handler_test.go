package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/louisbranch/beanmachine/internal/core/pathsim"
	"github.com/louisbranch/beanmachine/internal/services/board/domain"
	"github.com/louisbranch/beanmachine/internal/services/board/runtime"
	"golang.org/x/net/websocket"
)

func newTestEngine(t *testing.T) *runtime.Engine {
	t.Helper()
	choices, err := pathsim.ParseChoices("LL LR RL RR")
	if err != nil {
		t.Fatalf("parse choices: %v", err)
	}
	board, err := domain.New(domain.Config{Rows: 2, Rate: 10, BatchSize: 1}, 1,
		domain.WithCoin(pathsim.NewSequenceCoin(choices)))
	if err != nil {
		t.Fatalf("new board: %v", err)
	}
	if _, err := board.Step(4); err != nil {
		t.Fatalf("step: %v", err)
	}
	return runtime.New(board, runtime.NewManualSource())
}

func get(t *testing.T, handler http.Handler, target string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for key, value := range header {
		req.Header.Set(key, value)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHandler_Up(t *testing.T) {
	rec := get(t, NewHandler(newTestEngine(t)), "/up", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Fatalf("GET /up = %d %q", rec.Code, rec.Body.String())
	}
}

func TestHandler_Page(t *testing.T) {
	handler := NewHandler(newTestEngine(t))

	rec := get(t, handler, "/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET / = %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/html") {
		t.Fatalf("content type = %q", got)
	}
	body := rec.Body.String()
	for _, want := range []string{"Paths: 4", "<svg", `id="reset"`, `lang="en-US"`} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}

	rec = get(t, handler, "/?lang=pt-BR", nil)
	if !strings.Contains(rec.Body.String(), "Caminhos: 4") {
		t.Errorf("pt-BR page missing localized path count")
	}

	rec = get(t, handler, "/", map[string]string{"Accept-Language": "pt-BR,pt;q=0.9"})
	if !strings.Contains(rec.Body.String(), "Reiniciar") {
		t.Errorf("Accept-Language page missing localized reset label")
	}
}

func TestHandler_UnknownPath(t *testing.T) {
	rec := get(t, NewHandler(newTestEngine(t)), "/nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("GET /nope = %d", rec.Code)
	}
}

func TestHandler_BoardSVG(t *testing.T) {
	rec := get(t, NewHandler(newTestEngine(t)), "/board.svg", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /board.svg = %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "image/svg+xml" {
		t.Fatalf("content type = %q", got)
	}
	body := rec.Body.String()
	if !strings.HasPrefix(body, "<svg") || !strings.HasSuffix(body, "</svg>") {
		t.Fatalf("body is not a standalone svg: %.40q", body)
	}
	if !strings.Contains(body, `data-total-paths="4"`) {
		t.Errorf("svg missing total paths attribute")
	}
	// 3 pins for 2 rows.
	if got := strings.Count(body, "<circle"); got != 3 {
		t.Errorf("circles = %d, want 3", got)
	}
	// 3 bins plus the background.
	if got := strings.Count(body, "<rect"); got != 4 {
		t.Errorf("rects = %d, want 4", got)
	}
	if !strings.Contains(body, `class="latest"`) || !strings.Contains(body, `class="expected"`) {
		t.Errorf("svg missing latest path or expected curve")
	}
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	handler := NewHandler(newTestEngine(t))
	req := httptest.NewRequest(http.MethodPost, "/board.svg", strings.NewReader(""))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("POST /board.svg = %d", rec.Code)
	}
	if got := rec.Header().Get("Allow"); got != http.MethodGet {
		t.Fatalf("Allow = %q", got)
	}
}

func TestBoardSVG_EmptyBoard(t *testing.T) {
	board, err := domain.New(domain.Config{Rows: 3, Rate: 1, BatchSize: 1}, 1)
	if err != nil {
		t.Fatalf("new board: %v", err)
	}
	rec := get(t, NewHandler(runtime.New(board, runtime.NewManualSource())), "/board.svg", nil)
	body := rec.Body.String()
	if strings.Contains(body, `class="latest"`) || strings.Contains(body, `class="expected"`) {
		t.Fatalf("empty board should not draw a path or expected curve")
	}
	if strings.Contains(body, "<line") {
		t.Fatalf("empty board should not draw edges")
	}
}

type wsClient struct {
	t       *testing.T
	conn    *websocket.Conn
	decoder *json.Decoder
}

func dialWS(t *testing.T, server *httptest.Server, query string) *wsClient {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws" + query
	conn, err := websocket.Dial(url, "", server.URL)
	if err != nil {
		t.Fatalf("dial websocket: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return &wsClient{t: t, conn: conn, decoder: json.NewDecoder(conn)}
}

func (c *wsClient) send(frame wsFrame) {
	c.t.Helper()
	if err := json.NewEncoder(c.conn).Encode(frame); err != nil {
		c.t.Fatalf("send frame: %v", err)
	}
}

func (c *wsClient) sendRaw(text string) {
	c.t.Helper()
	if _, err := io.WriteString(c.conn, text); err != nil {
		c.t.Fatalf("send raw: %v", err)
	}
}

// next reads frames until one of the wanted type arrives.
func (c *wsClient) next(frameType string) wsFrame {
	c.t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var frame wsFrame
		if err := c.decoder.Decode(&frame); err != nil {
			c.t.Fatalf("read %s frame: %v", frameType, err)
		}
		if frame.Type == frameType {
			return frame
		}
	}
}

func decodeSnapshot(t *testing.T, frame wsFrame) snapshotPayload {
	t.Helper()
	var payload snapshotPayload
	if err := json.Unmarshal(frame.Payload, &payload); err != nil {
		t.Fatalf("decode snapshot payload: %v", err)
	}
	return payload
}

func decodeError(t *testing.T, frame wsFrame) wsError {
	t.Helper()
	var envelope wsErrorEnvelope
	if err := json.Unmarshal(frame.Payload, &envelope); err != nil {
		t.Fatalf("decode error payload: %v", err)
	}
	return envelope.Error
}

func TestWebSocket_InitialSnapshotAndReset(t *testing.T) {
	engine := newTestEngine(t)
	server := httptest.NewServer(NewHandler(engine))
	defer server.Close()

	client := dialWS(t, server, "?lang=pt-BR")
	initial := decodeSnapshot(t, client.next(frameSnapshot))
	if initial.TotalPaths != 4 || initial.Generation != 0 {
		t.Fatalf("initial snapshot = %d paths generation %d", initial.TotalPaths, initial.Generation)
	}
	if want := []uint64{1, 2, 1}; len(initial.Bins) != 3 || initial.Bins[0] != want[0] || initial.Bins[1] != want[1] || initial.Bins[2] != want[2] {
		t.Fatalf("bins = %v, want %v", initial.Bins, want)
	}
	if initial.Stats.Paths != "Caminhos: 4" {
		t.Fatalf("stats paths = %q", initial.Stats.Paths)
	}
	if !strings.HasPrefix(initial.SVG, "<svg") {
		t.Fatalf("svg payload = %.20q", initial.SVG)
	}

	client.send(wsFrame{Type: frameReset, RequestID: "1"})
	// The ack and the reset snapshot may arrive in either order.
	_ = client.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	acked, published := false, false
	for !acked || !published {
		var frame wsFrame
		if err := client.decoder.Decode(&frame); err != nil {
			t.Fatalf("read frame: %v", err)
		}
		switch frame.Type {
		case frameAck:
			if frame.RequestID != "1" {
				t.Fatalf("ack request id = %q", frame.RequestID)
			}
			acked = true
		case frameSnapshot:
			snap := decodeSnapshot(t, frame)
			if snap.Generation == 1 {
				if snap.TotalPaths != 0 {
					t.Fatalf("reset snapshot has %d paths", snap.TotalPaths)
				}
				published = true
			}
		}
	}
	if got := engine.Board().Snapshot().TotalPaths(); got != 0 {
		t.Fatalf("total paths after reset = %d", got)
	}
}

func TestWebSocket_SetRate(t *testing.T) {
	engine := newTestEngine(t)
	server := httptest.NewServer(NewHandler(engine))
	defer server.Close()

	client := dialWS(t, server, "")
	client.next(frameSnapshot)

	client.send(wsFrame{Type: frameSetRate, RequestID: "a", Payload: json.RawMessage(`{"rate":"12.5"}`)})
	client.next(frameAck)
	if got := engine.Board().Rate(); got != 12.5 {
		t.Fatalf("rate after string payload = %v", got)
	}

	client.send(wsFrame{Type: frameSetRate, RequestID: "b", Payload: json.RawMessage(`{"rate":3}`)})
	client.next(frameAck)
	if got := engine.Board().Rate(); got != 3 {
		t.Fatalf("rate after number payload = %v", got)
	}

	client.send(wsFrame{Type: frameSetRate, RequestID: "c", Payload: json.RawMessage(`{"rate":"-1"}`)})
	errFrame := client.next(frameError)
	if errFrame.RequestID != "c" {
		t.Fatalf("error request id = %q", errFrame.RequestID)
	}
	wsErr := decodeError(t, errFrame)
	if wsErr.Code != "INVALID_RATE" {
		t.Fatalf("error code = %q", wsErr.Code)
	}
	if !strings.Contains(wsErr.Message, "-1") {
		t.Fatalf("error message = %q", wsErr.Message)
	}
	if got := engine.Board().Rate(); got != 3 {
		t.Fatalf("rejected rate changed the board: %v", got)
	}

	client.send(wsFrame{Type: frameSetRate, RequestID: "d", Payload: json.RawMessage(`{"rate":"fast"}`)})
	if got := decodeError(t, client.next(frameError)).Code; got != "INVALID_RATE" {
		t.Fatalf("unparsable rate code = %q", got)
	}
}

func TestWebSocket_LocalizedError(t *testing.T) {
	server := httptest.NewServer(NewHandler(newTestEngine(t)))
	defer server.Close()

	client := dialWS(t, server, "?lang=pt-BR")
	client.next(frameSnapshot)

	client.send(wsFrame{Type: frameSetRate, RequestID: "pt", Payload: json.RawMessage(`{"rate":0}`)})
	wsErr := decodeError(t, client.next(frameError))
	if wsErr.Code != "INVALID_RATE" {
		t.Fatalf("error code = %q", wsErr.Code)
	}
	if !strings.HasPrefix(wsErr.Message, "A velocidade da animação") {
		t.Fatalf("error message = %q, want pt-BR", wsErr.Message)
	}
}

func TestWebSocket_UnsupportedFrame(t *testing.T) {
	server := httptest.NewServer(NewHandler(newTestEngine(t)))
	defer server.Close()

	client := dialWS(t, server, "")
	client.next(frameSnapshot)

	client.send(wsFrame{Type: "board.launch", RequestID: "x"})
	errFrame := client.next(frameError)
	if got := decodeError(t, errFrame).Code; got != "INVALID_ARGUMENT" {
		t.Fatalf("code = %q", got)
	}

	client.sendRaw("{not json}")
	if got := decodeError(t, client.next(frameError)).Code; got != "INVALID_ARGUMENT" {
		t.Fatalf("decode error code = %q", got)
	}
}
