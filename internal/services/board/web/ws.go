package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"sync"

	apperrors "github.com/louisbranch/beanmachine/internal/platform/errors"
	"github.com/louisbranch/beanmachine/internal/services/board/domain"
	"github.com/louisbranch/beanmachine/internal/services/board/runtime"
	"golang.org/x/net/websocket"
	"golang.org/x/text/message"
)

const maxDecodeErrorsPerConn = 3

const (
	frameSnapshot = "board.snapshot"
	frameReset    = "board.reset"
	frameSetRate  = "board.set_rate"
	frameAck      = "board.ack"
	frameError    = "board.error"
)

type wsFrame struct {
	Type      string          `json:"type"`
	RequestID string          `json:"request_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

type wsErrorEnvelope struct {
	Error wsError `json:"error"`
}

type wsError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type setRatePayload struct {
	Rate json.RawMessage `json:"rate"`
}

type snapshotPayload struct {
	Generation uint64   `json:"generation"`
	TotalPaths uint64   `json:"total_paths"`
	Rate       float64  `json:"rate"`
	Bins       []uint64 `json:"bins"`
	LastPath   []int    `json:"last_path"`
	Stats      Stats    `json:"stats"`
	SVG        string   `json:"svg"`
}

type wsPeer struct {
	mu      sync.Mutex
	encoder *json.Encoder
}

func (p *wsPeer) writeFrame(frame wsFrame) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.encoder.Encode(frame)
}

func handleWSConn(conn *websocket.Conn, engine *runtime.Engine) {
	defer func() {
		_ = conn.Close()
	}()

	tag := ResolveTag(conn.Request())
	printer := Printer(tag)
	peer := &wsPeer{encoder: json.NewEncoder(conn)}
	board := engine.Board()

	snapshots, unsubscribe := engine.Subscribe()
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for snap := range snapshots {
			if err := writeSnapshot(peer, printer, snap); err != nil {
				return
			}
		}
	}()
	defer func() {
		unsubscribe()
		<-writerDone
	}()

	if err := writeSnapshot(peer, printer, board.Snapshot()); err != nil {
		return
	}

	decoder := json.NewDecoder(conn)
	decodeErrors := 0
	for {
		var frame wsFrame
		if err := decoder.Decode(&frame); err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			decodeErrors++
			_ = writeWSError(peer, "", "INVALID_ARGUMENT", "invalid frame payload")
			if decodeErrors >= maxDecodeErrorsPerConn {
				return
			}
			continue
		}
		decodeErrors = 0

		var err error
		switch frame.Type {
		case frameReset:
			err = board.Apply(domain.Input{Kind: domain.InputReset, Source: domain.SourceWebSocket})
		case frameSetRate:
			err = applySetRate(board, frame.Payload)
		default:
			_ = writeWSError(peer, frame.RequestID, "INVALID_ARGUMENT", "unsupported frame type")
			continue
		}
		if err != nil {
			log.Printf("board: websocket %s rejected: %v", frame.Type, err)
			code := apperrors.GetCode(err)
			_ = writeWSError(peer, frame.RequestID, string(code), apperrors.LocalizedMessage(tag.String(), code, apperrors.GetMetadata(err)))
			continue
		}
		engine.Publish()
		_ = peer.writeFrame(wsFrame{Type: frameAck, RequestID: frame.RequestID, Payload: json.RawMessage(`{}`)})
	}
}

func applySetRate(board *domain.Board, raw json.RawMessage) error {
	var payload setRatePayload
	if err := json.Unmarshal(raw, &payload); err != nil || len(payload.Rate) == 0 {
		return apperrors.WithMetadata(apperrors.CodeInvalidRate, "set_rate payload requires a rate",
			map[string]string{"Rate": ""})
	}
	var rate float64
	if err := json.Unmarshal(payload.Rate, &rate); err != nil {
		var text string
		if err := json.Unmarshal(payload.Rate, &text); err != nil {
			return apperrors.WithMetadata(apperrors.CodeInvalidRate, "rate must be a number",
				map[string]string{"Rate": string(payload.Rate)})
		}
		parsed, err := domain.ParseRate(text)
		if err != nil {
			return err
		}
		rate = parsed
	}
	return board.Apply(domain.Input{Kind: domain.InputSetRate, Rate: rate, Source: domain.SourceWebSocket})
}

func writeSnapshot(peer *wsPeer, printer *message.Printer, snap domain.Snapshot) error {
	var svg bytes.Buffer
	if err := BoardSVG(snap).Render(context.Background(), &svg); err != nil {
		return err
	}
	histogram := snap.Histogram()
	return peer.writeFrame(wsFrame{
		Type: frameSnapshot,
		Payload: mustJSON(snapshotPayload{
			Generation: snap.Generation,
			TotalPaths: snap.TotalPaths(),
			Rate:       snap.Rate,
			Bins:       histogram.Bins,
			LastPath:   snap.LastPath(),
			Stats:      NewStats(printer, snap),
			SVG:        svg.String(),
		}),
	})
}

func writeWSError(peer *wsPeer, requestID, code, message string) error {
	return peer.writeFrame(wsFrame{
		Type:      frameError,
		RequestID: requestID,
		Payload:   mustJSON(wsErrorEnvelope{Error: wsError{Code: code, Message: message}}),
	})
}

func mustJSON(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		log.Printf("board: marshal websocket payload: %v", err)
		return nil
	}
	return b
}
