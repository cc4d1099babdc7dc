package web

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/louisbranch/beanmachine/internal/services/board/domain"
	"golang.org/x/text/language"
)

func TestPage_RendersControlsAndScript(t *testing.T) {
	board, err := domain.New(domain.Config{Rows: 2, Rate: 12.5, BatchSize: 3}, 1)
	if err != nil {
		t.Fatalf("new board: %v", err)
	}

	var buf bytes.Buffer
	if err := Page(language.MustParse("pt-BR"), board.Snapshot()).Render(context.Background(), &buf); err != nil {
		t.Fatalf("render page: %v", err)
	}
	body := buf.String()
	for _, want := range []string{
		`<html lang="pt-BR">`,
		`id="rate" name="rate" type="number" min="0.01" step="any" value="12.50"`,
		`<div id="board"><svg`,
		`new WebSocket(`,
		`</script></body></html>`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("page missing %q:\n%s", want, body)
		}
	}
}

func TestPage_CancelledContext(t *testing.T) {
	board, err := domain.New(domain.DefaultConfig(), 1)
	if err != nil {
		t.Fatalf("new board: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Page(language.AmericanEnglish, board.Snapshot()).Render(ctx, &bytes.Buffer{}); err == nil {
		t.Fatal("expected render to stop on a cancelled context")
	}
}
