package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestNewTeeHandlerCollapses(t *testing.T) {
	if _, ok := newTeeHandler(nil, nil).(NoopHandler); !ok {
		t.Fatal("expected NoopHandler when no handlers remain")
	}
	inner := slog.NewJSONHandler(&bytes.Buffer{}, nil)
	if newTeeHandler(nil, inner) != inner {
		t.Fatal("expected a single handler to be returned unwrapped")
	}
}

func TestTeeHandlerRespectsEachLevel(t *testing.T) {
	var infoBuf, debugBuf bytes.Buffer
	h := newTeeHandler(
		slog.NewJSONHandler(&infoBuf, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewJSONHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug}),
	)
	if !h.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("expected tee enabled when any handler accepts debug")
	}

	logger := slog.New(h).With("kind", "gobo").WithGroup("g")
	logger.Debug("detail", "n", 1)
	logger.Info("summary")

	if strings.Contains(infoBuf.String(), "detail") {
		t.Fatalf("info handler received debug record: %s", infoBuf.String())
	}
	if !strings.Contains(infoBuf.String(), "summary") || !strings.Contains(debugBuf.String(), "detail") {
		t.Fatalf("records not forwarded: info=%s debug=%s", infoBuf.String(), debugBuf.String())
	}
	if !strings.Contains(debugBuf.String(), `"kind":"gobo"`) || !strings.Contains(debugBuf.String(), `"g":{"n":1}`) {
		t.Fatalf("attrs or groups lost: %s", debugBuf.String())
	}
}
