package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"csmedia/internal/config"
	"csmedia/internal/logging"
)

func TestNewFromConfigTeesJSONFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(t.TempDir(), "logs")
	cfg.Logging.Level = "debug"

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logging.NewComponentLogger(logger, "test").Debug("cache opened", logging.String(logging.FieldKind, "gel"))

	content, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, logging.LogFileName))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(content), &entry); err != nil {
		t.Fatalf("log file line is not JSON: %v\n%s", err, content)
	}
	if entry["msg"] != "cache opened" || entry["level"] != "debug" {
		t.Fatalf("unexpected entry %v", entry)
	}
	if entry[logging.FieldComponent] != "test" || entry[logging.FieldKind] != "gel" {
		t.Fatalf("expected component and kind fields, got %v", entry)
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatalf("expected ts key, got %v", entry)
	}
	if src, _ := entry["source"].(string); !strings.HasPrefix(src, "logger_test.go:") {
		t.Fatalf("expected short source at debug level, got %v", entry["source"])
	}
}

func TestConsoleOmitsSourceAndColorForInfo(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.NewComponentLogger(logger, "mediadb").Info("update finished", logging.Int("rows", 3))
	logger.Debug("hidden")

	out := buf.String()
	if !strings.Contains(out, "update finished") || !strings.Contains(out, "rows=3") {
		t.Fatalf("unexpected console output %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug line leaked at info level: %q", out)
	}
	if strings.Contains(out, ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("expected no color codes for a buffer, got %q", out)
	}
	if strings.Contains(out, "component=") {
		t.Fatalf("expected component to be hidden on console, got %q", out)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml", Writer: &bytes.Buffer{}}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestNewWritesToOutputPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.log")
	logger, err := logging.New(logging.Options{Format: "json", OutputPaths: []string{path, path}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Warn("once")
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if n := strings.Count(string(content), "once"); n != 1 {
		t.Fatalf("expected deduplicated outputs, message written %d times", n)
	}
}

func TestWithContextAddsRunID(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx := logging.ContextWithRunID(context.Background(), "run-1")
	logging.WithContext(ctx, logger).Info("tagged")
	logging.WithContext(context.Background(), logger).Info("untagged")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", buf.String())
	}
	if !strings.Contains(lines[0], `"run_id":"run-1"`) {
		t.Fatalf("expected run id, got %s", lines[0])
	}
	if strings.Contains(lines[1], "run_id") {
		t.Fatalf("unexpected run id, got %s", lines[1])
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	if logger.Enabled(context.Background(), 12) {
		t.Fatal("nop logger should not be enabled")
	}
	logging.NewComponentLogger(nil, "x").Error("dropped", logging.Error(nil))
}
