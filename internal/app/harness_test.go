package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/probehq/apiprobe/internal/config"
	"github.com/probehq/apiprobe/internal/mockapi"
)

const postSchemaSrc = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["userId", "id", "title", "body"],
  "properties": {
    "userId": {"type": "integer"},
    "id": {"type": "integer"},
    "title": {"type": "string"},
    "body": {"type": "string"}
  }
}`

func testConfig(t *testing.T) (*config.Config, string) {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		AppName:       "apiprobe",
		BaseURL:       "http://127.0.0.1:1", // replaced by the mock or per test
		SchemaFile:    filepath.Join(dir, "post.schema.json"),
		ReportersFile: filepath.Join(dir, "reporters.yaml"),
		ReportDir:     filepath.Join(dir, "reports"),
		Timeout:       5 * time.Second,
		MaxRetries:    1,
		BackoffBase:   time.Millisecond,
		BackoffMax:    10 * time.Millisecond,
		RetryStatuses: []int{429, 500, 502, 503, 504},
	}, dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestHarnessOneShotRunAgainstMock(t *testing.T) {
	cfg, _ := testConfig(t)
	cfg.UseMock = true
	writeFile(t, cfg.SchemaFile, postSchemaSrc)
	writeFile(t, cfg.ReportersFile, fmt.Sprintf(`
reporters:
  - id: file
    type: file
    file:
      dir: %s
      junit: true
`, cfg.ReportDir))

	h, err := NewHarness(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("NewHarness: %v", err)
	}

	if err := h.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	jsonReports, err := filepath.Glob(filepath.Join(cfg.ReportDir, "posts_*.json"))
	if err != nil || len(jsonReports) != 1 {
		t.Fatalf("expected one json report, got %v (err %v)", jsonReports, err)
	}
	xmlReports, err := filepath.Glob(filepath.Join(cfg.ReportDir, "posts_*.xml"))
	if err != nil || len(xmlReports) != 1 {
		t.Fatalf("expected one junit report, got %v (err %v)", xmlReports, err)
	}
}

func TestHarnessSignalsFailedRun(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"down"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg, _ := testConfig(t)
	cfg.BaseURL = srv.URL
	cfg.MaxRetries = 0
	writeFile(t, cfg.ReportersFile, "reporters:\n  - id: log\n    type: log\n")

	h, err := NewHarness(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("NewHarness: %v", err)
	}

	err = h.Run(context.Background())
	if !errors.Is(err, ErrRunFailed) {
		t.Fatalf("expected ErrRunFailed, got %v", err)
	}
}

func TestHarnessDefaultsReportersWhenFileMissing(t *testing.T) {
	cfg, _ := testConfig(t)
	cfg.UseMock = true

	h, err := NewHarness(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("NewHarness: %v", err)
	}
	defer h.close()

	if got := h.fanout.Size(); got != 2 {
		t.Fatalf("expected console and file reporters, got %d", got)
	}
}

func TestHarnessIntervalLoopsUntilCancelled(t *testing.T) {
	var calls atomic.Int64
	svc := mockapi.NewService(nil)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		svc.ServeHTTP(w, r)
	}))
	defer srv.Close()

	cfg, _ := testConfig(t)
	cfg.BaseURL = srv.URL
	cfg.RunInterval = 50 * time.Millisecond
	writeFile(t, cfg.ReportersFile, "reporters:\n  - id: log\n    type: log\n")

	h, err := NewHarness(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("NewHarness: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	if err := h.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// One suite run issues ten requests; two full runs prove the ticker fired.
	if calls.Load() < 20 {
		t.Fatalf("expected at least two suite runs, got %d requests", calls.Load())
	}
}

func TestNewHarnessRejectsNilConfig(t *testing.T) {
	if _, err := NewHarness(context.Background(), nil, nil); err == nil {
		t.Fatalf("expected error for nil config")
	}
}

func TestNewHarnessRejectsBadReportersFile(t *testing.T) {
	cfg, _ := testConfig(t)
	cfg.UseMock = true
	writeFile(t, cfg.ReportersFile, "reporters:\n  - id: x\n    type: carrier-pigeon\n")

	if _, err := NewHarness(context.Background(), cfg, nil); err == nil {
		t.Fatalf("expected error for unknown reporter type")
	}
}
