package reporters

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/probehq/apiprobe/internal/suite"
)

func sampleReport() suite.RunReport {
	return suite.RunReport{
		Suite:     "posts",
		Target:    "http://127.0.0.1:8080",
		StartedAt: time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC),
		Elapsed:   1250 * time.Millisecond,
		Total:     3,
		Passed:    2,
		Failed:    1,
		Results: []suite.Result{
			{Name: "list_posts", Status: suite.StatusPassed, Elapsed: 400 * time.Millisecond},
			{Name: "get_single_post", Status: suite.StatusPassed, Elapsed: 350 * time.Millisecond},
			{
				Name:    "create_post",
				Status:  suite.StatusFailed,
				Kind:    "validation",
				Err:     "unexpected status for POST /posts: got 500, want 201",
				Elapsed: 500 * time.Millisecond,
			},
		},
	}
}

func writeRegistryFile(t *testing.T, name, raw string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return path
}

func TestLoadRegistryEnabledFilter(t *testing.T) {
	raw := `
reporters:
  - id: hook1
    type: http
    enabled: false
    http:
      url: https://example.com
  - id: hook2
    type: http
    enabled: true
    http:
      url: https://example.com/2
`
	reg, err := LoadRegistry(writeRegistryFile(t, "reporters.yaml", raw))
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	enabled := reg.Enabled()
	if len(enabled) != 1 || enabled[0].ID != "hook2" {
		t.Fatalf("expected only hook2 enabled, got %#v", enabled)
	}
}

func TestLoadRegistryParsesJSON(t *testing.T) {
	raw := `{"reporters":[{"id":"c1","type":"console"},{"id":"f1","type":"file","file":{"dir":"./reports","junit":true}}]}`
	reg, err := LoadRegistry(writeRegistryFile(t, "reporters.json", raw))
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	if got := len(reg.All()); got != 2 {
		t.Fatalf("expected 2 reporters, got %d", got)
	}
	cfg, ok := reg.ByID("f1")
	if !ok || cfg.File == nil || !cfg.File.JUnit {
		t.Fatalf("f1 lookup failed: %#v", cfg)
	}
}

func TestLoadRegistryRejectsDuplicateIDs(t *testing.T) {
	raw := `
reporters:
  - id: c1
    type: console
  - id: c1
    type: log
`
	_, err := LoadRegistry(writeRegistryFile(t, "reporters.yaml", raw))
	if err == nil || !strings.Contains(err.Error(), "duplicate reporter id") {
		t.Fatalf("expected duplicate id error, got %v", err)
	}
}

func TestLoadRegistryRejectsUnknownType(t *testing.T) {
	raw := `
reporters:
  - id: x1
    type: carrier-pigeon
`
	_, err := LoadRegistry(writeRegistryFile(t, "reporters.yaml", raw))
	if err == nil || !strings.Contains(err.Error(), "unknown reporter type") {
		t.Fatalf("expected unknown type error, got %v", err)
	}
}

func TestLoadRegistryRejectsEmptyFile(t *testing.T) {
	_, err := LoadRegistry(writeRegistryFile(t, "reporters.yaml", "reporters: []\n"))
	if err == nil {
		t.Fatalf("expected error for empty reporters list")
	}
}

func TestValidateReporterConfigRequiredFields(t *testing.T) {
	tests := []struct {
		name string
		cfg  ReporterConfig
	}{
		{"missing id", ReporterConfig{Type: TypeConsole}},
		{"missing type", ReporterConfig{ID: "r1"}},
		{"missing http block", ReporterConfig{ID: "h1", Type: TypeHTTP}},
		{"missing http url", ReporterConfig{ID: "h1", Type: TypeHTTP, HTTP: &HTTPReporterConfig{}}},
		{"missing file block", ReporterConfig{ID: "f1", Type: TypeFile}},
		{"missing file dir", ReporterConfig{ID: "f1", Type: TypeFile, File: &FileReporterConfig{}}},
		{"missing sqs region", ReporterConfig{ID: "q1", Type: TypeSQS, SQS: &SQSReporterConfig{QueueURL: "https://example.com/q"}}},
		{"missing sns topic", ReporterConfig{ID: "t1", Type: TypeSNS, SNS: &SNSReporterConfig{Region: "us-east-1"}}},
		{"missing pubsub project", ReporterConfig{ID: "p1", Type: TypeGCPPubSub, PubSub: &GCPPubSubReporterConfig{Topic: "runs"}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := validateReporterConfig(tc.cfg); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestSanitizeAppliesHTTPDefaults(t *testing.T) {
	cfg := sanitizeReporterConfig(ReporterConfig{
		ID:   " hook ",
		Type: " HTTP ",
		HTTP: &HTTPReporterConfig{
			URL:     " https://example.com ",
			Headers: map[string]string{" X-Token ": " abc ", "Empty": " "},
		},
	})

	if cfg.ID != "hook" || cfg.Type != TypeHTTP {
		t.Fatalf("id/type not trimmed: %q %q", cfg.ID, cfg.Type)
	}
	if cfg.HTTP.URL != "https://example.com" {
		t.Fatalf("url not trimmed: %q", cfg.HTTP.URL)
	}
	if cfg.HTTP.Method != "POST" {
		t.Fatalf("method default: %q", cfg.HTTP.Method)
	}
	if cfg.HTTP.TimeoutSeconds != 5 {
		t.Fatalf("timeout default: %d", cfg.HTTP.TimeoutSeconds)
	}
	if len(cfg.HTTP.Headers) != 1 || cfg.HTTP.Headers["X-Token"] != "abc" {
		t.Fatalf("headers not sanitized: %#v", cfg.HTTP.Headers)
	}
	if !cfg.EnabledValue() {
		t.Fatalf("enabled should default to true")
	}
}
