package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL != "https://jsonplaceholder.typicode.com" {
		t.Fatalf("unexpected base_url %q", cfg.BaseURL)
	}
	if cfg.Timeout != 10*time.Second {
		t.Fatalf("unexpected timeout %v", cfg.Timeout)
	}
	if cfg.MaxRetries != 3 {
		t.Fatalf("unexpected max_retries %d", cfg.MaxRetries)
	}
	if cfg.BackoffBase != 300*time.Millisecond {
		t.Fatalf("unexpected backoff base %v", cfg.BackoffBase)
	}
	want := []int{429, 500, 502, 503, 504}
	if len(cfg.RetryStatuses) != len(want) {
		t.Fatalf("unexpected retry statuses %v", cfg.RetryStatuses)
	}
	for i := range want {
		if cfg.RetryStatuses[i] != want[i] {
			t.Fatalf("unexpected retry statuses %v", cfg.RetryStatuses)
		}
	}
	if cfg.RunInterval != 0 {
		t.Fatalf("expected one-shot default, got %v", cfg.RunInterval)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("BASE_URL", "http://127.0.0.1:9999")
	t.Setenv("MAX_RETRIES", "5")
	t.Setenv("RETRY_STATUSES", "500, 503")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL != "http://127.0.0.1:9999" {
		t.Fatalf("override ignored, base_url %q", cfg.BaseURL)
	}
	if cfg.MaxRetries != 5 {
		t.Fatalf("override ignored, max_retries %d", cfg.MaxRetries)
	}
	if len(cfg.RetryStatuses) != 2 || cfg.RetryStatuses[0] != 500 || cfg.RetryStatuses[1] != 503 {
		t.Fatalf("override ignored, retry statuses %v", cfg.RetryStatuses)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
	}{
		{"empty base url", "BASE_URL", "   "},
		{"zero timeout", "TIMEOUT_SECONDS", "0"},
		{"negative retries", "MAX_RETRIES", "-1"},
		{"zero backoff base", "BACKOFF_BASE_MS", "0"},
		{"max below base", "BACKOFF_MAX_MS", "1"},
		{"negative interval", "RUN_INTERVAL", "-5"},
		{"garbage status", "RETRY_STATUSES", "500,abc"},
		{"status out of range", "RETRY_STATUSES", "9000"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", tc.key, tc.value)
			}
		})
	}
}

func TestParseStatusListEmpty(t *testing.T) {
	statuses, err := parseStatusList("  ")
	if err != nil {
		t.Fatalf("parseStatusList: %v", err)
	}
	if len(statuses) != 0 {
		t.Fatalf("expected empty list, got %v", statuses)
	}
}

func TestParseStatusListReportsOffendingToken(t *testing.T) {
	_, err := parseStatusList("429,oops")
	if err == nil || !strings.Contains(err.Error(), "oops") {
		t.Fatalf("expected error naming the bad token, got %v", err)
	}
}
