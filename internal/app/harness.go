package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/probehq/apiprobe/internal/config"
	"github.com/probehq/apiprobe/internal/logger"
	"github.com/probehq/apiprobe/internal/mockapi"
	"github.com/probehq/apiprobe/internal/posts"
	"github.com/probehq/apiprobe/internal/suite"
	"github.com/probehq/apiprobe/pkg/apiclient"
	"github.com/probehq/apiprobe/pkg/expect"
	"github.com/probehq/apiprobe/pkg/reporters"
)

// ErrRunFailed reports that a completed suite run had failing cases. Callers
// use it to exit non-zero without treating the run itself as broken.
var ErrRunFailed = errors.New("suite run had failures")

// Harness represents the probe runtime. It manages the run loop,
// coordinating between the HTTP client, the posts suite, and the report
// fanout. It also owns the optional in-process mock API and the client
// session.
type Harness struct {
	cfg         *config.Config
	client      *apiclient.Client
	runner      *suite.Runner
	cases       []suite.Case
	fanout      *reporters.Fanout
	runInterval time.Duration
	log         logger.Logger
	mock        *mockapi.Server
}

// NewHarness builds a probe runtime from config files.
func NewHarness(ctx context.Context, cfg *config.Config, log logger.Logger) (*Harness, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	schema, err := loadSchema(cfg, log)
	if err != nil {
		return nil, err
	}

	baseURL := cfg.BaseURL
	var mock *mockapi.Server
	if cfg.UseMock {
		mock, err = mockapi.NewService(log).Listen("127.0.0.1:0")
		if err != nil {
			return nil, fmt.Errorf("start mock api: %w", err)
		}
		baseURL = mock.BaseURL()
		log.InfoObj("mock mode enabled, overriding base url", "base_url", baseURL)
	}

	client, err := apiclient.New(apiclient.Config{
		BaseURL:       baseURL,
		Timeout:       cfg.Timeout,
		MaxRetries:    cfg.MaxRetries,
		Backoff:       apiclient.ExponentialBackoff(cfg.BackoffBase),
		MaxBackoff:    cfg.BackoffMax,
		RetryStatuses: cfg.RetryStatuses,
	}, log)
	if err != nil {
		closeMock(mock, log)
		return nil, fmt.Errorf("build api client: %w", err)
	}

	fanout, err := buildReporters(ctx, cfg, log)
	if err != nil {
		client.Close()
		closeMock(mock, log)
		return nil, err
	}

	runner, err := suite.NewRunner("posts", &suite.Env{
		Client: client,
		Schema: schema,
		Log:    log,
	})
	if err != nil {
		client.Close()
		closeMock(mock, log)
		return nil, fmt.Errorf("build suite runner: %w", err)
	}

	return &Harness{
		cfg:         cfg,
		client:      client,
		runner:      runner,
		cases:       posts.Cases(),
		fanout:      fanout,
		runInterval: cfg.RunInterval,
		log:         log,
		mock:        mock,
	}, nil
}

// loadSchema compiles the post schema from the configured file, falling back
// to the embedded copy when the file is absent.
func loadSchema(cfg *config.Config, log logger.Logger) (*expect.Document, error) {
	schema, err := expect.LoadFile(cfg.SchemaFile)
	if err == nil {
		log.InfoObj("schema loaded", "schema_file", cfg.SchemaFile)
		return schema, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load schema: %w", err)
	}
	log.WarnObj("schema file missing, using embedded schema", "schema_file", cfg.SchemaFile)
	return posts.Schema(), nil
}

// buildReporters loads the reporter registry and assembles the fanout. When
// the reporters file is absent, a console + file pair derived from config
// takes its place.
func buildReporters(ctx context.Context, cfg *config.Config, log logger.Logger) (*reporters.Fanout, error) {
	var enabled []reporters.ReporterConfig

	reg, err := reporters.LoadRegistry(cfg.ReportersFile)
	switch {
	case err == nil:
		enabled = reg.Enabled()
		if len(enabled) == 0 {
			return nil, fmt.Errorf("no reporters configured")
		}
	case errors.Is(err, os.ErrNotExist):
		log.WarnObj("reporters file missing, using console and file reporters", "reporters_file", cfg.ReportersFile)
		enabled = []reporters.ReporterConfig{
			{ID: "console", Type: reporters.TypeConsole},
			{ID: "file", Type: reporters.TypeFile, File: &reporters.FileReporterConfig{Dir: cfg.ReportDir, JUnit: true}},
		}
	default:
		return nil, fmt.Errorf("load reporters registry: %w", err)
	}

	reps, err := reporters.BuildAll(ctx, reporters.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build reporters: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, repCfg := range enabled {
		summaries = append(summaries, map[string]string{
			"id":   repCfg.ID,
			"type": repCfg.Type,
		})
	}
	log.InfoObj("reporters registry loaded", "reporters_meta", map[string]any{
		"count":     len(summaries),
		"reporters": summaries,
	})

	return reporters.NewFanout(reps), nil
}

// Run executes the suite once, or on a ticker until the context is
// cancelled when a run interval is configured. The returned error is
// ErrRunFailed when the last completed run had failing cases.
func (h *Harness) Run(ctx context.Context) error {
	if h == nil || h.runner == nil {
		return fmt.Errorf("harness is not initialized")
	}
	defer h.close()

	h.log.InfoObj("harness starting", "harness_state", map[string]any{
		"cases_count":     len(h.cases),
		"reporters_count": h.fanout.Size(),
		"target":          h.client.BaseURL(),
		"run_interval":    h.runInterval.String(),
	})

	lastErr := h.runOnce(ctx)
	if h.runInterval <= 0 {
		return lastErr
	}
	if lastErr != nil {
		h.log.ErrorObj("initial run failed", "error", lastErr)
	}

	ticker := time.NewTicker(h.runInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.log.InfoObj("harness loop exiting", "reason", ctx.Err())
			return lastErr
		case <-ticker.C:
			if lastErr = h.runOnce(ctx); lastErr != nil {
				h.log.ErrorObj("scheduled run failed", "error", lastErr)
			}
		}
	}
}

// runOnce performs a single suite run and fans the report out. Reporter
// failures are logged, never folded into the run outcome.
func (h *Harness) runOnce(ctx context.Context) error {
	start := time.Now()
	h.log.InfoObj("run started", "run_meta", map[string]any{
		"cases_count": len(h.cases),
		"started_at":  start.UTC(),
	})

	report, err := h.runner.Run(ctx, h.cases)
	if err != nil {
		return err
	}

	if delivered, err := h.fanout.Publish(ctx, *report); err != nil {
		h.log.ErrorObj("report delivery incomplete", "reporter_errors", map[string]any{
			"delivered": delivered,
			"of":        h.fanout.Size(),
			"error":     err.Error(),
		})
	}

	h.log.InfoObj("run completed", "run_meta", map[string]any{
		"total":      report.Total,
		"passed":     report.Passed,
		"failed":     report.Failed,
		"elapsed_ms": time.Since(start).Milliseconds(),
	})

	if !report.Ok() {
		return fmt.Errorf("%w: %d of %d cases", ErrRunFailed, report.Failed, report.Total)
	}
	return nil
}

// close releases the client session and the mock server, logging any errors
// encountered.
func (h *Harness) close() {
	if h == nil {
		return
	}
	if h.client != nil {
		h.client.Close()
	}
	closeMock(h.mock, h.log)
}

func closeMock(mock *mockapi.Server, log logger.Logger) {
	if mock == nil {
		return
	}
	if err := mock.Close(); err != nil {
		log.ErrorObj("mock api close failed", "error", err)
	}
}
