package reporters

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"

	"github.com/probehq/apiprobe/internal/suite"
)

// fileReporter writes each run report as a JSON document, and optionally as
// JUnit XML for CI consumption, into the configured directory.
type fileReporter struct {
	id    string
	typ   string
	dir   string
	junit bool
	log   Logger
}

func newFileReporter(_ context.Context, cfg ReporterConfig, log Logger) (Reporter, error) {
	if cfg.File == nil {
		return nil, fmt.Errorf("reporter %q missing file configuration", cfg.ID)
	}
	return &fileReporter{
		id:    cfg.ID,
		typ:   TypeFile,
		dir:   cfg.File.Dir,
		junit: cfg.File.JUnit,
		log:   ensureLogger(log),
	}, nil
}

func (f *fileReporter) ID() string   { return f.id }
func (f *fileReporter) Type() string { return f.typ }

func (f *fileReporter) Publish(_ context.Context, report suite.RunReport) error {
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}

	base := fmt.Sprintf("%s_%s", report.Suite, report.StartedAt.Format("20060102_150405"))

	payload, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	payload = append(payload, '\n')

	jsonPath := filepath.Join(f.dir, base+".json")
	if err := os.WriteFile(jsonPath, payload, 0o644); err != nil {
		return fmt.Errorf("write json report: %w", err)
	}
	f.log.DebugObj("report written", "report_file", jsonPath)

	if !f.junit {
		return nil
	}

	doc, err := xml.MarshalIndent(junitDocument(report), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal junit report: %w", err)
	}
	doc = append(doc, '\n')

	xmlPath := filepath.Join(f.dir, base+".xml")
	if err := os.WriteFile(xmlPath, doc, 0o644); err != nil {
		return fmt.Errorf("write junit report: %w", err)
	}
	f.log.DebugObj("junit report written", "report_file", xmlPath)
	return nil
}
