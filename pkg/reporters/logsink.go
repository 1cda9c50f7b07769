package reporters

import (
	"context"

	"github.com/probehq/apiprobe/internal/suite"
)

// logReporter emits the run summary through the structured logger, for
// deployments that scrape logs instead of report files.
type logReporter struct {
	id  string
	typ string
	log Logger
}

func newLogReporter(_ context.Context, cfg ReporterConfig, log Logger) (Reporter, error) {
	return &logReporter{
		id:  cfg.ID,
		typ: TypeLog,
		log: ensureLogger(log),
	}, nil
}

func (l *logReporter) ID() string   { return l.id }
func (l *logReporter) Type() string { return l.typ }

func (l *logReporter) Publish(_ context.Context, report suite.RunReport) error {
	l.log.InfoObj("suite report", "run_report", map[string]any{
		"suite":      report.Suite,
		"target":     report.Target,
		"total":      report.Total,
		"passed":     report.Passed,
		"failed":     report.Failed,
		"elapsed_ms": report.Elapsed.Milliseconds(),
	})
	for _, res := range report.Results {
		if res.Status == suite.StatusPassed {
			continue
		}
		l.log.WarnObj("failed case", "case_report", map[string]any{
			"suite": report.Suite,
			"case":  res.Name,
			"kind":  res.Kind,
			"error": res.Err,
		})
	}
	return nil
}
