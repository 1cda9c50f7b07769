package reporters

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/probehq/apiprobe/internal/suite"
)

var (
	consolePassColor   = color.New(color.FgGreen)
	consoleFailColor   = color.New(color.FgRed)
	consoleDetailColor = color.New(color.FgYellow)
)

// consoleReporter prints a human-readable run summary. Failed cases are
// always listed; passed cases only when verbose is set.
type consoleReporter struct {
	id      string
	typ     string
	verbose bool
	out     io.Writer
}

func newConsoleReporter(_ context.Context, cfg ReporterConfig, _ Logger) (Reporter, error) {
	verbose := false
	if cfg.Console != nil {
		verbose = cfg.Console.Verbose
	}
	return &consoleReporter{
		id:      cfg.ID,
		typ:     TypeConsole,
		verbose: verbose,
		out:     color.Output,
	}, nil
}

func (c *consoleReporter) ID() string   { return c.id }
func (c *consoleReporter) Type() string { return c.typ }

func (c *consoleReporter) Publish(_ context.Context, report suite.RunReport) error {
	fmt.Fprintf(c.out, "suite %s against %s: %d cases in %s\n",
		report.Suite, report.Target, report.Total, report.Elapsed.Round(time.Millisecond))

	for _, res := range report.Results {
		switch {
		case res.Status == suite.StatusPassed && c.verbose:
			_, _ = consolePassColor.Fprintf(c.out, "  PASS %s (%s)\n", res.Name, res.Elapsed.Round(time.Millisecond))
		case res.Status != suite.StatusPassed:
			_, _ = consoleFailColor.Fprintf(c.out, "  FAIL %s [%s]\n", res.Name, res.Kind)
			_, _ = consoleDetailColor.Fprintf(c.out, "       %s\n", res.Err)
		}
	}

	if report.Ok() {
		_, _ = consolePassColor.Fprintf(c.out, "all %d cases passed\n", report.Total)
	} else {
		_, _ = consoleFailColor.Fprintf(c.out, "%d of %d cases failed\n", report.Failed, report.Total)
	}
	return nil
}
