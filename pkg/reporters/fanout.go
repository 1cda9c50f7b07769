package reporters

import (
	"context"
	"errors"
	"fmt"

	"github.com/probehq/apiprobe/internal/suite"
)

// Fanout dispatches run reports to all configured reporters.
type Fanout struct {
	reporters []Reporter
}

// NewFanout builds a dispatcher that fans out reports across reporters.
func NewFanout(reps []Reporter) *Fanout {
	cp := make([]Reporter, 0, len(reps))
	for _, r := range reps {
		if r == nil {
			continue
		}
		cp = append(cp, r)
	}
	return &Fanout{reporters: cp}
}

// Publish forwards the report to every registered reporter. It returns the
// number of reporters that successfully handled the report. Sink failures
// never alter the report itself.
func (f *Fanout) Publish(ctx context.Context, report suite.RunReport) (int, error) {
	if f == nil || len(f.reporters) == 0 {
		return 0, nil
	}

	var errs []error
	successful := 0
	for _, r := range f.reporters {
		if err := r.Publish(ctx, report); err != nil {
			errs = append(errs, fmt.Errorf("%s reporter[%s]: %w", r.Type(), r.ID(), err))
		} else {
			successful++
		}
	}
	return successful, errors.Join(errs...)
}

// Size returns the number of active reporters.
func (f *Fanout) Size() int {
	if f == nil {
		return 0
	}
	return len(f.reporters)
}
