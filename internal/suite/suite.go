// Package suite runs named API checks sequentially and aggregates their
// outcomes into a RunReport for the reporters.
package suite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/probehq/apiprobe/internal/logger"
	"github.com/probehq/apiprobe/pkg/apiclient"
	"github.com/probehq/apiprobe/pkg/expect"
)

// Status of a finished case.
type Status string

const (
	StatusPassed Status = "passed"
	StatusFailed Status = "failed"
)

// Env carries the collaborators cases run against.
type Env struct {
	Client *apiclient.Client
	Schema *expect.Document
	Log    logger.Logger
}

// Case is one named check against the target API.
type Case struct {
	Name string
	Run  func(ctx context.Context, env *Env) error
}

// Result is the outcome of one executed case. Failure keeps the typed error
// for in-process consumers; Err is its serializable form.
type Result struct {
	Name    string        `json:"name"`
	Status  Status        `json:"status"`
	Kind    string        `json:"kind,omitempty"`
	Err     string        `json:"error,omitempty"`
	Elapsed time.Duration `json:"elapsed"`
	Failure error         `json:"-"`
}

// RunReport aggregates one full suite execution.
type RunReport struct {
	Suite     string        `json:"suite"`
	Target    string        `json:"target"`
	StartedAt time.Time     `json:"started_at"`
	Elapsed   time.Duration `json:"elapsed"`
	Total     int           `json:"total"`
	Passed    int           `json:"passed"`
	Failed    int           `json:"failed"`
	Results   []Result      `json:"results"`
}

// Ok reports whether every case passed.
func (r *RunReport) Ok() bool {
	return r != nil && r.Failed == 0
}

// Runner executes cases one after another against a shared Env.
type Runner struct {
	suite string
	env   *Env
	log   logger.Logger
}

// NewRunner builds a runner for the named suite.
func NewRunner(suiteName string, env *Env) (*Runner, error) {
	if env == nil {
		return nil, fmt.Errorf("suite env must not be nil")
	}
	log := env.Log
	if log == nil {
		log = &logger.NopLogger{}
	}
	return &Runner{suite: suiteName, env: env, log: log}, nil
}

// Run executes the cases in order and returns the aggregated report. A
// cancelled context aborts the remaining cases.
func (r *Runner) Run(ctx context.Context, cases []Case) (*RunReport, error) {
	if r == nil || r.env == nil {
		return nil, fmt.Errorf("suite runner is not initialized")
	}
	if len(cases) == 0 {
		return nil, fmt.Errorf("no cases to run")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	target := ""
	if r.env.Client != nil {
		target = r.env.Client.BaseURL()
	}
	start := time.Now()
	report := &RunReport{
		Suite:     r.suite,
		Target:    target,
		StartedAt: start.UTC(),
		Results:   make([]Result, 0, len(cases)),
	}

	for _, c := range cases {
		if ctx.Err() != nil {
			r.log.WarnObj("suite run aborted", "abort_meta", map[string]any{
				"suite":     r.suite,
				"completed": len(report.Results),
				"reason":    ctx.Err().Error(),
			})
			break
		}
		res := r.runCase(ctx, c)
		if res.Status == StatusPassed {
			report.Passed++
		} else {
			report.Failed++
		}
		report.Results = append(report.Results, res)
	}

	report.Total = len(report.Results)
	report.Elapsed = time.Since(start)
	r.log.InfoObj("suite run completed", "run_summary", map[string]any{
		"suite":      r.suite,
		"target":     target,
		"total":      report.Total,
		"passed":     report.Passed,
		"failed":     report.Failed,
		"elapsed_ms": report.Elapsed.Milliseconds(),
	})
	return report, nil
}

// runCase executes one case, converting panics into failures so a broken
// case cannot take down the run.
func (r *Runner) runCase(ctx context.Context, c Case) (res Result) {
	start := time.Now()
	res = Result{Name: c.Name}
	defer func() {
		if p := recover(); p != nil {
			res.Failure = fmt.Errorf("case panicked: %v", p)
			res.Err = res.Failure.Error()
			res.Status = StatusFailed
			res.Kind = "panic"
			res.Elapsed = time.Since(start)
			r.log.ErrorObj("case panicked", "case_result", map[string]any{
				"case":  c.Name,
				"panic": fmt.Sprint(p),
			})
		}
	}()

	err := c.Run(ctx, r.env)
	res.Elapsed = time.Since(start)
	if err != nil {
		res.Status = StatusFailed
		res.Kind = classify(err)
		res.Err = err.Error()
		res.Failure = err
		r.log.ErrorObj("case failed", "case_result", map[string]any{
			"case":       c.Name,
			"kind":       res.Kind,
			"error":      err.Error(),
			"elapsed_ms": res.Elapsed.Milliseconds(),
		})
		return res
	}

	res.Status = StatusPassed
	r.log.InfoObj("case passed", "case_result", map[string]any{
		"case":       c.Name,
		"elapsed_ms": res.Elapsed.Milliseconds(),
	})
	return res
}

// classify attributes a failure: could the API not be reached, or did it
// answer with the wrong thing.
func classify(err error) string {
	if apiclient.IsConnectivity(err) {
		return "connectivity"
	}
	var (
		statusErr *expect.StatusError
		parseErr  *expect.ParseError
		schemaErr *expect.SchemaError
		fieldErr  *expect.FieldError
	)
	if errors.As(err, &statusErr) || errors.As(err, &parseErr) ||
		errors.As(err, &schemaErr) || errors.As(err, &fieldErr) {
		return "validation"
	}
	return "error"
}
