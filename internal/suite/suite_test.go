package suite

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/probehq/apiprobe/pkg/apiclient"
	"github.com/probehq/apiprobe/pkg/expect"
)

func passingCase(name string) Case {
	return Case{Name: name, Run: func(context.Context, *Env) error { return nil }}
}

func failingCase(name string, err error) Case {
	return Case{Name: name, Run: func(context.Context, *Env) error { return err }}
}

func TestRunnerCountsOutcomes(t *testing.T) {
	r, err := NewRunner("unit", &Env{})
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}

	report, err := r.Run(context.Background(), []Case{
		passingCase("a"),
		failingCase("b", errors.New("boom")),
		passingCase("c"),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Total != 3 || report.Passed != 2 || report.Failed != 1 {
		t.Fatalf("unexpected counts %+v", report)
	}
	if report.Ok() {
		t.Fatalf("report with failures must not be ok")
	}
	if report.Results[1].Err != "boom" {
		t.Fatalf("failure not recorded: %+v", report.Results[1])
	}
	if report.Results[1].Status != StatusFailed || report.Results[0].Status != StatusPassed {
		t.Fatalf("statuses wrong: %+v", report.Results)
	}
}

func TestRunnerRecoversPanics(t *testing.T) {
	r, err := NewRunner("unit", &Env{})
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}

	report, err := r.Run(context.Background(), []Case{
		{Name: "explodes", Run: func(context.Context, *Env) error { panic("kaboom") }},
		passingCase("after"),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Failed != 1 || report.Passed != 1 {
		t.Fatalf("panic should fail one case and not stop the run: %+v", report)
	}
	if report.Results[0].Kind != "panic" {
		t.Fatalf("expected panic kind, got %q", report.Results[0].Kind)
	}
}

func TestRunnerAbortsOnCancelledContext(t *testing.T) {
	r, err := NewRunner("unit", &Env{})
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	ran := 0
	cases := []Case{
		{Name: "first", Run: func(context.Context, *Env) error {
			ran++
			cancel()
			return nil
		}},
		{Name: "second", Run: func(context.Context, *Env) error {
			ran++
			return nil
		}},
	}

	report, err := r.Run(ctx, cases)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if ran != 1 {
		t.Fatalf("expected 1 case to run before abort, got %d", ran)
	}
	if report.Total != 1 {
		t.Fatalf("report should only count executed cases, got %d", report.Total)
	}
}

func TestRunnerRejectsEmptyInput(t *testing.T) {
	if _, err := NewRunner("unit", nil); err == nil {
		t.Fatalf("nil env should be rejected")
	}

	r, err := NewRunner("unit", &Env{})
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	if _, err := r.Run(context.Background(), nil); err == nil {
		t.Fatalf("empty case list should be rejected")
	}
}

func TestClassifyAttributesFailures(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"connectivity", apiclient.NewConnectivityError("x", "GET", "u", 3, nil), "connectivity"},
		{"timeout", apiclient.NewTimeoutError("x", "GET", "u", 1, nil), "connectivity"},
		{"status", &expect.StatusError{Expected: []int{200}, Actual: 404}, "validation"},
		{"parse", &expect.ParseError{}, "validation"},
		{"schema", &expect.SchemaError{Schema: "s"}, "validation"},
		{"field", &expect.FieldError{Field: "id"}, "validation"},
		{"wrapped field", fmt.Errorf("post at index 3: %w", &expect.FieldError{Field: "id"}), "validation"},
		{"plain", errors.New("boom"), "error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := classify(tc.err); got != tc.want {
				t.Fatalf("classify(%v) = %q, want %q", tc.err, got, tc.want)
			}
		})
	}
}

func TestResultElapsedIsRecorded(t *testing.T) {
	r, err := NewRunner("unit", &Env{})
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}

	report, err := r.Run(context.Background(), []Case{
		{Name: "sleepy", Run: func(context.Context, *Env) error {
			time.Sleep(10 * time.Millisecond)
			return nil
		}},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Results[0].Elapsed < 10*time.Millisecond {
		t.Fatalf("elapsed not measured: %v", report.Results[0].Elapsed)
	}
}
