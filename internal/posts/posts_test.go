package posts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/probehq/apiprobe/internal/mockapi"
	"github.com/probehq/apiprobe/internal/suite"
	"github.com/probehq/apiprobe/pkg/apiclient"
)

func newClient(t *testing.T, baseURL string) *apiclient.Client {
	t.Helper()
	client, err := apiclient.New(apiclient.Config{
		BaseURL:    baseURL,
		Timeout:    5 * time.Second,
		MaxRetries: 2,
		Backoff:    apiclient.ConstantBackoff(time.Millisecond),
	}, nil)
	if err != nil {
		t.Fatalf("apiclient.New: %v", err)
	}
	t.Cleanup(client.Close)
	return client
}

func TestSuitePassesAgainstMockAPI(t *testing.T) {
	srv := httptest.NewServer(mockapi.NewService(nil))
	defer srv.Close()

	env := &suite.Env{Client: newClient(t, srv.URL), Schema: Schema()}
	runner, err := suite.NewRunner("posts", env)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}

	report, err := runner.Run(context.Background(), Cases())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, res := range report.Results {
		if res.Status == suite.StatusFailed {
			t.Errorf("case %q failed: %s", res.Name, res.Err)
		}
	}
	if !report.Ok() {
		t.Fatalf("suite failed %d of %d cases", report.Failed, report.Total)
	}
	if report.Total != len(Cases()) {
		t.Fatalf("expected %d cases, ran %d", len(Cases()), report.Total)
	}
}

func TestSuiteAttributesValidationFailures(t *testing.T) {
	// A backend that answers with a schema-violating post: id as string.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"userId":1,"id":"1","title":"a","body":"b"}]`))
	}))
	defer srv.Close()

	env := &suite.Env{Client: newClient(t, srv.URL), Schema: Schema()}
	runner, err := suite.NewRunner("posts", env)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}

	report, err := runner.Run(context.Background(), []suite.Case{listPosts()})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Failed != 1 {
		t.Fatalf("expected schema failure, got %+v", report)
	}
	if report.Results[0].Kind != "validation" {
		t.Fatalf("expected validation kind, got %q (%s)", report.Results[0].Kind, report.Results[0].Err)
	}
}

func TestSuiteAttributesConnectivityFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	target := srv.URL
	srv.Close()

	env := &suite.Env{Client: newClient(t, target), Schema: Schema()}
	runner, err := suite.NewRunner("posts", env)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}

	report, err := runner.Run(context.Background(), []suite.Case{listPosts()})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Failed != 1 {
		t.Fatalf("expected connectivity failure, got %+v", report)
	}
	if report.Results[0].Kind != "connectivity" {
		t.Fatalf("expected connectivity kind, got %q (%s)", report.Results[0].Kind, report.Results[0].Err)
	}
}

func TestSchemaCompiles(t *testing.T) {
	doc := Schema()
	if doc == nil {
		t.Fatalf("nil schema document")
	}

	var conforming interface{}
	if err := json.Unmarshal([]byte(`{"userId":1,"id":1,"title":"a","body":"b"}`), &conforming); err != nil {
		t.Fatalf("unmarshal fixture: %v", err)
	}
	if err := doc.Validate(conforming); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	var incomplete interface{}
	if err := json.Unmarshal([]byte(`{"id":1}`), &incomplete); err != nil {
		t.Fatalf("unmarshal fixture: %v", err)
	}
	if err := doc.Validate(incomplete); err == nil {
		t.Fatalf("incomplete post should fail validation")
	}
}
