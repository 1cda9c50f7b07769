package reporters

import (
	"context"
	"testing"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
)

func TestGCPPubSubReporterPublishes(t *testing.T) {
	// Use the in-memory Pub/Sub emulator.
	server := pstest.NewServer()
	defer server.Close()
	t.Setenv("PUBSUB_EMULATOR_HOST", server.Addr)

	ctx := context.Background()
	client, err := pubsub.NewClient(ctx, "test-project")
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	defer client.Close()
	if _, err := client.CreateTopic(ctx, "run-reports"); err != nil {
		t.Fatalf("create topic: %v", err)
	}

	rep, err := newGCPPubSubReporter(ctx, ReporterConfig{
		ID:   "pubsub-1",
		Type: TypeGCPPubSub,
		PubSub: &GCPPubSubReporterConfig{
			ProjectID: "test-project",
			Topic:     "run-reports",
		},
	}, nil)
	if err != nil {
		t.Fatalf("newGCPPubSubReporter: %v", err)
	}

	if err := rep.Publish(ctx, sampleReport()); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	msgs := server.Messages()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message on the emulator, got %d", len(msgs))
	}
	if got := msgs[0].Attributes["suite"]; got != "posts" {
		t.Fatalf("suite attribute = %q", got)
	}
}
