package reporters

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"

	"github.com/probehq/apiprobe/internal/suite"
)

// pubsubReporter implements the Reporter interface for Google Pub/Sub.
type pubsubReporter struct {
	id     string
	typ    string
	client *pubsub.Client
	topic  *pubsub.Topic
	log    Logger
}

// newGCPPubSubReporter creates a new Pub/Sub reporter with the given
// configuration. The topic must already exist.
func newGCPPubSubReporter(ctx context.Context, cfg ReporterConfig, log Logger) (Reporter, error) {
	if cfg.PubSub == nil {
		return nil, fmt.Errorf("reporter %q missing gcppubsub configuration", cfg.ID)
	}

	if ctx == nil {
		ctx = context.Background()
	}

	var opts []option.ClientOption
	if cfg.PubSub.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.PubSub.CredentialsFile))
	}

	client, err := pubsub.NewClient(ctx, cfg.PubSub.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}

	return &pubsubReporter{
		id:     cfg.ID,
		typ:    TypeGCPPubSub,
		client: client,
		topic:  client.Topic(cfg.PubSub.Topic),
		log:    ensureLogger(log),
	}, nil
}

func (p *pubsubReporter) ID() string   { return p.id }
func (p *pubsubReporter) Type() string { return p.typ }

// Publish sends the run report to the configured Pub/Sub topic and waits for
// the server acknowledgement.
func (p *pubsubReporter) Publish(ctx context.Context, report suite.RunReport) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	res := p.topic.Publish(ctx, &pubsub.Message{
		Data: payload,
		Attributes: map[string]string{
			"suite": report.Suite,
		},
	})

	if _, err := res.Get(ctx); err != nil {
		p.log.ErrorObj("pubsub reporter publish failed", "reporter_pubsub_error", map[string]any{
			"reporter_id": p.id,
			"error":       err.Error(),
		})
		return fmt.Errorf("publish to pubsub: %w", err)
	}
	p.log.DebugObj("pubsub reporter delivered report", "reporter_pubsub_delivery", map[string]any{
		"reporter_id": p.id,
	})
	return nil
}
