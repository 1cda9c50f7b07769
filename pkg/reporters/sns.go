package reporters

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"

	"github.com/probehq/apiprobe/internal/suite"
)

// snsClient defines the minimal subset of the SNS client used by snsReporter.
type snsClient interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// snsReporter implements the Reporter interface for AWS SNS.
type snsReporter struct {
	id       string
	typ      string
	topicARN string
	client   snsClient
	log      Logger
}

// newSNSReporter creates a new SNS reporter with the given configuration.
func newSNSReporter(ctx context.Context, cfg ReporterConfig, log Logger) (Reporter, error) {
	if cfg.SNS == nil {
		return nil, fmt.Errorf("reporter %q missing sns configuration", cfg.ID)
	}

	if ctx == nil {
		ctx = context.Background()
	}

	opts := []func(*awscfg.LoadOptions) error{awscfg.WithRegion(cfg.SNS.Region)}
	if cfg.SNS.AccessKeyID != "" && cfg.SNS.SecretAccessKey != "" {
		opts = append(opts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.SNS.AccessKeyID, cfg.SNS.SecretAccessKey, "")))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &snsReporter{
		id:       cfg.ID,
		typ:      TypeSNS,
		topicARN: cfg.SNS.TopicARN,
		client:   sns.NewFromConfig(awsCfg),
		log:      ensureLogger(log),
	}, nil
}

func (s *snsReporter) ID() string   { return s.id }
func (s *snsReporter) Type() string { return s.typ }

// Publish sends the run report to the configured SNS topic.
func (s *snsReporter) Publish(ctx context.Context, report suite.RunReport) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	input := &sns.PublishInput{
		TopicArn: aws.String(s.topicARN),
		Message:  aws.String(string(payload)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"suite": {
				DataType:    aws.String("String"),
				StringValue: aws.String(report.Suite),
			},
		},
	}

	if _, err := s.client.Publish(ctx, input); err != nil {
		s.log.ErrorObj("sns reporter publish failed", "reporter_sns_error", map[string]any{
			"reporter_id": s.id,
			"error":       err.Error(),
		})
		return fmt.Errorf("publish to sns: %w", err)
	}
	s.log.DebugObj("sns reporter delivered report", "reporter_sns_delivery", map[string]any{
		"reporter_id": s.id,
	})
	return nil
}
