package reporters

import (
	"context"

	"github.com/probehq/apiprobe/internal/suite"
)

// Reporter delivers a finished run report to a downstream sink
// (console, file, HTTP, SQS, etc).
type Reporter interface {
	ID() string
	Type() string
	Publish(ctx context.Context, report suite.RunReport) error
}
