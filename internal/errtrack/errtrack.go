// Package errtrack is the error-visibility collaborator: dropped unknown
// message shapes and contained pipeline failures are reported here so they
// stay observable without breaking the stream.
package errtrack

import (
	"context"
	"log/slog"

	"github.com/zapdesk/zapdesk/internal/metrics"
)

type Reporter interface {
	Report(ctx context.Context, err error, fields map[string]any)
}

// LogReporter records reports as structured error logs plus a counter.
type LogReporter struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewLogReporter(log *slog.Logger, m *metrics.Metrics) *LogReporter {
	return &LogReporter{
		logger:  log.With(slog.String("component", "errtrack")),
		metrics: m,
	}
}

func (r *LogReporter) Report(ctx context.Context, err error, fields map[string]any) {
	if err == nil {
		return
	}
	attrs := make([]any, 0, len(fields)*2+2)
	attrs = append(attrs, slog.Any("error", err))
	for k, v := range fields {
		attrs = append(attrs, slog.Any(k, v))
	}
	r.logger.ErrorContext(ctx, "tracked error", attrs...)
	if r.metrics != nil {
		r.metrics.PipelineErrors.Inc()
	}
}

// Noop discards reports, for tests.
type Noop struct{}

func (Noop) Report(ctx context.Context, err error, fields map[string]any) {}
