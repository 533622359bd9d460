// Package notify delivers fire-and-forget realtime events to company-scoped
// subscribers (web clients, other instances).
package notify

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
)

// Notifier publishes an event for a company. Delivery is best-effort; a
// failed publish is logged, never returned to the pipeline.
type Notifier interface {
	Emit(companyID, event string, payload any)
}

// NATS publishes events on "company.{id}.{event}" subjects.
type NATS struct {
	nc     *nats.Conn
	logger *slog.Logger
}

func NewNATS(nc *nats.Conn, log *slog.Logger) *NATS {
	return &NATS{
		nc:     nc,
		logger: log.With(slog.String("component", "notify")),
	}
}

func (n *NATS) Emit(companyID, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		n.logger.Warn("failed to encode event payload",
			slog.String("event", event),
			slog.Any("error", err))
		return
	}
	subject := fmt.Sprintf("company.%s.%s", companyID, event)
	if err := n.nc.Publish(subject, data); err != nil {
		n.logger.Warn("failed to publish event",
			slog.String("subject", subject),
			slog.Any("error", err))
	}
}

// Noop discards all events.
type Noop struct{}

func (Noop) Emit(companyID, event string, payload any) {}
