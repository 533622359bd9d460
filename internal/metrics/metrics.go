// Package metrics exposes prometheus instrumentation for session supervision
// and the message ingestion pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	MessagesAccepted  prometheus.Counter
	MessagesDropped   *prometheus.CounterVec
	TicketsCreated    prometheus.Counter
	ReconnectAttempts prometheus.Counter
	FatalCleanups     prometheus.Counter
	QREvents          prometheus.Counter
	RatingsRecorded   prometheus.Counter
	PipelineErrors    prometheus.Counter
}

// New registers all collectors against the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		MessagesAccepted: factory.NewCounter(prometheus.CounterOpts{
			Name: "ingest_messages_accepted_total",
			Help: "Messages admitted into the ingestion pipeline.",
		}),
		MessagesDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ingest_messages_dropped_total",
			Help: "Messages rejected before ticket resolution, by reason.",
		}, []string{"reason"}),
		TicketsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "tickets_created_total",
			Help: "Tickets created by the resolver.",
		}),
		ReconnectAttempts: factory.NewCounter(prometheus.CounterOpts{
			Name: "session_reconnect_attempts_total",
			Help: "Scheduled reconnection attempts after recoverable disconnects.",
		}),
		FatalCleanups: factory.NewCounter(prometheus.CounterOpts{
			Name: "session_fatal_cleanups_total",
			Help: "Fatal session teardowns (logout, bad session, QR exhaustion).",
		}),
		QREvents: factory.NewCounter(prometheus.CounterOpts{
			Name: "session_qr_events_total",
			Help: "QR payloads received while pairing.",
		}),
		RatingsRecorded: factory.NewCounter(prometheus.CounterOpts{
			Name: "tickets_ratings_recorded_total",
			Help: "Post-close ratings recorded.",
		}),
		PipelineErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "ingest_pipeline_errors_total",
			Help: "Per-message pipeline failures that were contained.",
		}),
	}
}

// NewNop returns metrics bound to a throwaway registry, for tests.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}
