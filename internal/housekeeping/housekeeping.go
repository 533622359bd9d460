// Package housekeeping runs the periodic sweeps: closing idle tickets and
// expiring stale QR pairings.
package housekeeping

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/zapdesk/zapdesk/internal/config"
	"github.com/zapdesk/zapdesk/internal/db"
	"github.com/zapdesk/zapdesk/internal/db/sqlc"
	"github.com/zapdesk/zapdesk/internal/session"
	"github.com/zapdesk/zapdesk/internal/ticket"
)

// qrStaleAfter is how long a connection may sit in QRCODE before the pairing
// is considered abandoned.
const qrStaleAfter = 10 * time.Minute

type Jobs struct {
	cfg      config.SweepConfig
	queries  *sqlc.Queries
	tickets  *ticket.Service
	registry *session.Registry
	cron     *cron.Cron
	logger   *slog.Logger
}

func New(cfg config.SweepConfig, queries *sqlc.Queries, tickets *ticket.Service, registry *session.Registry, log *slog.Logger) *Jobs {
	return &Jobs{
		cfg:      cfg,
		queries:  queries,
		tickets:  tickets,
		registry: registry,
		cron:     cron.New(),
		logger:   log.With(slog.String("component", "housekeeping")),
	}
}

// Start schedules the sweeps and starts the cron loop.
func (j *Jobs) Start() error {
	if spec := j.cfg.TicketCloseSpec; spec != "" {
		if _, err := j.cron.AddFunc(spec, j.sweepExpiredTickets); err != nil {
			return fmt.Errorf("schedule ticket sweep: %w", err)
		}
	}
	if spec := j.cfg.QRStaleSpec; spec != "" {
		if _, err := j.cron.AddFunc(spec, j.sweepStaleQR); err != nil {
			return fmt.Errorf("schedule qr sweep: %w", err)
		}
	}
	j.cron.Start()
	return nil
}

// Stop halts the cron loop, waiting for running sweeps up to the context
// deadline.
func (j *Jobs) Stop(ctx context.Context) {
	done := j.cron.Stop().Done()
	select {
	case <-done:
	case <-ctx.Done():
	}
}

func (j *Jobs) sweepExpiredTickets() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	results, err := j.tickets.CloseExpired(ctx)
	if err != nil {
		j.logger.Error("expired ticket sweep failed", slog.Any("error", err))
		return
	}
	for _, res := range results {
		if res.Message == "" || res.ContactJid == "" {
			continue
		}
		sess, err := j.registry.Get(res.WhatsappID)
		if err != nil {
			continue
		}
		if _, err := sess.SendText(ctx, res.ContactJid, res.Message); err != nil {
			j.logger.Warn("failed to deliver sweep farewell",
				slog.String("jid", res.ContactJid),
				slog.Any("error", err))
		}
	}
	if len(results) > 0 {
		j.logger.Info("closed expired tickets", slog.Int("count", len(results)))
	}
}

func (j *Jobs) sweepStaleQR() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	rows, err := j.queries.ListWhatsappsInStatusSince(ctx, sqlc.ListWhatsappsInStatusSinceParams{
		Status:    string(session.StatusQRCode),
		UpdatedAt: db.PgTime(time.Now().Add(-qrStaleAfter)),
	})
	if err != nil {
		j.logger.Error("stale qr sweep failed", slog.Any("error", err))
		return
	}
	for _, wa := range rows {
		if err := j.queries.UpdateWhatsappStatusQr(ctx, sqlc.UpdateWhatsappStatusQrParams{
			ID:     wa.ID,
			Status: string(session.StatusPending),
			Qrcode: "",
		}); err != nil {
			j.logger.Warn("failed to expire stale pairing",
				slog.String("whatsapp_id", db.UUIDString(wa.ID)),
				slog.Any("error", err))
		}
	}
	if len(rows) > 0 {
		j.logger.Info("expired stale pairings", slog.Int("count", len(rows)))
	}
}
