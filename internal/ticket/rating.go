package ticket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/zapdesk/zapdesk/internal/db"
	"github.com/zapdesk/zapdesk/internal/db/sqlc"
	"github.com/zapdesk/zapdesk/internal/metrics"
)

// ErrInvalidRating marks a reply that is not a parseable rating value.
var ErrInvalidRating = errors.New("ERR_INVALID_RATING")

// VerifyRating reports whether a tracking episode awaits a rating reply: the
// agent closed it, nobody rated yet, and the episode is not finished. Once
// rated_at is stamped this returns false, which makes rating idempotent.
func VerifyRating(t sqlc.TicketTracking) bool {
	return !t.FinishedAt.Valid && t.ClosedAt.Valid && t.UserID.Valid && !t.RatedAt.Valid
}

// Rater records post-close ratings and formally closes the ticket.
type Rater struct {
	queries *sqlc.Queries
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewRater(queries *sqlc.Queries, m *metrics.Metrics, log *slog.Logger) *Rater {
	return &Rater{
		queries: queries,
		metrics: m,
		logger:  log.With(slog.String("component", "ticket_rater")),
	}
}

// HandleRating parses the numeric reply, clamps it to 0..10, records the
// rating, and closes the ticket. Returns the recorded value.
func (r *Rater) HandleRating(ctx context.Context, body string, t sqlc.Ticket, tracking sqlc.TicketTracking) (int, error) {
	rate, err := strconv.Atoi(strings.TrimSpace(body))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidRating, body)
	}
	if rate < 0 {
		rate = 0
	}
	if rate > 10 {
		rate = 10
	}

	if _, err := r.queries.CreateUserRating(ctx, sqlc.CreateUserRatingParams{
		TicketID:   t.ID,
		TrackingID: tracking.ID,
		CompanyID:  t.CompanyID,
		UserID:     tracking.UserID,
		Rate:       int32(rate),
	}); err != nil {
		return 0, fmt.Errorf("record rating: %w", err)
	}

	now := db.PgTime(time.Now())
	if err := r.queries.SetTrackingRated(ctx, sqlc.SetTrackingRatedParams{
		ID:         tracking.ID,
		RatedAt:    now,
		FinishedAt: now,
	}); err != nil {
		return 0, fmt.Errorf("stamp rating: %w", err)
	}
	if err := r.queries.UpdateTicketStatus(ctx, sqlc.UpdateTicketStatusParams{
		ID:     t.ID,
		Status: "closed",
	}); err != nil {
		return 0, fmt.Errorf("close rated ticket: %w", err)
	}

	r.metrics.RatingsRecorded.Inc()
	r.logger.Info("rating recorded",
		slog.String("ticket_id", db.UUIDString(t.ID)),
		slog.Int("rate", rate))
	return rate, nil
}
