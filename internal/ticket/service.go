package ticket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/zapdesk/zapdesk/internal/db"
	"github.com/zapdesk/zapdesk/internal/db/sqlc"
	"github.com/zapdesk/zapdesk/internal/notify"
)

// ErrTicketNotFound indicates the requested ticket does not exist.
var ErrTicketNotFound = errors.New("ERR_TICKET_NOT_FOUND")

// SettingUserRating is the per-company switch enabling post-close ratings.
const SettingUserRating = "userRating"

// CloseResult tells the caller what to send after closing: a rating prompt
// when a rating episode was opened, otherwise the farewell (when configured).
type CloseResult struct {
	RatingRequested bool
	Message         string
	ContactJid      string
	WhatsappID      string
}

// Service covers ticket operations invoked outside the inbound pipeline:
// agent closes and housekeeping sweeps.
type Service struct {
	queries  *sqlc.Queries
	notifier notify.Notifier
	logger   *slog.Logger
}

func NewService(queries *sqlc.Queries, notifier notify.Notifier, log *slog.Logger) *Service {
	return &Service{
		queries:  queries,
		notifier: notifier,
		logger:   log.With(slog.String("component", "ticket_service")),
	}
}

// Get loads one ticket by id.
func (s *Service) Get(ctx context.Context, ticketID string) (sqlc.Ticket, error) {
	id, err := db.ParseUUID(ticketID)
	if err != nil {
		return sqlc.Ticket{}, err
	}
	t, err := s.queries.GetTicket(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return sqlc.Ticket{}, fmt.Errorf("%w: %s", ErrTicketNotFound, ticketID)
	}
	return t, err
}

// Close ends the current episode. With ratings enabled and an assigned
// agent, the ticket stays open awaiting the 0-10 reply and the caller should
// send the rating prompt; otherwise the ticket closes immediately.
func (s *Service) Close(ctx context.Context, ticketID, userID string) (CloseResult, error) {
	t, err := s.Get(ctx, ticketID)
	if err != nil {
		return CloseResult{}, err
	}
	wa, err := s.queries.GetWhatsapp(ctx, t.WhatsappID)
	if err != nil {
		return CloseResult{}, fmt.Errorf("load connection for ticket %s: %w", ticketID, err)
	}

	tracking, err := s.queries.GetOpenTracking(ctx, t.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		tracking, err = s.queries.CreateTracking(ctx, sqlc.CreateTrackingParams{
			TicketID:   t.ID,
			CompanyID:  t.CompanyID,
			WhatsappID: t.WhatsappID,
		})
	}
	if err != nil {
		return CloseResult{}, fmt.Errorf("resolve tracking: %w", err)
	}

	userUUID, err := db.UUIDOrNil(userID)
	if err != nil {
		return CloseResult{}, err
	}
	now := db.PgTime(time.Now())
	if err := s.queries.SetTrackingClosed(ctx, sqlc.SetTrackingClosedParams{
		ID:       tracking.ID,
		ClosedAt: now,
		UserID:   userUUID,
	}); err != nil {
		return CloseResult{}, fmt.Errorf("stamp close: %w", err)
	}

	contactJid, err := s.contactJid(ctx, t.ContactID)
	if err != nil {
		return CloseResult{}, err
	}

	if s.ratingEnabled(ctx, t.CompanyID) && userUUID.Valid {
		msg := wa.RatingMessage
		if msg == "" {
			msg = "Por favor, avalie nosso atendimento de 0 a 10."
		}
		s.emitTicket(t, "update")
		return CloseResult{
			RatingRequested: true,
			Message:         msg,
			ContactJid:      contactJid,
			WhatsappID:      db.UUIDString(t.WhatsappID),
		}, nil
	}

	if err := s.queries.SetTrackingFinished(ctx, sqlc.SetTrackingFinishedParams{
		ID:         tracking.ID,
		FinishedAt: now,
	}); err != nil {
		return CloseResult{}, fmt.Errorf("stamp finish: %w", err)
	}
	if err := s.queries.UpdateTicketStatus(ctx, sqlc.UpdateTicketStatusParams{
		ID:     t.ID,
		Status: "closed",
	}); err != nil {
		return CloseResult{}, fmt.Errorf("close ticket: %w", err)
	}
	s.emitTicket(t, "update")
	return CloseResult{
		Message:    wa.FarewellMessage,
		ContactJid: contactJid,
		WhatsappID: db.UUIDString(t.WhatsappID),
	}, nil
}

// CloseExpired sweeps tickets idle past their connection's expiry window.
// It returns the close results so the caller can deliver farewells.
func (s *Service) CloseExpired(ctx context.Context) ([]CloseResult, error) {
	rows, err := s.queries.ListExpiredTickets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list expired tickets: %w", err)
	}
	var results []CloseResult
	for _, t := range rows {
		res, err := s.Close(ctx, db.UUIDString(t.ID), "")
		if err != nil {
			s.logger.Warn("failed to close expired ticket",
				slog.String("ticket_id", db.UUIDString(t.ID)),
				slog.Any("error", err))
			continue
		}
		results = append(results, res)
	}
	return results, nil
}

func (s *Service) ratingEnabled(ctx context.Context, companyID pgtype.UUID) bool {
	setting, err := s.queries.GetSetting(ctx, sqlc.GetSettingParams{
		CompanyID: companyID,
		Key:       SettingUserRating,
	})
	if err != nil {
		return false
	}
	return setting.Value == "enabled"
}

func (s *Service) contactJid(ctx context.Context, contactID pgtype.UUID) (string, error) {
	c, err := s.queries.GetContact(ctx, contactID)
	if err != nil {
		return "", fmt.Errorf("load ticket contact: %w", err)
	}
	return c.Jid, nil
}

func (s *Service) emitTicket(t sqlc.Ticket, action string) {
	s.notifier.Emit(db.UUIDString(t.CompanyID), "ticket", map[string]any{
		"action":   action,
		"ticketId": db.UUIDString(t.ID),
		"status":   t.Status,
	})
}
