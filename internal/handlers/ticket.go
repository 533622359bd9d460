package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/zapdesk/zapdesk/internal/auth"
	"github.com/zapdesk/zapdesk/internal/db"
	"github.com/zapdesk/zapdesk/internal/db/sqlc"
	"github.com/zapdesk/zapdesk/internal/session"
	"github.com/zapdesk/zapdesk/internal/ticket"
)

// TicketHandler exposes agent-side ticket operations.
type TicketHandler struct {
	queries  *sqlc.Queries
	service  *ticket.Service
	registry *session.Registry
	unreads  ticket.Counters
	logger   *slog.Logger
}

func NewTicketHandler(queries *sqlc.Queries, service *ticket.Service, registry *session.Registry, unreads ticket.Counters, log *slog.Logger) *TicketHandler {
	return &TicketHandler{
		queries:  queries,
		service:  service,
		registry: registry,
		unreads:  unreads,
		logger:   log.With(slog.String("handler", "ticket")),
	}
}

func (h *TicketHandler) Register(e *echo.Echo) {
	g := e.Group("/tickets")
	g.GET("/:id", h.Get)
	g.POST("/:id/close", h.Close)
	g.POST("/:id/read", h.MarkRead)
}

type ticketResponse struct {
	ID             string `json:"id"`
	Status         string `json:"status"`
	ContactID      string `json:"contact_id"`
	QueueID        string `json:"queue_id,omitempty"`
	UserID         string `json:"user_id,omitempty"`
	LastMessage    string `json:"last_message"`
	UnreadMessages int32  `json:"unread_messages"`
	IsGroup        bool   `json:"is_group"`
}

func toTicketResponse(t sqlc.Ticket) ticketResponse {
	return ticketResponse{
		ID:             db.UUIDString(t.ID),
		Status:         t.Status,
		ContactID:      db.UUIDString(t.ContactID),
		QueueID:        db.UUIDString(t.QueueID),
		UserID:         db.UUIDString(t.UserID),
		LastMessage:    t.LastMessage,
		UnreadMessages: t.UnreadMessages,
		IsGroup:        t.IsGroup,
	}
}

func (h *TicketHandler) Get(c echo.Context) error {
	t, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if errors.Is(err, ticket.ErrTicketNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "ticket not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, toTicketResponse(t))
}

// Close ends the episode as the authenticated agent. The rating prompt or
// farewell returned by the service is delivered over the ticket's connection
// when it is live.
func (h *TicketHandler) Close(c echo.Context) error {
	id, err := auth.IdentityFromContext(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	t, err := h.service.Get(ctx, c.Param("id"))
	if errors.Is(err, ticket.ErrTicketNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "ticket not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	userID := id.UserID
	if _, err := db.ParseUUID(userID); err != nil {
		// Bootstrap admin closes without an agent attribution.
		userID = ""
	}
	res, err := h.service.Close(ctx, c.Param("id"), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if res.Message != "" && res.ContactJid != "" {
		if sess, serr := h.registry.Get(db.UUIDString(t.WhatsappID)); serr == nil {
			if _, serr := sess.SendText(ctx, res.ContactJid, res.Message); serr != nil {
				h.logger.Warn("failed to deliver close message",
					slog.String("ticket_id", c.Param("id")),
					slog.Any("error", serr))
			}
		}
	}
	return c.JSON(http.StatusOK, map[string]any{
		"rating_requested": res.RatingRequested,
	})
}

// MarkRead clears the unread state of a ticket's inbound messages.
func (h *TicketHandler) MarkRead(c echo.Context) error {
	ctx := c.Request().Context()
	t, err := h.service.Get(ctx, c.Param("id"))
	if errors.Is(err, ticket.ErrTicketNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "ticket not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.queries.MarkTicketMessagesRead(ctx, t.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := h.unreads.Reset(ctx, db.UUIDString(t.ContactID)); err != nil {
		h.logger.Warn("failed to reset unread counter",
			slog.String("contact_id", db.UUIDString(t.ContactID)),
			slog.Any("error", err))
	}
	if err := h.queries.UpdateTicketSnapshot(ctx, sqlc.UpdateTicketSnapshotParams{
		ID:             t.ID,
		LastMessage:    t.LastMessage,
		UnreadMessages: 0,
	}); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
