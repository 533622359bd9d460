package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/zapdesk/zapdesk/internal/auth"
	"github.com/zapdesk/zapdesk/internal/db"
	"github.com/zapdesk/zapdesk/internal/db/sqlc"
	"github.com/zapdesk/zapdesk/internal/session"
	"github.com/zapdesk/zapdesk/internal/wanet"
)

// MessageHandler sends outbound text over a live connection. Without an
// explicit connection id the company's default connection is used.
type MessageHandler struct {
	queries  *sqlc.Queries
	registry *session.Registry
	logger   *slog.Logger
}

func NewMessageHandler(queries *sqlc.Queries, registry *session.Registry, log *slog.Logger) *MessageHandler {
	return &MessageHandler{
		queries:  queries,
		registry: registry,
		logger:   log.With(slog.String("handler", "message")),
	}
}

func (h *MessageHandler) Register(e *echo.Echo) {
	e.POST("/messages", h.Send)
}

type sendMessageRequest struct {
	WhatsappID string `json:"whatsapp_id"`
	Number     string `json:"number" validate:"required"`
	Body       string `json:"body" validate:"required"`
}

func (h *MessageHandler) Send(c echo.Context) error {
	var req sendMessageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	id, err := auth.IdentityFromContext(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	sess, err := h.resolveSession(ctx, req.WhatsappID, id.CompanyID)
	if err != nil {
		return err
	}

	key, err := sess.SendText(ctx, wanet.UserJID(req.Number), req.Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"wid": key.ID})
}

// resolveSession picks the live session the message goes out on. An explicit
// id wins; otherwise the company's default connection is looked up, first in
// the registry and then in storage to tell "none configured" apart from
// "configured but offline".
func (h *MessageHandler) resolveSession(ctx context.Context, whatsappID, companyID string) (*session.Session, error) {
	if whatsappID != "" {
		sess, err := h.registry.Get(whatsappID)
		if errors.Is(err, session.ErrSessionNotFound) {
			return nil, echo.NewHTTPError(http.StatusNotFound, "session not connected")
		}
		if err != nil {
			return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return sess, nil
	}

	sess, err := h.registry.Default(companyID)
	if err == nil {
		return sess, nil
	}
	if !errors.Is(err, session.ErrNoDefaultSession) {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	companyUUID, uerr := db.ParseUUID(companyID)
	if uerr != nil {
		return nil, echo.NewHTTPError(http.StatusNotFound, "no default connection")
	}
	if _, derr := h.queries.GetDefaultWhatsapp(ctx, companyUUID); derr != nil {
		if errors.Is(derr, pgx.ErrNoRows) {
			return nil, echo.NewHTTPError(http.StatusNotFound, "no default connection")
		}
		return nil, echo.NewHTTPError(http.StatusInternalServerError, derr.Error())
	}
	return nil, echo.NewHTTPError(http.StatusConflict, "default connection not connected")
}
