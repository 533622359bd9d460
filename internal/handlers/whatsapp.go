package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/zapdesk/zapdesk/internal/db"
	"github.com/zapdesk/zapdesk/internal/db/sqlc"
	"github.com/zapdesk/zapdesk/internal/session"
)

// WhatsappHandler drives connection lifecycle over REST: pairing, restart
// and logout.
type WhatsappHandler struct {
	queries *sqlc.Queries
	manager *session.Manager
	logger  *slog.Logger
}

func NewWhatsappHandler(queries *sqlc.Queries, manager *session.Manager, log *slog.Logger) *WhatsappHandler {
	return &WhatsappHandler{
		queries: queries,
		manager: manager,
		logger:  log.With(slog.String("handler", "whatsapp")),
	}
}

func (h *WhatsappHandler) Register(e *echo.Echo) {
	g := e.Group("/whatsapps")
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.POST("/:id/start", h.Start)
	g.POST("/:id/restart", h.Restart)
	g.DELETE("/:id/session", h.Logout)
}

type whatsappResponse struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	Qrcode    string    `json:"qrcode,omitempty"`
	Number    string    `json:"number,omitempty"`
	IsDefault bool      `json:"is_default"`
	Live      bool      `json:"live"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (h *WhatsappHandler) toResponse(wa sqlc.Whatsapp) whatsappResponse {
	live := false
	if sess, err := h.manager.Registry().Get(db.UUIDString(wa.ID)); err == nil {
		live = sess.Live()
	}
	return whatsappResponse{
		ID:        db.UUIDString(wa.ID),
		CompanyID: db.UUIDString(wa.CompanyID),
		Name:      wa.Name,
		Status:    wa.Status,
		Qrcode:    wa.Qrcode,
		Number:    wa.Number,
		IsDefault: wa.IsDefault,
		Live:      live,
		UpdatedAt: db.TimeFromPg(wa.UpdatedAt),
	}
}

func (h *WhatsappHandler) List(c echo.Context) error {
	rows, err := h.queries.ListActiveWhatsapps(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	out := make([]whatsappResponse, 0, len(rows))
	for _, wa := range rows {
		out = append(out, h.toResponse(wa))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *WhatsappHandler) Get(c echo.Context) error {
	wa, err := h.load(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.toResponse(wa))
}

func (h *WhatsappHandler) Start(c echo.Context) error {
	wa, err := h.load(c)
	if err != nil {
		return err
	}
	if err := h.manager.Connect(c.Request().Context(), db.UUIDString(wa.ID)); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusAccepted)
}

func (h *WhatsappHandler) Restart(c echo.Context) error {
	wa, err := h.load(c)
	if err != nil {
		return err
	}
	if err := h.manager.Restart(c.Request().Context(), db.UUIDString(wa.ID)); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusAccepted)
}

// Logout deauthorizes the device and wipes stored credentials. The next start
// goes through a fresh QR pairing.
func (h *WhatsappHandler) Logout(c echo.Context) error {
	wa, err := h.load(c)
	if err != nil {
		return err
	}
	if err := h.manager.Logout(c.Request().Context(), db.UUIDString(wa.ID)); err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "session not connected")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *WhatsappHandler) load(c echo.Context) (sqlc.Whatsapp, error) {
	id, err := db.ParseUUID(c.Param("id"))
	if err != nil {
		return sqlc.Whatsapp{}, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	wa, err := h.queries.GetWhatsapp(c.Request().Context(), id)
	if errors.Is(err, pgx.ErrNoRows) {
		return sqlc.Whatsapp{}, echo.NewHTTPError(http.StatusNotFound, "whatsapp not found")
	}
	if err != nil {
		return sqlc.Whatsapp{}, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return wa, nil
}
