package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/zapdesk/zapdesk/internal/auth"
	"github.com/zapdesk/zapdesk/internal/config"
	"github.com/zapdesk/zapdesk/internal/db"
	"github.com/zapdesk/zapdesk/internal/db/sqlc"
)

// AuthHandler issues JWTs for agent logins.
type AuthHandler struct {
	queries   *sqlc.Queries
	authCfg   config.AuthConfig
	adminCfg  config.AdminConfig
	expiresIn time.Duration
	logger    *slog.Logger
}

func NewAuthHandler(queries *sqlc.Queries, authCfg config.AuthConfig, adminCfg config.AdminConfig, log *slog.Logger) *AuthHandler {
	expiresIn, err := time.ParseDuration(authCfg.JWTExpiresIn)
	if err != nil || expiresIn <= 0 {
		expiresIn = 24 * time.Hour
	}
	return &AuthHandler{
		queries:   queries,
		authCfg:   authCfg,
		adminCfg:  adminCfg,
		expiresIn: expiresIn,
		logger:    log.With(slog.String("handler", "auth")),
	}
}

func (h *AuthHandler) Register(e *echo.Echo) {
	e.POST("/auth/login", h.Login)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	UserID    string    `json:"user_id"`
	CompanyID string    `json:"company_id,omitempty"`
	Name      string    `json:"name,omitempty"`
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	user, err := h.queries.GetUserByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return echo.NewHTTPError(http.StatusInternalServerError, "login failed")
	}
	if err == nil {
		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
		}
		id := auth.Identity{
			UserID:    db.UUIDString(user.ID),
			CompanyID: db.UUIDString(user.CompanyID),
		}
		token, expiresAt, err := auth.GenerateToken(id, h.authCfg.JWTSecret, h.expiresIn)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "login failed")
		}
		return c.JSON(http.StatusOK, loginResponse{
			Token:     token,
			ExpiresAt: expiresAt,
			UserID:    id.UserID,
			CompanyID: id.CompanyID,
			Name:      user.Name,
		})
	}

	// Bootstrap admin configured outside the database.
	if h.adminCfg.Email != "" && req.Email == h.adminCfg.Email &&
		bcrypt.CompareHashAndPassword([]byte(h.adminCfg.PasswordHash), []byte(req.Password)) == nil {
		token, expiresAt, err := auth.GenerateToken(auth.Identity{UserID: "admin"}, h.authCfg.JWTSecret, h.expiresIn)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "login failed")
		}
		return c.JSON(http.StatusOK, loginResponse{
			Token:     token,
			ExpiresAt: expiresAt,
			UserID:    "admin",
		})
	}

	return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
}
