package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zapdesk/zapdesk/internal/session"
	"github.com/zapdesk/zapdesk/internal/wanet"
)

type sendSocket struct {
	events chan wanet.Event
	toJID  string
	body   string
}

func newSendSocket() *sendSocket {
	return &sendSocket{events: make(chan wanet.Event, 1)}
}

func (s *sendSocket) Events() <-chan wanet.Event { return s.events }

func (s *sendSocket) JID() string { return "5511999999999@s.whatsapp.net" }

func (s *sendSocket) SendText(ctx context.Context, toJID, body string) (wanet.MessageKey, error) {
	s.toJID = toJID
	s.body = body
	return wanet.MessageKey{RemoteJID: toJID, FromMe: true, ID: "OUT1"}, nil
}

func (s *sendSocket) SendMessage(ctx context.Context, toJID string, msg wanet.Outbound) (wanet.MessageKey, error) {
	return wanet.MessageKey{RemoteJID: toJID, FromMe: true, ID: "OUT1"}, nil
}

func (s *sendSocket) MarkRead(ctx context.Context, keys []wanet.MessageKey) error { return nil }

func (s *sendSocket) Download(ctx context.Context, env *wanet.Envelope) ([]byte, string, error) {
	return nil, "", errors.New("no media")
}

func (s *sendSocket) Logout(ctx context.Context) error { return nil }

func (s *sendSocket) Close() error { return nil }

func messageTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewRequestValidator()
	return e
}

func authedSendContext(e *echo.Echo, payload string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, "/messages", strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user", &jwt.Token{
		Claims: jwt.MapClaims{"user_id": "u1", "company_id": "co1"},
		Valid:  true,
	})
	return c, rec
}

func newMessageHandler(registry *session.Registry) *MessageHandler {
	return NewMessageHandler(nil, registry, slog.New(slog.NewTextHandler(os.Stderr, nil)))
}

func TestSendMessageDefaultConnection(t *testing.T) {
	t.Parallel()

	registry := session.NewRegistry()
	sock := newSendSocket()
	sess := session.NewSession("wa-1", "co1", true)
	sess.Attach(sock)
	registry.Put(sess)

	c, rec := authedSendContext(messageTestEcho(), `{"number":"+55 (11) 98888-7777","body":"oi"}`)
	require.NoError(t, newMessageHandler(registry).Send(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "5511988887777@s.whatsapp.net", sock.toJID)
	assert.Equal(t, "oi", sock.body)
	assert.JSONEq(t, `{"wid":"OUT1"}`, rec.Body.String())
}

func TestSendMessageExplicitConnection(t *testing.T) {
	t.Parallel()

	registry := session.NewRegistry()
	sock := newSendSocket()
	sess := session.NewSession("wa-9", "co1", false)
	sess.Attach(sock)
	registry.Put(sess)

	c, rec := authedSendContext(messageTestEcho(), `{"whatsapp_id":"wa-9","number":"5511988887777","body":"oi"}`)
	require.NoError(t, newMessageHandler(registry).Send(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "5511988887777@s.whatsapp.net", sock.toJID)
}

func TestSendMessageUnknownConnection(t *testing.T) {
	t.Parallel()

	c, _ := authedSendContext(messageTestEcho(), `{"whatsapp_id":"missing","number":"5511988887777","body":"oi"}`)
	err := newMessageHandler(session.NewRegistry()).Send(c)

	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, httpErr.Code)
}

func TestSendMessageNoDefaultConnection(t *testing.T) {
	t.Parallel()

	c, _ := authedSendContext(messageTestEcho(), `{"number":"5511988887777","body":"oi"}`)
	err := newMessageHandler(session.NewRegistry()).Send(c)

	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, httpErr.Code)
	assert.Equal(t, "no default connection", httpErr.Message)
}

func TestSendMessageValidatesBody(t *testing.T) {
	t.Parallel()

	c, _ := authedSendContext(messageTestEcho(), `{"number":"5511988887777"}`)
	err := newMessageHandler(session.NewRegistry()).Send(c)

	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}
