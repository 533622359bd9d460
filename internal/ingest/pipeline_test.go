package ingest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zapdesk/zapdesk/internal/db/sqlc"
	"github.com/zapdesk/zapdesk/internal/session"
	"github.com/zapdesk/zapdesk/internal/wanet"
)

type pipeSocket struct {
	events   chan wanet.Event
	readKeys []wanet.MessageKey
	sent     []string
}

func newPipeSocket() *pipeSocket {
	return &pipeSocket{events: make(chan wanet.Event, 1)}
}

func (s *pipeSocket) Events() <-chan wanet.Event { return s.events }

func (s *pipeSocket) JID() string { return "5511999999999@s.whatsapp.net" }

func (s *pipeSocket) SendText(ctx context.Context, toJID, body string) (wanet.MessageKey, error) {
	s.sent = append(s.sent, body)
	return wanet.MessageKey{RemoteJID: toJID, FromMe: true, ID: "OUT"}, nil
}

func (s *pipeSocket) SendMessage(ctx context.Context, toJID string, msg wanet.Outbound) (wanet.MessageKey, error) {
	return wanet.MessageKey{RemoteJID: toJID, FromMe: true, ID: "OUT"}, nil
}

func (s *pipeSocket) MarkRead(ctx context.Context, keys []wanet.MessageKey) error {
	s.readKeys = append(s.readKeys, keys...)
	return nil
}

func (s *pipeSocket) Download(ctx context.Context, env *wanet.Envelope) ([]byte, string, error) {
	return nil, "", errors.New("no media")
}

func (s *pipeSocket) Logout(ctx context.Context) error { return nil }

func (s *pipeSocket) Close() error { return nil }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func liveSession(sock wanet.Socket) *session.Session {
	sess := session.NewSession("wa-1", "co-1", false)
	sess.Attach(sock)
	return sess
}

func TestMarkReadSendsReceipt(t *testing.T) {
	t.Parallel()
	sock := newPipeSocket()
	p := &Pipeline{logger: discardLogger()}
	env := &wanet.Envelope{Key: wanet.MessageKey{RemoteJID: "x@s.whatsapp.net", ID: "IN1"}}

	p.markRead(context.Background(), liveSession(sock), env, sqlc.Ticket{Status: "pending"}, false)

	require.Len(t, sock.readKeys, 1)
	assert.Equal(t, "IN1", sock.readKeys[0].ID)
}

func TestMarkReadSkips(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		fromMe      bool
		status      string
		fromHistory bool
	}{
		{name: "own message", fromMe: true, status: "open"},
		{name: "closed ticket", status: "closed"},
		{name: "history replay", status: "open", fromHistory: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			sock := newPipeSocket()
			p := &Pipeline{logger: discardLogger()}
			env := &wanet.Envelope{Key: wanet.MessageKey{
				RemoteJID: "x@s.whatsapp.net",
				FromMe:    tt.fromMe,
				ID:        "IN1",
			}}

			p.markRead(context.Background(), liveSession(sock), env, sqlc.Ticket{Status: tt.status}, tt.fromHistory)

			assert.Empty(t, sock.readKeys)
		})
	}
}

func TestMarkReadDetachedSession(t *testing.T) {
	t.Parallel()
	p := &Pipeline{logger: discardLogger()}
	sess := session.NewSession("wa-1", "co-1", false)
	env := &wanet.Envelope{Key: wanet.MessageKey{RemoteJID: "x@s.whatsapp.net", ID: "IN1"}}

	// Must not panic without a socket; the failure is logged and contained.
	p.markRead(context.Background(), sess, env, sqlc.Ticket{Status: "open"}, false)
}
