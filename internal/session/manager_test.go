package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zapdesk/zapdesk/internal/config"
	"github.com/zapdesk/zapdesk/internal/credstore"
	"github.com/zapdesk/zapdesk/internal/db"
	"github.com/zapdesk/zapdesk/internal/db/sqlc"
	"github.com/zapdesk/zapdesk/internal/errtrack"
	"github.com/zapdesk/zapdesk/internal/metrics"
	"github.com/zapdesk/zapdesk/internal/notify"
	"github.com/zapdesk/zapdesk/internal/wanet"
)

const testWaID = "3f6f4d2e-8f0a-4c1b-9c3d-2a6f5b8e9d01"

type connStoreStub struct {
	mu       sync.Mutex
	wa       sqlc.Whatsapp
	statuses []string
}

func (f *connStoreStub) GetWhatsapp(ctx context.Context, id pgtype.UUID) (sqlc.Whatsapp, error) {
	return f.wa, nil
}

func (f *connStoreStub) ListActiveWhatsapps(ctx context.Context) ([]sqlc.Whatsapp, error) {
	return []sqlc.Whatsapp{f.wa}, nil
}

func (f *connStoreStub) UpdateWhatsappSession(ctx context.Context, arg sqlc.UpdateWhatsappSessionParams) error {
	f.record(arg.Status)
	return nil
}

func (f *connStoreStub) UpdateWhatsappStatus(ctx context.Context, arg sqlc.UpdateWhatsappStatusParams) error {
	f.record(arg.Status)
	return nil
}

func (f *connStoreStub) UpdateWhatsappStatusQr(ctx context.Context, arg sqlc.UpdateWhatsappStatusQrParams) error {
	f.record(arg.Status)
	return nil
}

func (f *connStoreStub) record(status string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses = append(f.statuses, status)
}

func (f *connStoreStub) recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.statuses))
	copy(out, f.statuses)
	return out
}

type stubSocket struct {
	mu     sync.Mutex
	events chan wanet.Event
	closed bool
}

func newStubSocket() *stubSocket {
	return &stubSocket{events: make(chan wanet.Event, 8)}
}

func (s *stubSocket) Events() <-chan wanet.Event { return s.events }

func (s *stubSocket) JID() string { return "5511999999999@s.whatsapp.net" }

func (s *stubSocket) SendText(ctx context.Context, toJID, body string) (wanet.MessageKey, error) {
	return wanet.MessageKey{RemoteJID: toJID, FromMe: true, ID: "OUT"}, nil
}

func (s *stubSocket) SendMessage(ctx context.Context, toJID string, msg wanet.Outbound) (wanet.MessageKey, error) {
	return wanet.MessageKey{RemoteJID: toJID, FromMe: true, ID: "OUT"}, nil
}

func (s *stubSocket) MarkRead(ctx context.Context, keys []wanet.MessageKey) error { return nil }

func (s *stubSocket) Download(ctx context.Context, env *wanet.Envelope) ([]byte, string, error) {
	return nil, "", errors.New("no media")
}

func (s *stubSocket) Logout(ctx context.Context) error { return nil }

func (s *stubSocket) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	close(s.events)
	return nil
}

type stubDialer struct {
	sock *stubSocket
}

func (d *stubDialer) Dial(ctx context.Context, opts wanet.Options) (wanet.Socket, error) {
	return d.sock, nil
}

func newTestManager(t *testing.T, sock *stubSocket) (*Manager, *connStoreStub, *credstore.Memory) {
	t.Helper()
	waUUID, err := db.ParseUUID(testWaID)
	require.NoError(t, err)

	store := &connStoreStub{wa: sqlc.Whatsapp{
		ID:        waUUID,
		CompanyID: pgtype.UUID{Bytes: [16]byte{9}, Valid: true},
		Name:      "main",
	}}
	cfg := config.SessionConfig{
		MaxReconnectionAttempts: 3,
		InitialReconnectDelayMS: 1,
		MaxReconnectDelayMS:     2,
		MaxQRRetries:            2,
		ConnectTimeoutSeconds:   1,
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	creds := credstore.NewMemory()
	m := NewManager(cfg, &stubDialer{sock: sock}, NewRegistry(), store, creds,
		notify.Noop{}, metrics.NewNop(), errtrack.Noop{}, nil, log)
	return m, store, creds
}

func TestLoggedOutFatalCleanupOnce(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	sock := newStubSocket()
	m, _, creds := newTestManager(t, sock)

	require.NoError(t, creds.Set(ctx, testWaID, "noise-key", []byte("abc")))

	sess := NewSession(testWaID, "co-1", false)
	sess.Attach(sock)
	m.registry.Put(sess)

	ev := wanet.StateEvent{
		Connection:     wanet.StateClose,
		DisconnectCode: wanet.CodeLoggedOut,
		Err:            errors.New("logged out"),
	}
	m.handleClose(ctx, sess, sock, ev)
	m.handleClose(ctx, sess, sock, ev)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.metrics.FatalCleanups))
	assert.True(t, sess.isCleaned())
	assert.Equal(t, 0, m.registry.Len())

	left, err := creds.GetAll(ctx, testWaID)
	require.NoError(t, err)
	assert.Empty(t, left, "credentials must be wiped on logout")
}

func TestQRExhaustionFatalCleanup(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	sock := newStubSocket()
	m, store, _ := newTestManager(t, sock)

	sess := NewSession(testWaID, "co-1", false)
	sess.Attach(sock)
	m.registry.Put(sess)

	assert.False(t, m.handleQR(ctx, sess, "qr-1"))
	assert.False(t, m.handleQR(ctx, sess, "qr-2"))
	assert.True(t, m.handleQR(ctx, sess, "qr-3"), "event past the retry limit must be terminal")

	assert.Equal(t, float64(1), testutil.ToFloat64(m.metrics.FatalCleanups))
	assert.True(t, sess.isCleaned())
	assert.Equal(t, 0, m.registry.Len())
	assert.Equal(t, []string{"QRCODE", "QRCODE", "PENDING"}, store.recorded())
}

func TestEventLoopLoggedOutTearsDown(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	sock := newStubSocket()
	m, store, creds := newTestManager(t, sock)

	require.NoError(t, creds.Set(ctx, testWaID, "noise-key", []byte("abc")))
	require.NoError(t, m.Connect(ctx, testWaID))

	sock.events <- wanet.StateEvent{
		Connection:     wanet.StateClose,
		DisconnectCode: wanet.CodeLoggedOut,
		Err:            errors.New("logged out"),
	}
	m.wg.Wait()

	assert.Equal(t, float64(1), testutil.ToFloat64(m.metrics.FatalCleanups))
	assert.Equal(t, 0, m.registry.Len())

	left, err := creds.GetAll(ctx, testWaID)
	require.NoError(t, err)
	assert.Empty(t, left)
	assert.Contains(t, store.recorded(), "PENDING")
}

func TestShutdownPersistsDisconnected(t *testing.T) {
	t.Parallel()
	sock := newStubSocket()
	m, store, _ := newTestManager(t, sock)

	sess := NewSession(testWaID, "co-1", false)
	sess.Attach(sock)
	m.registry.Put(sess)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	m.Shutdown(ctx)

	assert.False(t, sess.Live())
	assert.Contains(t, store.recorded(), "DISCONNECTED")
}
