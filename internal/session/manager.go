package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/zapdesk/zapdesk/internal/config"
	"github.com/zapdesk/zapdesk/internal/credstore"
	"github.com/zapdesk/zapdesk/internal/db"
	"github.com/zapdesk/zapdesk/internal/db/sqlc"
	"github.com/zapdesk/zapdesk/internal/errtrack"
	"github.com/zapdesk/zapdesk/internal/metrics"
	"github.com/zapdesk/zapdesk/internal/notify"
	"github.com/zapdesk/zapdesk/internal/wanet"
)

// ErrWhatsAppNotFound indicates the connection id has no persisted record.
var ErrWhatsAppNotFound = errors.New("ERR_WAPP_NOT_FOUND")

// MessageSink receives accepted protocol events for downstream processing.
// Calls happen inside the session's event goroutine, so a sink sees one
// connection's events in emission order.
type MessageSink interface {
	HandleMessages(ctx context.Context, sess *Session, msgs []*wanet.Envelope, fromHistory bool)
	HandleUpdate(ctx context.Context, sess *Session, upd wanet.UpdateEvent)
	HandleContacts(ctx context.Context, sess *Session, ev wanet.ContactsEvent)
	HandleGroups(ctx context.Context, sess *Session, ev wanet.GroupsEvent)
}

// ConnectionStore is the slice of persistence the manager touches: connection
// rows and their pairing state. *sqlc.Queries satisfies it.
type ConnectionStore interface {
	GetWhatsapp(ctx context.Context, id pgtype.UUID) (sqlc.Whatsapp, error)
	ListActiveWhatsapps(ctx context.Context) ([]sqlc.Whatsapp, error)
	UpdateWhatsappSession(ctx context.Context, arg sqlc.UpdateWhatsappSessionParams) error
	UpdateWhatsappStatus(ctx context.Context, arg sqlc.UpdateWhatsappStatusParams) error
	UpdateWhatsappStatusQr(ctx context.Context, arg sqlc.UpdateWhatsappStatusQrParams) error
}

// Manager supervises the connection state machine for every tenant
// connection: dialing, QR pairing, reconnection backoff, credential
// persistence, and fatal teardown.
type Manager struct {
	cfg      config.SessionConfig
	dialer   wanet.Dialer
	registry *Registry
	queries  ConnectionStore
	creds    credstore.Store
	notifier notify.Notifier
	metrics  *metrics.Metrics
	reporter errtrack.Reporter
	sink     MessageSink
	logger   *slog.Logger

	wg      sync.WaitGroup
	closing atomic.Bool
}

func NewManager(
	cfg config.SessionConfig,
	dialer wanet.Dialer,
	registry *Registry,
	queries ConnectionStore,
	creds credstore.Store,
	notifier notify.Notifier,
	m *metrics.Metrics,
	reporter errtrack.Reporter,
	sink MessageSink,
	log *slog.Logger,
) *Manager {
	return &Manager{
		cfg:      cfg,
		dialer:   dialer,
		registry: registry,
		queries:  queries,
		creds:    creds,
		notifier: notifier,
		metrics:  m,
		reporter: reporter,
		sink:     sink,
		logger:   log.With(slog.String("component", "session_manager")),
	}
}

// Registry exposes the session registry for read access by callers.
func (m *Manager) Registry() *Registry {
	return m.registry
}

// Connect establishes a session for the connection id. A second call while a
// live session exists is an idempotent no-op.
func (m *Manager) Connect(ctx context.Context, whatsappID string) error {
	if sess, err := m.registry.Get(whatsappID); err == nil && sess.Live() {
		m.logger.Info("session already connected",
			slog.String("whatsapp_id", whatsappID))
		return nil
	}

	waUUID, err := db.ParseUUID(whatsappID)
	if err != nil {
		return err
	}
	wa, err := m.queries.GetWhatsapp(ctx, waUUID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: %s", ErrWhatsAppNotFound, whatsappID)
		}
		return fmt.Errorf("load whatsapp %s: %w", whatsappID, err)
	}
	if wa.Disabled {
		return fmt.Errorf("whatsapp %s is disabled", whatsappID)
	}
	companyID := db.UUIDString(wa.CompanyID)

	if err := m.persistStatusQR(ctx, whatsappID, StatusOpening, ""); err != nil {
		return err
	}
	m.notifySession(ctx, whatsappID, companyID)

	creds, err := m.creds.GetAll(ctx, whatsappID)
	if err != nil {
		return fmt.Errorf("restore credentials for %s: %w", whatsappID, err)
	}

	dialCtx, cancel := context.WithTimeout(ctx, m.cfg.ConnectTimeout())
	sock, err := m.dialer.Dial(dialCtx, wanet.Options{
		ConnectionID: whatsappID,
		Creds:        creds,
		Timeout:      m.cfg.ConnectTimeout(),
	})
	cancel()
	if err != nil {
		if perr := m.persistStatusQR(ctx, whatsappID, StatusDisconnected, ""); perr != nil {
			m.logger.Warn("failed to persist disconnected status",
				slog.String("whatsapp_id", whatsappID),
				slog.Any("error", perr))
		}
		m.notifySession(ctx, whatsappID, companyID)
		return fmt.Errorf("dial whatsapp %s: %w", whatsappID, err)
	}

	sess, rerr := m.registry.Get(whatsappID)
	if rerr != nil {
		sess = NewSession(whatsappID, companyID, wa.IsDefault)
	}
	sess.Attach(sock)
	m.registry.Put(sess)

	m.logger.Info("session opened",
		slog.String("whatsapp_id", whatsappID),
		slog.String("name", wa.Name))

	m.wg.Add(1)
	go m.eventLoop(sess, sock)
	return nil
}

// StartAll connects every enabled connection, used at boot.
func (m *Manager) StartAll(ctx context.Context) {
	rows, err := m.queries.ListActiveWhatsapps(ctx)
	if err != nil {
		m.logger.Error("failed to list connections for startup", slog.Any("error", err))
		return
	}
	for _, wa := range rows {
		id := db.UUIDString(wa.ID)
		if err := m.Connect(ctx, id); err != nil {
			m.logger.Error("failed to start session",
				slog.String("whatsapp_id", id),
				slog.Any("error", err))
		}
	}
}

// Restart closes the current socket without deauthorizing and dials again.
func (m *Manager) Restart(ctx context.Context, whatsappID string) error {
	if sess, err := m.registry.Get(whatsappID); err == nil {
		sess.detach()
		if sock := sess.socket(); sock != nil {
			_ = sock.Close()
		}
	}
	return m.Connect(ctx, whatsappID)
}

// Logout deauthorizes the device server-side and tears the session down.
func (m *Manager) Logout(ctx context.Context, whatsappID string) error {
	sess, err := m.registry.Get(whatsappID)
	if err != nil {
		return err
	}
	if sock := sess.socket(); sock != nil {
		if err := sock.Logout(ctx); err != nil {
			m.logger.Warn("logout request failed",
				slog.String("whatsapp_id", whatsappID),
				slog.Any("error", err))
		}
	}
	m.fatalCleanup(ctx, sess)
	return nil
}

// Remove drops the local session without deauthorizing or wiping credentials.
func (m *Manager) Remove(whatsappID string) {
	sess := m.registry.remove(whatsappID)
	if sess == nil {
		return
	}
	sess.detach()
	if sock := sess.socket(); sock != nil {
		_ = sock.Close()
	}
}

// Shutdown closes every socket and waits for event loops to drain. Connections
// are left in DISCONNECTED with their QR intact so a pairing in progress
// resumes after restart.
func (m *Manager) Shutdown(ctx context.Context) {
	m.closing.Store(true)
	for _, sess := range m.registry.List() {
		sess.detach()
		if sock := sess.socket(); sock != nil {
			_ = sock.Close()
		}
		waUUID, err := db.ParseUUID(sess.ID)
		if err != nil {
			continue
		}
		if err := m.queries.UpdateWhatsappStatus(ctx, sqlc.UpdateWhatsappStatusParams{
			ID:     waUUID,
			Status: string(StatusDisconnected),
		}); err != nil {
			m.logger.Warn("failed to persist disconnected status",
				slog.String("whatsapp_id", sess.ID),
				slog.Any("error", err))
		}
	}
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		m.logger.Warn("shutdown timed out waiting for event loops")
	}
}

// eventLoop consumes one socket's ordered event stream. It is the only
// goroutine touching this session's state machine, so dispatch within it is
// synchronous.
func (m *Manager) eventLoop(sess *Session, sock wanet.Socket) {
	defer m.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("event loop panic",
				slog.String("whatsapp_id", sess.ID),
				slog.Any("panic", r))
			m.fatalCleanup(context.Background(), sess)
		}
	}()

	ctx := context.Background()
	for ev := range sock.Events() {
		switch e := ev.(type) {
		case wanet.StateEvent:
			if m.handleState(ctx, sess, sock, e) {
				return
			}
		case wanet.CredsEvent:
			m.persistCreds(ctx, sess, e)
		case wanet.HistoryEvent:
			if m.sink != nil {
				m.sink.HandleMessages(ctx, sess, e.Messages, true)
			}
		case wanet.UpsertEvent:
			if m.sink != nil {
				m.sink.HandleMessages(ctx, sess, e.Messages, false)
			}
		case wanet.UpdateEvent:
			if m.sink != nil {
				m.sink.HandleUpdate(ctx, sess, e)
			}
		case wanet.ContactsEvent:
			if m.sink != nil {
				m.sink.HandleContacts(ctx, sess, e)
			}
		case wanet.GroupsEvent:
			if m.sink != nil {
				m.sink.HandleGroups(ctx, sess, e)
			}
		}
	}
}

// handleState applies one connection-state event. It returns true when the
// event is terminal for this socket's loop.
func (m *Manager) handleState(ctx context.Context, sess *Session, sock wanet.Socket, ev wanet.StateEvent) bool {
	if ev.QR != "" {
		return m.handleQR(ctx, sess, ev.QR)
	}
	switch ev.Connection {
	case wanet.StateOpen:
		m.handleOpen(ctx, sess, sock)
	case wanet.StateClose:
		m.handleClose(ctx, sess, sock, ev)
		return true
	}
	return false
}

func (m *Manager) handleQR(ctx context.Context, sess *Session, qr string) bool {
	if sess.QRRetries() >= m.cfg.MaxQRRetries {
		m.logger.Warn("qr retry limit reached",
			slog.String("whatsapp_id", sess.ID),
			slog.Int("max_retries", m.cfg.MaxQRRetries))
		m.fatalCleanup(ctx, sess)
		return true
	}
	retries := sess.bumpQRRetries()
	m.metrics.QREvents.Inc()
	if err := m.persistStatusQR(ctx, sess.ID, StatusQRCode, qr); err != nil {
		m.logger.Warn("failed to persist qr",
			slog.String("whatsapp_id", sess.ID),
			slog.Any("error", err))
	}
	m.notifySession(ctx, sess.ID, sess.CompanyID)
	m.logger.Info("qr code updated",
		slog.String("whatsapp_id", sess.ID),
		slog.Int("retries", retries))
	return false
}

func (m *Manager) handleOpen(ctx context.Context, sess *Session, sock wanet.Socket) {
	sess.resetCounters()
	number := wanet.Digits(sock.JID())
	waUUID, err := db.ParseUUID(sess.ID)
	if err == nil {
		err = m.queries.UpdateWhatsappSession(ctx, sqlc.UpdateWhatsappSessionParams{
			ID:     waUUID,
			Status: string(StatusConnected),
			Qrcode: "",
			Number: number,
		})
	}
	if err != nil {
		m.logger.Warn("failed to persist connected status",
			slog.String("whatsapp_id", sess.ID),
			slog.Any("error", err))
	}
	m.notifySession(ctx, sess.ID, sess.CompanyID)
	m.logger.Info("connection established",
		slog.String("whatsapp_id", sess.ID),
		slog.String("number", number))
}

func (m *Manager) handleClose(ctx context.Context, sess *Session, sock wanet.Socket, ev wanet.StateEvent) {
	action := ResolveDisconnect(ev.DisconnectCode)
	m.logger.Info("connection closed",
		slog.String("whatsapp_id", sess.ID),
		slog.Int("code", int(ev.DisconnectCode)),
		slog.String("action", action.String()),
		slog.Any("error", ev.Err))

	switch action {
	case ActionFatal:
		m.fatalCleanup(ctx, sess)
	case ActionYield:
		sess.detach()
		m.registry.remove(sess.ID)
		_ = sock.Close()
		m.logger.Info("connection taken over by another instance",
			slog.String("whatsapp_id", sess.ID))
	case ActionReconnect:
		m.scheduleReconnect(ctx, sess, sock)
	}
}

func (m *Manager) scheduleReconnect(ctx context.Context, sess *Session, sock wanet.Socket) {
	count, _ := sess.ReconnectAttempt()
	attempt := count + 1
	if attempt >= m.cfg.MaxReconnectionAttempts {
		m.logger.Warn("reconnection attempts exhausted",
			slog.String("whatsapp_id", sess.ID),
			slog.Int("attempts", attempt))
		m.fatalCleanup(ctx, sess)
		return
	}

	delay := ReconnectDelay(attempt, m.cfg.InitialReconnectDelay(), m.cfg.MaxReconnectDelay())
	sess.bumpReconnect(time.Now().Add(delay))
	m.metrics.ReconnectAttempts.Inc()
	sess.detach()
	_ = sock.Close()

	if err := m.persistStatusQR(ctx, sess.ID, StatusDisconnected, ""); err != nil {
		m.logger.Warn("failed to persist disconnected status",
			slog.String("whatsapp_id", sess.ID),
			slog.Any("error", err))
	}
	m.notifySession(ctx, sess.ID, sess.CompanyID)
	m.logger.Info("reconnect scheduled",
		slog.String("whatsapp_id", sess.ID),
		slog.Int("attempt", attempt),
		slog.Duration("delay", delay))

	time.AfterFunc(delay, func() {
		if m.closing.Load() {
			return
		}
		// The session may have been torn down or replaced while this timer
		// was pending; a stale timer must not resurrect it.
		got, err := m.registry.Get(sess.ID)
		if err != nil || got != sess || got.isCleaned() || got.Live() {
			return
		}
		if err := m.Connect(context.Background(), sess.ID); err != nil {
			m.logger.Error("scheduled reconnect failed",
				slog.String("whatsapp_id", sess.ID),
				slog.Any("error", err))
			m.fatalCleanup(context.Background(), sess)
		}
	})
}

func (m *Manager) persistCreds(ctx context.Context, sess *Session, ev wanet.CredsEvent) {
	for key, value := range ev.Creds {
		if err := m.creds.Set(ctx, sess.ID, key, value); err != nil {
			m.logger.Warn("failed to persist credential",
				slog.String("whatsapp_id", sess.ID),
				slog.String("key", key),
				slog.Any("error", err))
		}
	}
}

// fatalCleanup tears a session down terminally: status PENDING, QR and
// credentials wiped, session removed. Safe to invoke repeatedly; only the
// first call acts.
func (m *Manager) fatalCleanup(ctx context.Context, sess *Session) {
	if !sess.beginCleanup() {
		return
	}
	m.metrics.FatalCleanups.Inc()
	m.logger.Warn("fatal session cleanup", slog.String("whatsapp_id", sess.ID))

	if err := m.persistStatusQR(ctx, sess.ID, StatusPending, ""); err != nil {
		m.logger.Warn("failed to persist pending status",
			slog.String("whatsapp_id", sess.ID),
			slog.Any("error", err))
	}
	if err := m.creds.DeleteAll(ctx, sess.ID); err != nil {
		m.reporter.Report(ctx, err, map[string]any{
			"whatsapp_id": sess.ID,
			"stage":       "credential_wipe",
		})
	}
	m.notifySession(ctx, sess.ID, sess.CompanyID)
	if sock := sess.socket(); sock != nil {
		_ = sock.Close()
	}
	m.registry.remove(sess.ID)
	sess.resetCounters()
}

func (m *Manager) persistStatusQR(ctx context.Context, whatsappID string, status Status, qr string) error {
	waUUID, err := db.ParseUUID(whatsappID)
	if err != nil {
		return err
	}
	return m.queries.UpdateWhatsappStatusQr(ctx, sqlc.UpdateWhatsappStatusQrParams{
		ID:     waUUID,
		Status: string(status),
		Qrcode: qr,
	})
}

func (m *Manager) notifySession(ctx context.Context, whatsappID, companyID string) {
	waUUID, err := db.ParseUUID(whatsappID)
	if err != nil {
		return
	}
	wa, err := m.queries.GetWhatsapp(ctx, waUUID)
	if err != nil {
		return
	}
	m.notifier.Emit(companyID, "whatsappSession", map[string]any{
		"action": "update",
		"session": map[string]any{
			"id":     whatsappID,
			"name":   wa.Name,
			"status": wa.Status,
			"qrcode": wa.Qrcode,
			"number": wa.Number,
		},
	})
}
