package session

import (
	"context"
	"sync"
	"time"

	"github.com/zapdesk/zapdesk/internal/wanet"
)

// Status is the persisted lifecycle state of a connection.
type Status string

const (
	StatusOpening      Status = "OPENING"
	StatusQRCode       Status = "QRCODE"
	StatusConnected    Status = "CONNECTED"
	StatusDisconnected Status = "DISCONNECTED"
	StatusPending      Status = "PENDING"
)

// Session is the live runtime handle for one connection. At most one exists
// per connection id, owned by the Registry. The socket is swapped in place
// across reconnect attempts so the retry counters survive the old socket.
type Session struct {
	ID        string
	CompanyID string
	IsDefault bool

	mu             sync.Mutex
	sock           wanet.Socket
	live           bool
	qrRetries      int
	reconnectCount int
	nextAttemptAt  time.Time
	cleaned        bool
}

// NewSession returns a detached session shell. The manager attaches a socket
// once the dial succeeds.
func NewSession(id, companyID string, isDefault bool) *Session {
	return &Session{ID: id, CompanyID: companyID, IsDefault: isDefault}
}

// Attach swaps in a freshly dialed socket and marks the session live.
func (s *Session) Attach(sock wanet.Socket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sock = sock
	s.live = true
}

// detach marks the session not live, keeping counters for the next attempt.
func (s *Session) detach() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.live = false
}

// Live reports whether the session currently holds an open socket.
func (s *Session) Live() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live
}

func (s *Session) socket() wanet.Socket {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sock
}

// QRRetries returns the number of QR payloads persisted for this pairing run.
func (s *Session) QRRetries() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.qrRetries
}

func (s *Session) bumpQRRetries() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.qrRetries++
	return s.qrRetries
}

// ReconnectAttempt returns the consecutive recoverable-disconnect count and
// the time the next attempt is scheduled for.
func (s *Session) ReconnectAttempt() (int, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reconnectCount, s.nextAttemptAt
}

func (s *Session) bumpReconnect(next time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reconnectCount++
	s.nextAttemptAt = next
	return s.reconnectCount
}

// resetCounters clears both transient counters after a successful open.
func (s *Session) resetCounters() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.qrRetries = 0
	s.reconnectCount = 0
	s.nextAttemptAt = time.Time{}
}

// beginCleanup flips the session into the cleaned state. Only the first
// caller wins; repeated fatal escalations become no-ops.
func (s *Session) beginCleanup() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cleaned {
		return false
	}
	s.cleaned = true
	s.live = false
	return true
}

func (s *Session) isCleaned() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cleaned
}

// SendText sends a plain text message over the session's socket.
func (s *Session) SendText(ctx context.Context, toJID, body string) (wanet.MessageKey, error) {
	sock := s.socket()
	if sock == nil {
		return wanet.MessageKey{}, ErrSessionNotFound
	}
	return sock.SendText(ctx, toJID, body)
}

// Send sends a structured outbound message over the session's socket.
func (s *Session) Send(ctx context.Context, toJID string, msg wanet.Outbound) (wanet.MessageKey, error) {
	sock := s.socket()
	if sock == nil {
		return wanet.MessageKey{}, ErrSessionNotFound
	}
	return sock.SendMessage(ctx, toJID, msg)
}

// Download fetches the media payload of an envelope over the session's socket.
func (s *Session) Download(ctx context.Context, env *wanet.Envelope) ([]byte, string, error) {
	sock := s.socket()
	if sock == nil {
		return nil, "", ErrSessionNotFound
	}
	return sock.Download(ctx, env)
}

// MarkRead acknowledges the given message keys as read.
func (s *Session) MarkRead(ctx context.Context, keys []wanet.MessageKey) error {
	sock := s.socket()
	if sock == nil {
		return ErrSessionNotFound
	}
	return sock.MarkRead(ctx, keys)
}

// JID returns the connected account identifier, empty while pairing.
func (s *Session) JID() string {
	sock := s.socket()
	if sock == nil {
		return ""
	}
	return sock.JID()
}
