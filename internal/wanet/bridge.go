package wanet

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// The device gateway speaks JSON over NATS. One dial request spawns a
// gateway-side client; its events stream back on a per-connection subject
// whose per-publisher ordering NATS preserves.
const (
	subjectDial   = "wa.gateway.dial"
	subjectEvents = "wa.gateway.%s.evt"
	subjectCmd    = "wa.gateway.%s.cmd.%s"

	eventBuffer    = 256
	requestTimeout = 15 * time.Second
)

// BridgeDialer dials connections through the gateway.
type BridgeDialer struct {
	nc     *nats.Conn
	logger *slog.Logger
}

func NewBridgeDialer(nc *nats.Conn, log *slog.Logger) *BridgeDialer {
	return &BridgeDialer{
		nc:     nc,
		logger: log.With(slog.String("component", "wanet_bridge")),
	}
}

type dialRequest struct {
	ConnectionID string            `json:"connectionId"`
	Creds        map[string][]byte `json:"creds,omitempty"`
	TimeoutMS    int64             `json:"timeoutMs"`
}

type bridgeReply struct {
	OK    bool            `json:"ok"`
	Error string          `json:"error,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func (d *BridgeDialer) Dial(ctx context.Context, opts Options) (Socket, error) {
	sock := &bridgeSocket{
		nc:     d.nc,
		id:     opts.ConnectionID,
		events: make(chan Event, eventBuffer),
		logger: d.logger.With(slog.String("connection_id", opts.ConnectionID)),
	}
	sub, err := d.nc.Subscribe(fmt.Sprintf(subjectEvents, opts.ConnectionID), sock.onEvent)
	if err != nil {
		return nil, fmt.Errorf("subscribe events: %w", err)
	}
	sock.sub = sub

	req := dialRequest{
		ConnectionID: opts.ConnectionID,
		Creds:        opts.Creds,
		TimeoutMS:    opts.Timeout.Milliseconds(),
	}
	if _, err := sock.request(ctx, subjectDial, req); err != nil {
		_ = sub.Unsubscribe()
		return nil, fmt.Errorf("dial %s: %w", opts.ConnectionID, err)
	}
	return sock, nil
}

// bridgeSocket is one gateway-side client connection.
type bridgeSocket struct {
	nc     *nats.Conn
	id     string
	sub    *nats.Subscription
	events chan Event
	logger *slog.Logger

	mu     sync.Mutex
	jid    string
	closed bool
}

// gatewayEvent is the envelope every event subject message carries.
type gatewayEvent struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type stateEventWire struct {
	Connection ConnState      `json:"connection"`
	QR         string         `json:"qr,omitempty"`
	Code       DisconnectCode `json:"statusCode,omitempty"`
	Error      string         `json:"error,omitempty"`
	JID        string         `json:"jid,omitempty"`
}

type messagesEventWire struct {
	Messages []*Envelope `json:"messages"`
	Kind     string      `json:"kind,omitempty"`
}

func (s *bridgeSocket) onEvent(m *nats.Msg) {
	var ev gatewayEvent
	if err := json.Unmarshal(m.Data, &ev); err != nil {
		s.logger.Warn("malformed gateway event", slog.Any("error", err))
		return
	}
	decoded, err := s.decode(ev)
	if err != nil {
		s.logger.Warn("undecodable gateway event",
			slog.String("type", ev.Type),
			slog.Any("error", err))
		return
	}
	if decoded == nil {
		return
	}

	// The subscription callback is serial per subject, so sends keep the
	// gateway's emission order. The lock pairs with Close: once closed is
	// set no sender can reach the channel again.
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.events <- decoded:
	default:
		s.logger.Warn("event buffer full, dropping event", slog.String("type", ev.Type))
	}
}

func (s *bridgeSocket) decode(ev gatewayEvent) (Event, error) {
	switch ev.Type {
	case "state":
		var w stateEventWire
		if err := json.Unmarshal(ev.Payload, &w); err != nil {
			return nil, err
		}
		if w.JID != "" {
			s.mu.Lock()
			s.jid = w.JID
			s.mu.Unlock()
		}
		out := StateEvent{Connection: w.Connection, QR: w.QR, DisconnectCode: w.Code}
		if w.Error != "" {
			out.Err = fmt.Errorf("%s", w.Error)
		}
		return out, nil
	case "creds":
		var w struct {
			Creds map[string][]byte `json:"creds"`
		}
		if err := json.Unmarshal(ev.Payload, &w); err != nil {
			return nil, err
		}
		return CredsEvent{Creds: w.Creds}, nil
	case "history":
		var w messagesEventWire
		if err := json.Unmarshal(ev.Payload, &w); err != nil {
			return nil, err
		}
		return HistoryEvent{Messages: w.Messages}, nil
	case "upsert":
		var w messagesEventWire
		if err := json.Unmarshal(ev.Payload, &w); err != nil {
			return nil, err
		}
		return UpsertEvent{Messages: w.Messages, Type: w.Kind}, nil
	case "update":
		var w UpdateEvent
		if err := json.Unmarshal(ev.Payload, &w); err != nil {
			return nil, err
		}
		return w, nil
	case "contacts":
		var w ContactsEvent
		if err := json.Unmarshal(ev.Payload, &w); err != nil {
			return nil, err
		}
		return w, nil
	case "groups":
		var w GroupsEvent
		if err := json.Unmarshal(ev.Payload, &w); err != nil {
			return nil, err
		}
		return w, nil
	}
	return nil, fmt.Errorf("unknown event type %q", ev.Type)
}

func (s *bridgeSocket) Events() <-chan Event { return s.events }

func (s *bridgeSocket) JID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jid
}

type sendRequest struct {
	To      string   `json:"to"`
	Message Outbound `json:"message"`
}

type sendReply struct {
	Key MessageKey `json:"key"`
}

func (s *bridgeSocket) SendText(ctx context.Context, toJID string, body string) (MessageKey, error) {
	return s.SendMessage(ctx, toJID, Outbound{Text: body})
}

func (s *bridgeSocket) SendMessage(ctx context.Context, toJID string, msg Outbound) (MessageKey, error) {
	data, err := s.request(ctx, s.cmd("send"), sendRequest{To: toJID, Message: msg})
	if err != nil {
		return MessageKey{}, fmt.Errorf("send to %s: %w", toJID, err)
	}
	var rep sendReply
	if err := json.Unmarshal(data, &rep); err != nil {
		return MessageKey{}, fmt.Errorf("decode send reply: %w", err)
	}
	return rep.Key, nil
}

func (s *bridgeSocket) MarkRead(ctx context.Context, keys []MessageKey) error {
	_, err := s.request(ctx, s.cmd("read"), map[string]any{"keys": keys})
	return err
}

type downloadReply struct {
	Data     []byte `json:"data"`
	Mimetype string `json:"mimetype"`
}

func (s *bridgeSocket) Download(ctx context.Context, env *Envelope) ([]byte, string, error) {
	data, err := s.request(ctx, s.cmd("download"), env)
	if err != nil {
		return nil, "", fmt.Errorf("download %s: %w", env.Key.ID, err)
	}
	var rep downloadReply
	if err := json.Unmarshal(data, &rep); err != nil {
		return nil, "", fmt.Errorf("decode download reply: %w", err)
	}
	return rep.Data, rep.Mimetype, nil
}

func (s *bridgeSocket) Logout(ctx context.Context) error {
	_, err := s.request(ctx, s.cmd("logout"), struct{}{})
	return err
}

func (s *bridgeSocket) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.events)
	s.mu.Unlock()

	err := s.sub.Unsubscribe()

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	if _, cerr := s.request(ctx, s.cmd("close"), struct{}{}); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

func (s *bridgeSocket) cmd(name string) string {
	return fmt.Sprintf(subjectCmd, s.id, name)
}

func (s *bridgeSocket) request(ctx context.Context, subject string, payload any) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, requestTimeout)
		defer cancel()
	}
	msg, err := s.nc.RequestWithContext(ctx, subject, body)
	if err != nil {
		return nil, err
	}
	var rep bridgeReply
	if err := json.Unmarshal(msg.Data, &rep); err != nil {
		return nil, fmt.Errorf("decode reply: %w", err)
	}
	if !rep.OK {
		return nil, fmt.Errorf("gateway error: %s", rep.Error)
	}
	return rep.Data, nil
}
