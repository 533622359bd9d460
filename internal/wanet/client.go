package wanet

import (
	"context"
	"time"
)

// ConnState mirrors the connection field of a state event.
type ConnState string

const (
	StateConnecting ConnState = "connecting"
	StateOpen       ConnState = "open"
	StateClose      ConnState = "close"
)

// Options configures a single dial attempt.
type Options struct {
	ConnectionID string
	// Creds is the restored auth state for this connection. Empty creds
	// trigger a fresh QR pairing flow.
	Creds   map[string][]byte
	Timeout time.Duration
}

// Dialer opens sockets against the messaging network. The concrete
// implementation wraps the vendor client library and is injected at wiring
// time; everything above it depends only on this surface.
type Dialer interface {
	Dial(ctx context.Context, opts Options) (Socket, error)
}

// Socket is one live connection. Its event channel delivers events in
// emission order and is closed when the socket is torn down.
type Socket interface {
	Events() <-chan Event
	JID() string
	SendText(ctx context.Context, toJID string, body string) (MessageKey, error)
	SendMessage(ctx context.Context, toJID string, msg Outbound) (MessageKey, error)
	MarkRead(ctx context.Context, keys []MessageKey) error
	// Download fetches the media payload referenced by the envelope,
	// returning its bytes and mimetype.
	Download(ctx context.Context, env *Envelope) ([]byte, string, error)
	// Logout deauthorizes the device server-side before closing.
	Logout(ctx context.Context) error
	// Close tears the socket down without deauthorizing and without
	// emitting further events; the event channel is closed.
	Close() error
}

// Outbound is a message to be sent over a socket.
type Outbound struct {
	Text     string            `json:"text,omitempty"`
	Buttons  []Button          `json:"buttons,omitempty"`
	List     *ListSpec         `json:"list,omitempty"`
	Document *OutboundDocument `json:"document,omitempty"`
}

type Button struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type ListSpec struct {
	Title      string    `json:"title"`
	ButtonText string    `json:"buttonText"`
	Rows       []ListRow `json:"rows"`
}

type ListRow struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type OutboundDocument struct {
	FileName string `json:"fileName"`
	Mimetype string `json:"mimetype"`
	Data     []byte `json:"data"`
}

// Event is one entry in a socket's ordered event stream.
type Event interface {
	isEvent()
}

// StateEvent reports connection lifecycle changes. QR is set while pairing;
// DisconnectCode is set when Connection is StateClose.
type StateEvent struct {
	Connection     ConnState
	QR             string
	DisconnectCode DisconnectCode
	Err            error
}

// CredsEvent carries updated auth material to persist.
type CredsEvent struct {
	Creds map[string][]byte
}

// HistoryEvent delivers a batch of historical messages after pairing.
type HistoryEvent struct {
	Messages []*Envelope
}

// UpsertEvent delivers newly arrived messages. Type is "notify" for live
// messages and "append" for offline catch-up.
type UpsertEvent struct {
	Messages []*Envelope
	Type     string
}

// UpdateEvent reports delivery-ack changes and deletions for a sent message.
type UpdateEvent struct {
	Key     MessageKey
	Ack     int
	Deleted bool
}

// ContactsEvent reports pushed contact profile updates.
type ContactsEvent struct {
	Contacts []ContactUpdate
}

type ContactUpdate struct {
	JID  string
	Name string
}

// GroupsEvent reports group metadata updates.
type GroupsEvent struct {
	Groups []GroupUpdate
}

type GroupUpdate struct {
	JID     string
	Subject string
}

func (StateEvent) isEvent()    {}
func (CredsEvent) isEvent()    {}
func (HistoryEvent) isEvent()  {}
func (UpsertEvent) isEvent()   {}
func (UpdateEvent) isEvent()   {}
func (ContactsEvent) isEvent() {}
func (GroupsEvent) isEvent()   {}
