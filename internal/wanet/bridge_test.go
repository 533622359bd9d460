package wanet

import (
	"encoding/json"
	"log/slog"
	"os"
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func natsMsg(t *testing.T, payload any) *nats.Msg {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return &nats.Msg{Data: data}
}

func testSocket() *bridgeSocket {
	return &bridgeSocket{
		id:     "wa-1",
		events: make(chan Event, 4),
		logger: slog.New(slog.NewTextHandler(os.Stderr, nil)),
	}
}

func rawEvent(t *testing.T, typ string, payload any) gatewayEvent {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return gatewayEvent{Type: typ, Payload: data}
}

func TestDecodeStateEvent(t *testing.T) {
	t.Parallel()
	s := testSocket()

	ev, err := s.decode(rawEvent(t, "state", map[string]any{
		"connection": "close",
		"statusCode": 440,
		"error":      "replaced",
	}))
	require.NoError(t, err)

	state, ok := ev.(StateEvent)
	require.True(t, ok)
	assert.Equal(t, StateClose, state.Connection)
	assert.Equal(t, CodeConnectionReplaced, state.DisconnectCode)
	assert.EqualError(t, state.Err, "replaced")
}

func TestDecodeStateEventStoresJID(t *testing.T) {
	t.Parallel()
	s := testSocket()

	_, err := s.decode(rawEvent(t, "state", map[string]any{
		"connection": "open",
		"jid":        "5511999999999:3@s.whatsapp.net",
	}))
	require.NoError(t, err)
	assert.Equal(t, "5511999999999:3@s.whatsapp.net", s.JID())
}

func TestDecodeUpsertEvent(t *testing.T) {
	t.Parallel()
	s := testSocket()

	payload := map[string]any{
		"kind": "notify",
		"messages": []map[string]any{
			{
				"key":     map[string]any{"remoteJid": "x@s.whatsapp.net", "id": "ABC"},
				"message": map[string]any{"conversation": "oi"},
			},
		},
	}
	ev, err := s.decode(rawEvent(t, "upsert", payload))
	require.NoError(t, err)

	up, ok := ev.(UpsertEvent)
	require.True(t, ok)
	assert.Equal(t, "notify", up.Type)
	require.Len(t, up.Messages, 1)
	assert.Equal(t, "ABC", up.Messages[0].Key.ID)
	require.NotNil(t, up.Messages[0].Content)
	require.NotNil(t, up.Messages[0].Content.Conversation)
	assert.Equal(t, "oi", *up.Messages[0].Content.Conversation)
}

func TestDecodeCredsEvent(t *testing.T) {
	t.Parallel()
	s := testSocket()

	ev, err := s.decode(rawEvent(t, "creds", map[string]any{
		"creds": map[string][]byte{"noise-key": []byte("abc")},
	}))
	require.NoError(t, err)

	creds, ok := ev.(CredsEvent)
	require.True(t, ok)
	assert.Equal(t, []byte("abc"), creds.Creds["noise-key"])
}

func TestDecodeUnknownType(t *testing.T) {
	t.Parallel()
	s := testSocket()

	_, err := s.decode(gatewayEvent{Type: "presence", Payload: []byte(`{}`)})
	assert.Error(t, err)
}

func TestOnEventDropsAfterClose(t *testing.T) {
	t.Parallel()
	s := testSocket()

	s.mu.Lock()
	s.closed = true
	close(s.events)
	s.mu.Unlock()

	// Must not panic by sending on the closed channel.
	s.onEvent(natsMsg(t, map[string]any{
		"type":    "update",
		"payload": map[string]any{"key": map[string]any{"id": "X"}, "ack": 2},
	}))
}

func TestOnEventBufferFullDrops(t *testing.T) {
	t.Parallel()
	s := testSocket()

	raw := natsMsg(t, map[string]any{
		"type":    "update",
		"payload": map[string]any{"key": map[string]any{"id": "X"}, "ack": 2},
	})
	for i := 0; i < cap(s.events)+3; i++ {
		s.onEvent(raw)
	}
	assert.Equal(t, cap(s.events), len(s.events))
}
