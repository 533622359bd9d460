package session

import (
	"testing"
	"time"

	"github.com/zapdesk/zapdesk/internal/wanet"
)

func TestResolveDisconnect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		code wanet.DisconnectCode
		want Action
	}{
		{"connection lost", wanet.CodeConnectionLost, ActionReconnect},
		{"connection closed", wanet.CodeConnectionClosed, ActionReconnect},
		{"timed out", wanet.CodeTimedOut, ActionReconnect},
		{"restart required", wanet.CodeRestartRequired, ActionReconnect},
		{"logged out", wanet.CodeLoggedOut, ActionFatal},
		{"bad session", wanet.CodeBadSession, ActionFatal},
		{"multidevice mismatch", wanet.CodeMultideviceMismatch, ActionFatal},
		{"connection replaced", wanet.CodeConnectionReplaced, ActionYield},
		{"unknown code", wanet.DisconnectCode(999), ActionFatal},
		{"zero code", wanet.DisconnectCode(0), ActionFatal},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ResolveDisconnect(tt.code); got != tt.want {
				t.Fatalf("ResolveDisconnect(%d) = %s, want %s", tt.code, got, tt.want)
			}
		})
	}
}

func TestReconnectDelay(t *testing.T) {
	t.Parallel()

	initial := 2 * time.Second
	max := 60 * time.Second

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 32 * time.Second},
		{6, 60 * time.Second},
		{7, 60 * time.Second},
		{0, 2 * time.Second},
		{-3, 2 * time.Second},
	}
	for _, tt := range tests {
		if got := ReconnectDelay(tt.attempt, initial, max); got != tt.want {
			t.Errorf("ReconnectDelay(%d) = %s, want %s", tt.attempt, got, tt.want)
		}
	}
}

func TestReconnectDelayOverflow(t *testing.T) {
	t.Parallel()

	// A pathological attempt count must not wrap around below the ceiling.
	got := ReconnectDelay(200, time.Second, time.Minute)
	if got != time.Minute {
		t.Fatalf("ReconnectDelay(200) = %s, want %s", got, time.Minute)
	}
}
