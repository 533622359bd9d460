package session

import (
	"time"

	"github.com/zapdesk/zapdesk/internal/wanet"
)

// Action is the recovery behavior selected for a disconnect reason.
type Action int

const (
	// ActionReconnect closes the socket without deauthorizing and schedules
	// a delayed reconnection attempt.
	ActionReconnect Action = iota
	// ActionFatal tears the session down and wipes its credentials; the
	// tenant must pair again.
	ActionFatal
	// ActionYield removes the local session only: another instance has taken
	// the connection over, so neither retry nor credential wipe is allowed.
	ActionYield
)

func (a Action) String() string {
	switch a {
	case ActionReconnect:
		return "reconnect"
	case ActionFatal:
		return "fatal"
	case ActionYield:
		return "yield"
	default:
		return "unknown"
	}
}

// ResolveDisconnect maps a protocol disconnect code to its recovery action.
// Unrecognized codes fall through to fatal: failing safe beats hanging in an
// ambiguous state.
func ResolveDisconnect(code wanet.DisconnectCode) Action {
	switch code {
	case wanet.CodeConnectionLost,
		wanet.CodeConnectionClosed,
		wanet.CodeTimedOut,
		wanet.CodeRestartRequired:
		return ActionReconnect
	case wanet.CodeLoggedOut,
		wanet.CodeBadSession,
		wanet.CodeMultideviceMismatch:
		return ActionFatal
	case wanet.CodeConnectionReplaced:
		return ActionYield
	default:
		return ActionFatal
	}
}

// ReconnectDelay computes the backoff before the n-th consecutive attempt:
// min(initial * 2^(n-1), max).
func ReconnectDelay(attempt int, initial, max time.Duration) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := initial
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= max || delay <= 0 {
			return max
		}
	}
	if delay > max {
		return max
	}
	return delay
}
