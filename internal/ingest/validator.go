package ingest

import "github.com/zapdesk/zapdesk/internal/wanet"

// Drop reasons surfaced to metrics and logs.
const (
	DropReasonBroadcast   = "broadcast"
	DropReasonStub        = "stub"
	DropReasonUnknownType = "unknown_type"
	DropReasonNoHandler   = "no_handler"
	DropReasonGroupDenied = "group_denied"
)

// nonProcessableStubs is the fixed set of protocol notifications that never
// enter the pipeline.
var nonProcessableStubs = map[wanet.StubType]struct{}{
	wanet.StubRevoke:                  {},
	wanet.StubCiphertext:              {},
	wanet.StubE2EIdentityChanged:      {},
	wanet.StubE2EEncryptionKeyChanged: {},
}

// Validate decides whether a raw message may enter the pipeline. The type
// check is a closed allow-list: a populated but unrecognized shape is
// rejected with DropReasonUnknownType so new upstream message kinds fail
// safe — dropped and observable — rather than silently mis-handled.
func Validate(env *wanet.Envelope) (ok bool, reason string) {
	if env.Key.RemoteJID == wanet.StatusBroadcastJID {
		return false, DropReasonBroadcast
	}
	if _, bad := nonProcessableStubs[env.StubType]; bad {
		return false, DropReasonStub
	}
	if typeOf(env) == TypeUnknown {
		return false, DropReasonUnknownType
	}
	return true, ""
}
