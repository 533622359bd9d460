// Package credstore persists protocol credentials and signal key material
// per connection, namespaced so a connection wipe cannot touch its neighbors.
package credstore

import (
	"context"
	"strings"
)

// Store is the credential persistence surface used by session supervision.
// Keys are scoped to one connection; DeleteAll wipes the whole namespace.
type Store interface {
	Get(ctx context.Context, connectionID, key string) ([]byte, bool, error)
	// GetAll returns every key/value in the connection's namespace, with the
	// namespace prefix stripped. Used to restore auth state before dialing.
	GetAll(ctx context.Context, connectionID string) (map[string][]byte, error)
	Set(ctx context.Context, connectionID, key string, value []byte) error
	Delete(ctx context.Context, connectionID, key string) error
	DeleteAll(ctx context.Context, connectionID string) error
}

// CredsKey is the entry holding the serialized auth state blob.
const CredsKey = "creds"

const namespacePrefix = "sessions"

// namespacedKey builds the storage key "sessions.{id}.{key}". Characters
// outside the backend's safe set are replaced so signal key identifiers
// (which may carry base64 padding) remain addressable.
func namespacedKey(connectionID, key string) string {
	return namespacePrefix + "." + sanitize(connectionID) + "." + sanitize(key)
}

func namespacePrefixFor(connectionID string) string {
	return namespacePrefix + "." + sanitize(connectionID) + "."
}

func sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_' || r == '=':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
