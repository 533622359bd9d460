package credstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nats-io/nats.go"
)

// NATS is a Store backed by a JetStream key-value bucket.
type NATS struct {
	kv     nats.KeyValue
	logger *slog.Logger
}

// NewNATS binds the store to the named bucket, creating it when absent.
func NewNATS(nc *nats.Conn, bucket string, log *slog.Logger) (*NATS, error) {
	js, err := nc.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream context: %w", err)
	}
	kv, err := js.KeyValue(bucket)
	if errors.Is(err, nats.ErrBucketNotFound) {
		kv, err = js.CreateKeyValue(&nats.KeyValueConfig{Bucket: bucket})
	}
	if err != nil {
		return nil, fmt.Errorf("open credentials bucket %q: %w", bucket, err)
	}
	return &NATS{
		kv:     kv,
		logger: log.With(slog.String("component", "credstore")),
	}, nil
}

func (s *NATS) Get(ctx context.Context, connectionID, key string) ([]byte, bool, error) {
	entry, err := s.kv.Get(namespacedKey(connectionID, key))
	if errors.Is(err, nats.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("credstore get: %w", err)
	}
	return entry.Value(), true, nil
}

func (s *NATS) GetAll(ctx context.Context, connectionID string) (map[string][]byte, error) {
	keys, err := s.kv.Keys()
	if errors.Is(err, nats.ErrNoKeysFound) {
		return map[string][]byte{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("credstore list keys: %w", err)
	}
	prefix := namespacePrefixFor(connectionID)
	out := map[string][]byte{}
	for _, k := range keys {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		entry, err := s.kv.Get(k)
		if errors.Is(err, nats.ErrKeyNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("credstore get %q: %w", k, err)
		}
		out[strings.TrimPrefix(k, prefix)] = entry.Value()
	}
	return out, nil
}

func (s *NATS) Set(ctx context.Context, connectionID, key string, value []byte) error {
	if _, err := s.kv.Put(namespacedKey(connectionID, key), value); err != nil {
		return fmt.Errorf("credstore set: %w", err)
	}
	return nil
}

func (s *NATS) Delete(ctx context.Context, connectionID, key string) error {
	err := s.kv.Delete(namespacedKey(connectionID, key))
	if err != nil && !errors.Is(err, nats.ErrKeyNotFound) {
		return fmt.Errorf("credstore delete: %w", err)
	}
	return nil
}

// DeleteAll removes every key in the connection's namespace. The bucket has
// no pattern delete, so keys are enumerated and purged one by one.
func (s *NATS) DeleteAll(ctx context.Context, connectionID string) error {
	keys, err := s.kv.Keys()
	if errors.Is(err, nats.ErrNoKeysFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("credstore list keys: %w", err)
	}
	prefix := namespacePrefixFor(connectionID)
	for _, k := range keys {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		if err := s.kv.Delete(k); err != nil && !errors.Is(err, nats.ErrKeyNotFound) {
			s.logger.Warn("failed to delete credential key",
				slog.String("key", k),
				slog.Any("error", err))
		}
	}
	return nil
}
