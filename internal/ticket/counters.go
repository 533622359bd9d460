package ticket

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/nats-io/nats.go"
)

// Counters tracks per-contact unread message counts in the cache
// collaborator. Counts are a fast path for UI badges; the ticket row remains
// authoritative.
type Counters interface {
	Increment(ctx context.Context, contactID string) (int, error)
	Reset(ctx context.Context, contactID string) error
}

// MemoryCounters is an in-process Counters for tests and single-node use.
type MemoryCounters struct {
	mu     sync.Mutex
	counts map[string]int
}

func NewMemoryCounters() *MemoryCounters {
	return &MemoryCounters{counts: map[string]int{}}
}

func (c *MemoryCounters) Increment(ctx context.Context, contactID string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[contactID]++
	return c.counts[contactID], nil
}

func (c *MemoryCounters) Reset(ctx context.Context, contactID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.counts, contactID)
	return nil
}

// NATSCounters stores counts in a JetStream key-value bucket under
// "contacts.{id}.unreads".
type NATSCounters struct {
	kv nats.KeyValue
}

func NewNATSCounters(nc *nats.Conn, bucket string) (*NATSCounters, error) {
	js, err := nc.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream context: %w", err)
	}
	kv, err := js.KeyValue(bucket)
	if errors.Is(err, nats.ErrBucketNotFound) {
		kv, err = js.CreateKeyValue(&nats.KeyValueConfig{Bucket: bucket})
	}
	if err != nil {
		return nil, fmt.Errorf("open unreads bucket %q: %w", bucket, err)
	}
	return &NATSCounters{kv: kv}, nil
}

func unreadsKey(contactID string) string {
	return "contacts." + contactID + ".unreads"
}

func (c *NATSCounters) Increment(ctx context.Context, contactID string) (int, error) {
	key := unreadsKey(contactID)
	current := 0
	entry, err := c.kv.Get(key)
	if err == nil {
		if n, perr := strconv.Atoi(string(entry.Value())); perr == nil {
			current = n
		}
	} else if !errors.Is(err, nats.ErrKeyNotFound) {
		return 0, fmt.Errorf("unreads get: %w", err)
	}
	current++
	if _, err := c.kv.Put(key, []byte(strconv.Itoa(current))); err != nil {
		return 0, fmt.Errorf("unreads put: %w", err)
	}
	return current, nil
}

func (c *NATSCounters) Reset(ctx context.Context, contactID string) error {
	err := c.kv.Delete(unreadsKey(contactID))
	if err != nil && !errors.Is(err, nats.ErrKeyNotFound) {
		return fmt.Errorf("unreads reset: %w", err)
	}
	return nil
}
