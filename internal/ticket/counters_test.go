package ticket

import (
	"context"
	"testing"
)

func TestMemoryCounters(t *testing.T) {
	t.Parallel()

	c := NewMemoryCounters()
	ctx := context.Background()

	for want := 1; want <= 3; want++ {
		got, err := c.Increment(ctx, "contact-1")
		if err != nil {
			t.Fatalf("increment: %v", err)
		}
		if got != want {
			t.Fatalf("Increment() = %d, want %d", got, want)
		}
	}

	if got, _ := c.Increment(ctx, "contact-2"); got != 1 {
		t.Fatalf("counters leaked across contacts: got %d", got)
	}

	if err := c.Reset(ctx, "contact-1"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if got, _ := c.Increment(ctx, "contact-1"); got != 1 {
		t.Fatalf("Increment() after reset = %d, want 1", got)
	}

	// Resetting an unknown contact is a no-op.
	if err := c.Reset(ctx, "contact-9"); err != nil {
		t.Fatalf("reset unknown: %v", err)
	}
}
