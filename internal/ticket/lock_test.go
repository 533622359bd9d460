package ticket

import (
	"sync"
	"testing"
)

func TestKeyedMutexSerializesSameKey(t *testing.T) {
	t.Parallel()

	m := NewKeyedMutex(8)
	const workers = 32
	counter := 0

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			unlock := m.Lock("contact-1:wa-1:co-1")
			counter++
			unlock()
		}()
	}
	wg.Wait()

	if counter != workers {
		t.Fatalf("counter = %d, want %d", counter, workers)
	}
}

func TestKeyedMutexDistinctKeysDoNotBlock(t *testing.T) {
	t.Parallel()

	m := NewKeyedMutex(64)
	unlockA := m.Lock("key-a")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		// Not guaranteed to hit a different stripe, but with 64 stripes the
		// fnv distribution of these two keys does.
		unlockB := m.Lock("key-b")
		unlockB()
		close(done)
	}()
	<-done
}

func TestKeyedMutexDefaultStripes(t *testing.T) {
	t.Parallel()

	m := NewKeyedMutex(0)
	if len(m.stripes) != defaultStripes {
		t.Fatalf("stripes = %d, want %d", len(m.stripes), defaultStripes)
	}
}
