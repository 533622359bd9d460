package session

import (
	"errors"
	"testing"
)

func TestRegistryGetMissing(t *testing.T) {
	t.Parallel()
	r := NewRegistry()

	if _, err := r.Get("nope"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestRegistryPutGetRemove(t *testing.T) {
	t.Parallel()
	r := NewRegistry()

	sess := NewSession("wa-1", "co-1", false)
	r.Put(sess)

	got, err := r.Get("wa-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != sess {
		t.Fatalf("got a different session instance")
	}
	if r.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", r.Len())
	}

	// Replacing the entry keeps exactly one session per id.
	replacement := NewSession("wa-1", "co-1", false)
	r.Put(replacement)
	if r.Len() != 1 {
		t.Fatalf("Len() after replace = %d, want 1", r.Len())
	}
	got, _ = r.Get("wa-1")
	if got != replacement {
		t.Fatalf("replace did not swap the session")
	}

	if removed := r.remove("wa-1"); removed != replacement {
		t.Fatalf("remove returned wrong session")
	}
	if removed := r.remove("wa-1"); removed != nil {
		t.Fatalf("second remove should return nil")
	}
	if r.Len() != 0 {
		t.Fatalf("Len() after remove = %d, want 0", r.Len())
	}
}

func TestRegistryDefault(t *testing.T) {
	t.Parallel()
	r := NewRegistry()
	r.Put(NewSession("wa-1", "co-1", false))
	r.Put(NewSession("wa-2", "co-1", true))
	r.Put(NewSession("wa-3", "co-2", true))

	sess, err := r.Default("co-1")
	if err != nil {
		t.Fatalf("default: %v", err)
	}
	if sess.ID != "wa-2" {
		t.Fatalf("Default(co-1) = %s, want wa-2", sess.ID)
	}

	if _, err := r.Default("co-9"); !errors.Is(err, ErrNoDefaultSession) {
		t.Fatalf("expected ErrNoDefaultSession, got %v", err)
	}
}

func TestSessionCountersSurviveDetach(t *testing.T) {
	t.Parallel()
	sess := NewSession("wa-1", "co-1", false)

	sess.bumpQRRetries()
	sess.bumpQRRetries()
	sess.detach()
	if got := sess.QRRetries(); got != 2 {
		t.Fatalf("QRRetries() = %d, want 2 after detach", got)
	}

	sess.resetCounters()
	if got := sess.QRRetries(); got != 0 {
		t.Fatalf("QRRetries() = %d, want 0 after reset", got)
	}
	count, _ := sess.ReconnectAttempt()
	if count != 0 {
		t.Fatalf("ReconnectAttempt() = %d, want 0 after reset", count)
	}
}

func TestSessionBeginCleanupOnce(t *testing.T) {
	t.Parallel()
	sess := NewSession("wa-1", "co-1", false)

	if !sess.beginCleanup() {
		t.Fatalf("first beginCleanup must win")
	}
	if sess.beginCleanup() {
		t.Fatalf("second beginCleanup must be a no-op")
	}
	if sess.Live() {
		t.Fatalf("cleaned session must not report live")
	}
	if !sess.isCleaned() {
		t.Fatalf("isCleaned() = false after cleanup")
	}
}
