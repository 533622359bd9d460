package media

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) (*FSStore, string) {
	t.Helper()
	root := t.TempDir()
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	return NewFSStore(root, log), root
}

func TestFSStoreRoundtrip(t *testing.T) {
	t.Parallel()
	store, root := newTestStore(t)
	ctx := context.Background()

	payload := []byte("fake jpeg bytes")
	rel, err := store.Save(ctx, "1/ABCDEF.jpg", payload)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if rel != "1/ABCDEF.jpg" {
		t.Fatalf("unexpected stored path %q", rel)
	}
	if _, err := os.Stat(filepath.Join(root, "1", "ABCDEF.jpg")); err != nil {
		t.Fatalf("stored file missing: %v", err)
	}

	data, mimetype, err := store.Load(ctx, rel)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !bytes.Equal(data, payload) {
		t.Fatalf("payload mismatch")
	}
	if mimetype != "image/jpeg" {
		t.Fatalf("unexpected mimetype %q", mimetype)
	}
}

func TestFSStoreUnknownExtension(t *testing.T) {
	t.Parallel()
	store, _ := newTestStore(t)
	ctx := context.Background()

	if _, err := store.Save(ctx, "1/blob.weird1234", []byte("x")); err != nil {
		t.Fatalf("save: %v", err)
	}
	_, mimetype, err := store.Load(ctx, "1/blob.weird1234")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if mimetype != "application/octet-stream" {
		t.Fatalf("unexpected mimetype %q", mimetype)
	}
}

func TestFSStoreRejectsTraversal(t *testing.T) {
	t.Parallel()
	store, _ := newTestStore(t)
	ctx := context.Background()

	for _, rel := range []string{"../escape.txt", "1/../../escape.txt"} {
		if _, err := store.Save(ctx, rel, []byte("x")); !errors.Is(err, ErrPathTraversal) {
			t.Fatalf("Save(%q): expected ErrPathTraversal, got %v", rel, err)
		}
		if _, _, err := store.Load(ctx, rel); !errors.Is(err, ErrPathTraversal) {
			t.Fatalf("Load(%q): expected ErrPathTraversal, got %v", rel, err)
		}
	}
}

func TestFSStoreRejectsOversizedPayload(t *testing.T) {
	t.Parallel()
	store, _ := newTestStore(t)

	big := make([]byte, MaxMediaBytes+1)
	if _, err := store.Save(context.Background(), "1/huge.bin", big); !errors.Is(err, ErrMediaTooLarge) {
		t.Fatalf("expected ErrMediaTooLarge, got %v", err)
	}
}

func TestFSStoreLoadMissing(t *testing.T) {
	t.Parallel()
	store, _ := newTestStore(t)

	if _, _, err := store.Load(context.Background(), "1/nope.jpg"); !errors.Is(err, ErrMediaNotFound) {
		t.Fatalf("expected ErrMediaNotFound, got %v", err)
	}
}
