package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.Get(ctx, KeyTransactions); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on missing key, got %v", err)
	}

	if err := s.Set(ctx, KeyTransactions, []byte(`[{"id":"1"}]`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := s.Get(ctx, KeyTransactions)
	if err != nil || string(got) != `[{"id":"1"}]` {
		t.Fatalf("unexpected get: %q err=%v", got, err)
	}

	// Full replacement, not append.
	if err := s.Set(ctx, KeyTransactions, []byte(`[]`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, _ = s.Get(ctx, KeyTransactions)
	if string(got) != `[]` {
		t.Fatalf("expected replaced value, got %q", got)
	}

	// Keys are independent.
	if err := s.Set(ctx, KeyTheme, []byte(`"dark"`)); err != nil {
		t.Fatalf("set theme: %v", err)
	}
	got, _ = s.Get(ctx, KeyTransactions)
	if string(got) != `[]` {
		t.Fatalf("theme write clobbered transactions: %q", got)
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	exerciseStore(t, s)

	// Returned slices are copies.
	ctx := context.Background()
	_ = s.Set(ctx, "k", []byte("abc"))
	v, _ := s.Get(ctx, "k")
	v[0] = 'z'
	v2, _ := s.Get(ctx, "k")
	if string(v2) != "abc" {
		t.Fatalf("memory store leaked internal buffer: %q", v2)
	}
}

func TestFileStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	exerciseStore(t, s)

	if _, err := os.Stat(filepath.Join(dir, KeyTransactions+".json")); err != nil {
		t.Fatalf("expected ledger file on disk: %v", err)
	}
	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".tmp" {
			t.Fatalf("temporary file left behind: %s", e.Name())
		}
	}

	// A second store over the same directory sees the data.
	s2, _ := NewFileStore(dir)
	got, err := s2.Get(context.Background(), KeyTheme)
	if err != nil || string(got) != `"dark"` {
		t.Fatalf("reopen: %q err=%v", got, err)
	}
}

func TestFileStoreRejectsPathKeys(t *testing.T) {
	s, _ := NewFileStore(t.TempDir())
	if err := s.Set(context.Background(), "../escape", []byte("x")); err == nil {
		t.Fatalf("expected error for key with path separators")
	}
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "budget.db")
	s, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("new sqlite store: %v", err)
	}
	exerciseStore(t, s)
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Reopening runs migrations again without error and keeps data.
	s, err = NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen sqlite store: %v", err)
	}
	defer s.Close()
	got, err := s.Get(context.Background(), KeyTransactions)
	if err != nil || string(got) != `[]` {
		t.Fatalf("reopen get: %q err=%v", got, err)
	}
}
