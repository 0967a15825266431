package settings

import (
	"context"
	"errors"
	"testing"

	"budget/internal/storage"
)

type failingStore struct {
	*storage.MemoryStore
}

func (failingStore) Set(context.Context, string, []byte) error {
	return errors.New("quota exceeded")
}

func TestLoadDefaultsToLight(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStore()

	got, err := Load(ctx, st)
	if err != nil || got != Light {
		t.Fatalf("got %q err=%v", got, err)
	}

	_ = st.Set(ctx, storage.KeyTheme, []byte("sepia"))
	if got, _ := Load(ctx, st); got != Light {
		t.Fatalf("unknown stored value should fall back to light, got %q", got)
	}
}

func TestSaveAndToggle(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStore()

	if err := Save(ctx, st, Dark); err != nil {
		t.Fatalf("save: %v", err)
	}
	raw, _ := st.Get(ctx, storage.KeyTheme)
	if string(raw) != "dark" {
		t.Fatalf("stored %q", raw)
	}

	next, err := Toggle(ctx, st)
	if err != nil || next != Light {
		t.Fatalf("toggle: %q %v", next, err)
	}
	if got, _ := Load(ctx, st); got != Light {
		t.Fatalf("after toggle got %q", got)
	}
}

func TestSaveRejectsUnknownTheme(t *testing.T) {
	err := Save(context.Background(), storage.NewMemoryStore(), Theme("neon"))
	if !errors.Is(err, ErrInvalidTheme) {
		t.Fatalf("expected ErrInvalidTheme, got %v", err)
	}
}

func TestToggleSurfacesWriteFailure(t *testing.T) {
	st := failingStore{storage.NewMemoryStore()}
	if _, err := Toggle(context.Background(), st); err == nil {
		t.Fatal("expected error")
	}
}

func TestParseTheme(t *testing.T) {
	if got, err := ParseTheme(" DARK "); err != nil || got != Dark {
		t.Fatalf("got %q %v", got, err)
	}
	if _, err := ParseTheme(""); err == nil {
		t.Fatal("empty theme accepted")
	}
}
