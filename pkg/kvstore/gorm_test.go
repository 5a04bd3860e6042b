package kvstore

import (
	"context"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestGormStore(t *testing.T) *GormStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite database: %v", err)
	}
	store, err := NewGormStore(db)
	if err != nil {
		t.Fatalf("failed to create kv store: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return store
}

func TestGormStoreMissingKey(t *testing.T) {
	store := newTestGormStore(t)

	value, ok, err := store.Get(context.Background(), "cards")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if ok {
		t.Fatal("expected missing key to report absent")
	}
	if value != "" {
		t.Fatalf("expected empty value, got %q", value)
	}
}

func TestGormStoreSetGetOverwrite(t *testing.T) {
	store := newTestGormStore(t)
	ctx := context.Background()

	if err := store.Set(ctx, "decks", `[{"id":"d1"}]`); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	value, ok, err := store.Get(ctx, "decks")
	if err != nil || !ok {
		t.Fatalf("Get failed: ok=%v err=%v", ok, err)
	}
	if value != `[{"id":"d1"}]` {
		t.Fatalf("unexpected value: %q", value)
	}

	if err := store.Set(ctx, "decks", `[]`); err != nil {
		t.Fatalf("overwrite Set returned error: %v", err)
	}
	value, ok, err = store.Get(ctx, "decks")
	if err != nil || !ok {
		t.Fatalf("Get after overwrite failed: ok=%v err=%v", ok, err)
	}
	if value != `[]` {
		t.Fatalf("expected overwritten value, got %q", value)
	}
}
