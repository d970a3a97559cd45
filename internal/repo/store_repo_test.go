package repo

import (
	"context"
	"errors"
	"fmt"
	"testing"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/bighackai/commerce-chat-backend/internal/domain"
)

func newStoreDB(t *testing.T) *gorm.DB {
	t.Helper()

	// Unique DSN per call to avoid cross-test contamination
	dsn := fmt.Sprintf("file:store_repo_%s?mode=memory&cache=shared", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.Store{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestStoreRoundTrip(t *testing.T) {
	db := newStoreDB(t)
	ctx := context.Background()

	s := &domain.Store{
		StoreHash:   "abc123",
		AccessToken: "long-lived-token",
		StoreURL:    "store.example",
		AdminID:     7,
		Scope:       "store_v2_products",
	}
	if err := UpsertStore(ctx, db, s); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	byHash, err := GetStore(ctx, db, "abc123")
	if err != nil {
		t.Fatalf("get by hash: %v", err)
	}
	if byHash.AccessToken != "long-lived-token" || byHash.StoreURL != "store.example" {
		t.Errorf("store = %+v", byHash)
	}

	byURL, err := GetStoreByURL(ctx, db, "store.example")
	if err != nil {
		t.Fatalf("get by url: %v", err)
	}
	if byURL.StoreHash != "abc123" {
		t.Errorf("store by url = %+v", byURL)
	}

	tok, err := GetStoreToken(ctx, db, "abc123")
	if err != nil || tok != "long-lived-token" {
		t.Errorf("token = %q, err = %v", tok, err)
	}
}

func TestUpsertStore_RefreshesToken(t *testing.T) {
	db := newStoreDB(t)
	ctx := context.Background()

	s := &domain.Store{StoreHash: "abc123", AccessToken: "old", StoreURL: "store.example"}
	if err := UpsertStore(ctx, db, s); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	s.AccessToken = "rotated"
	if err := UpsertStore(ctx, db, s); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	got, err := GetStore(ctx, db, "abc123")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.AccessToken != "rotated" {
		t.Errorf("token = %q; want rotated", got.AccessToken)
	}
}

func TestGetStore_NotFound(t *testing.T) {
	db := newStoreDB(t)
	ctx := context.Background()

	if _, err := GetStoreByURL(ctx, db, "missing.example"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v; want ErrNotFound", err)
	}
	if _, err := GetStore(ctx, db, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v; want ErrNotFound", err)
	}
}

func TestDeleteStore(t *testing.T) {
	db := newStoreDB(t)
	ctx := context.Background()

	s := &domain.Store{StoreHash: "abc123", AccessToken: "t", StoreURL: "store.example"}
	if err := UpsertStore(ctx, db, s); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := DeleteStore(ctx, db, "abc123"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := GetStore(ctx, db, "abc123"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v; want ErrNotFound after delete", err)
	}
}
