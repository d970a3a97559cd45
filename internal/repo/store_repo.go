// Store directory repository.
//
// This file provides repository functions for the Store model: the mapping
// from storefront hostname / store hash to the long-lived access token needed
// for catalog queries. Rows are written by the install handshake (an external
// collaborator of this service) and read on every chat request that carries a
// page URL.
//
// All functions are context-aware and accept a *gorm.DB handle. Thin
// repository approach: no business logic, only CRUD and query composition.
// A missing store returns gorm.ErrRecordNotFound (exported as ErrNotFound).
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/bighackai/commerce-chat-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// UpsertStore inserts or refreshes a store record keyed by its store hash.
// Called on app install or token rotation.
func UpsertStore(ctx context.Context, db *gorm.DB, s *domain.Store) error {
	return db.WithContext(ctx).Save(s).Error
}

// GetStore fetches a store by its store hash.
func GetStore(ctx context.Context, db *gorm.DB, storeHash string) (*domain.Store, error) {
	var s domain.Store
	if err := db.WithContext(ctx).First(&s, "store_hash = ?", storeHash).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// GetStoreByURL fetches the store whose canonical storefront hostname matches
// storeURL. This is the resolver's entry point: the chat widget only knows
// the page URL, not the store hash.
func GetStoreByURL(ctx context.Context, db *gorm.DB, storeURL string) (*domain.Store, error) {
	var s domain.Store
	if err := db.WithContext(ctx).First(&s, "store_url = ?", storeURL).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// GetStoreToken returns just the long-lived access token for a store hash.
func GetStoreToken(ctx context.Context, db *gorm.DB, storeHash string) (string, error) {
	s, err := GetStore(ctx, db, storeHash)
	if err != nil {
		return "", err
	}
	return s.AccessToken, nil
}

// DeleteStore removes a store record (app uninstall).
func DeleteStore(ctx context.Context, db *gorm.DB, storeHash string) error {
	return db.WithContext(ctx).Delete(&domain.Store{}, "store_hash = ?", storeHash).Error
}
