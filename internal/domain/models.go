// Package domain defines the core data shapes of the commerce chat pipeline:
// raw UI chat messages, coalesced dialogue turns, minimal product projections,
// curated catalog listings, the tagged chat-context union, and the persisted
// store record. Everything except Store lives for a single request and is
// discarded once the reply is produced.
package domain

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// Dialogue roles recognized by the model invoker.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one message exactly as received from the chat UI.
// Ordering is significant and messages are never deduplicated. Empty names
// and empty texts are accepted on the wire; the pipeline treats an unnamed
// speaker as a user and an empty transcript degrades to the fallback reply.
type ChatMessage struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// ChatTurn is one coalesced dialogue turn fed to the model. Consecutive
// same-speaker ChatMessages collapse into a single turn so the dialogue
// alternates strictly between user and assistant.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// MinimalProduct is a catalog product reduced to the fields that matter for
// prompt construction. Description is raw storefront HTML; it is sanitized at
// prompt-assembly time, not here. RelatedProducts is populated only on a
// current-product context and never nests further.
type MinimalProduct struct {
	ID              int              `json:"id"`
	Name            string           `json:"name"`
	Description     string           `json:"description"`
	AddToCartURL    string           `json:"addToCartUrl"`
	RelatedProducts []MinimalProduct `json:"relatedProducts,omitempty"`
}

// StoreProducts holds the three curated product sets used when the visitor is
// not on a product page. Each list may be empty; no cross-list dedup is
// guaranteed.
type StoreProducts struct {
	BestSellingProducts []MinimalProduct `json:"bestSellingProducts"`
	FeaturedProducts    []MinimalProduct `json:"featuredProducts"`
	NewestProducts      []MinimalProduct `json:"newestProducts"`
}

// CustomField is a free-form name/value attribute attached to a product.
type CustomField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Product is the enriched catalog shape returned by the REST product lookup.
// Brand and CategoriesNames come from independent enrichment calls and default
// to empty when their lookup fails.
type Product struct {
	ID                 int           `json:"id"`
	Name               string        `json:"name"`
	Brand              string        `json:"brand"`
	Type               string        `json:"type"`
	Condition          string        `json:"condition"`
	Weight             float64       `json:"weight"`
	Height             float64       `json:"height"`
	Width              float64       `json:"width"`
	Depth              float64       `json:"depth"`
	CategoriesNames    string        `json:"categoriesNames"`
	VideosDescriptions string        `json:"videosDescriptions"`
	ImagesDescriptions string        `json:"imagesDescriptions"`
	CustomFields       []CustomField `json:"custom_fields"`
}

// ContextKind discriminates the chat-context union.
type ContextKind int

// The three accepted context shapes. Exactly one holds per request.
const (
	// ContextNone: dialogue only, no commerce grounding.
	ContextNone ContextKind = iota
	// ContextCurrentProduct: visitor is on a product page.
	ContextCurrentProduct
	// ContextStoreProducts: visitor is on a non-product page.
	ContextStoreProducts
)

// ErrInvalidContext reports a ChatContext whose payloads do not match its
// declared kind. Such a context must never reach prompt assembly.
var ErrInvalidContext = errors.New("domain: chat context does not match exactly one accepted shape")

// ChatContext is the validated commerce half of a chat request: exactly one
// of {nothing, current product, store products}. It is a tagged union:
// consumers switch on Kind and must treat any other value as a bug, not a
// fourth variant.
type ChatContext struct {
	Kind           ContextKind
	CurrentProduct *MinimalProduct
	StoreProducts  *StoreProducts
}

// Validate checks that exactly one variant payload is populated and that it
// agrees with Kind. A ContextNone with stray payloads is as invalid as a
// ContextCurrentProduct without a product.
func (c ChatContext) Validate() error {
	switch c.Kind {
	case ContextNone:
		if c.CurrentProduct != nil || c.StoreProducts != nil {
			return ErrInvalidContext
		}
	case ContextCurrentProduct:
		if c.CurrentProduct == nil || c.StoreProducts != nil {
			return ErrInvalidContext
		}
	case ContextStoreProducts:
		if c.StoreProducts == nil || c.CurrentProduct != nil {
			return ErrInvalidContext
		}
	default:
		return ErrInvalidContext
	}
	return nil
}

// Store maps a storefront to the credentials needed to query it. Rows are
// written by the (out-of-scope) install handshake and read by the page
// context resolver.
//
// Fields:
//   - StoreHash: the platform's store identifier, primary key.
//   - AccessToken: long-lived API token; only ever sent upstream, never to
//     clients.
//   - StoreURL: canonical storefront hostname; indexed for resolver lookups.
type Store struct {
	StoreHash   string         `json:"store_hash"   gorm:"type:varchar(32);primaryKey"`
	AccessToken string         `json:"-"            gorm:"type:varchar(128);not null"`
	StoreURL    string         `json:"store_url"    gorm:"type:varchar(255);not null;index:idx_store_url"`
	AdminID     int            `json:"admin_id"     gorm:"not null;default:0"`
	Scope       string         `json:"scope"        gorm:"type:text"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-"            gorm:"index"`
}

// TableName returns the database table name for Store.
func (Store) TableName() string { return "stores" }
