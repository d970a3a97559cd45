// Package services – ChatService
//
// This file implements the ChatService, the application-level component that
// turns a raw widget transcript into an assistant reply. It resolves the page
// the shopper is looking at into catalog context, validates that context,
// normalizes the transcript into alternating turns, assembles the grounding
// prompt, and invokes the generative model.
//
// Service-level errors (e.g., ErrStoreNotFound) are returned for predictable
// cases so handlers can map them to HTTP results consistently.
//
// Observability: the public Reply method is OpenTelemetry-instrumented; spans
// record whether a page URL was supplied and the resolved context kind.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"gorm.io/gorm"

	"github.com/bighackai/commerce-chat-backend/internal/chat"
	"github.com/bighackai/commerce-chat-backend/internal/domain"
	"github.com/bighackai/commerce-chat-backend/internal/repo"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// StoreDirectory resolves a storefront hostname to its registered store
// record (hash, long-lived access token).
type StoreDirectory interface {
	// StoreByURL returns the store whose canonical hostname matches storeURL.
	StoreByURL(ctx context.Context, storeURL string) (*domain.Store, error)
}

// ContextResolver classifies a storefront page and projects it into chat
// context (current product, store listings, or none).
type ContextResolver interface {
	// Resolve classifies pagePath within the given store.
	Resolve(ctx context.Context, store domain.Store, pagePath string) (domain.ChatContext, error)
}

// ReplyGenerator produces an assistant reply from a grounding prompt and a
// normalized turn sequence. Implementations must degrade to a canned reply
// rather than fail.
type ReplyGenerator interface {
	Reply(ctx context.Context, grounding string, turns []domain.ChatTurn) string
}

// GormStoreDirectory adapts the store-directory repository to the
// StoreDirectory contract.
type GormStoreDirectory struct {
	DB *gorm.DB
}

// StoreByURL implements StoreDirectory on top of the repo package.
func (d GormStoreDirectory) StoreByURL(ctx context.Context, storeURL string) (*domain.Store, error) {
	return repo.GetStoreByURL(ctx, d.DB, storeURL)
}

// ChatService orchestrates the reply pipeline: page classification, context
// validation, transcript coalescing, prompt assembly, and model invocation.
type ChatService struct {
	// Stores maps page hostnames to registered stores.
	Stores StoreDirectory
	// Resolver classifies pages into chat context.
	Resolver ContextResolver
	// Model generates the assistant reply.
	Model ReplyGenerator
}

// NewChatService constructs a ChatService from its collaborators.
func NewChatService(stores StoreDirectory, resolver ContextResolver, model ReplyGenerator) *ChatService {
	return &ChatService{Stores: stores, Resolver: resolver, Model: model}
}

// Reply produces an assistant reply for the given transcript.
//
// When pageURL is present the page is resolved into catalog context (a
// current product or the store's headline listings); when absent or blank
// the conversation is contextless. The resolved context is validated before
// the model is invoked: a context carrying both a product and listings is a
// hard failure, never silently repaired.
//
// Errors from store lookup, page resolution, or context validation propagate
// to the caller; the model invocation itself never fails (it falls back to a
// canned reply internally).
func (s *ChatService) Reply(ctx context.Context, pageURL *string, messages []domain.ChatMessage) (string, error) {
	tr := otel.Tracer("services/ChatService")
	ctx, span := tr.Start(ctx, "Reply",
		trace.WithAttributes(
			attribute.Bool("chat.page_url_present", pageURL != nil && strings.TrimSpace(*pageURL) != ""),
			attribute.Int("chat.message_count", len(messages)),
		),
	)
	defer span.End()

	if len(messages) == 0 {
		return "", ErrNoMessages
	}

	chatCtx := domain.ChatContext{Kind: domain.ContextNone}
	if pageURL != nil && strings.TrimSpace(*pageURL) != "" {
		resolved, err := s.resolvePage(ctx, *pageURL)
		if err != nil {
			return "", err
		}
		chatCtx = resolved
	}
	span.SetAttributes(attribute.String("chat.context_kind", contextKindName(chatCtx.Kind)))

	// Gate model invocation on a well-formed context.
	if err := chatCtx.Validate(); err != nil {
		return "", err
	}

	turns := chat.Coalesce(messages)
	grounding := chat.BuildGroundingPrompt(chatCtx)
	return s.Model.Reply(ctx, grounding, turns), nil
}

// resolvePage parses the page URL, finds the owning store by hostname, and
// classifies the page path into chat context.
func (s *ChatService) resolvePage(ctx context.Context, pageURL string) (domain.ChatContext, error) {
	none := domain.ChatContext{Kind: domain.ContextNone}

	u, err := url.Parse(strings.TrimSpace(pageURL))
	if err != nil {
		return none, fmt.Errorf("parse page url: %w", err)
	}
	// Host (not Hostname) so a non-standard port stays part of the lookup key.
	host := u.Host
	if host == "" {
		return none, fmt.Errorf("page url %q has no hostname", pageURL)
	}

	store, err := s.Stores.StoreByURL(ctx, host)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return none, ErrStoreNotFound
		}
		return none, fmt.Errorf("store lookup: %w", err)
	}

	path := u.Path
	if path == "" {
		path = "/"
	}
	return s.Resolver.Resolve(ctx, *store, path)
}

// contextKindName renders a context kind for span attributes.
func contextKindName(k domain.ContextKind) string {
	switch k {
	case domain.ContextCurrentProduct:
		return "current_product"
	case domain.ContextStoreProducts:
		return "store_products"
	case domain.ContextNone:
		return "none"
	default:
		return "unknown"
	}
}
