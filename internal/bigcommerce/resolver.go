// Page context resolution.
//
// The resolver turns a store plus a page path into the commerce half of a
// ChatContext: a fresh impersonation token, one classify-by-path query, and,
// when the path is not a product page, one listing query. The three calls
// are strictly sequential because each depends on the previous result.
package bigcommerce

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/bighackai/commerce-chat-backend/internal/domain"
)

// Resolver resolves storefront pages into chat context using a Client.
type Resolver struct {
	Client *Client
}

// NewResolver constructs a Resolver around the given client.
func NewResolver(c *Client) *Resolver {
	return &Resolver{Client: c}
}

// Resolve classifies the page at pagePath on the store's storefront and
// projects the result into exactly one context variant:
//
//   - product page  → ContextCurrentProduct with one level of related products
//   - anything else → ContextStoreProducts with the three curated listings
//
// A classification response without a recognizable product node falls through
// to the listing query rather than failing: showing catalog highlights beats
// showing nothing. Transport failures at any step propagate to the caller.
func (r *Resolver) Resolve(ctx context.Context, store domain.Store, pagePath string) (domain.ChatContext, error) {
	tr := otel.Tracer("bigcommerce/Resolver")
	ctx, span := tr.Start(ctx, "Resolve",
		trace.WithAttributes(
			attribute.String("store.hash", store.StoreHash),
			attribute.String("page.path", pagePath),
		),
	)
	defer span.End()

	token, err := r.Client.CreateCustomerImpersonationToken(ctx, store.StoreHash, store.AccessToken)
	if err != nil {
		return domain.ChatContext{}, err
	}

	typename, product, related, err := r.Client.PageType(ctx, store.StoreURL, pagePath, token)
	if err != nil {
		return domain.ChatContext{}, err
	}
	span.SetAttributes(attribute.String("page.type", typename))

	if product != nil {
		p := projectProduct(*product)
		p.RelatedProducts = projectProducts(related)
		return domain.ChatContext{
			Kind:           domain.ContextCurrentProduct,
			CurrentProduct: &p,
		}, nil
	}

	best, featured, newest, err := r.Client.StoreProducts(ctx, store.StoreURL, token)
	if err != nil {
		return domain.ChatContext{}, err
	}
	return domain.ChatContext{
		Kind: domain.ContextStoreProducts,
		StoreProducts: &domain.StoreProducts{
			BestSellingProducts: projectProducts(best),
			FeaturedProducts:    projectProducts(featured),
			NewestProducts:      projectProducts(newest),
		},
	}, nil
}

// projectProduct maps a GraphQL node onto the minimal prompt shape, dropping
// the typename tag. Related products are attached by the caller so projection
// itself never recurses.
func projectProduct(n ProductNode) domain.MinimalProduct {
	return domain.MinimalProduct{
		ID:           n.EntityID,
		Name:         n.Name,
		Description:  n.Description,
		AddToCartURL: n.AddToCartURL,
	}
}

// projectProducts maps a node list in order.
func projectProducts(ns []ProductNode) []domain.MinimalProduct {
	out := make([]domain.MinimalProduct, 0, len(ns))
	for _, n := range ns {
		out = append(out, projectProduct(n))
	}
	return out
}
