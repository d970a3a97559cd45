// Storefront GraphQL queries.
//
// Two query operations run against a store's /graphql endpoint, both
// authorized with a customer-impersonation bearer token: classify-by-path
// (what kind of node does this route resolve to?) and the curated listing
// query (best-selling / featured / newest). Plain request/response POSTs,
// no pagination, no streaming.
package bigcommerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// productNodeTypename is the route-node type that identifies a product page.
const productNodeTypename = "Product"

// pageTypeQuery resolves a URL path to its route node. For product nodes it
// also pulls the prompt-relevant fields plus one level of related products;
// the fragment is deliberately not applied recursively.
const pageTypeQuery = `
query ($urlPath: String!) {
  site {
    route(path: $urlPath) {
      node {
        __typename
        ... on Product {
          ...ProductFields
          relatedProducts {
            edges {
              node {
                ...ProductFields
              }
            }
          }
        }
      }
    }
  }
}
fragment ProductFields on Product {
  entityId
  name
  description
  addToCartUrl
}`

// storeProductsQuery pulls the three curated product sets in one round trip.
const storeProductsQuery = `
query {
  site {
    bestSellingProducts {
      edges { node { ...ProductFields } }
    }
    featuredProducts {
      edges { node { ...ProductFields } }
    }
    newestProducts {
      edges { node { ...ProductFields } }
    }
  }
}
fragment ProductFields on Product {
  entityId
  name
  description
  addToCartUrl
}`

// graphqlRequest is the POST body for the /graphql endpoint.
type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// ProductNode is a product as it appears in GraphQL responses.
type ProductNode struct {
	EntityID     int    `json:"entityId"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	AddToCartURL string `json:"addToCartUrl"`
}

// productEdges is the standard edges/node wrapper around product lists.
type productEdges struct {
	Edges []struct {
		Node ProductNode `json:"node"`
	} `json:"edges"`
}

// pageTypeResponse is the classify-by-path response envelope. Node fields
// beyond __typename are populated only for product nodes.
type pageTypeResponse struct {
	Data struct {
		Site struct {
			Route struct {
				Node struct {
					Typename string `json:"__typename"`
					ProductNode
					RelatedProducts productEdges `json:"relatedProducts"`
				} `json:"node"`
			} `json:"route"`
		} `json:"site"`
	} `json:"data"`
}

// storeProductsResponse is the listing-query response envelope.
type storeProductsResponse struct {
	Data struct {
		Site struct {
			BestSellingProducts productEdges `json:"bestSellingProducts"`
			FeaturedProducts    productEdges `json:"featuredProducts"`
			NewestProducts      productEdges `json:"newestProducts"`
		} `json:"site"`
	} `json:"data"`
}

// PageType classifies a storefront path. When the path resolves to a product
// page it returns ("Product", product-with-related); for every other node
// type (including an absent or unrecognized one) it returns the raw
// typename and a nil product. An unrecognized node is a valid outcome, not an
// error: it simply means "this path is not a product page".
func (c *Client) PageType(ctx context.Context, storeHost, pagePath, bearerToken string) (string, *ProductNode, []ProductNode, error) {
	var parsed pageTypeResponse
	err := c.graphql(ctx, storeHost, bearerToken, graphqlRequest{
		Query:     pageTypeQuery,
		Variables: map[string]any{"urlPath": pagePath},
	}, &parsed)
	if err != nil {
		return "", nil, nil, err
	}

	node := parsed.Data.Site.Route.Node
	if node.Typename != productNodeTypename {
		return node.Typename, nil, nil, nil
	}

	related := make([]ProductNode, 0, len(node.RelatedProducts.Edges))
	for _, e := range node.RelatedProducts.Edges {
		related = append(related, e.Node)
	}
	p := node.ProductNode
	return productNodeTypename, &p, related, nil
}

// StoreProducts runs the curated-listing query and returns the three edge
// lists in declaration order: best-selling, featured, newest.
func (c *Client) StoreProducts(ctx context.Context, storeHost, bearerToken string) ([]ProductNode, []ProductNode, []ProductNode, error) {
	var parsed storeProductsResponse
	err := c.graphql(ctx, storeHost, bearerToken, graphqlRequest{Query: storeProductsQuery}, &parsed)
	if err != nil {
		return nil, nil, nil, err
	}

	flatten := func(pe productEdges) []ProductNode {
		out := make([]ProductNode, 0, len(pe.Edges))
		for _, e := range pe.Edges {
			out = append(out, e.Node)
		}
		return out
	}
	site := parsed.Data.Site
	return flatten(site.BestSellingProducts), flatten(site.FeaturedProducts), flatten(site.NewestProducts), nil
}

// graphql POSTs a query document to the store's endpoint and decodes the
// response. Single attempt; transport failures and non-2xx statuses propagate
// to the resolver.
func (c *Client) graphql(ctx context.Context, storeHost, bearerToken string, q graphqlRequest, out any) error {
	body, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("bigcommerce: marshal graphql request: %w", err)
	}

	url := fmt.Sprintf("%s://%s/graphql", c.StorefrontScheme, storeHost)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("bigcommerce: build graphql request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+bearerToken)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("bigcommerce: graphql request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("bigcommerce: graphql endpoint returned %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
