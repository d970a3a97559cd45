// REST catalog enrichment.
//
// FetchProductWithAttributes backs the description-generator surface: it
// fetches a catalog product over the management REST API and enriches it with
// brand and category names. The two enrichment lookups are independent, so
// they run concurrently and settle independently: a failed branch folds into
// an empty default instead of aborting the other. Partial success over total
// failure.
package bigcommerce

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/bighackai/commerce-chat-backend/internal/domain"
)

// restProductResponse is the v3 catalog product envelope, reduced to the
// fields the enriched Product shape needs.
type restProductResponse struct {
	Data struct {
		ID           int                  `json:"id"`
		Name         string               `json:"name"`
		Type         string               `json:"type"`
		Condition    string               `json:"condition"`
		Weight       float64              `json:"weight"`
		Height       float64              `json:"height"`
		Width        float64              `json:"width"`
		Depth        float64              `json:"depth"`
		BrandID      int                  `json:"brand_id"`
		Categories   []int                `json:"categories"`
		CustomFields []domain.CustomField `json:"custom_fields"`
	} `json:"data"`
}

// restBrandResponse carries a brand name.
type restBrandResponse struct {
	Data struct {
		Name string `json:"name"`
	} `json:"data"`
}

// restCategoriesResponse carries category names for an id:in filter.
type restCategoriesResponse struct {
	Data []struct {
		Name string `json:"name"`
	} `json:"data"`
}

// FetchProductWithAttributes fetches the product, then resolves its brand and
// category names concurrently. Either enrichment branch may fail on its own;
// the failure is logged and its field left empty. Only the initial product
// fetch is fatal.
func (c *Client) FetchProductWithAttributes(ctx context.Context, productID int, store domain.Store) (*domain.Product, error) {
	raw, err := c.fetchProduct(ctx, productID, store)
	if err != nil {
		return nil, err
	}

	var (
		wg         sync.WaitGroup
		brand      string
		categories string
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		names, cerr := c.fetchCategoryNames(ctx, raw.Data.Categories, store)
		if cerr != nil {
			log.Warn().Err(cerr).Int("product_id", productID).Msg("category enrichment failed")
			return
		}
		categories = strings.Join(names, ",")
	}()

	if raw.Data.BrandID != 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			name, berr := c.fetchBrandName(ctx, raw.Data.BrandID, store)
			if berr != nil {
				log.Warn().Err(berr).Int("product_id", productID).Msg("brand enrichment failed")
				return
			}
			brand = name
		}()
	}

	wg.Wait()

	return &domain.Product{
		ID:              raw.Data.ID,
		Name:            raw.Data.Name,
		Brand:           brand,
		Type:            raw.Data.Type,
		Condition:       raw.Data.Condition,
		Weight:          raw.Data.Weight,
		Height:          raw.Data.Height,
		Width:           raw.Data.Width,
		Depth:           raw.Data.Depth,
		CategoriesNames: categories,
		CustomFields:    raw.Data.CustomFields,
	}, nil
}

// fetchProduct retrieves the base product record.
func (c *Client) fetchProduct(ctx context.Context, productID int, store domain.Store) (*restProductResponse, error) {
	url := fmt.Sprintf("%s/stores/%s/v3/catalog/products/%d", c.APIBase, store.StoreHash, productID)
	req, err := c.restRequest(ctx, url, store.AccessToken)
	if err != nil {
		return nil, err
	}
	var parsed restProductResponse
	if err := c.doJSON(req, &parsed); err != nil {
		return nil, fmt.Errorf("bigcommerce: fetch product %d: %w", productID, err)
	}
	return &parsed, nil
}

// fetchBrandName resolves a brand id to its display name.
func (c *Client) fetchBrandName(ctx context.Context, brandID int, store domain.Store) (string, error) {
	url := fmt.Sprintf("%s/stores/%s/v3/catalog/brands/%d", c.APIBase, store.StoreHash, brandID)
	req, err := c.restRequest(ctx, url, store.AccessToken)
	if err != nil {
		return "", err
	}
	var parsed restBrandResponse
	if err := c.doJSON(req, &parsed); err != nil {
		return "", err
	}
	return parsed.Data.Name, nil
}

// fetchCategoryNames resolves category ids to names in one id:in query.
func (c *Client) fetchCategoryNames(ctx context.Context, ids []int, store domain.Store) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	url := fmt.Sprintf("%s/stores/%s/v3/catalog/categories?id:in=%s", c.APIBase, store.StoreHash, strings.Join(parts, ","))
	req, err := c.restRequest(ctx, url, store.AccessToken)
	if err != nil {
		return nil, err
	}
	var parsed restCategoriesResponse
	if err := c.doJSON(req, &parsed); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(parsed.Data))
	for _, d := range parsed.Data {
		names = append(names, d.Name)
	}
	return names, nil
}

// restRequest builds an authenticated GET against the management API.
func (c *Client) restRequest(ctx context.Context, url, accessToken string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("bigcommerce: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Auth-Token", accessToken)
	return req, nil
}
