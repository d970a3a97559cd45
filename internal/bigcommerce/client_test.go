package bigcommerce

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestCreateCustomerImpersonationToken(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody impersonationTokenRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("X-Auth-Token")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"token":"bearer-xyz"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	before := time.Now().Unix()
	tok, err := c.CreateCustomerImpersonationToken(context.Background(), "abc123", "long-lived")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok != "bearer-xyz" {
		t.Fatalf("token = %q; want bearer-xyz", tok)
	}
	if want := "/stores/abc123/v3/storefront/api-token-customer-impersonation"; gotPath != want {
		t.Errorf("path = %q; want %q", gotPath, want)
	}
	if gotAuth != "long-lived" {
		t.Errorf("x-auth-token = %q; want long-lived", gotAuth)
	}
	if gotBody.ChannelID != 1 {
		t.Errorf("channel_id = %d; want 1", gotBody.ChannelID)
	}
	// Expiry is ~60s out from the call.
	if min, max := before+55, time.Now().Unix()+65; gotBody.ExpiresAt < min || gotBody.ExpiresAt > max {
		t.Errorf("expires_at = %d; want within [%d, %d]", gotBody.ExpiresAt, min, max)
	}
}

func TestCreateCustomerImpersonationToken_Non2xxPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	if _, err := c.CreateCustomerImpersonationToken(context.Background(), "abc123", "bad"); err == nil {
		t.Fatalf("expected error on 401, got nil")
	}
}

func TestCreateCustomerImpersonationToken_SingleAttempt(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	_, _ = c.CreateCustomerImpersonationToken(context.Background(), "abc123", "tok")
	if calls != 1 {
		t.Fatalf("token endpoint called %d times; want exactly 1 (no retry)", calls)
	}
}

func storefrontFake(t *testing.T, handler func(q graphqlRequest) string) (*httptest.Server, string) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/graphql" {
			http.NotFound(w, r)
			return
		}
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			http.Error(w, "missing bearer", http.StatusUnauthorized)
			return
		}
		var q graphqlRequest
		if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
			t.Errorf("decode graphql request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(handler(q)))
	}))
	host := strings.TrimPrefix(srv.URL, "http://")
	return srv, host
}

func TestPageType_ProductNode(t *testing.T) {
	srv, host := storefrontFake(t, func(q graphqlRequest) string {
		if q.Variables["urlPath"] != "/p/widget" {
			t.Errorf("urlPath variable = %v; want /p/widget", q.Variables["urlPath"])
		}
		return `{"data":{"site":{"route":{"node":{
			"__typename":"Product",
			"entityId":7,"name":"Widget","description":"<p>desc</p>","addToCartUrl":"https://s/cart?add=7",
			"relatedProducts":{"edges":[
				{"node":{"entityId":8,"name":"Gadget","description":"d8","addToCartUrl":"u8"}},
				{"node":{"entityId":9,"name":"Gizmo","description":"d9","addToCartUrl":"u9"}}
			]}
		}}}}}`
	})
	defer srv.Close()

	c := NewClient("", 5*time.Second)
	c.StorefrontScheme = "http"

	typename, p, related, err := c.PageType(context.Background(), host, "/p/widget", "tok")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if typename != "Product" || p == nil {
		t.Fatalf("typename=%q p=%v; want Product node", typename, p)
	}
	if p.EntityID != 7 || p.Name != "Widget" {
		t.Errorf("product = %+v", p)
	}
	if len(related) != 2 || related[0].EntityID != 8 || related[1].EntityID != 9 {
		t.Errorf("related = %+v; want ids 8,9 in order", related)
	}
}

func TestPageType_NonProductNode(t *testing.T) {
	for _, body := range []string{
		`{"data":{"site":{"route":{"node":{"__typename":"Category"}}}}}`,
		`{"data":{"site":{"route":{"node":{}}}}}`,
		`{"data":{"site":{"route":{}}}}`,
	} {
		srv, host := storefrontFake(t, func(graphqlRequest) string { return body })

		c := NewClient("", 5*time.Second)
		c.StorefrontScheme = "http"

		typename, p, related, err := c.PageType(context.Background(), host, "/about", "tok")
		srv.Close()
		if err != nil {
			t.Fatalf("body %s: unexpected error: %v", body, err)
		}
		if p != nil || related != nil {
			t.Errorf("body %s: expected nil product for non-product node, got %+v", body, p)
		}
		if typename == "Product" {
			t.Errorf("body %s: typename must not be Product", body)
		}
	}
}

func TestStoreProducts_ThreeLists(t *testing.T) {
	srv, host := storefrontFake(t, func(graphqlRequest) string {
		return `{"data":{"site":{
			"bestSellingProducts":{"edges":[{"node":{"entityId":1,"name":"B1"}}]},
			"featuredProducts":{"edges":[{"node":{"entityId":2,"name":"F1"}},{"node":{"entityId":3,"name":"F2"}}]},
			"newestProducts":{"edges":[]}
		}}}`
	})
	defer srv.Close()

	c := NewClient("", 5*time.Second)
	c.StorefrontScheme = "http"

	best, featured, newest, err := c.StoreProducts(context.Background(), host, "tok")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(best) != 1 || best[0].EntityID != 1 {
		t.Errorf("best = %+v", best)
	}
	if len(featured) != 2 || featured[0].EntityID != 2 || featured[1].EntityID != 3 {
		t.Errorf("featured = %+v", featured)
	}
	if len(newest) != 0 {
		t.Errorf("newest = %+v; want empty", newest)
	}
}
