package openbeautyfacts

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestFetchAndParseProduct(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v2/product/3600523614233.json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("ETag", `"v1"`)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
  "status": 1,
  "product": {
    "code": "3600523614233",
    "product_name": "Curl Cream",
    "brands": "Acme Hair, Acme",
    "ingredients_text": "Aqua, Butyrospermum Parkii Butter, Glycerin.",
    "labels_tags": ["en:vegan", "en:cruelty-free"]
  }
}`))
	}))
	defer ts.Close()

	c := &Client{BaseURL: ts.URL, HTTPClient: ts.Client()}
	resp, err := c.FetchProduct(context.Background(), "3600523614233", "")
	if err != nil {
		t.Fatalf("FetchProduct: %v", err)
	}
	if resp.ETag != `"v1"` {
		t.Fatalf("expected etag, got %q", resp.ETag)
	}
	item, err := ParseProduct(resp.Body)
	if err != nil {
		t.Fatalf("ParseProduct: %v", err)
	}
	if item.Name != "Curl Cream" || item.Brand != "Acme Hair" {
		t.Fatalf("unexpected item: %+v", item)
	}
	if len(item.Ingredients) != 3 || item.Ingredients[2] != "Glycerin" {
		t.Fatalf("unexpected ingredients: %v", item.Ingredients)
	}
	if !item.Vegan || !item.CrueltyFree || item.SulfateFree {
		t.Fatalf("unexpected label flags: %+v", item)
	}
}

func TestFetchProductConditional(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("If-None-Match") != `"v1"` {
			t.Errorf("expected If-None-Match header")
		}
		w.WriteHeader(http.StatusNotModified)
	}))
	defer ts.Close()

	c := &Client{BaseURL: ts.URL, HTTPClient: ts.Client()}
	resp, err := c.FetchProduct(context.Background(), "1", `"v1"`)
	if err != nil {
		t.Fatalf("FetchProduct: %v", err)
	}
	if !resp.NotModified {
		t.Fatalf("expected NotModified")
	}
}

func TestParseProductMissing(t *testing.T) {
	if _, err := ParseProduct([]byte(`{"status":0,"status_verbose":"product not found"}`)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFetchSearchSkipsUnnamed(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("search_terms"); got != "argan oil" {
			t.Errorf("unexpected search terms %q", got)
		}
		if !strings.Contains(r.URL.RawQuery, "page_size=5") {
			t.Errorf("expected page_size=5 in %q", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"products":[{"code":"1","product_name":"Argan Oil"},{"code":"2","product_name":""}]}`))
	}))
	defer ts.Close()

	c := &Client{BaseURL: ts.URL, HTTPClient: ts.Client()}
	resp, err := c.FetchSearch(context.Background(), "argan oil", 5, "")
	if err != nil {
		t.Fatalf("FetchSearch: %v", err)
	}
	items, err := ParseSearch(resp.Body)
	if err != nil {
		t.Fatalf("ParseSearch: %v", err)
	}
	if len(items) != 1 || items[0].Code != "1" {
		t.Fatalf("unexpected items: %+v", items)
	}
}
