// Package openbeautyfacts is a small client for the Open Beauty Facts product API.
package openbeautyfacts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://world.openbeautyfacts.org"

// ErrNotFound is returned when the API has no usable product.
var ErrNotFound = errors.New("openbeautyfacts product not found")

// Item is a product as reported by Open Beauty Facts.
type Item struct {
	Code         string
	Name         string
	Brand        string
	Categories   []string
	ImageURL     string
	Ingredients  []string
	CrueltyFree  bool
	Vegan        bool
	SulfateFree  bool
	SiliconeFree bool
}

// Response is a raw API response, suitable for caching.
type Response struct {
	Body        []byte
	ETag        string
	NotModified bool
}

// Client calls the Open Beauty Facts API.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	UserAgent  string
}

// FetchProduct requests a single product by barcode. When etag is set the
// request is conditional and a 304 yields NotModified.
func (c *Client) FetchProduct(ctx context.Context, code string, etag string) (Response, error) {
	u := fmt.Sprintf("%s/api/v2/product/%s.json", c.base(), url.PathEscape(strings.TrimSpace(code)))
	return c.get(ctx, u, etag)
}

// FetchSearch runs a full-text search.
func (c *Client) FetchSearch(ctx context.Context, query string, limit int, etag string) (Response, error) {
	if limit <= 0 {
		limit = 10
	}
	u := fmt.Sprintf("%s/cgi/search.pl?search_terms=%s&search_simple=1&action=process&json=1&page_size=%d",
		c.base(),
		url.QueryEscape(strings.TrimSpace(query)),
		limit,
	)
	return c.get(ctx, u, etag)
}

// ParseProduct decodes a FetchProduct body.
func ParseProduct(body []byte) (Item, error) {
	var parsed productResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Item{}, fmt.Errorf("decode openbeautyfacts response: %w", err)
	}
	if parsed.Status != 1 || strings.TrimSpace(parsed.Product.ProductName) == "" {
		return Item{}, ErrNotFound
	}
	return toItem(parsed.Product), nil
}

// ParseSearch decodes a FetchSearch body, skipping products without a name.
func ParseSearch(body []byte) ([]Item, error) {
	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode openbeautyfacts search response: %w", err)
	}
	out := make([]Item, 0, len(parsed.Products))
	for _, p := range parsed.Products {
		if strings.TrimSpace(p.ProductName) == "" {
			continue
		}
		out = append(out, toItem(p))
	}
	return out, nil
}

func (c *Client) base() string {
	base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if base == "" {
		base = defaultBaseURL
	}
	return base
}

func (c *Client) get(ctx context.Context, u string, etag string) (Response, error) {
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 12 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Response{}, fmt.Errorf("create openbeautyfacts request: %w", err)
	}
	ua := c.UserAgent
	if ua == "" {
		ua = "haircare-backend/1.0"
	}
	req.Header.Set("User-Agent", ua)
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("execute openbeautyfacts request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified {
		return Response{ETag: resp.Header.Get("ETag"), NotModified: true}, nil
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("read openbeautyfacts response: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return Response{}, ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Response{}, fmt.Errorf("openbeautyfacts request failed with status %d", resp.StatusCode)
	}
	return Response{Body: body, ETag: resp.Header.Get("ETag")}, nil
}

func toItem(p product) Item {
	item := Item{
		Code:        strings.TrimSpace(p.Code),
		Name:        strings.TrimSpace(p.ProductName),
		Brand:       firstCSV(p.Brands),
		Categories:  splitCSV(p.Categories),
		ImageURL:    strings.TrimSpace(p.ImageURL),
		Ingredients: splitCSV(p.IngredientsText),
	}
	for _, tag := range p.LabelsTags {
		switch strings.ToLower(tag) {
		case "en:cruelty-free", "en:not-tested-on-animals":
			item.CrueltyFree = true
		case "en:vegan":
			item.Vegan = true
		case "en:sulfate-free", "en:sulphate-free":
			item.SulfateFree = true
		case "en:silicone-free":
			item.SiliconeFree = true
		}
	}
	return item
}

func splitCSV(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(strings.Trim(part, " ._*"))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func firstCSV(raw string) string {
	parts := splitCSV(raw)
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}

type productResponse struct {
	Status  int     `json:"status"`
	Product product `json:"product"`
}

type product struct {
	Code            string   `json:"code"`
	ProductName     string   `json:"product_name"`
	Brands          string   `json:"brands"`
	Categories      string   `json:"categories"`
	ImageURL        string   `json:"image_url"`
	IngredientsText string   `json:"ingredients_text"`
	LabelsTags      []string `json:"labels_tags"`
}

type searchResponse struct {
	Products []product `json:"products"`
}
