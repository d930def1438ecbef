package products

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"haircare-backend/internal/products/openbeautyfacts"
	"haircare-backend/internal/shared/cache"
	"haircare-backend/internal/shared/server/paging"
	"haircare-backend/internal/shared/telemetry"
	"haircare-backend/internal/shared/util"
)

const maxExternalResults = 25

// ExternalSource is the subset of the Open Beauty Facts client used here.
type ExternalSource interface {
	FetchProduct(ctx context.Context, code string, etag string) (openbeautyfacts.Response, error)
	FetchSearch(ctx context.Context, query string, limit int, etag string) (openbeautyfacts.Response, error)
}

// Service exposes catalog reads and external lookups.
type Service struct {
	Repo     Repo
	External ExternalSource
	Fetcher  *cache.Fetcher
	CacheTTL time.Duration
}

// NewService constructs a Service. External and fetcher may be nil.
func NewService(repo Repo, external ExternalSource, fetcher *cache.Fetcher, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Service{Repo: repo, External: external, Fetcher: fetcher, CacheTTL: ttl}
}

// List returns catalog products matching filter.
func (s *Service) List(ctx context.Context, filter Filter) ([]Product, error) {
	window := paging.Clamp(filter.Limit, filter.Offset)
	filter.Limit, filter.Offset = window.Limit, window.Offset
	filter.Category = strings.ToLower(strings.TrimSpace(filter.Category))
	filter.HairType = strings.ToLower(strings.TrimSpace(filter.HairType))
	filter.Tag = strings.ToLower(strings.TrimSpace(filter.Tag))
	switch filter.Sort {
	case SortName, SortPrice, SortRating:
	case "":
		filter.Sort = SortName
	default:
		return nil, fmt.Errorf("%w: sort must be name, price or rating", ErrInvalidInput)
	}
	if filter.MaxPrice > 0 && filter.MinPrice > filter.MaxPrice {
		return nil, fmt.Errorf("%w: minPrice exceeds maxPrice", ErrInvalidInput)
	}
	return s.Repo.List(ctx, filter)
}

// Candidates returns up to limit catalog products for scoring.
func (s *Service) Candidates(ctx context.Context, categories []string, limit int) ([]Product, error) {
	if limit <= 0 {
		limit = 200
	}
	var out []Product
	if len(categories) == 0 {
		return s.listAll(ctx, Filter{}, limit)
	}
	for _, c := range categories {
		items, err := s.listAll(ctx, Filter{Category: c}, limit)
		if err != nil {
			return nil, err
		}
		out = append(out, items...)
	}
	return out, nil
}

func (s *Service) listAll(ctx context.Context, filter Filter, limit int) ([]Product, error) {
	filter.Sort = SortName
	var out []Product
	for len(out) < limit {
		filter.Limit = paging.MaxLimit
		filter.Offset = len(out)
		items, err := s.Repo.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		out = append(out, items...)
		if len(items) < paging.MaxLimit {
			break
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Get returns a catalog product by ID.
func (s *Service) Get(ctx context.Context, id string) (Product, error) {
	if strings.TrimSpace(id) == "" {
		return Product{}, fmt.Errorf("%w: id is required", ErrInvalidInput)
	}
	return s.Repo.GetByID(ctx, id)
}

// LookupBarcode checks the catalog first, then Open Beauty Facts. External
// hits are stored in the catalog with Source=obf.
func (s *Service) LookupBarcode(ctx context.Context, code string) (Product, error) {
	code = strings.TrimSpace(code)
	if !validBarcode(code) {
		return Product{}, fmt.Errorf("%w: barcode must be 8 to 14 digits", ErrInvalidInput)
	}
	p, err := s.Repo.GetByBarcode(ctx, code)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Product{}, err
	}
	if s.External == nil {
		return Product{}, ErrNotFound
	}

	key := "obf:product:" + code
	body, err := s.fetch(ctx, key, func(ctx context.Context, etag string) (cache.FetchResult, error) {
		resp, err := s.External.FetchProduct(ctx, code, etag)
		return cache.FetchResult{Body: resp.Body, ETag: resp.ETag, NotModified: resp.NotModified}, err
	})
	if err != nil {
		if errors.Is(err, openbeautyfacts.ErrNotFound) {
			return Product{}, ErrNotFound
		}
		return Product{}, fmt.Errorf("lookup barcode: %w", err)
	}
	item, err := openbeautyfacts.ParseProduct(body)
	if err != nil {
		if errors.Is(err, openbeautyfacts.ErrNotFound) {
			return Product{}, ErrNotFound
		}
		s.invalidate(ctx, key)
		return Product{}, err
	}
	if item.Code == "" {
		item.Code = code
	}

	saved, err := s.Repo.Upsert(ctx, fromExternal(item))
	if err != nil {
		telemetry.Warn("products.obf_upsert_failed", map[string]any{"barcode": code, "error": err})
		return fromExternal(item), nil
	}
	return saved, nil
}

// SearchExternal queries Open Beauty Facts through the cache. Results are not persisted.
func (s *Service) SearchExternal(ctx context.Context, query string, limit int) ([]Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: q is required", ErrInvalidInput)
	}
	if limit <= 0 || limit > maxExternalResults {
		limit = 10
	}
	if s.External == nil {
		return []Product{}, nil
	}
	key := fmt.Sprintf("obf:search:%d:%s", limit, strings.ToLower(query))
	body, err := s.fetch(ctx, key, func(ctx context.Context, etag string) (cache.FetchResult, error) {
		resp, err := s.External.FetchSearch(ctx, query, limit, etag)
		return cache.FetchResult{Body: resp.Body, ETag: resp.ETag, NotModified: resp.NotModified}, err
	})
	if err != nil {
		return nil, fmt.Errorf("search external: %w", err)
	}
	items, err := openbeautyfacts.ParseSearch(body)
	if err != nil {
		s.invalidate(ctx, key)
		return nil, err
	}
	out := make([]Product, 0, len(items))
	for _, item := range items {
		out = append(out, fromExternal(item))
	}
	return out, nil
}

// Import validates and upserts catalog products, returning how many were stored.
func (s *Service) Import(ctx context.Context, items []Product) (int, error) {
	stored := 0
	for i, p := range items {
		normalized, err := Normalize(p)
		if err != nil {
			return stored, fmt.Errorf("product %d: %w", i, err)
		}
		if normalized.Barcode != "" && normalized.ID == "" {
			if existing, err := s.Repo.GetByBarcode(ctx, normalized.Barcode); err == nil {
				normalized.ID = existing.ID
			}
		}
		if normalized.ID == "" {
			normalized.ID = uuid.NewString()
		}
		if _, err := s.Repo.Upsert(ctx, normalized); err != nil {
			return stored, fmt.Errorf("product %d: %w", i, err)
		}
		stored++
	}
	return stored, nil
}

// Normalize validates a catalog product and cleans its list fields.
func Normalize(p Product) (Product, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return Product{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	p.Category = strings.ToLower(strings.TrimSpace(p.Category))
	if p.Category == "" {
		p.Category = "other"
	}
	if !util.Contains(Categories, p.Category) {
		return Product{}, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, p.Category)
	}
	if p.Price < 0 {
		return Product{}, fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}
	if p.Rating < 0 || p.Rating > 5 {
		return Product{}, fmt.Errorf("%w: rating must be between 0 and 5", ErrInvalidInput)
	}
	if p.ReviewCount < 0 {
		p.ReviewCount = 0
	}
	if p.Currency == "" {
		p.Currency = "USD"
	}
	if p.Source == "" {
		p.Source = SourceCatalog
	}
	p.Tags = util.NormalizeList(p.Tags)
	p.HairTypes = util.NormalizeList(p.HairTypes)
	var ingredients []string
	for _, ing := range p.Ingredients {
		if trimmed := strings.TrimSpace(ing); trimmed != "" {
			ingredients = append(ingredients, trimmed)
		}
	}
	p.Ingredients = ingredients
	return p, nil
}

func (s *Service) fetch(ctx context.Context, key string, load cache.LoadFunc) ([]byte, error) {
	if s.Fetcher == nil {
		res, err := load(ctx, "")
		return res.Body, err
	}
	body, outcome, err := s.Fetcher.Fetch(ctx, key, s.CacheTTL, load)
	if err == nil {
		telemetry.Info("products.cache", map[string]any{"key": key, "outcome": string(outcome)})
	}
	return body, err
}

// invalidate drops a cached body that failed to parse so the next call refetches it.
func (s *Service) invalidate(ctx context.Context, key string) {
	if s.Fetcher == nil {
		return
	}
	if err := s.Fetcher.Invalidate(ctx, key); err != nil {
		telemetry.Warn("products.cache_invalidate_failed", map[string]any{"key": key, "error": err})
	}
}

func fromExternal(item openbeautyfacts.Item) Product {
	category := "other"
	for _, c := range item.Categories {
		if mapped := mapCategory(c); mapped != "" {
			category = mapped
			break
		}
	}
	return Product{
		ID:           "obf-" + item.Code,
		Barcode:      item.Code,
		Name:         item.Name,
		Brand:        item.Brand,
		Category:     category,
		Currency:     "USD",
		ImageURL:     item.ImageURL,
		Ingredients:  item.Ingredients,
		Tags:         []string{},
		HairTypes:    []string{},
		CrueltyFree:  item.CrueltyFree,
		Vegan:        item.Vegan,
		SulfateFree:  item.SulfateFree,
		SiliconeFree: item.SiliconeFree,
		Source:       SourceOBF,
	}
}

func mapCategory(raw string) string {
	lower := strings.ToLower(raw)
	switch {
	case strings.Contains(lower, "shampoo"):
		return "shampoo"
	case strings.Contains(lower, "leave-in"):
		return "leave-in"
	case strings.Contains(lower, "conditioner"):
		return "conditioner"
	case strings.Contains(lower, "mask"):
		return "mask"
	case strings.Contains(lower, "oil"):
		return "oil"
	case strings.Contains(lower, "gel"), strings.Contains(lower, "mousse"), strings.Contains(lower, "styling"):
		return "styler"
	case strings.Contains(lower, "serum"), strings.Contains(lower, "treatment"):
		return "treatment"
	}
	return ""
}

func validBarcode(code string) bool {
	if len(code) < 8 || len(code) > 14 {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
