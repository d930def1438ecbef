package products

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"haircare-backend/internal/shared/util"
)

// MemoryRepo is an in-process catalog used in dev and tests.
type MemoryRepo struct {
	mu       sync.RWMutex
	products map[string]Product
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{products: make(map[string]Product)}
}

func (r *MemoryRepo) List(ctx context.Context, filter Filter) ([]Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	var matched []Product
	for _, p := range r.products {
		if matches(p, filter) {
			matched = append(matched, p)
		}
	}
	r.mu.RUnlock()

	sortProducts(matched, filter.Sort)
	return page(matched, filter.Offset, filter.Limit), nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Product, error) {
	if err := ctx.Err(); err != nil {
		return Product{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	return p, nil
}

func (r *MemoryRepo) GetByBarcode(ctx context.Context, barcode string) (Product, error) {
	if err := ctx.Err(); err != nil {
		return Product{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.products {
		if barcode != "" && p.Barcode == barcode {
			return p, nil
		}
	}
	return Product{}, ErrNotFound
}

// Upsert inserts or replaces by ID, or by barcode when the barcode is already known.
func (r *MemoryRepo) Upsert(ctx context.Context, product Product) (Product, error) {
	if err := ctx.Err(); err != nil {
		return Product{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	if product.Barcode != "" {
		for id, existing := range r.products {
			if existing.Barcode == product.Barcode && id != product.ID {
				product.ID = id
				break
			}
		}
	}
	if existing, ok := r.products[product.ID]; ok {
		product.CreatedAt = existing.CreatedAt
	} else {
		product.CreatedAt = now
	}
	product.UpdatedAt = now
	r.products[product.ID] = product
	return product, nil
}

func matches(p Product, f Filter) bool {
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		if !strings.Contains(strings.ToLower(p.Name), q) && !strings.Contains(strings.ToLower(p.Brand), q) {
			return false
		}
	}
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.Brand != "" && !strings.EqualFold(p.Brand, f.Brand) {
		return false
	}
	if f.HairType != "" && !util.Contains(p.HairTypes, f.HairType) {
		return false
	}
	if f.Tag != "" && !util.Contains(p.Tags, f.Tag) {
		return false
	}
	if f.MinPrice > 0 && p.Price < f.MinPrice {
		return false
	}
	if f.MaxPrice > 0 && p.Price > f.MaxPrice {
		return false
	}
	return true
}

func sortProducts(items []Product, by string) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		switch by {
		case SortPrice:
			if a.Price != b.Price {
				return a.Price < b.Price
			}
		case SortRating:
			if a.Rating != b.Rating {
				return a.Rating > b.Rating
			}
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
}

func page(items []Product, offset, limit int) []Product {
	if offset >= len(items) {
		return []Product{}
	}
	end := offset + limit
	if limit <= 0 || end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
