// Package productfilter narrows catalog candidates to those compatible with a
// translated ingredient profile.
package productfilter

import (
	"haircare-backend/internal/ingredients"
	"haircare-backend/internal/products"
	"haircare-backend/internal/shared/util"
)

// Criteria holds request-level constraints beyond the ingredient profile.
type Criteria struct {
	HairType   string
	Categories []string
}

// Rejection records why a product was dropped.
type Rejection struct {
	ProductID string `json:"productId"`
	Reason    string `json:"reason"`
}

// Apply returns the products that pass every check, preserving input order.
func Apply(items []products.Product, profile ingredients.Profile, criteria Criteria) []products.Product {
	kept, _ := ApplyWithReasons(items, profile, criteria)
	return kept
}

// ApplyWithReasons is Apply that also reports each rejection.
func ApplyWithReasons(items []products.Product, profile ingredients.Profile, criteria Criteria) ([]products.Product, []Rejection) {
	kept := make([]products.Product, 0, len(items))
	var rejected []Rejection
	for _, p := range items {
		if reason := check(p, profile, criteria); reason != "" {
			rejected = append(rejected, Rejection{ProductID: p.ID, Reason: reason})
			continue
		}
		kept = append(kept, p)
	}
	return kept, rejected
}

func check(p products.Product, profile ingredients.Profile, criteria Criteria) string {
	if len(criteria.Categories) > 0 && !util.Contains(criteria.Categories, p.Category) {
		return "category"
	}
	if criteria.HairType != "" && len(p.HairTypes) > 0 && !util.Contains(p.HairTypes, criteria.HairType) {
		return "hair type"
	}
	if name, found := ingredients.ContainsExcluded(p.Ingredients, profile.Excluded); found {
		return "contains " + name
	}
	return ""
}
