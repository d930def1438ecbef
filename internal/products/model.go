package products

import (
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("product not found")
	ErrInvalidInput = errors.New("invalid product")
)

const (
	SourceCatalog = "catalog"
	SourceOBF     = "obf"
)

// Categories enumerates the product categories the catalog accepts.
var Categories = []string{"shampoo", "conditioner", "leave-in", "mask", "oil", "styler", "treatment", "other"}

// Product is a hair-care product in the catalog.
type Product struct {
	ID           string    `json:"id"`
	Barcode      string    `json:"barcode,omitempty"`
	Name         string    `json:"name"`
	Brand        string    `json:"brand,omitempty"`
	Category     string    `json:"category"`
	Description  string    `json:"description,omitempty"`
	Price        float64   `json:"price"`
	Currency     string    `json:"currency"`
	ImageURL     string    `json:"imageUrl,omitempty"`
	Ingredients  []string  `json:"ingredients"`
	Tags         []string  `json:"tags"`
	HairTypes    []string  `json:"hairTypes"`
	CrueltyFree  bool      `json:"crueltyFree"`
	Vegan        bool      `json:"vegan"`
	SulfateFree  bool      `json:"sulfateFree"`
	SiliconeFree bool      `json:"siliconeFree"`
	EcoPackaging bool      `json:"ecoPackaging"`
	Rating       float64   `json:"rating"`
	ReviewCount  int       `json:"reviewCount"`
	Source       string    `json:"source"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// SustainabilityFlags counts the sustainability attributes that are set.
func (p Product) SustainabilityFlags() int {
	n := 0
	for _, f := range []bool{p.CrueltyFree, p.Vegan, p.SulfateFree, p.SiliconeFree, p.EcoPackaging} {
		if f {
			n++
		}
	}
	return n
}

const (
	SortName   = "name"
	SortPrice  = "price"
	SortRating = "rating"
)

// Filter narrows catalog listings. Zero values mean "no constraint".
type Filter struct {
	Query    string
	Category string
	Brand    string
	HairType string
	Tag      string
	MinPrice float64
	MaxPrice float64
	Sort     string
	Limit    int
	Offset   int
}
