// Package recommendations scores catalog products against a quiz profile and
// optionally lets a language model re-rank the top results.
package recommendations

import (
	"errors"
	"time"

	"haircare-backend/internal/products"
	"haircare-backend/internal/quiz"
)

var (
	ErrNotFound     = errors.New("recommendation not found")
	ErrQuizRequired = errors.New("quiz answers required")
	ErrInvalidInput = errors.New("invalid recommendation request")
)

const (
	DefaultLimit = 10
	MaxLimit     = 25
	RerankN      = 5

	reviewPlaceholder = 0.6
	budgetUnknown     = 0.5
)

// BudgetRange is a USD price band, lower bound inclusive, upper exclusive.
// Max of zero means unbounded.
type BudgetRange struct {
	Min float64
	Max float64
}

// Contains reports whether price falls in the range.
func (b BudgetRange) Contains(price float64) bool {
	if price < b.Min {
		return false
	}
	return b.Max == 0 || price < b.Max
}

var budgetRanges = map[string]BudgetRange{
	"low":    {Min: 0, Max: 15},
	"medium": {Min: 15, Max: 35},
	"high":   {Min: 35},
	"any":    {Min: 0},
}

// BudgetFor returns the range for a quiz budget value, "any" when unknown.
func BudgetFor(budget string) BudgetRange {
	if r, ok := budgetRanges[budget]; ok {
		return r
	}
	return budgetRanges["any"]
}

// Weights are the coefficients of the linear score.
type Weights struct {
	Tag            float64
	Ingredient     float64
	Budget         float64
	Sustainability float64
	Review         float64
}

var defaultWeights = Weights{Tag: 0.35, Ingredient: 0.25, Budget: 0.15, Sustainability: 0.10, Review: 0.15}

// WeightsFor shifts 0.10 from tag overlap to sustainability when the user
// asked for sustainable products.
func WeightsFor(a quiz.Answers) Weights {
	w := defaultWeights
	if a.Sustainability {
		w.Tag = 0.25
		w.Sustainability = 0.20
	}
	return w
}

// SubScores are the heuristic components, each in [0,1].
type SubScores struct {
	TagMatch        float64 `json:"tagMatch"`
	IngredientMatch float64 `json:"ingredientMatch"`
	BudgetFit       float64 `json:"budgetFit"`
	Sustainability  float64 `json:"sustainability"`
	ReviewSentiment float64 `json:"reviewSentiment"`
}

// Item is one ranked product.
type Item struct {
	Rank        int              `json:"rank"`
	Product     products.Product `json:"product"`
	Score       float64          `json:"score"`
	SubScores   SubScores        `json:"subScores"`
	Explanation string           `json:"explanation"`
	AIRanked    bool             `json:"aiRanked"`
}

// Request is the body of POST /recommendations.
type Request struct {
	Answers    *quiz.Answers `json:"answers,omitempty"`
	Categories []string      `json:"categories,omitempty"`
	Limit      int           `json:"limit,omitempty"`
	Rerank     *bool         `json:"rerank,omitempty"`
}

// Result is a stored recommendation run.
type Result struct {
	ID         string       `json:"id"`
	UserID     string       `json:"userId"`
	Answers    quiz.Answers `json:"answers"`
	Recommend  []string     `json:"recommendedIngredients"`
	Avoid      []string     `json:"avoidIngredients"`
	Items      []Item       `json:"items"`
	Summary    string       `json:"summary,omitempty"`
	AIRanked   bool         `json:"aiRanked"`
	Considered int          `json:"considered"`
	Filtered   int          `json:"filtered"`
	CreatedAt  time.Time    `json:"createdAt"`
}
