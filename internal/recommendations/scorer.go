package recommendations

import (
	"math"
	"sort"
	"strings"

	"haircare-backend/internal/ingredients"
	"haircare-backend/internal/products"
	"haircare-backend/internal/quiz"
)

const maxIngredientTarget = 5

// Score computes the sub-scores and weighted total for one product.
func Score(p products.Product, profile ingredients.Profile, a quiz.Answers) (float64, SubScores) {
	sub := SubScores{
		TagMatch:        tagMatch(p, profile.Tags),
		IngredientMatch: ingredientMatch(p, profile.Recommended),
		BudgetFit:       budgetFit(p, a.Budget),
		Sustainability:  float64(p.SustainabilityFlags()) / 5,
		ReviewSentiment: reviewSentiment(p),
	}
	w := WeightsFor(a)
	total := w.Tag*sub.TagMatch +
		w.Ingredient*sub.IngredientMatch +
		w.Budget*sub.BudgetFit +
		w.Sustainability*sub.Sustainability +
		w.Review*sub.ReviewSentiment
	return round4(total), sub
}

// Rank scores every candidate, sorts by score, rating and name and keeps the
// first limit items. Items get canned explanations; re-ranking may replace them.
func Rank(candidates []products.Product, profile ingredients.Profile, a quiz.Answers, limit int) []Item {
	items := make([]Item, 0, len(candidates))
	for _, p := range candidates {
		score, sub := Score(p, profile, a)
		items = append(items, Item{Product: p, Score: score, SubScores: sub})
	}
	sortItems(items)
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	for i := range items {
		items[i].Rank = i + 1
		items[i].Explanation = Explain(items[i].SubScores)
	}
	return items
}

func sortItems(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		a := items[i]
		b := items[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Product.Rating != b.Product.Rating {
			return a.Product.Rating > b.Product.Rating
		}
		an, bn := strings.ToLower(a.Product.Name), strings.ToLower(b.Product.Name)
		if an != bn {
			return an < bn
		}
		return a.Product.ID < b.Product.ID
	})
}

func tagMatch(p products.Product, profileTags []string) float64 {
	if len(profileTags) == 0 {
		return 0
	}
	have := make(map[string]struct{}, len(p.Tags)+len(p.HairTypes))
	for _, t := range p.Tags {
		have[strings.ToLower(t)] = struct{}{}
	}
	for _, t := range p.HairTypes {
		have[strings.ToLower(t)] = struct{}{}
	}
	matched := 0
	for _, t := range profileTags {
		if _, ok := have[t]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(profileTags))
}

func ingredientMatch(p products.Product, recommended []string) float64 {
	if len(recommended) == 0 {
		return 0
	}
	target := len(recommended)
	if target > maxIngredientTarget {
		target = maxIngredientTarget
	}
	return math.Min(1, float64(ingredients.MatchCount(p.Ingredients, recommended))/float64(target))
}

// budgetFit is 1 inside the budget band and 0 outside it. A product without a
// price, such as an Open Beauty Facts import, gets budgetUnknown for any band
// narrower than "any".
func budgetFit(p products.Product, budget string) float64 {
	r := BudgetFor(budget)
	if r == budgetRanges["any"] {
		return 1
	}
	if p.Price <= 0 {
		return budgetUnknown
	}
	if r.Contains(p.Price) {
		return 1
	}
	return 0
}

func reviewSentiment(p products.Product) float64 {
	if p.ReviewCount <= 0 {
		return reviewPlaceholder
	}
	return math.Max(0, math.Min(1, p.Rating/5))
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

type reason struct {
	value  float64
	phrase string
}

// Explain builds a short explanation from the two strongest sub-scores.
func Explain(sub SubScores) string {
	reasons := []reason{
		{sub.TagMatch, "matches your hair profile"},
		{sub.IngredientMatch, "contains ingredients suited to your hair"},
		{sub.BudgetFit, "fits your budget"},
		{sub.Sustainability, "meets several sustainability criteria"},
		{sub.ReviewSentiment, "has strong reviews"},
	}
	sort.SliceStable(reasons, func(i, j int) bool { return reasons[i].value > reasons[j].value })

	var picked []string
	for _, r := range reasons {
		if r.value < 0.5 || len(picked) == 2 {
			break
		}
		picked = append(picked, r.phrase)
	}
	if len(picked) == 0 {
		return "A reasonable match for your profile."
	}
	text := strings.Join(picked, " and ")
	return strings.ToUpper(text[:1]) + text[1:] + "."
}
