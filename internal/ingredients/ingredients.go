// Package ingredients translates quiz answers into ingredient guidance and
// scoring tags using embedded lookup tables.
package ingredients

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"haircare-backend/internal/quiz"
	"haircare-backend/internal/shared/util"
)

//go:embed tables.yaml
var tablesYAML []byte

// Guidance lists ingredients to seek out and to avoid for one answer value.
type Guidance struct {
	Recommend []string `yaml:"recommend"`
	Avoid     []string `yaml:"avoid"`
}

// Tables holds guidance keyed by answer value for each quiz dimension.
type Tables struct {
	HairType  map[string]Guidance `yaml:"hairType"`
	Porosity  map[string]Guidance `yaml:"porosity"`
	ScalpType map[string]Guidance `yaml:"scalpType"`
	Concerns  map[string]Guidance `yaml:"concerns"`
}

// Profile is the translated ingredient profile for a set of answers.
type Profile struct {
	Recommended []string `json:"recommended"`
	Avoid       []string `json:"avoid"`
	Excluded    []string `json:"excluded"`
	Tags        []string `json:"tags"`
}

// Translator maps answers to profiles.
type Translator struct {
	tables Tables
}

// ParseTables decodes YAML lookup tables.
func ParseTables(raw []byte) (Tables, error) {
	var t Tables
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return Tables{}, fmt.Errorf("parse ingredient tables: %w", err)
	}
	return t, nil
}

// NewTranslator builds a translator over the embedded tables.
func NewTranslator() (*Translator, error) {
	t, err := ParseTables(tablesYAML)
	if err != nil {
		return nil, err
	}
	return &Translator{tables: t}, nil
}

// NewTranslatorWithTables builds a translator over caller-supplied tables.
func NewTranslatorWithTables(t Tables) *Translator {
	return &Translator{tables: t}
}

// Translate builds a Profile. Answers should already be normalized.
func (t *Translator) Translate(a quiz.Answers) Profile {
	var recommend, avoid []string
	add := func(g Guidance, ok bool) {
		if !ok {
			return
		}
		recommend = append(recommend, g.Recommend...)
		avoid = append(avoid, g.Avoid...)
	}

	g, ok := t.tables.HairType[a.HairType]
	add(g, ok)
	g, ok = t.tables.Porosity[a.Porosity]
	add(g, ok)
	g, ok = t.tables.ScalpType[a.ScalpType]
	add(g, ok)
	for _, c := range a.Concerns {
		g, ok = t.tables.Concerns[c]
		add(g, ok)
	}

	avoidList := util.NormalizeList(avoid)
	excluded := util.NormalizeList(append(append([]string{}, avoidList...), a.Allergies...))

	excludedSet := make(map[string]struct{}, len(excluded))
	for _, e := range excluded {
		excludedSet[e] = struct{}{}
	}
	var kept []string
	for _, r := range util.NormalizeList(recommend) {
		if _, bad := excludedSet[r]; bad {
			continue
		}
		kept = append(kept, r)
	}

	tags := []string{a.HairType}
	if a.Porosity != "" {
		tags = append(tags, a.Porosity+"-porosity")
	}
	if a.ScalpType != "" {
		tags = append(tags, a.ScalpType+"-scalp")
	}
	tags = append(tags, a.Concerns...)
	tags = append(tags, a.Goals...)

	return Profile{
		Recommended: kept,
		Avoid:       avoidList,
		Excluded:    excluded,
		Tags:        util.NormalizeList(tags),
	}
}

// ContainsExcluded reports the first product ingredient that contains any
// excluded name, compared case-insensitively.
func ContainsExcluded(productIngredients, excluded []string) (string, bool) {
	for _, ing := range productIngredients {
		lower := strings.ToLower(ing)
		for _, ex := range excluded {
			ex = strings.ToLower(strings.TrimSpace(ex))
			if ex == "" {
				continue
			}
			if strings.Contains(lower, ex) {
				return ing, true
			}
		}
	}
	return "", false
}

// MatchCount returns how many recommended names appear in the product's ingredients.
func MatchCount(productIngredients, recommended []string) int {
	count := 0
	for _, rec := range recommended {
		rec = strings.ToLower(rec)
		for _, ing := range productIngredients {
			if strings.Contains(strings.ToLower(ing), rec) {
				count++
				break
			}
		}
	}
	return count
}
