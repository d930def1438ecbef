// Package quiz models the hair-profile questionnaire that drives recommendations.
package quiz

import (
	"errors"
	"fmt"
	"strings"

	"haircare-backend/internal/shared/util"
)

// ErrInvalidAnswers is wrapped by every validation failure.
var ErrInvalidAnswers = errors.New("invalid quiz answers")

var (
	HairTypes  = []string{"straight", "wavy", "curly", "coily"}
	Porosities = []string{"low", "medium", "high"}
	ScalpTypes = []string{"dry", "oily", "normal", "sensitive"}
	Densities  = []string{"thin", "medium", "thick"}
	Budgets    = []string{"low", "medium", "high", "any"}
	Concerns   = []string{
		"frizz", "dryness", "breakage", "dandruff", "thinning",
		"color-treated", "oiliness", "split-ends", "heat-damage",
	}
	WashFrequencies = []string{"daily", "every-other-day", "twice-weekly", "weekly", "less-than-weekly"}
)

const (
	maxGoals     = 10
	maxAllergies = 20
	maxItemLen   = 60
)

// Answers is a structured questionnaire response.
type Answers struct {
	HairType       string   `json:"hairType"`
	Porosity       string   `json:"porosity,omitempty"`
	ScalpType      string   `json:"scalpType,omitempty"`
	Density        string   `json:"density,omitempty"`
	Concerns       []string `json:"concerns,omitempty"`
	Goals          []string `json:"goals,omitempty"`
	Allergies      []string `json:"allergies,omitempty"`
	Budget         string   `json:"budget,omitempty"`
	Sustainability bool     `json:"sustainability"`
	WashFrequency  string   `json:"washFrequency,omitempty"`
}

// Normalize trims and lowercases values, dedupes lists and fills defaults.
func (a Answers) Normalize() Answers {
	out := a
	out.HairType = clean(a.HairType)
	out.Porosity = defaultTo(clean(a.Porosity), "medium")
	out.ScalpType = defaultTo(clean(a.ScalpType), "normal")
	out.Density = clean(a.Density)
	out.Budget = defaultTo(clean(a.Budget), "any")
	out.WashFrequency = clean(a.WashFrequency)
	out.Concerns = util.NormalizeList(a.Concerns)
	out.Goals = util.NormalizeList(a.Goals)
	out.Allergies = util.NormalizeList(a.Allergies)
	return out
}

// Validate checks enumerated fields. Call Normalize first.
func (a Answers) Validate() error {
	if a.HairType == "" {
		return fmt.Errorf("%w: hairType is required", ErrInvalidAnswers)
	}
	if err := oneOf("hairType", a.HairType, HairTypes); err != nil {
		return err
	}
	if err := oneOf("porosity", a.Porosity, Porosities); err != nil {
		return err
	}
	if err := oneOf("scalpType", a.ScalpType, ScalpTypes); err != nil {
		return err
	}
	if err := oneOf("budget", a.Budget, Budgets); err != nil {
		return err
	}
	if a.Density != "" {
		if err := oneOf("density", a.Density, Densities); err != nil {
			return err
		}
	}
	if a.WashFrequency != "" {
		if err := oneOf("washFrequency", a.WashFrequency, WashFrequencies); err != nil {
			return err
		}
	}
	for _, c := range a.Concerns {
		if err := oneOf("concerns", c, Concerns); err != nil {
			return err
		}
	}
	if len(a.Goals) > maxGoals {
		return fmt.Errorf("%w: at most %d goals", ErrInvalidAnswers, maxGoals)
	}
	if len(a.Allergies) > maxAllergies {
		return fmt.Errorf("%w: at most %d allergies", ErrInvalidAnswers, maxAllergies)
	}
	for _, v := range append(append([]string{}, a.Goals...), a.Allergies...) {
		if len(v) > maxItemLen {
			return fmt.Errorf("%w: list values must be at most %d characters", ErrInvalidAnswers, maxItemLen)
		}
	}
	return nil
}

// Summary renders a one-line description used in LLM prompts.
func (a Answers) Summary() string {
	parts := []string{
		a.HairType + " hair",
		a.Porosity + " porosity",
		a.ScalpType + " scalp",
	}
	if a.Density != "" {
		parts = append(parts, a.Density+" density")
	}
	if len(a.Concerns) > 0 {
		parts = append(parts, "concerns: "+strings.Join(a.Concerns, ", "))
	}
	if len(a.Goals) > 0 {
		parts = append(parts, "goals: "+strings.Join(a.Goals, ", "))
	}
	if len(a.Allergies) > 0 {
		parts = append(parts, "avoid: "+strings.Join(a.Allergies, ", "))
	}
	if a.Budget != "" && a.Budget != "any" {
		parts = append(parts, a.Budget+" budget")
	}
	if a.Sustainability {
		parts = append(parts, "prefers sustainable products")
	}
	return strings.Join(parts, "; ")
}

func oneOf(field, value string, allowed []string) error {
	for _, v := range allowed {
		if v == value {
			return nil
		}
	}
	return fmt.Errorf("%w: %s must be one of %s", ErrInvalidAnswers, field, strings.Join(allowed, "|"))
}

func clean(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

func defaultTo(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
