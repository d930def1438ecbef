package regimens

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"haircare-backend/internal/quiz"
	"haircare-backend/internal/shared/util"
)

const (
	maxTitle       = 120
	maxDescription = 2000
	maxSteps       = 30
	maxNotes       = 500
	maxFrequency   = 60
	maxTags        = 10
	maxTagLength   = 30
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidInput}, args...)...)
}

func cleanTitle(raw string) (string, error) {
	title := strings.TrimSpace(raw)
	if title == "" || utf8.RuneCountInString(title) > maxTitle {
		return "", invalid("title must be 1-%d characters", maxTitle)
	}
	return title, nil
}

func cleanDescription(raw string) (string, error) {
	desc := strings.TrimSpace(raw)
	if utf8.RuneCountInString(desc) > maxDescription {
		return "", invalid("description must be at most %d characters", maxDescription)
	}
	return desc, nil
}

// cleanSteps validates steps and renumbers them 1..n in input order.
func cleanSteps(steps []Step) ([]Step, error) {
	if len(steps) == 0 || len(steps) > maxSteps {
		return nil, invalid("between 1 and %d steps are required", maxSteps)
	}
	out := make([]Step, 0, len(steps))
	for i, s := range steps {
		title := strings.TrimSpace(s.Title)
		if title == "" || utf8.RuneCountInString(title) > maxTitle {
			return nil, invalid("steps[%d].title must be 1-%d characters", i, maxTitle)
		}
		notes := strings.TrimSpace(s.Notes)
		if utf8.RuneCountInString(notes) > maxNotes {
			return nil, invalid("steps[%d].notes must be at most %d characters", i, maxNotes)
		}
		freq := strings.TrimSpace(s.Frequency)
		if utf8.RuneCountInString(freq) > maxFrequency {
			return nil, invalid("steps[%d].frequency must be at most %d characters", i, maxFrequency)
		}
		out = append(out, Step{
			Order:     i + 1,
			Title:     title,
			Notes:     notes,
			ProductID: strings.TrimSpace(s.ProductID),
			Frequency: freq,
		})
	}
	return out, nil
}

func cleanTags(tags []string) ([]string, error) {
	out := util.NormalizeList(tags)
	if len(out) > maxTags {
		return nil, invalid("at most %d tags", maxTags)
	}
	for _, t := range out {
		if len(t) > maxTagLength {
			return nil, invalid("tags must be at most %d characters", maxTagLength)
		}
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

func cleanHairType(raw string) (string, error) {
	ht := strings.ToLower(strings.TrimSpace(raw))
	if ht != "" && !util.Contains(quiz.HairTypes, ht) {
		return "", invalid("hairType must be one of %s", strings.Join(quiz.HairTypes, "|"))
	}
	return ht, nil
}

func cleanVisibility(raw string) (string, error) {
	switch v := strings.ToLower(strings.TrimSpace(raw)); v {
	case "":
		return VisibilityPublic, nil
	case VisibilityPublic, VisibilityPrivate:
		return v, nil
	default:
		return "", invalid("visibility must be public or private")
	}
}
