package catalog

import (
	"errors"
	"fmt"

	"github.com/triage-ai/triage/internal/normalize"
)

// ErrInvalidCatalog is returned when a catalog version cannot be activated.
// A catalog that fails validation is rejected as a whole; a partially valid
// rule set is never served.
var ErrInvalidCatalog = errors.New("invalid catalog")

// Category is the closed set of symptom categories a rule can tag.
type Category string

const (
	CategoryCardiovascular   Category = "cardiovascular"
	CategoryRespiratory      Category = "respiratory"
	CategoryNeurological     Category = "neurological"
	CategoryTrauma           Category = "trauma"
	CategoryPsychiatric      Category = "psychiatric"
	CategoryGastrointestinal Category = "gastrointestinal"
	CategoryOther            Category = "other"
)

// Categories lists every category in canonical order. Result category sets
// are emitted in this order so identical inputs produce identical output.
var Categories = []Category{
	CategoryCardiovascular,
	CategoryRespiratory,
	CategoryNeurological,
	CategoryTrauma,
	CategoryPsychiatric,
	CategoryGastrointestinal,
	CategoryOther,
}

// Valid reports whether c is a member of the closed category set.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Level is the urgency of a matched rule. Levels are totally ordered:
// critical > high > moderate > low.
type Level string

const (
	LevelCritical Level = "critical"
	LevelHigh     Level = "high"
	LevelModerate Level = "moderate"
	LevelLow      Level = "low"
)

var levelRank = map[Level]int{
	LevelLow:      0,
	LevelModerate: 1,
	LevelHigh:     2,
	LevelCritical: 3,
}

// Valid reports whether l is a member of the closed level set.
func (l Level) Valid() bool {
	_, ok := levelRank[l]
	return ok
}

// Rank returns the position of l in the total order, low first.
func (l Level) Rank() int {
	return levelRank[l]
}

// MaxLevel returns the more urgent of a and b.
func MaxLevel(a, b Level) Level {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// AgeRange restricts a rule to patients within [Min, Max] years inclusive.
type AgeRange struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// Rule is one immutable detection rule. Term, ContextTerms and ExcludeTerms
// are stored in folded form so the detector can compare them directly
// against normalized text.
type Rule struct {
	ID              string    `yaml:"id"`
	Term            string    `yaml:"term"`
	Category        Category  `yaml:"category"`
	Level           Level     `yaml:"level"`
	ContextRequired bool      `yaml:"context_required"`
	ContextTerms    []string  `yaml:"context_terms"`
	ExcludeTerms    []string  `yaml:"exclude_terms"`
	AgeRange        *AgeRange `yaml:"age_range"`
}

// Catalog is an ordered, read-only rule collection. Build one with New,
// Parse or Load; never mutate it after activation. Concurrent readers share
// a single snapshot through Store.
type Catalog struct {
	Version string `yaml:"version"`
	Rules   []Rule `yaml:"rules"`
}

// New validates the given rules and returns an activated catalog.
// Terms are folded as part of activation.
func New(version string, rules []Rule) (*Catalog, error) {
	c := &Catalog{Version: version, Rules: rules}
	if err := c.activate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) activate() error {
	if len(c.Rules) == 0 {
		return fmt.Errorf("%w: no rules defined", ErrInvalidCatalog)
	}
	seen := make(map[string]struct{}, len(c.Rules))
	for i := range c.Rules {
		r := &c.Rules[i]
		if err := validateRule(i, r); err != nil {
			return err
		}
		if _, dup := seen[r.ID]; dup {
			return fmt.Errorf("%w: duplicate rule id %q", ErrInvalidCatalog, r.ID)
		}
		seen[r.ID] = struct{}{}
		foldRule(r)
	}
	return nil
}

func validateRule(idx int, r *Rule) error {
	if r.ID == "" {
		return fmt.Errorf("%w: rule %d missing id", ErrInvalidCatalog, idx)
	}
	if normalize.Fold(r.Term) == "" {
		return fmt.Errorf("%w: rule %q has empty term", ErrInvalidCatalog, r.ID)
	}
	if !r.Category.Valid() {
		return fmt.Errorf("%w: rule %q has unknown category %q", ErrInvalidCatalog, r.ID, r.Category)
	}
	if !r.Level.Valid() {
		return fmt.Errorf("%w: rule %q has unknown level %q", ErrInvalidCatalog, r.ID, r.Level)
	}
	if r.ContextRequired && len(r.ContextTerms) == 0 {
		return fmt.Errorf("%w: rule %q requires context but lists no context terms", ErrInvalidCatalog, r.ID)
	}
	if r.AgeRange != nil {
		if r.AgeRange.Min < 0 || r.AgeRange.Max < r.AgeRange.Min {
			return fmt.Errorf("%w: rule %q has malformed age range [%d,%d]", ErrInvalidCatalog, r.ID, r.AgeRange.Min, r.AgeRange.Max)
		}
	}
	return nil
}

func foldRule(r *Rule) {
	r.Term = normalize.Fold(r.Term)
	r.ContextTerms = foldTerms(r.ContextTerms)
	r.ExcludeTerms = foldTerms(r.ExcludeTerms)
}

func foldTerms(terms []string) []string {
	if len(terms) == 0 {
		return nil
	}
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		folded := normalize.Fold(t)
		if folded == "" {
			continue
		}
		out = append(out, folded)
	}
	return out
}
