package detect

import (
	"strings"

	"github.com/triage-ai/triage/internal/catalog"
)

// Signal is one rule-match result for a given input.
type Signal struct {
	Rule     catalog.Rule
	Category catalog.Category
	Level    catalog.Level
}

// Detect evaluates every rule in catalog order against normalized text and
// returns one signal per matching rule. There is no short-circuiting: the
// full signal set is needed downstream for category enrichment.
func Detect(text string, age *int, c *catalog.Catalog) []Signal {
	var signals []Signal
	for _, r := range c.Rules {
		if !matches(text, age, r) {
			continue
		}
		signals = append(signals, Signal{Rule: r, Category: r.Category, Level: r.Level})
	}
	return signals
}

func matches(text string, age *int, r catalog.Rule) bool {
	if !strings.Contains(text, r.Term) {
		return false
	}
	// Exclusions always win, regardless of other conditions.
	for _, ex := range r.ExcludeTerms {
		if strings.Contains(text, ex) {
			return false
		}
	}
	if r.ContextRequired && !containsAny(text, r.ContextTerms) {
		return false
	}
	// An age-ranged rule only blocks when an age was actually supplied.
	if r.AgeRange != nil && age != nil {
		if *age < r.AgeRange.Min || *age > r.AgeRange.Max {
			return false
		}
	}
	return true
}

func containsAny(text string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(text, t) {
			return true
		}
	}
	return false
}

// RuleIDs returns the ids of the matched rules in signal order.
func RuleIDs(signals []Signal) []string {
	if len(signals) == 0 {
		return nil
	}
	out := make([]string, 0, len(signals))
	for _, s := range signals {
		out = append(out, s.Rule.ID)
	}
	return out
}
