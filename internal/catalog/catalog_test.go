package catalog

import (
	"errors"
	"testing"
)

func validRule() Rule {
	return Rule{ID: "chest_pain", Term: "胸痛", Category: CategoryCardiovascular, Level: LevelCritical}
}

func TestNewAcceptsValidRules(t *testing.T) {
	c, err := New("v1", []Rule{validRule()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Version != "v1" || len(c.Rules) != 1 {
		t.Fatalf("unexpected catalog %+v", c)
	}
}

func TestNewRejectsEmptyCatalog(t *testing.T) {
	if _, err := New("v1", nil); !errors.Is(err, ErrInvalidCatalog) {
		t.Fatalf("expected ErrInvalidCatalog, got %v", err)
	}
}

func TestNewRejectsEmptyTerm(t *testing.T) {
	r := validRule()
	r.Term = "   "
	if _, err := New("v1", []Rule{r}); !errors.Is(err, ErrInvalidCatalog) {
		t.Fatalf("expected ErrInvalidCatalog, got %v", err)
	}
}

func TestNewRejectsUnknownCategory(t *testing.T) {
	r := validRule()
	r.Category = "dermatology"
	if _, err := New("v1", []Rule{r}); !errors.Is(err, ErrInvalidCatalog) {
		t.Fatalf("expected ErrInvalidCatalog, got %v", err)
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	r := validRule()
	r.Level = "urgent"
	if _, err := New("v1", []Rule{r}); !errors.Is(err, ErrInvalidCatalog) {
		t.Fatalf("expected ErrInvalidCatalog, got %v", err)
	}
}

func TestNewRejectsMalformedAgeRange(t *testing.T) {
	r := validRule()
	r.AgeRange = &AgeRange{Min: 10, Max: 2}
	if _, err := New("v1", []Rule{r}); !errors.Is(err, ErrInvalidCatalog) {
		t.Fatalf("expected ErrInvalidCatalog, got %v", err)
	}
}

func TestNewRejectsDuplicateIDs(t *testing.T) {
	if _, err := New("v1", []Rule{validRule(), validRule()}); !errors.Is(err, ErrInvalidCatalog) {
		t.Fatalf("expected ErrInvalidCatalog, got %v", err)
	}
}

func TestNewRejectsContextRequiredWithoutTerms(t *testing.T) {
	r := validRule()
	r.ContextRequired = true
	if _, err := New("v1", []Rule{r}); !errors.Is(err, ErrInvalidCatalog) {
		t.Fatalf("expected ErrInvalidCatalog, got %v", err)
	}
}

func TestNewFoldsTerms(t *testing.T) {
	r := validRule()
	r.Term = " Chest Pain "
	r.ContextRequired = true
	r.ContextTerms = []string{"３９"}
	r.ExcludeTerms = []string{" After EATING "}
	c, err := New("v1", []Rule{r})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := c.Rules[0]
	if got.Term != "chest pain" {
		t.Fatalf("term not folded: %q", got.Term)
	}
	if got.ContextTerms[0] != "39" {
		t.Fatalf("context term not folded: %q", got.ContextTerms[0])
	}
	if got.ExcludeTerms[0] != "after eating" {
		t.Fatalf("exclude term not folded: %q", got.ExcludeTerms[0])
	}
}

func TestLevelOrdering(t *testing.T) {
	order := []Level{LevelLow, LevelModerate, LevelHigh, LevelCritical}
	for i := 1; i < len(order); i++ {
		if order[i].Rank() <= order[i-1].Rank() {
			t.Fatalf("%s should rank above %s", order[i], order[i-1])
		}
	}
	if MaxLevel(LevelModerate, LevelCritical) != LevelCritical {
		t.Fatalf("MaxLevel should pick critical")
	}
	if MaxLevel(LevelHigh, LevelLow) != LevelHigh {
		t.Fatalf("MaxLevel should pick high")
	}
}

func TestDefaultCatalogActivates(t *testing.T) {
	c := Default()
	if c.Version != BuiltinVersion {
		t.Fatalf("unexpected version %q", c.Version)
	}
	if len(c.Rules) == 0 {
		t.Fatalf("builtin catalog has no rules")
	}
}
