package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const sampleYAML = `
version: "2026-08"
rules:
  - id: chest_pain
    term: 胸痛
    category: cardiovascular
    level: critical
  - id: fever
    term: 燒
    category: other
    level: high
    context_required: true
    context_terms: ["39", "持續"]
  - id: infant_fontanelle
    term: 囟門凸起
    category: neurological
    level: critical
    age_range: {min: 0, max: 2}
`

func TestParse(t *testing.T) {
	c, err := Parse([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Version != "2026-08" {
		t.Fatalf("unexpected version %q", c.Version)
	}
	if len(c.Rules) != 3 {
		t.Fatalf("expected 3 rules, got %d", len(c.Rules))
	}
	if !c.Rules[1].ContextRequired || len(c.Rules[1].ContextTerms) != 2 {
		t.Fatalf("fever rule context not parsed: %+v", c.Rules[1])
	}
	ar := c.Rules[2].AgeRange
	if ar == nil || ar.Min != 0 || ar.Max != 2 {
		t.Fatalf("age range not parsed: %+v", ar)
	}
}

func TestParseRejectsMalformedYAML(t *testing.T) {
	if _, err := Parse([]byte("rules: [")); !errors.Is(err, ErrInvalidCatalog) {
		t.Fatalf("expected ErrInvalidCatalog, got %v", err)
	}
}

func TestParseRejectsInvalidRule(t *testing.T) {
	bad := `
version: v1
rules:
  - id: nameless
    term: ""
    category: other
    level: low
`
	if _, err := Parse([]byte(bad)); !errors.Is(err, ErrInvalidCatalog) {
		t.Fatalf("expected ErrInvalidCatalog, got %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(c.Rules) != 3 {
		t.Fatalf("expected 3 rules, got %d", len(c.Rules))
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestStoreSwapPublishesNewSnapshot(t *testing.T) {
	first, err := New("v1", []Rule{validRule()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	store := NewStore(first)
	if store.Snapshot().Version != "v1" {
		t.Fatalf("expected v1 snapshot")
	}

	second, err := New("v2", []Rule{validRule()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	store.Swap(second)
	if store.Snapshot().Version != "v2" {
		t.Fatalf("expected v2 snapshot after swap")
	}

	// A nil swap must not clobber the published snapshot.
	store.Swap(nil)
	if store.Snapshot().Version != "v2" {
		t.Fatalf("nil swap must keep the current snapshot")
	}
}
