// Package audit emits one structured event per classification. Events carry
// rule ids, categories, level and the bypass flag, and deliberately exclude
// symptom text or any other free-form input, to satisfy data minimization.
package audit

import (
	"time"

	"github.com/google/uuid"

	"github.com/triage-ai/triage/internal/catalog"
)

// Event is the canonical audit payload for one classification.
type Event struct {
	Version        string        `json:"version"`
	Timestamp      time.Time     `json:"timestamp"`
	RequestID      string        `json:"request_id"`
	CatalogVersion string        `json:"catalog_version"`
	Level          catalog.Level `json:"level"`
	Bypass         bool          `json:"bypass"`
	Categories     []string      `json:"categories,omitempty"`
	RuleIDs        []string      `json:"rule_ids,omitempty"`
	SignalCount    int           `json:"signal_count"`
	Warnings       []string      `json:"warnings,omitempty"`
	InputRunes     int           `json:"input_runes"`
	LatencyMs      float64       `json:"latency_ms"`
}

// BuildParams collects the inputs needed to assemble an event.
type BuildParams struct {
	RequestID      string
	CatalogVersion string
	Level          catalog.Level
	Bypass         bool
	Categories     []catalog.Category
	RuleIDs        []string
	Warnings       []string
	InputRunes     int
	Latency        time.Duration
}

// BuildEvent creates a canonical audit event. A missing request id is
// filled with a fresh UUID.
func BuildEvent(p BuildParams) *Event {
	id := p.RequestID
	if id == "" {
		id = uuid.NewString()
	}
	cats := make([]string, 0, len(p.Categories))
	for _, c := range p.Categories {
		cats = append(cats, string(c))
	}
	return &Event{
		Version:        "1",
		Timestamp:      time.Now().UTC(),
		RequestID:      id,
		CatalogVersion: p.CatalogVersion,
		Level:          p.Level,
		Bypass:         p.Bypass,
		Categories:     cats,
		RuleIDs:        append([]string(nil), p.RuleIDs...),
		SignalCount:    len(p.RuleIDs),
		Warnings:       append([]string(nil), p.Warnings...),
		InputRunes:     p.InputRunes,
		LatencyMs:      float64(p.Latency) / float64(time.Millisecond),
	}
}
