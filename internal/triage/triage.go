// Package triage runs the emergency symptom classification pipeline:
// normalize, detect, resolve, compose, sanitize. Each classification call is
// independent and CPU-bound; the only shared state is the read-only catalog
// snapshot, so calls are safe to run concurrently without locking.
package triage

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/triage-ai/triage/internal/audit"
	"github.com/triage-ai/triage/internal/catalog"
	"github.com/triage-ai/triage/internal/compose"
	"github.com/triage-ai/triage/internal/detect"
	"github.com/triage-ai/triage/internal/directory"
	"github.com/triage-ai/triage/internal/normalize"
	"github.com/triage-ai/triage/internal/sanitize"
)

// Input is the classification request contract. Age and the chronic-disease
// flag are optional; the flag is carried through but does not influence
// detection.
type Input struct {
	SymptomText       string `json:"symptom_text"`
	Age               *int   `json:"age,omitempty"`
	HasChronicDisease *bool  `json:"has_chronic_disease,omitempty"`
}

// Result aggregates the detection signals for one input. Level is the
// maximum level among the signals, or low when nothing matched; Bypass is
// true exactly when Level is critical.
type Result struct {
	Level      catalog.Level      `json:"level"`
	Signals    []detect.Signal    `json:"-"`
	Categories []catalog.Category `json:"categories"`
	RuleIDs    []string           `json:"rule_ids,omitempty"`
	Bypass     bool               `json:"bypass"`
}

// Resolve reduces a signal set to an overall result. Categories are emitted
// in canonical catalog order so identical inputs yield identical results.
func Resolve(signals []detect.Signal) Result {
	level := catalog.LevelLow
	seen := make(map[catalog.Category]struct{}, len(signals))
	for _, s := range signals {
		level = catalog.MaxLevel(level, s.Level)
		seen[s.Category] = struct{}{}
	}
	var categories []catalog.Category
	for _, c := range catalog.Categories {
		if _, ok := seen[c]; ok {
			categories = append(categories, c)
		}
	}
	return Result{
		Level:      level,
		Signals:    signals,
		Categories: categories,
		RuleIDs:    detect.RuleIDs(signals),
		Bypass:     level == catalog.LevelCritical,
	}
}

// Outcome is everything one classification produces.
type Outcome struct {
	RequestID string
	Result    Result
	Response  compose.Payload
	Warnings  []sanitize.Warning
}

// Options configures an Engine. Zero-value fields select safe defaults.
type Options struct {
	Store         *catalog.Store
	Directory     *directory.Directory
	Audit         *audit.Emitter
	Logger        *zap.Logger
	MaxInputRunes int
}

// Engine ties the pipeline stages together around a shared catalog store.
type Engine struct {
	store    *catalog.Store
	composer *compose.Composer
	audit    *audit.Emitter
	logger   *zap.Logger
	maxInput int
}

// NewEngine builds an engine. A nil store selects the compiled-in catalog.
func NewEngine(opts Options) *Engine {
	store := opts.Store
	if store == nil {
		store = catalog.NewStore(catalog.Default())
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		store:    store,
		composer: compose.New(opts.Directory),
		audit:    opts.Audit,
		logger:   logger,
		maxInput: opts.MaxInputRunes,
	}
}

// Classify runs the full pipeline for one input. Only invalid input is
// returned as an error; every other irregularity is corrected internally so
// the caller always receives a complete, disclaimed response.
func (e *Engine) Classify(ctx context.Context, in Input) (*Outcome, error) {
	start := time.Now()

	text, err := normalize.Text(in.SymptomText, e.maxInput)
	if err != nil {
		return nil, err
	}

	cat := e.store.Snapshot()
	signals := detect.Detect(text, in.Age, cat)
	result := Resolve(signals)

	payload := e.composer.Compose(result.Level, result.Categories)
	payload, warnings := sanitize.Sanitize(payload)
	if len(warnings) > 0 {
		e.logger.Warn("sanitizer corrected composed response",
			zap.String("level", string(result.Level)),
			zap.Int("corrections", len(warnings)))
	}

	requestID := uuid.NewString()
	e.emitAudit(ctx, requestID, cat.Version, in, result, warnings, time.Since(start))

	return &Outcome{
		RequestID: requestID,
		Result:    result,
		Response:  payload,
		Warnings:  warnings,
	}, nil
}

func (e *Engine) emitAudit(ctx context.Context, requestID, catalogVersion string, in Input, res Result, warnings []sanitize.Warning, latency time.Duration) {
	if e.audit == nil {
		return
	}
	codes := make([]string, 0, len(warnings))
	for _, w := range warnings {
		codes = append(codes, w.Code)
	}
	e.audit.Emit(ctx, audit.BuildEvent(audit.BuildParams{
		RequestID:      requestID,
		CatalogVersion: catalogVersion,
		Level:          res.Level,
		Bypass:         res.Bypass,
		Categories:     res.Categories,
		RuleIDs:        res.RuleIDs,
		Warnings:       codes,
		InputRunes:     utf8.RuneCountInString(in.SymptomText),
		Latency:        latency,
	}))
}
