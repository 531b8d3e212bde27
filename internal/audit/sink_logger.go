package audit

import (
	"context"

	"go.uber.org/zap"
)

// LoggerSink writes audit events to the structured log.
type LoggerSink struct {
	log *zap.Logger
}

// NewLoggerSink returns a sink logging through the given zap logger.
func NewLoggerSink(log *zap.Logger) *LoggerSink {
	if log == nil {
		log = zap.NewNop()
	}
	return &LoggerSink{log: log}
}

func (s *LoggerSink) Name() string { return "log" }

func (s *LoggerSink) Deliver(_ context.Context, ev *Event) error {
	if ev == nil {
		return nil
	}
	s.log.Info("classification",
		zap.String("request_id", ev.RequestID),
		zap.String("catalog_version", ev.CatalogVersion),
		zap.String("level", string(ev.Level)),
		zap.Bool("bypass", ev.Bypass),
		zap.Strings("categories", ev.Categories),
		zap.Strings("rule_ids", ev.RuleIDs),
		zap.Strings("warnings", ev.Warnings),
		zap.Int("input_runes", ev.InputRunes),
		zap.Float64("latency_ms", ev.LatencyMs),
	)
	return nil
}

func (s *LoggerSink) Close(_ context.Context) error { return nil }
