// Package main provides the triage binary: an emergency symptom
// classification service and its operational CLI.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/triage-ai/triage/internal/audit"
	"github.com/triage-ai/triage/internal/catalog"
	"github.com/triage-ai/triage/internal/config"
	"github.com/triage-ai/triage/internal/directory"
	"github.com/triage-ai/triage/internal/server"
	"github.com/triage-ai/triage/internal/triage"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "triage",
		Short:         "Emergency symptom classification service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "triage.yaml", "path to config file")

	root.AddCommand(serveCmd(&configPath))
	root.AddCommand(classifyCmd(&configPath))
	root.AddCommand(checkCmd())

	return root
}

func serveCmd(configPath *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the classification HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Optional .env for local development; missing file is fine.
			_ = godotenv.Load()

			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := config.Validate(cfg); err != nil {
				return fmt.Errorf("validate config: %w", err)
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			logger, err := buildLogger(cfg.Logging)
			if err != nil {
				return fmt.Errorf("build logger: %w", err)
			}
			defer logger.Sync() //nolint:errcheck

			store, err := buildStore(cfg, logger)
			if err != nil {
				return err
			}

			dir := directory.Default()
			if cfg.Directory.Path != "" {
				dir, err = directory.Load(cfg.Directory.Path)
				if err != nil {
					return fmt.Errorf("load service directory: %w", err)
				}
			}

			sinks, err := buildSinks(cfg.Audit, logger)
			if err != nil {
				return err
			}
			emitter := audit.NewEmitter(audit.EmitterConfig{Logger: logger}, sinks)

			engine := triage.NewEngine(triage.Options{
				Store:         store,
				Directory:     dir,
				Audit:         emitter,
				Logger:        logger,
				MaxInputRunes: cfg.Input.MaxLength,
			})

			metrics := server.NewMetrics()
			srv := server.New(server.Options{
				Engine:      engine,
				Store:       store,
				CatalogPath: cfg.Catalog.Path,
				Logger:      logger,
				Metrics:     metrics,
			})

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if cfg.Catalog.Watch {
				watcher := &catalog.Watcher{
					Path:   cfg.Catalog.Path,
					Store:  store,
					Logger: logger,
					OnReload: func(*catalog.Catalog) {
						metrics.IncCatalogReload()
					},
				}
				go func() {
					if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
						logger.Error("catalog watcher stopped", zap.Error(err))
					}
				}()
			}

			// The emitter closes only after the server has drained, so every
			// answered classification has its audit event delivered.
			err = srv.Start(ctx, cfg.Server.Addr)
			emitter.Close(context.Background())
			return err
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (overrides config)")
	return cmd
}

func classifyCmd(configPath *string) *cobra.Command {
	var age int

	cmd := &cobra.Command{
		Use:   "classify <symptom text>",
		Short: "Classify one symptom description and print the result as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			store, err := buildStore(cfg, zap.NewNop())
			if err != nil {
				return err
			}
			engine := triage.NewEngine(triage.Options{
				Store:         store,
				MaxInputRunes: cfg.Input.MaxLength,
			})

			in := triage.Input{SymptomText: args[0]}
			if cmd.Flags().Changed("age") {
				in.Age = &age
			}

			outcome, err := engine.Classify(cmd.Context(), in)
			if err != nil {
				return err
			}

			out := map[string]any{
				"result":   outcome.Result,
				"response": outcome.Response,
			}
			data, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		},
	}
	cmd.Flags().IntVar(&age, "age", 0, "patient age in years")
	return cmd
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <catalog file>",
		Short: "Validate a rule catalog file without activating it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := catalog.Load(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("catalog %s: version %q, %d rules, ok\n", args[0], c.Version, len(c.Rules))
			return nil
		},
	}
}

func buildStore(cfg *config.Config, logger *zap.Logger) (*catalog.Store, error) {
	if cfg.Catalog.Path == "" {
		return catalog.NewStore(catalog.Default()), nil
	}
	c, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		// Startup never serves a partially valid rule set.
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	logger.Info("catalog loaded",
		zap.String("path", cfg.Catalog.Path),
		zap.String("version", c.Version),
		zap.Int("rules", len(c.Rules)))
	return catalog.NewStore(c), nil
}

func buildSinks(cfg config.AuditConfig, logger *zap.Logger) ([]audit.Sink, error) {
	var sinks []audit.Sink
	for _, sc := range cfg.Sinks {
		switch sc.Type {
		case "file_jsonl":
			sink, err := audit.NewFileSink(sc.Path)
			if err != nil {
				return nil, fmt.Errorf("audit file sink: %w", err)
			}
			sinks = append(sinks, sink)
		case "log":
			sinks = append(sinks, audit.NewLoggerSink(logger))
		}
	}
	return sinks, nil
}

func buildLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}
