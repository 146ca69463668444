package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tagbot/taglang/pkg/cli"
	"tagbot/taglang/pkg/config"
	"tagbot/taglang/pkg/server"
	"tagbot/taglang/pkg/snippets"
	"tagbot/taglang/pkg/snippets/retention"
	"tagbot/taglang/pkg/snippets/storage"
	"tagbot/taglang/pkg/tag/parser"
	"tagbot/taglang/pkg/telemetry/health"
	"tagbot/taglang/pkg/telemetry/logging"
	"tagbot/taglang/pkg/telemetry/metrics"
	"tagbot/taglang/pkg/telemetry/tracing"
)

// grammarProbe is parsed by the readiness check.
const grammarProbe = `say("ready")`

var serveFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the tag HTTP server",
	Long: `Start the HTTP API with the specified configuration.

The server parses tag programs, serves the snippet library and exposes
health probes and Prometheus metrics.

Examples:
  # Start with default config
  tag serve

  # Start with custom config
  tag serve --config /etc/tag/config.yaml

  # Override listen address
  tag serve --listen 0.0.0.0:8080

  # Validate config and grammar without starting the server
  tag serve --dry-run`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveFlags.listenAddress, "listen", "l", "", "override listen address")
	serveCmd.Flags().StringVar(&serveFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	serveCmd.Flags().BoolVar(&serveFlags.dryRun, "dry-run", false, "validate config and grammar without starting server")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	config.SetConfig(cfg)

	if serveFlags.listenAddress != "" {
		cfg.Server.ListenAddress = serveFlags.listenAddress
	}
	if serveFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = serveFlags.logLevel
	}

	logger, err := logging.New(logging.FromConfig(cfg.Telemetry.Logging, os.Stderr))
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}

	p, err := loadParser(cfg.Parser.GrammarFile)
	if err != nil {
		return cli.NewCommandError("serve", err)
	}
	g := p.Grammar()

	out := cmd.OutOrStdout()
	styles := cli.NewStyles(out)
	if serveFlags.dryRun {
		fmt.Fprintln(out, styles.OK("Configuration valid"))
		fmt.Fprintln(out, styles.OK("Grammar %s %s loaded from %s", g.Name, g.Version, g.Source))
		return nil
	}

	ctx, stop := cli.SetupSignalHandler(commandContext(cmd))
	defer stop()

	var collector *metrics.Collector
	if cfg.Telemetry.Metrics.Enabled {
		collector = metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
	}

	tracer, err := tracing.New(cfg.Telemetry.Tracing, Version)
	if err != nil {
		return cli.NewConfigError("telemetry.tracing", err.Error())
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Telemetry.Tracing.OTLP.Timeout)
		defer cancel()
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Failed to flush traces", "error", err)
		}
	}()

	checker := health.New(cfg.Telemetry.Health.CheckTimeout)
	checker.RegisterCheck("grammar", grammarCheck(p))

	var svc *snippets.Service
	if cfg.Snippets.Enabled {
		store, err := storage.Open(cfg.Snippets, logger.WithComponent("storage").Slog())
		if err != nil {
			return cli.NewCommandError("serve", err)
		}
		defer store.Close()

		svc = snippets.NewService(store, p, snippets.Config{
			MaxSourceBytes:   cfg.Parser.MaxSourceBytes,
			DefaultListLimit: cfg.Snippets.DefaultListLimit,
			MaxListLimit:     cfg.Snippets.MaxListLimit,
		}, collector, logger)
		checker.RegisterCheck("snippets", svc.Ping)

		if n, err := store.Count(ctx); err == nil {
			collector.SetStoredSnippets(n)
		}

		pruner := retention.NewPruner(store, cfg.Snippets.Retention, collector, logger.Slog())
		scheduler := retention.NewScheduler(pruner)
		if err := scheduler.Start(ctx); err != nil {
			logger.Warn("Failed to start retention scheduler", "error", err)
		} else {
			defer scheduler.Stop()
			if next := scheduler.NextRun(); next != nil {
				logger.Debug("Retention scheduler started", "next_run", next)
			}
		}
	}

	if cfg.Watch.Enabled {
		startConfigWatcher(ctx, cfgFile, cfg, logger)
	}

	srv := server.New(server.Options{
		Config:         cfg.Server,
		Parser:         p,
		Snippets:       svc,
		Metrics:        collector,
		Tracer:         tracer,
		Health:         checker,
		Version:        health.NewVersionInfo(Version, GitCommit, BuildDate, g.Name+" "+g.Version),
		Logger:         logger,
		MaxSourceBytes: cfg.Parser.MaxSourceBytes,
		HealthConfig:   cfg.Telemetry.Health,
		MetricsConfig:  cfg.Telemetry.Metrics,
	})

	fmt.Fprintln(out, styles.Heading.Render("tag "+Version))
	fmt.Fprintln(out, styles.OK("Grammar %s %s loaded", g.Name, g.Version))
	if svc != nil {
		fmt.Fprintln(out, styles.OK("Snippet store ready (%s)", cfg.Snippets.Driver))
	}
	if tracer.Enabled() {
		fmt.Fprintln(out, styles.OK("Exporting traces to %s", cfg.Telemetry.Tracing.Endpoint))
	}
	fmt.Fprintln(out, styles.OK("Listening on %s", cfg.Server.ListenAddress))
	fmt.Fprintln(out)
	fmt.Fprintln(out, styles.Muted.Render("Press Ctrl+C to stop"))

	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("serve", err)
	}
	fmt.Fprintln(out, styles.OK("Server stopped"))
	return nil
}

// grammarCheck reports the parser unhealthy if it can no longer parse a
// trivial program.
func grammarCheck(p *parser.Parser) health.CheckFunc {
	return func(context.Context) error {
		_, err := p.Parse(grammarProbe)
		return err
	}
}

// startConfigWatcher reloads the config file when it changes. Only the log
// level takes effect without a restart.
func startConfigWatcher(ctx context.Context, path string, cfg *config.Config, logger *logging.Logger) {
	if _, err := os.Stat(path); err != nil {
		logger.Warn("Config hot reload disabled", "path", path, "error", err)
		return
	}
	watcher, err := config.NewWatcher(path, cfg.Watch.Debounce, logger.WithComponent("config").Slog())
	if err != nil {
		logger.Warn("Config hot reload disabled", "error", err)
		return
	}

	go func() {
		err := watcher.Watch(ctx, func() error {
			next, err := config.ReloadConfig(path)
			if err != nil {
				return err
			}
			if serveFlags.logLevel != "" {
				return nil
			}
			if err := logger.SetLevel(next.Telemetry.Logging.Level); err != nil {
				return err
			}
			logger.Info("Configuration reloaded", "log_level", next.Telemetry.Logging.Level)
			return nil
		})
		if err != nil {
			logger.Error("Config watcher stopped", "error", err)
		}
	}()
}
