package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"talos-hq/console/pkg/adapters"
	"talos-hq/console/pkg/cli"
	"talos-hq/console/pkg/config"
	"talos-hq/console/pkg/coordinator"
	"talos-hq/console/pkg/state"
	"talos-hq/console/pkg/telemetry/logging"
	"talos-hq/console/pkg/telemetry/metrics"
	"talos-hq/console/pkg/telemetry/tracing"
)

// renderInterval is the refresh period of the terminal projection.
const renderInterval = 500 * time.Millisecond

var runFlags struct {
	logLevel    string
	exitOnFatal bool
	validate    bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the console",
	Long: `Start the console: handshake with the gateway and audit services, then
poll them and redraw the combined state until interrupted.

Logs go to the configured log file so they never mix with the display.

Examples:
  # Start with the environment configuration
  talos-tui run

  # Start with a config file, reloading the log level on change
  talos-tui run --config /etc/talos/tui.yaml

  # Synthetic data, no services needed
  talos-tui run --mock

  # Validate config without connecting
  talos-tui run --validate`,
	RunE: runConsole,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.exitOnFatal, "exit-on-fatal", false, "exit once the coordinator reaches FATAL")
	runCmd.Flags().BoolVar(&runFlags.validate, "validate", false, "validate config without connecting")
}

func runConsole(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	format, err := outputFormat()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if runFlags.validate {
		fmt.Fprintln(out, "✓ Configuration valid")
		return nil
	}

	logger, err := logging.New(logging.FromConfig(cfg.Telemetry.Logging))
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}
	defer logger.Close()
	slog.SetDefault(logger.Logger)

	slog.Info("starting talos-tui",
		"version", Version,
		"config", cfgFile,
		"mock", cfg.Mock,
		"gateway", cfg.Gateway.BaseURL,
		"audit", cfg.Audit.BaseURL,
	)

	tracer, err := tracing.New(&cfg.Telemetry.Tracing, Version)
	if err != nil {
		return cli.NewCommandError("run", fmt.Errorf("failed to initialize tracing: %w", err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Telemetry.Tracing.Timeout)
		defer cancel()
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			slog.Warn("failed to flush traces", "error", err)
		}
	}()
	if tracer.Enabled() {
		slog.Info("tracing enabled", "endpoint", cfg.Telemetry.Tracing.Endpoint, "sampler", cfg.Telemetry.Tracing.Sampler)
	}

	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
	sup, err := newSupervisor(cfg, logger.Logger, collector)
	if err != nil {
		return err
	}

	set, err := adapters.New(cfg, sup.HTTPClient(), adapters.Options{
		Logger:    logger.Logger,
		Metrics:   collector,
		UserAgent: userAgent(),
		Validator: adapters.RequiredFields("event_id", "ts"),
		Tracer:    tracer,
	})
	if err != nil {
		return cli.NewCommandError("run", err)
	}

	store := state.NewStore(collector)
	coord, err := coordinator.New(coordinator.ConfigFrom(cfg), store, set.Gateway, set.Audit, sup, logger.Logger, collector)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	coord.SetTracer(tracer)

	ctx, stop := cli.SignalContext(cmd.Context())
	defer stop()

	if err := coord.Start(); err != nil {
		return cli.NewCommandError("run", err)
	}

	printer := cli.NewPrinter(out, format)
	redraw := format == cli.FormatText && cli.IsTerminal(out)
	printer.ShowTimes = redraw || format == cli.FormatJSON
	screen := cli.NewScreen(out, redraw)
	view := func() cli.StatusView {
		return cli.NewStatusView(string(coord.State()), store.Snapshot(time.Now(), cfg.Coordinator.StaleAfter), cli.DefaultRecentEvents)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return render(gctx, printer, screen, view, func() bool {
			return runFlags.exitOnFatal && coord.State() == coordinator.StateFatal
		})
	})

	if addr := cfg.Telemetry.Metrics.ListenAddress; addr != "" && cfg.Telemetry.Metrics.Enabled {
		g.Go(func() error {
			checker := readinessChecker(coord, store, cfg.Coordinator.StaleAfter)
			return collector.Serve(gctx, addr, "/metrics", func(mux *http.ServeMux) {
				checker.Mount(mux, Version, GitCommit, BuildDate)
			})
		})
	}

	if cfgFile != "" {
		watcher := config.NewWatcher(cfgFile, config.DefaultWatchDebounce, logger.Logger)
		g.Go(func() error {
			err := watcher.Watch(gctx, func(next *config.Config) {
				if runFlags.logLevel != "" {
					return
				}
				level := next.Telemetry.Logging.Level
				if err := logger.SetLevel(level); err != nil {
					slog.Warn("ignoring reloaded log level", "level", level, "error", err)
					return
				}
				slog.Info("log level updated", "level", level)
			})
			if err != nil {
				slog.Warn("config hot reload disabled", "error", err)
			}
			return nil
		})
	}

	runErr := g.Wait()

	stopCtx, cancel := context.WithTimeout(context.Background(), 2*cfg.Coordinator.StopGrace)
	defer cancel()
	stopErr := errors.Join(coord.Stop(stopCtx), sup.Stop(stopCtx))
	if stopErr != nil {
		slog.Warn("shutdown incomplete", "error", stopErr)
	}

	if frame, err := renderFrame(printer, view()); err == nil {
		_ = screen.Draw(frame)
	}
	screen.Finish("stopped")

	if errors.Is(runErr, errFatal) {
		_, msg := store.IsFatal()
		return &cli.CommandError{Command: "run", Code: cli.ExitFailure, Err: errors.New(msg)}
	}
	if runErr != nil {
		return cli.NewCommandError("run", runErr)
	}
	return nil
}

// errFatal ends the render loop when --exit-on-fatal is set.
var errFatal = errors.New("coordinator is fatal")

// render draws a frame every renderInterval until ctx ends or done reports
// true. It only reads the store.
func render(ctx context.Context, printer *cli.Printer, screen *cli.Screen, view func() cli.StatusView, done func() bool) error {
	ticker := time.NewTicker(renderInterval)
	defer ticker.Stop()

	for {
		frame, err := renderFrame(printer, view())
		if err != nil {
			return err
		}
		if err := screen.Draw(frame); err != nil {
			return fmt.Errorf("failed to draw: %w", err)
		}
		if done() {
			return errFatal
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func renderFrame(printer *cli.Printer, view cli.StatusView) (string, error) {
	if printer.Format() == cli.FormatJSON {
		data, err := json.Marshal(view)
		if err != nil {
			return "", fmt.Errorf("failed to encode status: %w", err)
		}
		return string(data) + "\n", nil
	}
	return printer.RenderStatus(view), nil
}
