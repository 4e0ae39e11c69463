package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"talos-hq/console/pkg/adapters"
	"talos-hq/console/pkg/cli"
	"talos-hq/console/pkg/config"
	"talos-hq/console/pkg/coordinator"
	"talos-hq/console/pkg/domain"
	"talos-hq/console/pkg/telemetry/logging"
)

var checkFlags struct {
	timeout time.Duration
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Probe the gateway and audit services once",
	Long: `Probe both services once: readiness, version and the contracts gate.

The command exits non-zero when either service is unreachable, not ready or
reports an incompatible contracts version.

Examples:
  # Probe the services configured in the environment
  talos-tui check

  # Machine readable output
  talos-tui check -o json`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().DurationVar(&checkFlags.timeout, "timeout", 15*time.Second, "overall probe timeout")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	format, err := outputFormat()
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.FromConfig(cfg.Telemetry.Logging))
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}
	defer logger.Close()

	sup, err := newSupervisor(cfg, logger.Logger, nil)
	if err != nil {
		return err
	}
	defer sup.Stop(context.Background())

	set, err := adapters.New(cfg, sup.HTTPClient(), adapters.Options{
		Logger:    logger.Logger,
		UserAgent: userAgent(),
	})
	if err != nil {
		return cli.NewCommandError("check", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), checkFlags.timeout)
	defer cancel()

	results := probe(ctx, cfg, set, logger.Logger)
	if err := cli.NewPrinter(cmd.OutOrStdout(), format).Check(results); err != nil {
		return err
	}

	var failed []error
	for _, r := range results {
		if !r.OK {
			failed = append(failed, fmt.Errorf("%s: %s", r.Service, r.Status))
		}
	}
	if len(failed) > 0 {
		return &cli.CommandError{Command: "check", Code: cli.ExitFailure, Err: errors.Join(failed...)}
	}
	return nil
}

// probe runs one handshake against each source, in handshake order.
func probe(ctx context.Context, cfg *config.Config, set adapters.Set, logger *slog.Logger) []cli.CheckResult {
	sources := []adapters.SourceAdapter{set.Gateway, set.Audit}
	endpoints := map[domain.Source]string{
		domain.SourceGateway: cfg.Gateway.BaseURL,
		domain.SourceAudit:   cfg.Audit.BaseURL,
	}

	results := make([]cli.CheckResult, 0, len(sources))
	for _, adapter := range sources {
		src := adapter.Source()
		endpoint := endpoints[src]
		if cfg.Mock {
			endpoint = "(mock)"
		}

		r := probeSource(ctx, adapter, cfg.ContractsMajor)
		r.Endpoint = endpoint
		logger.Info("check", "source", string(src), "ok", r.OK, "status", r.Status)
		results = append(results, r)
	}
	return results
}

// probeSource runs the coordinator's handshake gates once against adapter.
func probeSource(ctx context.Context, adapter adapters.SourceAdapter, contractsMajor string) cli.CheckResult {
	r := cli.CheckResult{Service: string(adapter.Source())}

	health, err := adapter.GetHealth(ctx)
	if err == nil {
		err = coordinator.HealthGate(adapter.Source(), health)
	}
	if err != nil {
		return checkFailed(r, err)
	}

	version, err := adapter.GetVersion(ctx)
	if err != nil {
		return checkFailed(r, err)
	}
	r.Version = version.ServiceVersion
	r.ContractsVersion = version.ContractsVersion

	if err := coordinator.ContractsGate(version, contractsMajor); err != nil {
		return checkFailed(r, err)
	}

	r.OK = true
	r.Status = "READY"
	return r
}

func checkFailed(r cli.CheckResult, err error) cli.CheckResult {
	r.Status = string(domain.KindOf(err))
	r.Error = err.Error()
	return r
}
