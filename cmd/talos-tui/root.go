package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"talos-hq/console/pkg/cli"
	"talos-hq/console/pkg/config"
	"talos-hq/console/pkg/security/secrets"
	sectls "talos-hq/console/pkg/security/tls"
	"talos-hq/console/pkg/supervisor"
	"talos-hq/console/pkg/telemetry/metrics"
)

var (
	// Global flags
	cfgFile string
	mock    bool
	output  string
)

var rootCmd = &cobra.Command{
	Use:   "talos-tui",
	Short: "Talos operator console",
	Long: `talos-tui is a terminal console for a Talos deployment.

It connects to the gateway and audit services, checks that both speak a
compatible contracts version, and then shows their health, traffic metrics,
peers, sessions and the latest audit events.

Configuration comes from an optional YAML file, .env files and TALOS_*
environment variables (TALOS_GATEWAY_URL, TALOS_AUDIT_URL, TALOS_TOKEN,
TALOS_TUI_MOCK, TALOS_CONTRACTS_MAJOR).`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits with the code of its error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (optional)")
	rootCmd.PersistentFlags().BoolVar(&mock, "mock", false, "use synthetic adapters instead of the services")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "text", "output format (text, json)")
}

// loadConfig loads the configuration and applies the global flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, cli.FromConfig(err)
	}
	if mock {
		cfg.Mock = true
	}
	if err := secrets.Resolve(cfg); err != nil {
		return nil, cli.NewConfigError("token_file", err.Error())
	}
	return cfg, nil
}

// newSupervisor creates the supervisor and applies the upstream TLS
// settings to its pool.
func newSupervisor(cfg *config.Config, logger *slog.Logger, collector *metrics.Collector) (*supervisor.Supervisor, error) {
	tlsConfig, err := sectls.ClientConfig(cfg.HTTP.TLS)
	if err != nil {
		return nil, cli.NewConfigError("http.tls", err.Error())
	}
	if msg := sectls.ExpiryWarning(tlsConfig, time.Now()); msg != "" {
		logger.Warn(msg)
	}
	return supervisor.New(cfg.HTTP, logger, collector).WithTLS(tlsConfig), nil
}

func outputFormat() (cli.OutputFormat, error) {
	format, err := cli.ParseFormat(output)
	if err != nil {
		return "", cli.NewConfigError("--output", err.Error())
	}
	return format, nil
}

func userAgent() string {
	return "talos-tui/" + Version
}
