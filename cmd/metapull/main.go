package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/akorchak/metapull/internal/atlan"
	"github.com/akorchak/metapull/internal/logging"
	"github.com/akorchak/metapull/pkg/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	version = "1.2.0"
	verbose bool
	cfgFile string
)

// Exit codes for structured error reporting.
const (
	ExitSuccess    = 0
	ExitInternal   = 1
	ExitInvalidArg = 2
	ExitNoData     = 3
	ExitNetwork    = 5
)

// NoDataError indicates the run finished without extracting any records.
type NoDataError struct {
	Scope string
}

func (e *NoDataError) Error() string {
	return fmt.Sprintf("no connections extracted for %s", e.Scope)
}

func main() {
	// Tokens may live in a local .env file; absence is fine.
	_ = godotenv.Load()
	logging.Init(false)

	root := &cobra.Command{
		Use:   "metapull",
		Short: "Catalog metadata extraction tool",
		Long: `Metapull extracts connection and database metadata from a catalog
search API and writes CSV artifacts for downstream consumption.

It supports a single-tenant mode (one endpoint, one token) and a
multi-tenant mode that repeats the extraction for every configured
tenant and joins connections to their databases in a combined report.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Init(verbose)
		},
	}

	root.PersistentFlags().BoolVar(&verbose, "verbose", false, "Verbose logging")
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: .metapull.yaml)")
	root.SilenceUsage = true
	root.SilenceErrors = true

	root.AddCommand(NewExtractCmd())
	root.AddCommand(NewExtractAllCmd())
	root.AddCommand(NewCleanupCmd())
	root.AddCommand(NewVersionCmd())

	if err := root.Execute(); err != nil {
		exitCode := classifyError(err)
		var nde *NoDataError
		if errors.As(err, &nde) {
			slog.Warn("run produced no data", slog.String("scope", nde.Scope))
		} else {
			slog.Error("command failed", slog.String("error", err.Error()))
		}
		os.Exit(exitCode)
	}
}

func classifyError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var nde *NoDataError
	if errors.As(err, &nde) {
		return ExitNoData
	}

	if errors.Is(err, config.ErrNoToken) || errors.Is(err, config.ErrNoBaseURL) {
		return ExitInvalidArg
	}

	var te *atlan.TransportError
	if errors.As(err, &te) {
		return ExitNetwork
	}

	msg := strings.ToLower(err.Error())

	if strings.Contains(msg, "dial") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "i/o timeout") ||
		strings.Contains(msg, "network is unreachable") {
		return ExitNetwork
	}

	if strings.Contains(msg, "required") ||
		strings.Contains(msg, "invalid") ||
		strings.Contains(msg, "must be") ||
		strings.Contains(msg, "expected") {
		return ExitInvalidArg
	}

	return ExitInternal
}

// loadConfig honors the --config flag, falling back to auto-discovery.
func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return nil, err
		}
		cfg.Verbose = verbose
		return cfg, nil
	}

	cfg, path, err := config.AutoLoad()
	if err != nil {
		return nil, err
	}
	if path != "" {
		slog.Debug("using config file", slog.String("path", path))
	}
	cfg.Verbose = verbose
	return cfg, nil
}
