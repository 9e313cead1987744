package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/akorchak/metapull/internal/atlan"
	"github.com/akorchak/metapull/internal/export"
	"github.com/akorchak/metapull/internal/extract"
	"github.com/akorchak/metapull/internal/join"
	"github.com/akorchak/metapull/internal/logging"
	"github.com/akorchak/metapull/pkg/config"
	"github.com/spf13/cobra"
)

// NewExtractCmd creates the single-tenant extract command
func NewExtractCmd() *cobra.Command {
	var (
		outputDir  string
		timeoutStr string
	)

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract connections and databases from one endpoint",
		Long: `Extract fetches connection entities from the configured endpoint, then
the databases of each connection, and writes connections.csv,
databases.csv, and the joined combined.csv. Zero connections is a
fatal condition in this mode.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(outputDir, timeoutStr)
		},
	}

	cmd.Flags().StringVar(&outputDir, "output", "", "Output directory (overrides config)")
	cmd.Flags().StringVar(&timeoutStr, "timeout", "", "Per-request timeout (e.g. 30s, 2m)")

	return cmd
}

func runExtract(outputDir, timeoutStr string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}
	if timeoutStr != "" {
		timeout, err := config.ParseDuration(timeoutStr)
		if err != nil {
			return fmt.Errorf("invalid --timeout duration: %w", err)
		}
		cfg.Timeout = timeout
	}

	token, err := cfg.Token()
	if err != nil {
		return err
	}
	if cfg.BaseURL == "" {
		return config.ErrNoBaseURL
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logging.NewRunLogger(cfg.LogDir, cfg.Verbose)
	client := atlan.NewClient(cfg.Timeout, cfg.RateLimit)
	fetcher := extract.NewFetcher(client, cfg, log)

	fmt.Println("🔌 Fetching connections...")
	connections, databases, err := fetcher.Fetch(ctx, cfg.BaseURL, token)
	if err != nil {
		return err
	}
	if len(connections) == 0 {
		return &NoDataError{Scope: cfg.BaseURL}
	}
	fmt.Printf("✓ Extracted %d connections, %d databases\n", len(connections), len(databases))

	if err := export.WriteConnections(filepath.Join(cfg.OutputDir, "connections.csv"), connections); err != nil {
		return err
	}
	if err := export.WriteDatabases(filepath.Join(cfg.OutputDir, "databases.csv"), databases); err != nil {
		return err
	}
	combined := join.Combine("", connections, databases)
	if err := export.WriteCombined(filepath.Join(cfg.OutputDir, "combined.csv"), combined, false); err != nil {
		return err
	}

	fmt.Printf("✓ Artifacts written to %s\n", cfg.OutputDir)
	return nil
}
