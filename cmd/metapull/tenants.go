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
	"github.com/akorchak/metapull/internal/models"
	"github.com/akorchak/metapull/internal/runner"
	"github.com/akorchak/metapull/pkg/config"
	"github.com/gosuri/uiprogress"
	"github.com/spf13/cobra"
)

// NewExtractAllCmd creates the multi-tenant extract command
func NewExtractAllCmd() *cobra.Command {
	var noProgress bool

	cmd := &cobra.Command{
		Use:   "extract-all",
		Short: "Extract every configured tenant and build the combined report",
		Long: `Extract-all repeats the two-step extraction for every configured
tenant, writes per-tenant connections and databases artifacts, and
joins them into a cross-tenant combined report. A failing tenant is
recorded and does not stop the run.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtractAll(noProgress)
		},
	}

	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable the progress bar")

	return cmd
}

func runExtractAll(noProgress bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if len(cfg.Tenants) == 0 {
		return fmt.Errorf("no tenants configured")
	}

	usable := 0
	for _, tenant := range cfg.Tenants {
		if cfg.TokenForTenant(tenant) != "" {
			usable++
		}
	}
	if usable == 0 {
		return fmt.Errorf("no tenant has a credential: %w", config.ErrNoToken)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := atlan.NewClient(cfg.Timeout, cfg.RateLimit)
	run := runner.New(cfg, client, export.TenantWriter{Dir: cfg.OutputDir})

	fmt.Printf("🔌 Processing %d tenants...\n", len(cfg.Tenants))
	if !noProgress {
		uiprogress.Start()
		bar := uiprogress.AddBar(len(cfg.Tenants)).AppendCompleted().PrependElapsed()
		run.OnTenant = func(models.TenantResult) {
			bar.Incr()
		}
	}

	summary := run.Run(ctx)

	if !noProgress {
		uiprogress.Stop()
	}

	combinedPath := filepath.Join(cfg.OutputDir, "combined_report.csv")
	if err := export.WriteCombined(combinedPath, summary.Combined, true); err != nil {
		return err
	}

	printSummary(summary)

	if !summary.Succeeded() {
		return &NoDataError{Scope: "all tenants"}
	}
	return nil
}

func printSummary(summary *models.Summary) {
	fmt.Println("\n📊 Extraction Summary:")
	for _, result := range summary.Results {
		icon := "✓"
		if result.Status != models.StatusSuccess {
			icon = "!"
		}
		line := fmt.Sprintf("[%s] %-20s : %s", icon, result.Tenant, result.Status)
		if result.Status == models.StatusSuccess {
			line += fmt.Sprintf(" (%d connections, %d databases)", result.Connections, result.Databases)
		}
		if result.Error != "" {
			line += fmt.Sprintf("\n    └ Error: %s", result.Error)
		}
		fmt.Println(line)
	}
	for _, name := range summary.Skipped {
		fmt.Printf("[-] %-20s : skipped (no credential)\n", name)
	}
	fmt.Println("--------------------------------------------------")
	fmt.Printf("Tenants: %d success, %d no_data, %d error, %d skipped\n",
		summary.CountByStatus(models.StatusSuccess),
		summary.CountByStatus(models.StatusNoData),
		summary.CountByStatus(models.StatusError),
		len(summary.Skipped))
	fmt.Printf("Totals: %d connections, %d databases\n",
		summary.TotalConnections, summary.TotalDatabases)
}
