// Package runner iterates configured tenants and drives the per-tenant
// extraction, isolating failures at the tenant boundary.
package runner

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/akorchak/metapull/internal/extract"
	"github.com/akorchak/metapull/internal/join"
	"github.com/akorchak/metapull/internal/logging"
	"github.com/akorchak/metapull/internal/models"
	"github.com/akorchak/metapull/pkg/config"
)

// Fetcher retrieves one endpoint's connection and database records.
type Fetcher interface {
	Fetch(ctx context.Context, baseURL, token string) ([]models.ConnectionRecord, []models.DatabaseRecord, error)
}

// Exporter writes one tenant's artifacts.
type Exporter interface {
	ExportTenant(tenant string, connections []models.ConnectionRecord, databases []models.DatabaseRecord) error
}

// Runner processes tenants one at a time, in configured order. No state is
// shared between tenants; each gets its own logger and working set.
type Runner struct {
	cfg      *config.Config
	exporter Exporter

	// FetcherFor builds the fetcher for one tenant, bound to that
	// tenant's logger. Replaceable in tests.
	FetcherFor func(log *slog.Logger) Fetcher

	// LoggerFor builds the per-tenant logger. Replaceable in tests.
	LoggerFor func(tenant string) *slog.Logger

	// OnTenant, when set, is called after each processed tenant.
	OnTenant func(result models.TenantResult)
}

// New creates a runner wired to the real fetcher and per-tenant log files.
func New(cfg *config.Config, client extract.SearchClient, exporter Exporter) *Runner {
	return &Runner{
		cfg:      cfg,
		exporter: exporter,
		FetcherFor: func(log *slog.Logger) Fetcher {
			return extract.NewFetcher(client, cfg, log)
		},
		LoggerFor: func(tenant string) *slog.Logger {
			return logging.ForTenant(cfg.LogDir, tenant, cfg.Verbose)
		},
	}
}

// Run processes every configured tenant sequentially and returns the
// cross-tenant summary. Tenants without a resolvable credential are skipped
// up front. A cancelled context stops the run before the next tenant
// starts; the tenant already in flight finishes on its own.
func (r *Runner) Run(ctx context.Context) *models.Summary {
	summary := &models.Summary{}

	for _, tenant := range r.cfg.Tenants {
		if ctx.Err() != nil {
			slog.Warn("run interrupted, stopping before next tenant",
				slog.String("tenant", tenant.Name))
			break
		}

		token := r.cfg.TokenForTenant(tenant)
		if token == "" {
			slog.Warn("tenant has no credential, skipping", slog.String("tenant", tenant.Name))
			summary.Skipped = append(summary.Skipped, tenant.Name)
			continue
		}

		result, combined := r.processTenant(ctx, tenant, token)
		summary.Results = append(summary.Results, result)
		if result.Status == models.StatusSuccess {
			summary.TotalConnections += result.Connections
			summary.TotalDatabases += result.Databases
			summary.Combined = append(summary.Combined, combined...)
		}
		if r.OnTenant != nil {
			r.OnTenant(result)
		}
	}

	return summary
}

// processTenant runs the extraction for one tenant. Any failure, including
// a panic, is converted into an error result here and never propagates to
// the caller's loop.
func (r *Runner) processTenant(ctx context.Context, tenant config.Tenant, token string) (result models.TenantResult, combined []models.CombinedRow) {
	result = models.TenantResult{Tenant: tenant.Name}
	log := r.LoggerFor(tenant.Name)

	defer func() {
		if p := recover(); p != nil {
			result.Status = models.StatusError
			result.Error = fmt.Sprintf("panic: %v", p)
			combined = nil
			log.Error("tenant processing failed", slog.String("error", result.Error))
		}
	}()

	baseURL, err := r.cfg.URLForTenant(tenant)
	if err != nil {
		result.Status = models.StatusError
		result.Error = err.Error()
		log.Error("cannot resolve tenant base url", slog.String("error", result.Error))
		return result, nil
	}

	log.Info("processing tenant", slog.String("base_url", baseURL))

	connections, databases, err := r.FetcherFor(log).Fetch(ctx, baseURL, token)
	if err != nil {
		result.Status = models.StatusError
		result.Error = err.Error()
		log.Error("tenant extraction failed", slog.String("error", result.Error))
		return result, nil
	}
	if len(connections) == 0 {
		result.Status = models.StatusNoData
		log.Warn("no connections found for tenant")
		return result, nil
	}

	result.Connections = len(connections)
	result.Databases = len(databases)

	if err := r.exporter.ExportTenant(tenant.Name, connections, databases); err != nil {
		result.Status = models.StatusError
		result.Error = err.Error()
		log.Error("failed to export tenant artifacts", slog.String("error", result.Error))
		return result, nil
	}

	result.Status = models.StatusSuccess
	log.Info("tenant processed",
		slog.Int("connections", result.Connections),
		slog.Int("databases", result.Databases))
	return result, join.Combine(tenant.Name, connections, databases)
}
