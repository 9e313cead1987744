package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/akorchak/metapull/internal/models"
	"github.com/akorchak/metapull/pkg/config"
)

type fakeFetcher struct {
	fetch func(baseURL string) ([]models.ConnectionRecord, []models.DatabaseRecord, error)
}

func (f *fakeFetcher) Fetch(ctx context.Context, baseURL, token string) ([]models.ConnectionRecord, []models.DatabaseRecord, error) {
	return f.fetch(baseURL)
}

type fakeExporter struct {
	exported []string
	err      error
}

func (e *fakeExporter) ExportTenant(tenant string, connections []models.ConnectionRecord, databases []models.DatabaseRecord) error {
	if e.err != nil {
		return e.err
	}
	e.exported = append(e.exported, tenant)
	return nil
}

func discardLogger(string) *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRunner(cfg *config.Config, exporter Exporter, fetch func(baseURL string) ([]models.ConnectionRecord, []models.DatabaseRecord, error)) *Runner {
	r := New(cfg, nil, exporter)
	r.FetcherFor = func(log *slog.Logger) Fetcher {
		return &fakeFetcher{fetch: fetch}
	}
	r.LoggerFor = discardLogger
	return r
}

func tenantFixture(names ...string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.BaseURLTemplate = "https://{tenant}.example.com"
	for _, name := range names {
		cfg.Tenants = append(cfg.Tenants, config.Tenant{Name: name, AuthToken: "token-" + name})
	}
	return cfg
}

func fixtureRecords(qn string) ([]models.ConnectionRecord, []models.DatabaseRecord) {
	connections := []models.ConnectionRecord{
		{Name: "conn", QualifiedName: qn, ConnectorName: "snowflake"},
	}
	databases := []models.DatabaseRecord{
		{ConnectionQualifiedName: qn, TypeName: "Database", Name: "db"},
		{ConnectionQualifiedName: qn, TypeName: "Database", Name: "db2"},
	}
	return connections, databases
}

func TestRunIsolatesTenantFailures(t *testing.T) {
	cfg := tenantFixture("one", "two", "three")
	exporter := &fakeExporter{}
	r := testRunner(cfg, exporter, func(baseURL string) ([]models.ConnectionRecord, []models.DatabaseRecord, error) {
		if baseURL == "https://two.example.com" {
			return nil, nil, errors.New("search blew up")
		}
		connections, databases := fixtureRecords("c/" + baseURL)
		return connections, databases, nil
	})

	summary := r.Run(context.Background())

	if len(summary.Results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(summary.Results))
	}
	wantStatus := []models.TenantStatus{models.StatusSuccess, models.StatusError, models.StatusSuccess}
	for i, want := range wantStatus {
		if summary.Results[i].Status != want {
			t.Fatalf("tenant %s: status %s, want %s", summary.Results[i].Tenant, summary.Results[i].Status, want)
		}
	}
	if summary.Results[1].Error == "" {
		t.Fatalf("failed tenant must carry an error message")
	}
	if summary.TotalConnections != 2 || summary.TotalDatabases != 4 {
		t.Fatalf("totals must exclude the failed tenant, got %d/%d", summary.TotalConnections, summary.TotalDatabases)
	}
	if len(exporter.exported) != 2 {
		t.Fatalf("expected 2 exported tenants, got %v", exporter.exported)
	}
	if len(summary.Combined) != 4 {
		t.Fatalf("expected combined rows from 2 tenants, got %d", len(summary.Combined))
	}
}

func TestRunRecoversFromPanic(t *testing.T) {
	cfg := tenantFixture("one", "two")
	exporter := &fakeExporter{}
	r := testRunner(cfg, exporter, func(baseURL string) ([]models.ConnectionRecord, []models.DatabaseRecord, error) {
		if baseURL == "https://one.example.com" {
			panic("boom")
		}
		connections, databases := fixtureRecords("c/1")
		return connections, databases, nil
	})

	summary := r.Run(context.Background())

	if summary.Results[0].Status != models.StatusError {
		t.Fatalf("panicking tenant must be recorded as error, got %s", summary.Results[0].Status)
	}
	if summary.Results[1].Status != models.StatusSuccess {
		t.Fatalf("panic must not leak into the next tenant, got %s", summary.Results[1].Status)
	}
}

func TestRunSkipsTenantsWithoutCredential(t *testing.T) {
	cfg := tenantFixture("with-token")
	cfg.Tenants = append(cfg.Tenants, config.Tenant{Name: "tokenless"})
	exporter := &fakeExporter{}
	calls := 0
	r := testRunner(cfg, exporter, func(baseURL string) ([]models.ConnectionRecord, []models.DatabaseRecord, error) {
		calls++
		connections, databases := fixtureRecords("c/1")
		return connections, databases, nil
	})

	summary := r.Run(context.Background())

	if calls != 1 {
		t.Fatalf("skipped tenant must not be fetched, got %d calls", calls)
	}
	if len(summary.Skipped) != 1 || summary.Skipped[0] != "tokenless" {
		t.Fatalf("expected tokenless in skipped list, got %v", summary.Skipped)
	}
	if len(summary.Results) != 1 {
		t.Fatalf("skipped tenants must not produce results, got %d", len(summary.Results))
	}
}

func TestRunRecordsNoData(t *testing.T) {
	cfg := tenantFixture("empty")
	exporter := &fakeExporter{}
	r := testRunner(cfg, exporter, func(baseURL string) ([]models.ConnectionRecord, []models.DatabaseRecord, error) {
		return nil, nil, nil
	})

	summary := r.Run(context.Background())

	if summary.Results[0].Status != models.StatusNoData {
		t.Fatalf("expected no_data, got %s", summary.Results[0].Status)
	}
	if len(exporter.exported) != 0 {
		t.Fatalf("no_data tenant must not be exported, got %v", exporter.exported)
	}
	if summary.Succeeded() {
		t.Fatalf("summary must not report success")
	}
}

func TestRunExportFailureIsTenantError(t *testing.T) {
	cfg := tenantFixture("one")
	exporter := &fakeExporter{err: fmt.Errorf("disk full")}
	r := testRunner(cfg, exporter, func(baseURL string) ([]models.ConnectionRecord, []models.DatabaseRecord, error) {
		connections, databases := fixtureRecords("c/1")
		return connections, databases, nil
	})

	summary := r.Run(context.Background())

	if summary.Results[0].Status != models.StatusError {
		t.Fatalf("expected error status, got %s", summary.Results[0].Status)
	}
	if summary.TotalConnections != 0 {
		t.Fatalf("failed tenant must not count toward totals")
	}
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	cfg := tenantFixture("one", "two", "three")
	exporter := &fakeExporter{}
	processed := 0

	ctx, cancel := context.WithCancel(context.Background())
	r := testRunner(cfg, exporter, func(baseURL string) ([]models.ConnectionRecord, []models.DatabaseRecord, error) {
		processed++
		// Interrupt arrives while the first tenant is in flight.
		cancel()
		connections, databases := fixtureRecords("c/1")
		return connections, databases, nil
	})

	summary := r.Run(ctx)

	if processed != 1 {
		t.Fatalf("expected run to stop before the second tenant, processed %d", processed)
	}
	if len(summary.Results) != 1 || summary.Results[0].Status != models.StatusSuccess {
		t.Fatalf("in-flight tenant must run to completion, got %+v", summary.Results)
	}
}

func TestRunCallsOnTenant(t *testing.T) {
	cfg := tenantFixture("one", "two")
	exporter := &fakeExporter{}
	r := testRunner(cfg, exporter, func(baseURL string) ([]models.ConnectionRecord, []models.DatabaseRecord, error) {
		return nil, nil, nil
	})

	var seen []string
	r.OnTenant = func(result models.TenantResult) {
		seen = append(seen, result.Tenant)
	}

	r.Run(context.Background())

	if len(seen) != 2 || seen[0] != "one" || seen[1] != "two" {
		t.Fatalf("unexpected OnTenant sequence: %v", seen)
	}
}
