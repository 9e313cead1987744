package extract

import (
	"context"
	"log/slog"

	"github.com/akorchak/metapull/internal/models"
	"github.com/akorchak/metapull/pkg/config"
)

// SearchClient is the transport boundary. Implementations are synchronous:
// request in, parsed response or failure out.
type SearchClient interface {
	Search(ctx context.Context, url, bearer string, payload any) (map[string]any, error)
}

// Fetcher runs the two-step extraction (connections, then databases per
// connection) against one endpoint. It holds no state between calls.
type Fetcher struct {
	client SearchClient
	cfg    *config.Config
	log    *slog.Logger
}

// NewFetcher creates a fetcher. A nil logger falls back to slog.Default.
func NewFetcher(client SearchClient, cfg *config.Config, log *slog.Logger) *Fetcher {
	if log == nil {
		log = slog.Default()
	}
	return &Fetcher{client: client, cfg: cfg, log: log}
}

// Fetch retrieves connection records and their database records from the
// endpoint. A failed or empty connections search yields empty slices, a
// warning condition rather than an error. A failure fetching databases for
// one connection never prevents collection for subsequent connections.
func (f *Fetcher) Fetch(ctx context.Context, baseURL, token string) ([]models.ConnectionRecord, []models.DatabaseRecord, error) {
	url := f.cfg.SearchURL(baseURL)
	bearer := config.Bearer(token)

	connections := f.fetchConnections(ctx, url, bearer)
	if len(connections) == 0 {
		return nil, nil, nil
	}

	var databases []models.DatabaseRecord
	for _, conn := range connections {
		if conn.QualifiedName == "" {
			f.log.Warn("connection missing qualified name, skipping database fetch",
				slog.String("connection", conn.Name))
			continue
		}
		databases = append(databases, f.fetchDatabases(ctx, url, bearer, conn)...)
	}

	return connections, databases, nil
}

func (f *Fetcher) fetchConnections(ctx context.Context, url, bearer string) []models.ConnectionRecord {
	f.log.Info("fetching connections", slog.String("url", url))

	resp, err := f.client.Search(ctx, url, bearer, f.cfg.ConnectionsPayload())
	if err != nil {
		f.log.Error("failed to fetch connections",
			slog.String("url", url), slog.String("error", err.Error()))
		return nil
	}

	entities := entitiesOf(resp)
	f.log.Info("retrieved connections", slog.Int("count", len(entities)))

	records := make([]models.ConnectionRecord, 0, len(entities))
	for _, entity := range entities {
		record, err := MapConnection(entity)
		if err != nil {
			f.log.Warn("skipping connection entity", slog.String("error", err.Error()))
			continue
		}
		records = append(records, record)
	}
	return records
}

func (f *Fetcher) fetchDatabases(ctx context.Context, url, bearer string, conn models.ConnectionRecord) []models.DatabaseRecord {
	f.log.Info("fetching databases",
		slog.String("connection", conn.QualifiedName),
		slog.String("connector", conn.ConnectorName))

	template := f.cfg.DatabaseQueryFor(conn.ConnectorName)
	payload, err := Render(template, config.Placeholder, conn.QualifiedName)
	if err != nil {
		f.log.Warn("failed to render databases query",
			slog.String("connection", conn.QualifiedName),
			slog.String("error", err.Error()))
		return nil
	}

	resp, err := f.client.Search(ctx, url, bearer, payload)
	if err != nil {
		f.log.Warn("failed to fetch databases",
			slog.String("connection", conn.QualifiedName),
			slog.String("url", url),
			slog.String("error", err.Error()))
		return nil
	}

	entities := entitiesOf(resp)
	f.log.Info("retrieved databases",
		slog.String("connection", conn.QualifiedName),
		slog.Int("count", len(entities)))

	records := make([]models.DatabaseRecord, 0, len(entities))
	for _, entity := range entities {
		record, err := MapDatabase(entity, conn.QualifiedName)
		if err != nil {
			f.log.Warn("skipping database entity",
				slog.String("connection", conn.QualifiedName),
				slog.String("error", err.Error()))
			continue
		}
		records = append(records, record)
	}
	return records
}

// entitiesOf extracts the entities list from a search response. A response
// without an entities key means zero results.
func entitiesOf(resp map[string]any) []any {
	if entities, ok := resp["entities"].([]any); ok {
		return entities
	}
	return nil
}
