// Package export writes extraction artifacts as CSV files. Column order is
// a compatibility contract for downstream consumers.
package export

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/akorchak/metapull/internal/models"
)

// Column headers, in contract order.
var (
	connectionHeaders = []string{
		"connection_name", "connection_qualified_name", "connector_name",
		"category", "created_by", "updated_by", "create_time", "update_time",
	}
	databaseHeaders = []string{
		"connection_qualified_name", "type_name", "qualified_name", "name",
		"created_by", "updated_by", "create_time", "update_time",
	}
	combinedHeaders = []string{
		"connector_name", "connection_name", "category", "type_name", "name",
	}
)

// WriteConnections writes the connections artifact. An empty record set
// produces no file, only a warning.
func WriteConnections(path string, connections []models.ConnectionRecord) error {
	if len(connections) == 0 {
		slog.Warn("no connections data to export", slog.String("path", path))
		return nil
	}

	rows := make([][]string, 0, len(connections))
	for _, c := range connections {
		rows = append(rows, []string{
			c.Name, c.QualifiedName, c.ConnectorName, c.Category,
			c.CreatedBy, c.UpdatedBy, c.CreateTime, c.UpdateTime,
		})
	}
	return writeCSV(path, connectionHeaders, rows)
}

// WriteDatabases writes the databases artifact. An empty record set
// produces no file, only a warning.
func WriteDatabases(path string, databases []models.DatabaseRecord) error {
	if len(databases) == 0 {
		slog.Warn("no databases data to export", slog.String("path", path))
		return nil
	}

	rows := make([][]string, 0, len(databases))
	for _, d := range databases {
		rows = append(rows, []string{
			d.ConnectionQualifiedName, d.TypeName, d.QualifiedName, d.Name,
			d.CreatedBy, d.UpdatedBy, d.CreateTime, d.UpdateTime,
		})
	}
	return writeCSV(path, databaseHeaders, rows)
}

// WriteCombined writes the joined report. withTenant prepends a subdomain
// column for multi-tenant runs.
func WriteCombined(path string, combined []models.CombinedRow, withTenant bool) error {
	if len(combined) == 0 {
		slog.Warn("no combined data to export", slog.String("path", path))
		return nil
	}

	headers := combinedHeaders
	if withTenant {
		headers = append([]string{"subdomain"}, combinedHeaders...)
	}

	rows := make([][]string, 0, len(combined))
	for _, r := range combined {
		row := []string{r.ConnectorName, r.ConnectionName, r.Category, r.TypeName, r.Name}
		if withTenant {
			row = append([]string{r.Tenant}, row...)
		}
		rows = append(rows, row)
	}
	return writeCSV(path, headers, rows)
}

func writeCSV(path string, headers []string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(headers); err != nil {
		return fmt.Errorf("failed to write header to %s: %w", path, err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write rows to %s: %w", path, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}

	slog.Info("artifact written", slog.String("path", path), slog.Int("rows", len(rows)))
	return nil
}
