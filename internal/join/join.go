// Package join flattens a tenant's connection and database records into a
// one-row-per-(connection, database) report via a left join on the
// connection qualified name.
package join

import (
	"strings"

	"github.com/akorchak/metapull/internal/models"
)

// categories maps connector names to a display category for the combined
// report. Connectors absent from the table yield an empty category; the
// label is a display convenience, not upstream data.
var categories = map[string]string{
	"databricks": "lake",
	"s3":         "lake",
	"snowflake":  "warehouse",
	"bigquery":   "warehouse",
	"redshift":   "warehouse",
	"synapse":    "warehouse",
	"postgres":   "database",
	"mysql":      "database",
	"mssql":      "database",
	"oracle":     "database",
	"tableau":    "bi",
	"powerbi":    "bi",
	"looker":     "bi",
	"glue":       "catalog",
}

// CategoryFor returns the display category for a connector name, or the
// empty string for unknown connectors.
func CategoryFor(connector string) string {
	return categories[strings.ToLower(strings.TrimSpace(connector))]
}

// Combine left-joins connections to databases keyed by qualified name.
// Every connection appears at least once: connections with matching
// databases emit one row per database in input order, connections without
// any emit a single row with blank type and name. Tenant tags every row and
// may be empty in single-tenant runs.
func Combine(tenant string, connections []models.ConnectionRecord, databases []models.DatabaseRecord) []models.CombinedRow {
	index := make(map[string][]models.DatabaseRecord, len(connections))
	for _, db := range databases {
		index[db.ConnectionQualifiedName] = append(index[db.ConnectionQualifiedName], db)
	}

	rows := make([]models.CombinedRow, 0, len(connections))
	for _, conn := range connections {
		matches := index[conn.QualifiedName]
		if len(matches) == 0 {
			rows = append(rows, row(tenant, conn, models.DatabaseRecord{}))
			continue
		}
		for _, db := range matches {
			rows = append(rows, row(tenant, conn, db))
		}
	}
	return rows
}

func row(tenant string, conn models.ConnectionRecord, db models.DatabaseRecord) models.CombinedRow {
	return models.CombinedRow{
		Tenant:         tenant,
		ConnectorName:  conn.ConnectorName,
		ConnectionName: conn.Name,
		Category:       CategoryFor(conn.ConnectorName),
		TypeName:       db.TypeName,
		Name:           db.Name,
	}
}
