package export

import (
	"path/filepath"

	"github.com/akorchak/metapull/internal/models"
)

// TenantWriter writes per-tenant artifacts into a single output directory,
// prefixing filenames with the tenant name.
type TenantWriter struct {
	Dir string
}

// ExportTenant writes one tenant's connections and databases artifacts.
func (w TenantWriter) ExportTenant(tenant string, connections []models.ConnectionRecord, databases []models.DatabaseRecord) error {
	if err := WriteConnections(filepath.Join(w.Dir, tenant+"_connections.csv"), connections); err != nil {
		return err
	}
	return WriteDatabases(filepath.Join(w.Dir, tenant+"_databases.csv"), databases)
}
