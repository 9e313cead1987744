package models

// TenantStatus is the terminal state of one tenant's extraction.
type TenantStatus string

const (
	StatusSuccess TenantStatus = "success"
	StatusNoData  TenantStatus = "no_data"
	StatusError   TenantStatus = "error"
)

// TenantResult records the outcome of processing a single tenant.
type TenantResult struct {
	Tenant      string
	Status      TenantStatus
	Error       string
	Connections int
	Databases   int
}

// Summary aggregates results across all tenants of one run.
// Connection and database totals count success tenants only.
type Summary struct {
	Results  []TenantResult
	Skipped  []string // tenants excluded up front for missing credentials
	Combined []CombinedRow

	TotalConnections int
	TotalDatabases   int
}

// CountByStatus returns how many tenants finished with the given status.
func (s *Summary) CountByStatus(status TenantStatus) int {
	n := 0
	for _, r := range s.Results {
		if r.Status == status {
			n++
		}
	}
	return n
}

// Succeeded reports whether at least one tenant finished successfully.
func (s *Summary) Succeeded() bool {
	return s.CountByStatus(StatusSuccess) > 0
}
