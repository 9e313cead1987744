package models

// ConnectionRecord is one flattened Connection entity from the search API.
// QualifiedName is the join key into DatabaseRecord and is treated as an
// opaque string throughout.
type ConnectionRecord struct {
	Name          string
	QualifiedName string
	ConnectorName string
	Category      string
	CreatedBy     string
	UpdatedBy     string
	CreateTime    string
	UpdateTime    string
}

// DatabaseRecord is one flattened Database entity, scoped to exactly one
// parent connection. ConnectionQualifiedName is stamped by the fetch step,
// never taken from upstream data.
type DatabaseRecord struct {
	ConnectionQualifiedName string
	TypeName                string
	QualifiedName           string
	Name                    string
	CreatedBy               string
	UpdatedBy               string
	CreateTime              string
	UpdateTime              string
}

// CombinedRow is one row of the joined connections/databases report.
// Tenant is empty in single-tenant runs.
type CombinedRow struct {
	Tenant         string
	ConnectorName  string
	ConnectionName string
	Category       string
	TypeName       string
	Name           string
}
