package config

import (
	"errors"
	"os"
	"strings"
	"time"
)

// Placeholder is the reserved token inside a databases query template that
// gets replaced with a connection's qualified name before the search call.
const Placeholder = "PLACEHOLDER_TO_BE_REPLACED"

// Environment variables consulted for credentials. Tenant tokens are looked
// up as EnvTenantTokenPrefix plus the upper-cased tenant name with dashes
// mapped to underscores (METAPULL_TOKEN_ACME_WEST for tenant "acme-west").
const (
	EnvAuthToken         = "METAPULL_AUTH_TOKEN"
	EnvTenantTokenPrefix = "METAPULL_TOKEN_"
)

// ErrNoToken indicates that no usable credential was found anywhere.
var ErrNoToken = errors.New("no auth token configured")

// ErrNoBaseURL indicates that neither a base URL nor a URL template is set.
var ErrNoBaseURL = errors.New("no base url configured")

// Tenant is one independently-credentialed instance of the upstream service.
type Tenant struct {
	Name      string `yaml:"name"`
	BaseURL   string `yaml:"base_url"`
	AuthToken string `yaml:"auth_token"`
}

// Config holds all runtime configuration.
type Config struct {
	// Upstream settings
	BaseURL         string
	BaseURLTemplate string
	SearchPath      string
	AuthToken       string
	Timeout         time.Duration
	RateLimit       int

	// Query payloads. DatabaseQueries is keyed by lower-case connector
	// name with "default" as the fallback entry.
	ConnectionsQuery map[string]any
	DatabaseQueries  map[string]map[string]any

	// Multi-tenant settings
	Tenants []Tenant

	// Output settings
	OutputDir string
	LogDir    string
	Retention time.Duration

	// Operational flags
	Verbose bool
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		SearchPath: "/api/meta/search/indexsearch",
		Timeout:    30 * time.Second,
		RateLimit:  10,
		OutputDir:  "./out",
		LogDir:     "./logs",
		Retention:  30 * 24 * time.Hour,
	}
}

// Token resolves the single-tenant credential: environment first, then the
// config file value. Returns ErrNoToken when neither is set.
func (c *Config) Token() (string, error) {
	if token := strings.TrimSpace(os.Getenv(EnvAuthToken)); token != "" {
		return token, nil
	}
	if token := strings.TrimSpace(c.AuthToken); token != "" {
		return token, nil
	}
	return "", ErrNoToken
}

// TokenForTenant resolves a tenant credential: tenant environment variable
// first, then the tenant's config file value. Empty string when absent;
// the orchestrator skips such tenants.
func (c *Config) TokenForTenant(t Tenant) string {
	key := EnvTenantTokenPrefix + strings.ToUpper(strings.ReplaceAll(t.Name, "-", "_"))
	if token := strings.TrimSpace(os.Getenv(key)); token != "" {
		return token
	}
	return strings.TrimSpace(t.AuthToken)
}

// URLForTenant resolves a tenant's base URL: explicit per-tenant URL first,
// then the {tenant}-parameterized template.
func (c *Config) URLForTenant(t Tenant) (string, error) {
	if url := strings.TrimSpace(t.BaseURL); url != "" {
		return url, nil
	}
	if c.BaseURLTemplate != "" {
		return strings.ReplaceAll(c.BaseURLTemplate, "{tenant}", t.Name), nil
	}
	return "", ErrNoBaseURL
}

// SearchURL joins a base URL with the configured search path.
func (c *Config) SearchURL(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + c.SearchPath
}

// ConnectionsPayload returns the configured connections search payload, or
// the built-in default when the config file does not provide one.
func (c *Config) ConnectionsPayload() map[string]any {
	if len(c.ConnectionsQuery) > 0 {
		return c.ConnectionsQuery
	}
	return defaultConnectionsQuery()
}

// DatabaseQueryFor selects the databases query template for a connector.
// Unknown connector names fall back to the "default" entry, then to the
// built-in default. Selection never fails.
func (c *Config) DatabaseQueryFor(connector string) map[string]any {
	if tmpl, ok := c.DatabaseQueries[strings.ToLower(strings.TrimSpace(connector))]; ok && len(tmpl) > 0 {
		return tmpl
	}
	if tmpl, ok := c.DatabaseQueries["default"]; ok && len(tmpl) > 0 {
		return tmpl
	}
	return defaultDatabasesQuery()
}

// Bearer normalizes a token into an Authorization header value. Tokens that
// already carry the Bearer prefix are passed through unchanged.
func Bearer(token string) string {
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		return token
	}
	return "Bearer " + token
}
