package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigFileYAML is the canonical config filename.
	DefaultConfigFileYAML = ".metapull.yaml"
	// DefaultConfigFileYML is a compatible alternate config filename.
	DefaultConfigFileYML = ".metapull.yml"
)

// FileConfig represents values loaded from a .metapull.yaml file. Duration
// fields are kept as strings so "30d"-style values can be parsed with
// ParseDuration.
type FileConfig struct {
	BaseURL         string                    `yaml:"base_url"`
	BaseURLTemplate string                    `yaml:"base_url_template"`
	SearchPath      string                    `yaml:"search_path"`
	AuthToken       string                    `yaml:"auth_token"`
	Timeout         string                    `yaml:"timeout"`
	RateLimit       *int                      `yaml:"rate_limit"`
	OutputDir       string                    `yaml:"output_dir"`
	LogDir          string                    `yaml:"log_dir"`
	Retention       string                    `yaml:"retention"`
	ConnectionsQ    map[string]any            `yaml:"connections_query"`
	DatabaseQueries map[string]map[string]any `yaml:"database_queries"`
	Tenants         []Tenant                  `yaml:"tenants"`
}

// Normalize trims string fields and drops tenants without a name.
func (fc *FileConfig) Normalize() {
	if fc == nil {
		return
	}
	fc.BaseURL = strings.TrimSpace(fc.BaseURL)
	fc.BaseURLTemplate = strings.TrimSpace(fc.BaseURLTemplate)
	fc.SearchPath = strings.TrimSpace(fc.SearchPath)
	fc.AuthToken = strings.TrimSpace(fc.AuthToken)
	fc.Timeout = strings.TrimSpace(fc.Timeout)
	fc.OutputDir = strings.TrimSpace(fc.OutputDir)
	fc.LogDir = strings.TrimSpace(fc.LogDir)
	fc.Retention = strings.TrimSpace(fc.Retention)

	tenants := make([]Tenant, 0, len(fc.Tenants))
	for _, t := range fc.Tenants {
		t.Name = strings.TrimSpace(t.Name)
		if t.Name == "" {
			continue
		}
		t.BaseURL = strings.TrimSpace(t.BaseURL)
		t.AuthToken = strings.TrimSpace(t.AuthToken)
		tenants = append(tenants, t)
	}
	fc.Tenants = tenants
}

// Build merges file values over defaults and parses duration fields.
func (fc *FileConfig) Build() (*Config, error) {
	cfg := DefaultConfig()
	if fc == nil {
		return cfg, nil
	}

	if fc.BaseURL != "" {
		cfg.BaseURL = fc.BaseURL
	}
	if fc.BaseURLTemplate != "" {
		cfg.BaseURLTemplate = fc.BaseURLTemplate
	}
	if fc.SearchPath != "" {
		cfg.SearchPath = fc.SearchPath
	}
	if fc.AuthToken != "" {
		cfg.AuthToken = fc.AuthToken
	}
	if fc.RateLimit != nil && *fc.RateLimit > 0 {
		cfg.RateLimit = *fc.RateLimit
	}
	if fc.OutputDir != "" {
		cfg.OutputDir = fc.OutputDir
	}
	if fc.LogDir != "" {
		cfg.LogDir = fc.LogDir
	}
	if fc.Timeout != "" {
		timeout, err := ParseDuration(fc.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout value %q: %w", fc.Timeout, err)
		}
		cfg.Timeout = timeout
	}
	if fc.Retention != "" {
		retention, err := ParseDuration(fc.Retention)
		if err != nil {
			return nil, fmt.Errorf("invalid retention value %q: %w", fc.Retention, err)
		}
		cfg.Retention = retention
	}

	cfg.ConnectionsQuery = fc.ConnectionsQ
	cfg.DatabaseQueries = lowerKeys(fc.DatabaseQueries)
	cfg.Tenants = fc.Tenants
	return cfg, nil
}

// AutoLoad discovers and loads the first available config file, returning
// defaults when none exists.
func AutoLoad() (*Config, string, error) {
	candidates := []string{
		DefaultConfigFileYAML,
		DefaultConfigFileYML,
	}

	if homeDir, err := os.UserHomeDir(); err == nil && strings.TrimSpace(homeDir) != "" {
		candidates = append(candidates,
			filepath.Join(homeDir, DefaultConfigFileYAML),
			filepath.Join(homeDir, DefaultConfigFileYML),
		)
	}

	for _, path := range candidates {
		info, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, "", fmt.Errorf("failed to access config file %q: %w", path, err)
		}
		if info.IsDir() {
			return nil, "", fmt.Errorf("config path %q is a directory, expected a file", path)
		}

		cfg, err := Load(path)
		if err != nil {
			return nil, "", err
		}
		return cfg, path, nil
	}

	return DefaultConfig(), "", nil
}

// Load reads and builds configuration from a specific YAML file path.
func Load(path string) (*Config, error) {
	filename := strings.TrimSpace(path)
	if filename == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", filename, err)
	}

	fc := &FileConfig{}
	if err := yaml.Unmarshal(data, fc); err != nil {
		return nil, fmt.Errorf("failed to parse config file %q: %w", filename, err)
	}

	fc.Normalize()
	return fc.Build()
}

func lowerKeys(queries map[string]map[string]any) map[string]map[string]any {
	if len(queries) == 0 {
		return queries
	}
	lowered := make(map[string]map[string]any, len(queries))
	for name, tmpl := range queries {
		lowered[strings.ToLower(strings.TrimSpace(name))] = tmpl
	}
	return lowered
}
