// Package config manages workbench configuration and the .databench
// workspace directory. It handles loading, saving, and initializing a
// workspace rooted in the current directory tree.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

const (
	WorkspaceDir = ".databench"
	ConfigFile   = "config"
	DatabaseFile = "records.db"
	ExportsDir   = "exports"
)

// Config represents the workspace configuration
type Config struct {
	Name         string `toml:"name"`
	ProjectFile  string `toml:"project_file"`  // Project descriptor, relative to the workspace parent
	CSVDelimiter string `toml:"csv_delimiter"` // Delimiter used when exporting signal tables
	XUnit        string `toml:"x_unit"`        // Default abscissa unit for new signals
	YUnit        string `toml:"y_unit"`        // Default ordinate unit for new signals
	path         string // path to .databench directory
}

// FindRoot finds the .databench directory by walking up from the current
// directory
func FindRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		wsPath := filepath.Join(dir, WorkspaceDir)
		if info, err := os.Stat(wsPath); err == nil && info.IsDir() {
			return wsPath, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not a databench workspace (or any parent up to root)")
		}
		dir = parent
	}
}

// Load loads the configuration from the .databench directory
func Load() (*Config, error) {
	wsPath, err := FindRoot()
	if err != nil {
		return nil, err
	}

	configPath := filepath.Join(wsPath, ConfigFile)
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.path = wsPath
	if cfg.CSVDelimiter == "" {
		cfg.CSVDelimiter = ","
	}
	return &cfg, nil
}

// Save saves the configuration to disk
func (c *Config) Save() error {
	configPath := filepath.Join(c.path, ConfigFile)
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(configPath, data, 0644)
}

// WorkspacePath returns the path to the .databench directory
func (c *Config) WorkspacePath() string {
	return c.path
}

// DatabasePath returns the path to the record database
func (c *Config) DatabasePath() string {
	return filepath.Join(c.path, DatabaseFile)
}

// ProjectPath returns the absolute path of the linked project descriptor,
// or "" when the workspace has none.
func (c *Config) ProjectPath() string {
	if c.ProjectFile == "" {
		return ""
	}
	if filepath.IsAbs(c.ProjectFile) {
		return c.ProjectFile
	}
	return filepath.Join(filepath.Dir(c.path), c.ProjectFile)
}

// ExportsPath returns the path to the exports directory
func (c *Config) ExportsPath() string {
	return filepath.Join(c.path, ExportsDir)
}

// Initialize creates a new .databench directory with initial configuration
func Initialize(name string) (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	wsPath := filepath.Join(cwd, WorkspaceDir)

	// Check if already initialized
	if _, err := os.Stat(wsPath); err == nil {
		return nil, fmt.Errorf("databench workspace already exists")
	}

	// Create directories
	if err := os.MkdirAll(wsPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create .databench directory: %w", err)
	}

	exportsPath := filepath.Join(wsPath, ExportsDir)
	if err := os.MkdirAll(exportsPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create exports directory: %w", err)
	}

	if name == "" {
		name = filepath.Base(cwd)
	}
	cfg := &Config{
		Name:         name,
		CSVDelimiter: ",",
		path:         wsPath,
	}

	if err := cfg.Save(); err != nil {
		// Cleanup on failure
		os.RemoveAll(wsPath)
		return nil, err
	}

	return cfg, nil
}
