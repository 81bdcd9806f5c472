// Package project provides project file handling and persistence.
package project

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// File represents a databench project file (.dbproj).
type File struct {
	Version     int       `json:"version"`
	Name        string    `json:"name"`
	Created     time.Time `json:"created"`
	Modified    time.Time `json:"modified"`
	Description string    `json:"description,omitempty"`

	// Record container path (relative to project file)
	ContainerPath string `json:"container,omitempty"`

	// User settings
	Settings ProjectSettings `json:"settings,omitempty"`
}

// ProjectSettings holds user preferences for the project.
type ProjectSettings struct {
	CSVDelimiter string `json:"csv_delimiter,omitempty"`
	XUnit        string `json:"x_unit,omitempty"`
	YUnit        string `json:"y_unit,omitempty"`
}

// New creates a new project file with default settings.
func New(name string) *File {
	now := time.Now()
	return &File{
		Version:  1,
		Name:     name,
		Created:  now,
		Modified: now,
		Settings: ProjectSettings{
			CSVDelimiter: ",",
		},
	}
}

// Load loads a project from a .dbproj file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var proj File
	if err := json.Unmarshal(data, &proj); err != nil {
		return nil, err
	}

	return &proj, nil
}

// Save saves the project to a file.
func (p *File) Save(path string) error {
	p.Modified = time.Now()

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// SetContainer sets the record container path (relative to project).
func (p *File) SetContainer(projectPath, containerPath string) {
	rel, err := filepath.Rel(filepath.Dir(projectPath), containerPath)
	if err != nil {
		p.ContainerPath = containerPath
	} else {
		p.ContainerPath = rel
	}
	p.Modified = time.Now()
}

// GetContainerPath returns the absolute path to the record container.
func (p *File) GetContainerPath(projectPath string) string {
	if p.ContainerPath == "" {
		// Default: project_name.db
		base := projectPath[:len(projectPath)-len(filepath.Ext(projectPath))]
		return base + ".db"
	}
	if filepath.IsAbs(p.ContainerPath) {
		return p.ContainerPath
	}
	return filepath.Join(filepath.Dir(projectPath), p.ContainerPath)
}
