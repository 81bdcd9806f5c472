// Package cli implements the command-line interface for databench.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"databench/internal/collection"
	"databench/internal/config"
	"databench/internal/container"
	"databench/internal/project"
)

// cmdContext holds common resources for CLI commands
type cmdContext struct {
	Config  *config.Config
	DB      *container.File
	Signals *collection.Controller
	Images  *collection.Controller
}

// Close releases resources held by cmdContext
func (c *cmdContext) Close() {
	if c.DB != nil {
		c.DB.Close()
	}
}

// resolveDatabase returns the record database path, honoring the linked
// project descriptor when the workspace has one: the project's container
// path wins, and its settings override the workspace defaults.
func resolveDatabase(cfg *config.Config) (string, error) {
	projPath := cfg.ProjectPath()
	if projPath == "" {
		return cfg.DatabasePath(), nil
	}
	proj, err := project.Load(projPath)
	if err != nil {
		return "", fmt.Errorf("failed to load project %s: %w", projPath, err)
	}
	if d := proj.Settings.CSVDelimiter; d != "" {
		cfg.CSVDelimiter = d
	}
	return proj.GetContainerPath(projPath), nil
}

// initContext loads the workspace configuration, opens the record
// database and restores both panels from it
func initContext() *cmdContext {
	cfg, err := config.Load()
	if err != nil {
		exitError("%v", err)
	}

	dbPath, err := resolveDatabase(cfg)
	if err != nil {
		exitError("%v", err)
	}

	db, err := container.Open(dbPath)
	if err != nil {
		exitError("failed to open record database: %v", err)
	}

	ctx := &cmdContext{
		Config:  cfg,
		DB:      db,
		Signals: collection.NewController(collection.Signals()),
		Images:  collection.NewController(collection.Images()),
	}

	err = db.View(func(r container.Reader) error {
		if err := ctx.Signals.Deserialize(r); err != nil {
			return err
		}
		return ctx.Images.Deserialize(r)
	})
	if err != nil {
		ctx.Close()
		exitError("failed to restore records: %v", err)
	}

	return ctx
}

// persist writes both panels back to the record database
func (c *cmdContext) persist() {
	for _, ctrl := range []*collection.Controller{c.Signals, c.Images} {
		if err := c.DB.DeleteGroup(ctrl.Variant().GroupName); err != nil {
			exitError("failed to clear record database: %v", err)
		}
	}
	err := c.DB.Update(func(w container.Writer) error {
		if err := c.Signals.Serialize(w); err != nil {
			return err
		}
		return c.Images.Serialize(w)
	})
	if err != nil {
		exitError("failed to save records: %v", err)
	}
}

// panel resolves a panel selector ("s" or "i") to its controller
func (c *cmdContext) panel(selector string) *collection.Controller {
	switch selector {
	case "s", "signal", "signals":
		return c.Signals
	case "i", "image", "images":
		return c.Images
	}
	exitError("unknown panel %q (use \"s\" or \"i\")", selector)
	return nil
}

var rootCmd = &cobra.Command{
	Use:   "databench",
	Short: "Scientific data workbench",
	Long: `Databench manages collections of signal and image records: load them
from data files, annotate them with metadata and regions of interest,
and keep everything in a single workspace database.`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(lsCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(dupCmd)
	rootCmd.AddCommand(metaCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(versionCmd)
}

// exitError prints an error and exits
func exitError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}
