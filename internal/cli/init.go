package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"databench/internal/config"
	"databench/internal/project"
)

var initCmd = &cobra.Command{
	Use:   "init [name]",
	Short: "Initialize a new databench workspace",
	Long: `Initialize a new databench workspace in the current directory.
This creates a .databench directory holding the configuration and the
record database, plus a .dbproj project descriptor pointing at the
database.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runInit,
}

func runInit(cmd *cobra.Command, args []string) {
	// Check if already initialized
	if _, err := config.FindRoot(); err == nil {
		exitError("databench workspace already exists")
	}

	name := ""
	if len(args) > 0 {
		name = args[0]
	}

	cfg, err := config.Initialize(name)
	if err != nil {
		exitError("failed to initialize workspace: %v", err)
	}

	proj := project.New(cfg.Name)
	proj.Settings.CSVDelimiter = cfg.CSVDelimiter
	projPath := filepath.Join(filepath.Dir(cfg.WorkspacePath()), cfg.Name+".dbproj")
	proj.SetContainer(projPath, cfg.DatabasePath())
	if err := proj.Save(projPath); err != nil {
		exitError("failed to write project file: %v", err)
	}

	cfg.ProjectFile = filepath.Base(projPath)
	if err := cfg.Save(); err != nil {
		exitError("failed to link project file: %v", err)
	}

	fmt.Printf("Initialized workspace %q in %s\n", cfg.Name, cfg.WorkspacePath())
	fmt.Printf("Project file: %s\n", projPath)
}
