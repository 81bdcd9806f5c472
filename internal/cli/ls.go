package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"databench/internal/collection"
)

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List the records in the workspace",
	Run:   runLs,
}

func runLs(cmd *cobra.Command, args []string) {
	c := initContext()
	defer c.Close()

	cyan := color.New(color.FgCyan)

	printPanel := func(name string, ctrl *collection.Controller) {
		cyan.Printf("%s (%d)\n", name, ctrl.Len())
		for _, entry := range ctrl.ListEntries() {
			fmt.Printf("  %s\n", entry)
		}
	}

	printPanel("Signals", c.Signals)
	printPanel("Images", c.Images)
}
