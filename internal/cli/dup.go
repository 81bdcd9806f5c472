package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var dupCmd = &cobra.Command{
	Use:   "dup <panel> <row>...",
	Short: "Duplicate records in a panel",
	Long: `Clone the given rows of a panel. Each clone keeps the title, data
and metadata of its source and is inserted right after it.`,
	Args: cobra.MinimumNArgs(2),
	Run:  runDup,
}

func runDup(cmd *cobra.Command, args []string) {
	c := initContext()
	defer c.Close()

	ctrl := c.panel(args[0])
	rows := parseRows(args[1:])
	if err := ctrl.Duplicate(rows); err != nil {
		exitError("%v", err)
	}
	c.persist()
	fmt.Printf("%d record(s) duplicated\n", len(rows))
}
