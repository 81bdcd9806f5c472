package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var rmCmd = &cobra.Command{
	Use:   "rm <panel> [row]...",
	Short: "Remove records from a panel",
	Long: `Remove the given rows from a panel ("s" for signals, "i" for
images). With --all, empty the panel instead.`,
	Args: cobra.MinimumNArgs(1),
	Run:  runRm,
}

var rmAll bool

func init() {
	rmCmd.Flags().BoolVar(&rmAll, "all", false, "Remove every record in the panel")
}

func runRm(cmd *cobra.Command, args []string) {
	c := initContext()
	defer c.Close()

	ctrl := c.panel(args[0])
	if rmAll {
		n := ctrl.Len()
		ctrl.RemoveAll()
		c.persist()
		fmt.Printf("%d record(s) removed\n", n)
		return
	}

	rows := parseRows(args[1:])
	if len(rows) == 0 {
		exitError("no rows given (or use --all)")
	}
	ctrl.Remove(rows)
	c.persist()
	fmt.Printf("%d record(s) removed\n", len(rows))
}

// parseRows converts row arguments to indices
func parseRows(args []string) []int {
	rows := make([]int, 0, len(args))
	for _, arg := range args {
		row, err := strconv.Atoi(arg)
		if err != nil {
			exitError("invalid row %q", arg)
		}
		rows = append(rows, row)
	}
	return rows
}
