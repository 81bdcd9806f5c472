package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"databench/internal/io"
	"databench/internal/model"
)

var addCmd = &cobra.Command{
	Use:   "add <file>...",
	Short: "Load data files into the workspace",
	Long: `Load one or more data files and add the resulting records to the
matching panel. Delimited-text and binary-array files become signal
records; image files become image records, one per frame.`,
	Args: cobra.MinimumNArgs(1),
	Run:  runAdd,
}

func runAdd(cmd *cobra.Command, args []string) {
	c := initContext()
	defer c.Close()

	green := color.New(color.FgGreen)
	added := 0
	for _, path := range args {
		records, err := io.Open(path)
		if err != nil {
			exitError("%v", err)
		}
		for _, rec := range records {
			switch rec.(type) {
			case *model.Signal:
				c.Signals.Add(rec)
			case *model.Image:
				c.Images.Add(rec)
			}
			green.Printf("added ")
			fmt.Println(rec.Title())
			added++
		}
	}

	c.persist()
	fmt.Printf("%d record(s) added\n", added)
}
