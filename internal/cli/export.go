package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"databench/internal/io"
	"databench/internal/model"
)

var exportCmd = &cobra.Command{
	Use:   "export <panel> <row> <file>",
	Short: "Write a record to a data file",
	Long: `Write a record to a file in the format matching the extension.
Signals export to delimited text or a binary array; images export to
any writable image format that stores their pixel type.`,
	Args: cobra.ExactArgs(3),
	Run:  runExport,
}

func runExport(cmd *cobra.Command, args []string) {
	c := initContext()
	defer c.Close()

	ctrl := c.panel(args[0])
	row, err := strconv.Atoi(args[1])
	if err != nil || row < 0 || row >= ctrl.Len() {
		exitError("invalid row %q", args[1])
	}
	path := args[2]

	switch rec := ctrl.Record(row).(type) {
	case *model.Signal:
		err = io.SaveSignal(path, rec, c.Config.CSVDelimiter)
	case *model.Image:
		err = io.SaveImage(path, rec)
	}
	if err != nil {
		exitError("%v", err)
	}
	fmt.Printf("record written to %s\n", path)
}
