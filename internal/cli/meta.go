package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

var metaCmd = &cobra.Command{
	Use:   "meta",
	Short: "Inspect and transfer record metadata",
}

var metaExportCmd = &cobra.Command{
	Use:   "export <panel> <row> <file>",
	Short: "Write a record's metadata to a JSON file",
	Args:  cobra.ExactArgs(3),
	Run:   runMetaExport,
}

var metaImportCmd = &cobra.Command{
	Use:   "import <panel> <row> <file>",
	Short: "Replace a record's metadata from a JSON file",
	Args:  cobra.ExactArgs(3),
	Run:   runMetaImport,
}

var metaClearCmd = &cobra.Command{
	Use:   "clear <panel> <row>...",
	Short: "Delete the metadata of the given rows",
	Args:  cobra.MinimumNArgs(2),
	Run:   runMetaClear,
}

var metaShowCmd = &cobra.Command{
	Use:   "show <panel> <row>",
	Short: "Print a record's metadata",
	Args:  cobra.ExactArgs(2),
	Run:   runMetaShow,
}

func init() {
	metaCmd.AddCommand(metaExportCmd)
	metaCmd.AddCommand(metaImportCmd)
	metaCmd.AddCommand(metaClearCmd)
	metaCmd.AddCommand(metaShowCmd)
}

func runMetaExport(cmd *cobra.Command, args []string) {
	c := initContext()
	defer c.Close()

	ctrl := c.panel(args[0])
	row, err := strconv.Atoi(args[1])
	if err != nil || row < 0 || row >= ctrl.Len() {
		exitError("invalid row %q", args[1])
	}
	f, err := os.Create(args[2])
	if err != nil {
		exitError("failed to create %s: %v", args[2], err)
	}
	defer f.Close()
	if err := ctrl.ExportMetadataTo(row, f); err != nil {
		exitError("%v", err)
	}
	fmt.Printf("metadata written to %s\n", args[2])
}

func runMetaImport(cmd *cobra.Command, args []string) {
	c := initContext()
	defer c.Close()

	ctrl := c.panel(args[0])
	row, err := strconv.Atoi(args[1])
	if err != nil || row < 0 || row >= ctrl.Len() {
		exitError("invalid row %q", args[1])
	}
	f, err := os.Open(args[2])
	if err != nil {
		exitError("failed to open %s: %v", args[2], err)
	}
	defer f.Close()
	if err := ctrl.ImportMetadataFrom(row, f); err != nil {
		exitError("%v", err)
	}
	c.persist()
	fmt.Printf("metadata replaced from %s\n", args[2])
}

func runMetaClear(cmd *cobra.Command, args []string) {
	c := initContext()
	defer c.Close()

	ctrl := c.panel(args[0])
	rows := parseRows(args[1:])
	ctrl.DeleteMetadata(rows)
	c.persist()
	fmt.Printf("metadata cleared on %d record(s)\n", len(rows))
}

func runMetaShow(cmd *cobra.Command, args []string) {
	c := initContext()
	defer c.Close()

	ctrl := c.panel(args[0])
	row, err := strconv.Atoi(args[1])
	if err != nil || row < 0 || row >= ctrl.Len() {
		exitError("invalid row %q", args[1])
	}
	meta := ctrl.Record(row).Metadata()
	for _, key := range meta.SortedKeys() {
		fmt.Printf("%s = %v\n", key, meta[key])
	}
}
