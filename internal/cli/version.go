package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"databench/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the databench version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("databench", version.Full())
	},
}
