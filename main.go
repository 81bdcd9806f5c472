// Package main provides the entry point for the databench command.
package main

import (
	"os"

	"databench/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
