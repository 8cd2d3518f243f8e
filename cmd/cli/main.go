// Package main is the entry point for the budget-brain CLI.
package main

import (
	"os"

	"budget-brain/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
