// Package main is the entry point for the building-cost CLI.
package main

import (
	"os"

	"building-cost/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
