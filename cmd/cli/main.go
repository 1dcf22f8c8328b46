// Package main is the entry point for the distconv CLI.
package main

import (
	"os"

	"distconv/cmd/cli/cmd"
	"distconv/internal/logging"
)

func main() {
	err := cmd.Execute()
	logging.Sync()
	if err != nil {
		os.Exit(1)
	}
}
