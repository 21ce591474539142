// Package main is the entry point for the nordsite CLI.
package main

import (
	"os"

	"github.com/Grainular-Nord/nord.dev/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
