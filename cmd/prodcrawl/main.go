// Package main is the entry point for the prodcrawl CLI.
package main

import (
	"os"

	"github.com/jmylchreest/prodcrawl/cmd/prodcrawl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
