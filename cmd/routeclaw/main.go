// Package main is the entry point for the routeclaw CLI.
package main

import (
	"os"

	"github.com/RouteClaw/RouteClaw/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
