// Package main provides the aifgen CLI.
package main

import (
	"os"

	"github.com/aifstack-labs/aifgen/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
