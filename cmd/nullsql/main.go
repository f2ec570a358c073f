// Package main provides the CLI entry point for nullsql.
package main

import (
	"os"

	"github.com/nullsql/nullsql/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
