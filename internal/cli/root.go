// Package cli provides the command-line interface for nullsql.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	schemaFilePath string
	dsnFlag        string
	dbSchemaFlag   string
	dialectFlag    string
	verbose        bool
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "nullsql",
		Short: "Static nullability analysis for SQL statements",
		Long: `nullsql infers, for each projected column of a SQL statement, whether it
may be NULL in at least one produced row — without executing the query or
touching a database.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&schemaFilePath, "schema", "", "path to a YAML catalog schema file")
	rootCmd.PersistentFlags().StringVar(&dsnFlag, "dsn", "", "database/sql data source name to introspect the catalog from, instead of --schema")
	rootCmd.PersistentFlags().StringVar(&dbSchemaFlag, "db-schema", "", "schema name to introspect when using --dsn (default: public)")
	rootCmd.PersistentFlags().StringVar(&dialectFlag, "dialect", "postgres", "SQL dialect (postgres|sqlite)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose diagnostic logging")

	rootCmd.AddCommand(newInferCommand())
	rootCmd.AddCommand(newDescribeCommand())
	rootCmd.AddCommand(newExploreCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

func logger(out io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))
}
