package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nullsql/nullsql/pkg/dialect"
	"github.com/nullsql/nullsql/pkg/nullable"
)

func newInferCommand() *cobra.Command {
	var columns []string

	cmd := &cobra.Command{
		Use:   "infer [query]",
		Short: "Infer per-column nullability for a SQL statement",
		Long: `Infer reads a query — from the first argument, or from stdin if no
argument is given — and prints, for each requested column, whether it may
be NULL in at least one produced row.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger(cmd.ErrOrStderr())

			query, err := readQuery(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			d, err := dialect.Parse(dialectFlag)
			if err != nil {
				return err
			}

			cat, err := loadCatalog(cmd.Context(), d, log)
			if err != nil {
				return err
			}

			a, err := nullable.New(query, cat, d)
			if err != nil {
				log.Error("parse failed", "error", err)
				return err
			}

			got, err := a.Infer(columns)
			if err != nil {
				log.Error("inference failed", "error", err)
				return err
			}

			return printInferResult(cmd.OutOrStdout(), columns, got)
		},
	}

	cmd.Flags().StringSliceVar(&columns, "columns", nil, "requested output column names, in order")
	return cmd
}

func readQuery(in io.Reader, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("reading query from stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func printInferResult(out io.Writer, columns []string, got []bool) error {
	for i, nullableResult := range got {
		name := fmt.Sprintf("column%d", i+1)
		if i < len(columns) {
			name = columns[i]
		}
		if _, err := fmt.Fprintf(out, "%s\tnullable=%v\n", name, nullableResult); err != nil {
			return err
		}
	}
	return nil
}
