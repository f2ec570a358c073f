package cli

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/nullsql/nullsql/pkg/catalog"
	"github.com/nullsql/nullsql/pkg/dialect"
)

func newDescribeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "describe",
		Short: "Print the loaded catalog schema as a table",
		RunE: func(cmd *cobra.Command, args []string) error {
			if schemaFilePath == "" && dsnFlag == "" {
				return fmt.Errorf("describe requires --schema or --dsn")
			}
			log := logger(cmd.ErrOrStderr())

			d, err := dialect.Parse(dialectFlag)
			if err != nil {
				return err
			}

			cat, err := loadCatalog(cmd.Context(), d, log)
			if err != nil {
				return err
			}
			return printCatalog(cmd.OutOrStdout(), cat.Tables())
		},
	}
}

func printCatalog(out io.Writer, tables []*catalog.TableDescriptor) error {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"Table", "Column", "Nullable"})
	for _, tbl := range tables {
		for _, col := range tbl.Columns {
			t.AppendRow(table.Row{tbl.QualifiedName(), col.Name, col.Nullable})
		}
	}
	t.Render()
	return nil
}
