package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nullsql/nullsql/internal/explorer"
	"github.com/nullsql/nullsql/pkg/dialect"
)

func newExploreCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "explore",
		Short: "Interactively try queries against the loaded catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger(cmd.ErrOrStderr())

			d, err := dialect.Parse(dialectFlag)
			if err != nil {
				return err
			}

			cat, err := loadCatalog(cmd.Context(), d, log)
			if err != nil {
				return err
			}

			_, err = tea.NewProgram(explorer.New(cat, d), tea.WithAltScreen()).Run()
			return err
		},
	}
}
