package cli

import (
	"errors"
	"strings"

	"taskprogress-cli/internal/source"

	"github.com/spf13/cobra"
)

func newSnapshotCmd(app *App) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Copy the fetched groups into a SQLite file",
		Long: strings.TrimSpace(`
Fetch the progress data once and write it to a SQLite file that can later be
used as an offline --source (sqlite:<path> or a .db/.sqlite path). Local
toggles are never written.
`),
		Example: strings.TrimSpace(`
taskprogress snapshot --out ./progress.db
taskprogress --source ./progress.db render --all
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			out = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(out), "sqlite:"))
			if out == "" {
				return writeErr(cmd, errors.New("snapshot: missing --out"))
			}
			st, s, err := loadState(cmd, app, nil)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := source.WriteSQLite(commandContext(cmd), out, st.Groups()); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, snapshotOutput{Data: snapshotResult{
				Out:     out,
				Source:  s.Source,
				Groups:  st.Len(),
				Overall: st.Overall(),
			}})
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "SQLite file to write")
	return cmd
}
