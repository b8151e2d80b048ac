package cli

import (
	"fmt"

	"taskprogress-cli/internal/model"

	"github.com/spf13/cobra"
)

type groupsOutput struct {
	Data []model.Group `json:"data"`
}

func (o groupsOutput) Header() []any {
	return []any{"GROUP", "#", "TASK", "CHECKED", "VALUE"}
}

func (o groupsOutput) Rows() [][]any {
	var rows [][]any
	for _, g := range o.Data {
		if len(g.Tasks) == 0 {
			rows = append(rows, []any{g.Name, "", "", "", ""})
			continue
		}
		for i, t := range g.Tasks {
			checked := ""
			if t.Checked {
				checked = "x"
			}
			rows = append(rows, []any{g.Name, i, t.Name, checked, fmt.Sprintf("%g", t.Value)})
		}
	}
	return rows
}

func newGroupsCmd(app *App) *cobra.Command {
	var toggles []string

	cmd := &cobra.Command{
		Use:   "groups",
		Short: "List task groups and their tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _, err := loadState(cmd, app, nil)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := applyToggles(st, toggles); err != nil {
				return writeErr(cmd, err)
			}
			groups := st.Groups()
			if groups == nil {
				groups = []model.Group{}
			}
			return writeOut(cmd, app, groupsOutput{Data: groups})
		},
	}
	cmd.Flags().StringArrayVar(&toggles, "toggle", nil, "Toggle a task before listing: <group>:<task-index> (repeatable)")
	return cmd
}
