package cli

import (
	"fmt"

	"taskprogress-cli/internal/completion"
	"taskprogress-cli/internal/store"

	"github.com/spf13/cobra"
)

type groupStatus struct {
	Name          string  `json:"name"`
	Completed     bool    `json:"completed"`
	Percent       int     `json:"percent"`
	Done          int     `json:"done"`
	Tasks         int     `json:"tasks"`
	Weight        float64 `json:"weight"`
	CheckedWeight float64 `json:"checkedWeight"`
}

type statusReport struct {
	Symbol  string        `json:"symbol,omitempty"`
	Overall int           `json:"overall"`
	Groups  []groupStatus `json:"groups"`
}

type statusOutput struct {
	Data statusReport   `json:"data"`
	Meta map[string]any `json:"meta,omitempty"`
}

func (o statusOutput) Header() []any {
	return []any{"GROUP", "DONE", "PERCENT", "COMPLETED"}
}

func (o statusOutput) Rows() [][]any {
	rows := make([][]any, 0, len(o.Data.Groups)+1)
	for _, g := range o.Data.Groups {
		done := "no"
		if g.Completed {
			done = "yes"
		}
		rows = append(rows, []any{g.Name, fmt.Sprintf("%d/%d", g.Done, g.Tasks), fmt.Sprintf("%d%%", g.Percent), done})
	}
	rows = append(rows, []any{"OVERALL", "", fmt.Sprintf("%d%%", o.Data.Overall), ""})
	return rows
}

func newStatusReport(st *store.State) statusReport {
	r := statusReport{Symbol: st.Symbol, Overall: st.Overall(), Groups: []groupStatus{}}
	for _, g := range st.Groups() {
		r.Groups = append(r.Groups, groupStatus{
			Name:          g.Name,
			Completed:     g.Completed,
			Percent:       completion.GroupPercent(g),
			Done:          g.CheckedCount(),
			Tasks:         len(g.Tasks),
			Weight:        g.Weight(),
			CheckedWeight: g.CheckedWeight(),
		})
	}
	return r
}

func newStatusCmd(app *App) *cobra.Command {
	var toggles []string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show overall and per-group completion",
		Long: `Fetch the progress data once and report the weighted completion.

--toggle flips a task locally before the report is computed. Toggles are never
written back to the source.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, s, err := loadState(cmd, app, nil)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := applyToggles(st, toggles); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, statusOutput{
				Data: newStatusReport(st),
				Meta: map[string]any{
					"source":  s.Source,
					"toggles": len(toggles),
				},
			})
		},
	}
	cmd.Flags().StringArrayVar(&toggles, "toggle", nil, "Toggle a task before reporting: <group>:<task-index> (repeatable)")
	return cmd
}
