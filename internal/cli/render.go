package cli

import (
	"fmt"

	"taskprogress-cli/internal/tui"

	"github.com/spf13/cobra"
)

func newRenderCmd(app *App) *cobra.Command {
	var toggles []string
	var expand []string
	var all bool
	var width int

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the widget once, without interaction",
		Long: `Render the widget as it would appear in the terminal UI.

A failed fetch renders the empty state, the same way the interactive widget does.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, s, err := loadState(cmd, app, nil)
			if st == nil {
				return writeErr(cmd, err)
			}
			if err := applyToggles(st, toggles); err != nil {
				return writeErr(cmd, err)
			}
			if all {
				st.ExpandAll()
			}
			for _, name := range expand {
				if _, ok := st.Group(name); !ok {
					return writeErr(cmd, fmt.Errorf("--expand %q: unknown group", name))
				}
				if !st.Expanded(name) {
					st.ToggleGroupExpansion(name)
				}
			}

			tui.ApplyPreferences(s.Theme, s.Glyphs)
			tui.ApplyStaticColorProfile()
			_, werr := fmt.Fprintln(cmd.OutOrStdout(), tui.RenderStatic(st, width))
			return werr
		},
	}
	cmd.Flags().StringArrayVar(&toggles, "toggle", nil, "Toggle a task before rendering: <group>:<task-index> (repeatable)")
	cmd.Flags().StringArrayVar(&expand, "expand", nil, "Expand a group by name (repeatable)")
	cmd.Flags().BoolVar(&all, "all", false, "Expand every group")
	cmd.Flags().IntVar(&width, "width", 80, "Render width in columns")
	return cmd
}
