package tui

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"taskprogress-cli/internal/completion"
	"taskprogress-cli/internal/model"
	"taskprogress-cli/internal/store"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

const widgetTitle = "Grouped Tasks"

// renderProgressBar draws a filled bar with the percentage centered in it.
func renderProgressBar(pct, width int) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	inner := []rune(strconv.Itoa(pct) + "%")
	minW := len(inner) + 2
	if width < minW {
		width = minW
	}

	filledN := int(math.Round(float64(pct) / 100 * float64(width)))
	if filledN > width {
		filledN = width
	}
	start := (width - len(inner)) / 2

	var b strings.Builder
	for i := 0; i < width; i++ {
		bg := colorProgressEmptyBg
		fg := colorProgressEmptyFg
		if i < filledN {
			bg = colorProgressFillBg
			fg = colorProgressFillFg
		}
		ch := " "
		if i >= start && i < start+len(inner) {
			ch = string(inner[i-start])
		}
		b.WriteString(lipgloss.NewStyle().Background(bg).Foreground(fg).Render(ch))
	}
	return b.String()
}

func renderHeader(st *store.State, width int) string {
	title := widgetTitle
	if sym := strings.TrimSpace(st.Symbol); sym != "" {
		title += " " + glyphBullet() + " " + sym
	}
	barW := width - 2
	if barW > 60 {
		barW = 60
	}
	return styleTitle().Render(title) + "\n" + renderProgressBar(st.Overall(), barW)
}

func renderGroupHeading(g model.Group, expanded, selected bool, width int) string {
	twisty := glyphTwistyCollapsed()
	action := "Show"
	if expanded {
		twisty = glyphTwistyExpanded()
		action = "Hide"
	}
	icon := glyphGroupOpen()
	name := g.Name
	if g.Completed {
		icon = styleDone().Render(glyphGroupDone())
		name = styleDone().Render(name)
	}
	left := fmt.Sprintf("%s %s %s", twisty, icon, name)
	right := fmt.Sprintf("%d/%d  %3d%%  %s", g.CheckedCount(), len(g.Tasks), completion.GroupPercent(g), action)
	return layoutRow(left, styleMuted().Render(right), selected, width)
}

func renderTaskRow(t model.Task, selected bool, width int) string {
	box := glyphCheckboxOff()
	if t.Checked {
		box = styleDone().Render(glyphCheckboxOn())
	}
	label := strings.TrimSpace(t.Name)
	desc := firstLine(t.Description)
	if label == "" {
		label, desc = desc, ""
	}
	left := fmt.Sprintf("    %s %s", box, label)
	if desc != "" {
		left += "  " + styleMuted().Render(desc)
	}
	right := styleMuted().Render(formatWeight(t.Value))
	return layoutRow(left, right, selected, width)
}

// layoutRow right-aligns right against width, truncating left to fit.
func layoutRow(left, right string, selected bool, width int) string {
	if width <= 0 {
		width = 80
	}
	rw := lipgloss.Width(right)
	maxLeft := width - rw - 2
	if maxLeft < 8 {
		maxLeft = 8
	}
	left = xansi.Truncate(left, maxLeft, glyphEllipsis())
	gap := width - lipgloss.Width(left) - rw
	if gap < 1 {
		gap = 1
	}
	line := left + strings.Repeat(" ", gap) + right
	if selected {
		return styleSelected().Render(xansi.Strip(line))
	}
	return line
}

func formatWeight(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 0, 64) + " pts"
	}
	return strconv.FormatFloat(v, 'f', -1, 64) + " pts"
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}

func renderEmptyState(st *store.State, width int) string {
	msg := styleMuted().Render("No tasks to show.")
	if err := st.Err(); err != nil {
		msg += "\n" + styleError().Render(xansi.Truncate("Could not load progress data: "+err.Error(), width, glyphEllipsis()))
	}
	return msg
}

// rowKind distinguishes group headings from task rows in the flattened list.
type rowKind int

const (
	rowGroup rowKind = iota
	rowTask
)

type row struct {
	kind  rowKind
	group int
	task  int
}

// flattenRows lists group headings, each followed by its tasks when expanded.
func flattenRows(st *store.State) []row {
	var out []row
	for gi := 0; gi < st.Len(); gi++ {
		g, _ := st.GroupAt(gi)
		out = append(out, row{kind: rowGroup, group: gi, task: -1})
		if !st.Expanded(g.Name) {
			continue
		}
		for ti := range g.Tasks {
			out = append(out, row{kind: rowTask, group: gi, task: ti})
		}
	}
	return out
}

func renderRows(st *store.State, rows []row, cursor, width int) []string {
	lines := make([]string, 0, len(rows))
	for i, r := range rows {
		g, ok := st.GroupAt(r.group)
		if !ok {
			continue
		}
		selected := i == cursor
		switch r.kind {
		case rowGroup:
			lines = append(lines, renderGroupHeading(g, st.Expanded(g.Name), selected, width))
		case rowTask:
			lines = append(lines, renderTaskRow(g.Tasks[r.task], selected, width))
		}
	}
	return lines
}

// RenderStatic renders the widget without interaction: header, then every
// group with its tasks when the group is expanded in st.
func RenderStatic(st *store.State, width int) string {
	if width <= 0 {
		width = 80
	}
	if st.Loading() {
		return "Loading..."
	}
	parts := []string{renderHeader(st, width), styleMuted().Render(strings.Repeat(glyphHRule(), width))}
	if st.Empty() {
		parts = append(parts, renderEmptyState(st, width))
		return strings.Join(parts, "\n")
	}
	parts = append(parts, renderRows(st, flattenRows(st), -1, width)...)
	return strings.Join(parts, "\n")
}
