package tui

import (
	"context"
	"strings"

	"taskprogress-cli/internal/model"
	"taskprogress-cli/internal/source"
	"taskprogress-cli/internal/store"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

// loadedMsg carries the result of the one-time fetch.
type loadedMsg struct {
	groups []model.Group
	err    error
}

type appModel struct {
	ctx   context.Context
	st    *store.State
	fetch source.Fetcher
	log   *zap.Logger

	width  int
	height int

	cursor     int
	showDetail bool
	flash      string

	keys     keyMap
	help     help.Model
	spinner  spinner.Model
	viewport viewport.Model
}

func newAppModel(ctx context.Context, st *store.State, f source.Fetcher, log *zap.Logger) appModel {
	if log == nil {
		log = zap.NewNop()
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorDone)

	return appModel{
		ctx:      ctx,
		st:       st,
		fetch:    f,
		log:      log,
		width:    80,
		height:   24,
		keys:     defaultKeyMap(),
		help:     help.New(),
		spinner:  sp,
		viewport: viewport.New(80, 20),
	}
}

func (m appModel) Init() tea.Cmd {
	if !m.st.Loading() {
		return nil
	}
	return tea.Batch(m.spinner.Tick, m.loadCmd())
}

// loadCmd runs the fetch off the update loop. It is not retried and has no
// timeout beyond what the fetcher applies.
func (m appModel) loadCmd() tea.Cmd {
	f := m.fetch
	ctx := m.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	return func() tea.Msg {
		if f == nil {
			return loadedMsg{groups: []model.Group{}}
		}
		groups, err := f.Fetch(ctx)
		return loadedMsg{groups: groups, err: err}
	}
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case loadedMsg:
		_ = source.Apply(m.st, msg.groups, msg.err, m.log)
		m.cursor = 0
		return m, nil

	case spinner.TickMsg:
		if !m.st.Loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.updateKey(msg)
	}
	return m, nil
}

func (m appModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}
	if key.Matches(msg, m.keys.Help) {
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}
	// Toggles assume the load finished.
	if m.st.Loading() || m.st.Empty() {
		return m, nil
	}

	m.flash = ""
	rows := flattenRows(m.st)
	switch {
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1, len(rows))
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1, len(rows))
	case key.Matches(msg, m.keys.Top):
		m.cursor = 0
	case key.Matches(msg, m.keys.Bottom):
		m.cursor = len(rows) - 1
	case key.Matches(msg, m.keys.Toggle):
		m.toggleSelected(rows)
	case key.Matches(msg, m.keys.Expand):
		m.setSelectedExpanded(rows, true)
	case key.Matches(msg, m.keys.Collapse):
		m.setSelectedExpanded(rows, false)
	case key.Matches(msg, m.keys.ExpandAll):
		m.keepGroupSelected(rows, m.st.ExpandAll)
	case key.Matches(msg, m.keys.CollapseAll):
		m.keepGroupSelected(rows, m.st.CollapseAll)
	case key.Matches(msg, m.keys.Detail):
		m.showDetail = !m.showDetail
	}
	return m, nil
}

func (m *appModel) moveCursor(delta, n int) {
	if n == 0 {
		m.cursor = 0
		return
	}
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= n {
		m.cursor = n - 1
	}
}

func (m *appModel) selectedRow(rows []row) (row, bool) {
	if m.cursor < 0 || m.cursor >= len(rows) {
		return row{}, false
	}
	return rows[m.cursor], true
}

func (m *appModel) toggleSelected(rows []row) {
	r, ok := m.selectedRow(rows)
	if !ok {
		return
	}
	g, _ := m.st.GroupAt(r.group)
	switch r.kind {
	case rowGroup:
		m.st.ToggleGroupExpansion(g.Name)
	case rowTask:
		if err := m.st.ToggleTask(g.Name, r.task); err != nil {
			m.log.Warn("toggle task", zap.Error(err))
			m.flash = err.Error()
		}
	}
}

// setSelectedExpanded shows or hides the selected row's group. Hiding from a
// task row moves the cursor back to its heading.
func (m *appModel) setSelectedExpanded(rows []row, expand bool) {
	r, ok := m.selectedRow(rows)
	if !ok {
		return
	}
	g, _ := m.st.GroupAt(r.group)
	if m.st.Expanded(g.Name) != expand {
		m.st.ToggleGroupExpansion(g.Name)
	}
	if !expand {
		m.selectGroup(r.group)
	}
}

func (m *appModel) keepGroupSelected(rows []row, fn func()) {
	gi := 0
	if r, ok := m.selectedRow(rows); ok {
		gi = r.group
	}
	fn()
	m.selectGroup(gi)
}

func (m *appModel) selectGroup(gi int) {
	for i, r := range flattenRows(m.st) {
		if r.kind == rowGroup && r.group == gi {
			m.cursor = i
			return
		}
	}
}

func (m appModel) View() string {
	if m.st.Loading() {
		return m.spinner.View() + " Loading..."
	}

	header := renderHeader(m.st, m.width)
	rule := styleMuted().Render(strings.Repeat(glyphHRule(), max(m.width, 1)))
	footer := m.help.View(m.keys)
	if m.flash != "" {
		footer = styleError().Render(m.flash) + "\n" + footer
	}

	if m.st.Empty() {
		return strings.Join([]string{header, rule, renderEmptyState(m.st, m.width), "", footer}, "\n")
	}

	rows := flattenRows(m.st)
	cursor := m.cursor
	if cursor >= len(rows) {
		cursor = len(rows) - 1
	}
	lines := renderRows(m.st, rows, cursor, m.width)

	detail := ""
	if m.showDetail {
		detail = m.renderDetail(rows, cursor)
	}

	bodyH := m.height - lipgloss.Height(header) - lipgloss.Height(footer) - 2
	if detail != "" {
		bodyH -= lipgloss.Height(detail) + 1
	}
	if bodyH < 3 {
		bodyH = 3
	}

	vp := m.viewport
	vp.Width = m.width
	vp.Height = bodyH
	vp.SetContent(strings.Join(lines, "\n"))
	vp.SetYOffset(scrollOffset(cursor, bodyH, len(lines)))

	parts := []string{header, rule, vp.View()}
	if detail != "" {
		parts = append(parts, rule, detail)
	}
	parts = append(parts, "", footer)
	return strings.Join(parts, "\n")
}

// scrollOffset keeps the cursor line inside a window of height h.
func scrollOffset(cursor, h, n int) int {
	if n <= h || cursor < h {
		return 0
	}
	off := cursor - h + 1
	if off > n-h {
		off = n - h
	}
	return off
}

func (m appModel) renderDetail(rows []row, cursor int) string {
	if cursor < 0 || cursor >= len(rows) {
		return ""
	}
	r := rows[cursor]
	g, ok := m.st.GroupAt(r.group)
	if !ok {
		return ""
	}
	if r.kind == rowGroup {
		return styleMuted().Render(g.Name + ": select a task to see its description.")
	}
	t := g.Tasks[r.task]
	title := styleTitle().Render(t.Name) + "  " + styleMuted().Render(formatWeight(t.Value))
	body := renderMarkdown(t.Description, m.width-2)
	if body == "" {
		body = styleMuted().Render("(no description)")
	}
	return title + "\n" + body
}
