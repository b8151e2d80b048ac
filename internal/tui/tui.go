package tui

import (
	"context"

	"taskprogress-cli/internal/source"
	"taskprogress-cli/internal/store"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

type Options struct {
	Fetcher source.Fetcher
	Symbol  string
	Theme   string
	Glyphs  string
	Log     *zap.Logger
}

// Run mounts one widget in the terminal and blocks until the user quits.
func Run(ctx context.Context, opts Options) error {
	applyThemePreference(opts.Theme)
	applyGlyphPreference(opts.Glyphs)
	applyColorProfilePreference()

	st := store.New(opts.Symbol)
	m := newAppModel(ctx, st, opts.Fetcher, opts.Log)
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
