package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"taskprogress-cli/internal/config"
	"taskprogress-cli/internal/format"
	"taskprogress-cli/internal/logx"
	"taskprogress-cli/internal/source"
	"taskprogress-cli/internal/store"
	"taskprogress-cli/internal/tui"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Version is set at build time with -ldflags "-X taskprogress-cli/internal/cli.Version=...".
var Version = "dev"

type App struct {
	Source     string
	Symbol     string
	Timeout    time.Duration
	LogFile    string
	ConfigPath string
	PrettyJSON bool
	Format     string
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "taskprogress",
		Short:        "Grouped task progress widget (TUI + CLI)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive widget against the default source
  taskprogress

  # Read groups from a local file instead
  taskprogress --source ./progress.json

  # Scriptable summary, with a local toggle applied first
  taskprogress status --toggle "Purchase:0" --format text

  # Serve the embeddable HTML widget
  taskprogress serve --addr 127.0.0.1:3340
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// Reject a bad --format before any command has side effects.
		switch app.Format {
		case "", "json", "text":
			return nil
		}
		return writeErr(cmd, fmt.Errorf("unknown format: %s (want json|text)", app.Format))
	}

	cmd.PersistentFlags().StringVar(&app.Source, "source", "", "Progress data source: URL, JSON file, sqlite:<path>, or - for stdin (env: "+config.EnvSource+")")
	cmd.PersistentFlags().StringVar(&app.Symbol, "symbol", "", "Symbol passed through to the widget mount (env: "+config.EnvSymbol+")")
	cmd.PersistentFlags().DurationVar(&app.Timeout, "timeout", 0, "HTTP fetch timeout (0 = none)")
	cmd.PersistentFlags().StringVar(&app.LogFile, "log-file", "", "Write diagnostics as JSON lines to this file (env: "+config.EnvLogFile+")")
	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", envOr(config.EnvConfigFile, ""), "Path to config.toml (default: <config dir>/config.toml)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("TASKPROGRESS_FORMAT", "json"), "Output format (json|text)")

	cmd.AddCommand(newStatusCmd(app))
	cmd.AddCommand(newRenderCmd(app))
	cmd.AddCommand(newGroupsCmd(app))
	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newSnapshotCmd(app))
	cmd.AddCommand(newVersionCmd(app))

	return cmd
}

func runTUI(cmd *cobra.Command, app *App) error {
	s, err := resolveSettings(app, "")
	if err != nil {
		return writeErr(cmd, err)
	}
	log, err := logx.New(s.LogFile, false)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer func() { _ = log.Sync() }()

	f, err := source.Open(s.Source, source.Options{Timeout: s.Timeout, Stdin: cmd.InOrStdin()})
	if err != nil {
		return writeErr(cmd, err)
	}
	return tui.Run(commandContext(cmd), tui.Options{
		Fetcher: f,
		Symbol:  s.Symbol,
		Theme:   s.Theme,
		Glyphs:  s.Glyphs,
		Log:     log.With(zap.String("source", s.Source)),
	})
}

func resolveSettings(app *App, addr string) (config.Settings, error) {
	return config.Resolve(app.ConfigPath, config.Overrides{
		Source:  app.Source,
		Symbol:  app.Symbol,
		Timeout: app.Timeout,
		LogFile: app.LogFile,
		Addr:    addr,
	})
}

// loadState runs the one-time fetch for non-interactive commands.
//
// The returned state is always settled; err reports a failed fetch so callers
// can decide whether it is fatal for them.
func loadState(cmd *cobra.Command, app *App, log *zap.Logger) (*store.State, config.Settings, error) {
	s, err := resolveSettings(app, "")
	if err != nil {
		return nil, s, err
	}
	if log == nil {
		log, err = logx.New(s.LogFile, false)
		if err != nil {
			return nil, s, err
		}
	}
	f, err := source.Open(s.Source, source.Options{Timeout: s.Timeout, Stdin: cmd.InOrStdin()})
	if err != nil {
		return nil, s, err
	}
	st := store.New(s.Symbol)
	if err := source.Run(commandContext(cmd), f, st, log.With(zap.String("source", s.Source))); err != nil {
		return st, s, fmt.Errorf("fetch %s: %w", s.Source, err)
	}
	return st, s, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
