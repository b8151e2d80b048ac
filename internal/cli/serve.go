package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"taskprogress-cli/internal/config"
	"taskprogress-cli/internal/logx"
	"taskprogress-cli/internal/web"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(app *App) *cobra.Command {
	var addr string
	var symbols []string
	var verbose bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the embeddable HTML widget (read-only, no JS)",
		Long: strings.TrimSpace(`
Serve the widget from a local HTTP server.

The progress data is fetched once at startup. Pages are server-rendered HTML + CSS:
groups expand natively and checkboxes reflect the source, but nothing is ever
written back.

Routes:
  GET /                 host page with one widget mount per --mount symbol
  GET /widget?symbol=S  a single mountable widget fragment
  GET /api/groups       groups and overall percentage as JSON
  GET /healthz          liveness
`),
		Example: strings.TrimSpace(`
# Serve the default source on localhost
taskprogress serve --addr 127.0.0.1:3340

# Two mounts on the demo page
taskprogress serve --mount ACME --mount GLOBEX
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := resolveSettings(app, addr)
			if err != nil {
				return writeErr(cmd, err)
			}
			listenAddr := strings.TrimSpace(s.Addr)
			if listenAddr == "" {
				return writeErr(cmd, errors.New("serve: missing --addr"))
			}

			log, err := logx.NewStderr(verbose)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer func() { _ = log.Sync() }()

			// A failed fetch is already logged and leaves the empty state.
			st, _, err := loadState(cmd, app, log)
			if st == nil {
				return writeErr(cmd, err)
			}

			srv, err := web.NewServer(web.ServerConfig{Addr: listenAddr, Symbols: symbols}, st, log)
			if err != nil {
				return writeErr(cmd, err)
			}

			ln, err := net.Listen("tcp", srv.Addr())
			if err != nil {
				return writeErr(cmd, err)
			}
			actualAddr := ln.Addr().String()
			url := "http://" + actualAddr + "/"

			if err := writeOut(cmd, app, serveOutput{Data: serveInfo{
				Addr:      actualAddr,
				URL:       url,
				Source:    s.Source,
				Groups:    st.Len(),
				Overall:   st.Overall(),
				StartedAt: time.Now().UTC().Format(time.RFC3339Nano),
			}}); err != nil {
				_ = ln.Close()
				return writeErr(cmd, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "taskprogress widget running at %s\n", url)
			log.Info("serving", zap.String("addr", actualAddr), zap.String("source", s.Source))

			hs := &http.Server{Handler: srv.Handler(), ReadHeaderTimeout: 10 * time.Second}
			ctx := commandContext(cmd)
			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = hs.Shutdown(shutdownCtx)
			}()
			if err := hs.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return writeErr(cmd, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Bind address (host:port or :port; default "+config.DefaultAddr+", env: "+config.EnvAddr+")")
	cmd.Flags().StringArrayVar(&symbols, "mount", nil, "Symbol for a widget mount on the host page (repeatable; default --symbol)")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Log every request")
	return cmd
}
