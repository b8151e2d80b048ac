package web

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"taskprogress-cli/internal/completion"
	"taskprogress-cli/internal/format"
	"taskprogress-cli/internal/model"
	"taskprogress-cli/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

//go:embed templates/*.html static/*.css static/*.js
var assetsFS embed.FS

// MarkerClass is the class host pages put on elements that mount a widget.
const MarkerClass = "task-progress-widget"

type ServerConfig struct {
	Addr string
	// Symbols lists the widget mounts rendered on the demo host page. Each is
	// passed through to its widget as data-symbol.
	Symbols []string
}

// Server serves a rendering of a loaded State. Viewers toggle tasks in their
// browser (static/widget.js); the server never mutates the state after startup.
type Server struct {
	cfg  ServerConfig
	st   *store.State
	tmpl *template.Template
	log  *zap.Logger
}

func NewServer(cfg ServerConfig, st *store.State, log *zap.Logger) (*Server, error) {
	cfg.Addr = strings.TrimSpace(cfg.Addr)
	if cfg.Addr == "" {
		return nil, errors.New("web: addr is empty")
	}
	if st == nil {
		return nil, errors.New("web: nil state")
	}
	if log == nil {
		log = zap.NewNop()
	}
	if len(cfg.Symbols) == 0 {
		cfg.Symbols = []string{st.Symbol}
	}

	tmpl, err := template.New("base").Funcs(template.FuncMap{
		"markdown": renderMarkdownHTML,
		"weight":   formatWeight,
	}).ParseFS(assetsFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Server{cfg: cfg, st: st, tmpl: tmpl, log: log}, nil
}

func (s *Server) Addr() string { return s.cfg.Addr }

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/", s.handleHome)
	r.Get("/widget", s.handleWidget)
	r.Get("/api/groups", s.handleGroups)
	r.Get("/healthz", s.handleHealth)
	r.Get("/static/widget.css", s.handleStatic("static/widget.css", "text/css; charset=utf-8"))
	r.Get("/static/widget.js", s.handleStatic("static/widget.js", "text/javascript; charset=utf-8"))
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("took", time.Since(start)),
		)
	})
}

type taskVM struct {
	ID          string
	Group       int
	Name        string
	Description string
	Checked     bool
	Value       float64
}

type groupVM struct {
	Index     int
	Name      string
	Completed bool
	// Absent marks a group that carried no task list; it never completes.
	Absent    bool
	Percent   int
	Done      int
	Total     int
	Tasks     []taskVM
}

type widgetVM struct {
	Marker  string
	Symbol  string
	Loading bool
	Overall int
	Groups  []groupVM
	Error   string
}

type pageVM struct {
	Marker  string
	Widgets []widgetVM
}

// widgetVM builds the view of one mount. mount numbers the widgets on a page
// so element ids stay unique across mounts.
func (s *Server) widgetVM(symbol string, mount int) widgetVM {
	vm := widgetVM{
		Marker:  MarkerClass,
		Symbol:  symbol,
		Loading: s.st.Loading(),
		Overall: s.st.Overall(),
	}
	if err := s.st.Err(); err != nil {
		vm.Error = "Progress data is unavailable."
	}
	prefix := idPrefix(symbol, mount)
	for gi, g := range s.st.Groups() {
		gv := groupVM{
			Index:     gi,
			Name:      g.Name,
			Absent:    g.Tasks == nil,
			Completed: g.Completed,
			Percent:   completion.GroupPercent(g),
			Done:      g.CheckedCount(),
			Total:     len(g.Tasks),
		}
		for i, t := range g.Tasks {
			gv.Tasks = append(gv.Tasks, taskVM{
				ID:          taskID(prefix, gi, i),
				Group:       gi,
				Name:        t.Name,
				Description: t.Description,
				Checked:     t.Checked,
				Value:       t.Value,
			})
		}
		vm.Groups = append(vm.Groups, gv)
	}
	return vm
}

// idPrefix scopes element ids to one mount: "tp-<symbol slug>-<mount>".
func idPrefix(symbol string, mount int) string {
	var b strings.Builder
	b.WriteString("tp-")
	for _, r := range strings.ToLower(symbol) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	b.WriteByte('-')
	b.WriteString(formatInt(mount))
	return b.String()
}

// taskID uses positions rather than names, so groups whose names slug alike
// still get distinct ids.
func taskID(prefix string, group, task int) string {
	return prefix + "-g" + formatInt(group) + "-t" + formatInt(task)
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	vm := pageVM{Marker: MarkerClass}
	for i, sym := range s.cfg.Symbols {
		vm.Widgets = append(vm.Widgets, s.widgetVM(sym, i))
	}
	s.render(w, "page.html", vm)
}

// handleWidget returns the mountable fragment for one marker element.
func (s *Server) handleWidget(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	symbol := strings.TrimSpace(q.Get("symbol"))
	// Hosts mounting several fragments pass mount=N to keep ids apart.
	mount, err := strconv.Atoi(q.Get("mount"))
	if err != nil || mount < 0 {
		mount = 0
	}
	s.render(w, "widget.html", s.widgetVM(symbol, mount))
}

func (s *Server) handleGroups(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	groups := s.st.Groups()
	if groups == nil {
		groups = []model.Group{}
	}
	payload := map[string]any{
		"data": groups,
		"meta": map[string]any{
			"overall": s.st.Overall(),
			"loading": s.st.Loading(),
			"groups":  len(groups),
		},
	}
	if err := format.WriteJSON(w, payload, false); err != nil {
		s.log.Error("write groups", zap.Error(err))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleStatic(name, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := assetsFS.ReadFile(name)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write(b)
	}
}

func (s *Server) render(w http.ResponseWriter, name string, vm any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, name, vm); err != nil {
		s.log.Error("render template", zap.String("template", name), zap.Error(err))
		http.Error(w, "render failed", http.StatusInternalServerError)
	}
}
