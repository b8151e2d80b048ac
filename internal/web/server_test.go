package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"taskprogress-cli/internal/model"
	"taskprogress-cli/internal/store"
)

func loadedState(t *testing.T) *store.State {
	t.Helper()
	st := store.New("ACME")
	st.Load([]model.Group{
		{Name: "Setup", Tasks: []model.Task{
			{Name: "Create account", Description: "Use **email**", Checked: true, Value: 10},
			{Name: "Verify", Description: "<script>alert(1)</script>ok", Value: 10},
		}},
		{Name: "Empty", Tasks: []model.Task{}},
	})
	return st
}

func newTestServer(t *testing.T, st *store.State, symbols ...string) *httptest.Server {
	t.Helper()
	s, err := NewServer(ServerConfig{Addr: "127.0.0.1:0", Symbols: symbols}, st, nil)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, string(b)
}

func TestNewServer_RejectsEmptyAddr(t *testing.T) {
	if _, err := NewServer(ServerConfig{Addr: "  "}, store.New(""), nil); err == nil {
		t.Fatalf("expected error for empty addr")
	}
	if _, err := NewServer(ServerConfig{Addr: ":0"}, nil, nil); err == nil {
		t.Fatalf("expected error for nil state")
	}
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, loadedState(t))
	code, body := get(t, ts.URL+"/healthz")
	if code != http.StatusOK || strings.TrimSpace(body) != "ok" {
		t.Fatalf("healthz: %d %q", code, body)
	}
}

func TestWidget_PassesSymbolAndRendersGroups(t *testing.T) {
	ts := newTestServer(t, loadedState(t))
	code, body := get(t, ts.URL+"/widget?symbol=XYZ")
	if code != http.StatusOK {
		t.Fatalf("status: %d", code)
	}
	for _, want := range []string{
		`class="task-progress-widget"`,
		`data-symbol="XYZ"`,
		`aria-valuenow="50"`,
		"<h3>Setup</h3>",
		"<h3>Empty</h3>",
		"<strong>email</strong>",
		"10 pts",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in widget body:\n%s", want, body)
		}
	}
	if strings.Contains(body, "<script>") {
		t.Fatalf("expected description script to be sanitized:\n%s", body)
	}
	// A group with no tasks is vacuously complete.
	if !strings.Contains(body, `tp-group tp-completed`) {
		t.Fatalf("expected completed group styling:\n%s", body)
	}
}

func TestHome_RendersOneMountPerSymbol(t *testing.T) {
	ts := newTestServer(t, loadedState(t), "A", "B")
	_, body := get(t, ts.URL+"/")
	if got := strings.Count(body, `class="task-progress-widget"`); got != 2 {
		t.Fatalf("expected 2 mounts, got %d:\n%s", got, body)
	}
	if !strings.Contains(body, `data-symbol="A"`) || !strings.Contains(body, `data-symbol="B"`) {
		t.Fatalf("expected both symbols in page:\n%s", body)
	}
}

func TestGroupsAPI(t *testing.T) {
	ts := newTestServer(t, loadedState(t))
	code, body := get(t, ts.URL+"/api/groups")
	if code != http.StatusOK {
		t.Fatalf("status: %d", code)
	}
	var env struct {
		Data []model.Group `json:"data"`
		Meta struct {
			Overall int `json:"overall"`
			Groups  int `json:"groups"`
		} `json:"meta"`
	}
	if err := json.Unmarshal([]byte(body), &env); err != nil {
		t.Fatalf("decode: %v\n%s", err, body)
	}
	if env.Meta.Overall != 50 || env.Meta.Groups != 2 || len(env.Data) != 2 {
		t.Fatalf("unexpected payload: %+v", env)
	}
	if env.Data[0].Completed || !env.Data[1].Completed {
		t.Fatalf("unexpected completed flags: %+v", env.Data)
	}
}

func TestWidget_EmptyStateAfterFailedFetch(t *testing.T) {
	st := store.New("")
	st.Fail(errors.New("boom"))
	ts := newTestServer(t, st)
	_, body := get(t, ts.URL+"/widget")
	if !strings.Contains(body, "No tasks to show.") {
		t.Fatalf("expected empty state:\n%s", body)
	}
	if strings.Contains(body, "boom") {
		t.Fatalf("expected raw error to stay out of the page:\n%s", body)
	}
}

func TestWidget_Loading(t *testing.T) {
	ts := newTestServer(t, store.New(""))
	_, body := get(t, ts.URL+"/widget")
	if !strings.Contains(body, "Loading...") {
		t.Fatalf("expected loading view:\n%s", body)
	}
}

func TestStaticCSS(t *testing.T) {
	ts := newTestServer(t, loadedState(t))
	resp, err := http.Get(ts.URL + "/static/widget.css")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/css") {
		t.Fatalf("content type: %q", ct)
	}
}

func TestWidget_TasksAreToggleableInTheBrowser(t *testing.T) {
	ts := newTestServer(t, loadedState(t))
	_, body := get(t, ts.URL+"/widget?symbol=ACME")
	if strings.Contains(body, "disabled") {
		t.Fatalf("checkboxes should be interactive:\n%s", body)
	}
	for _, want := range []string{
		`class="tp-task" id="tp-acme-0-g0-t0" data-group="0" data-value="10" checked`,
		`id="tp-acme-0-g0-t1" data-group="0" data-value="10">`,
		`<label for="tp-acme-0-g0-t1">`,
		`<span class="tp-overall">50%</span>`,
		`<span class="tp-percent">50</span>`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in widget body:\n%s", want, body)
		}
	}

	resp, err := http.Get(ts.URL + "/static/widget.js")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	js, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/javascript") {
		t.Fatalf("script route: %d %q", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
	if !strings.Contains(string(js), "task-progress-widget") || !strings.Contains(string(js), "Math.floor(pct + 0.5)") {
		t.Fatalf("unexpected script:\n%s", js)
	}

	_, page := get(t, ts.URL+"/")
	if !strings.Contains(page, `<script src="/static/widget.js" defer></script>`) {
		t.Fatalf("host page should load the script:\n%s", page)
	}
}

func TestWidget_AbsentTaskListIsMarked(t *testing.T) {
	st := store.New("")
	st.Load([]model.Group{{Name: "NoTasks"}})
	ts := newTestServer(t, st)
	_, body := get(t, ts.URL+"/widget")
	if !strings.Contains(body, `data-tasks="absent"`) {
		t.Fatalf("expected absent marker:\n%s", body)
	}
	if strings.Contains(body, "tp-completed") {
		t.Fatalf("group without tasks must not render completed:\n%s", body)
	}
}

func TestHome_TaskIDsAreUniqueAcrossMountsAndGroups(t *testing.T) {
	st := store.New("")
	st.Load([]model.Group{
		{Name: "A B", Tasks: []model.Task{{Name: "x", Value: 1}}},
		{Name: "a-b", Tasks: []model.Task{{Name: "y", Value: 1}}},
	})
	ts := newTestServer(t, st, "S", "S")
	_, page := get(t, ts.URL+"/")

	re := regexp.MustCompile(`id="(tp-[^"]+)"`)
	seen := map[string]bool{}
	for _, m := range re.FindAllStringSubmatch(page, -1) {
		if seen[m[1]] {
			t.Fatalf("duplicate id %q:\n%s", m[1], page)
		}
		seen[m[1]] = true
	}
	if len(seen) != 4 {
		t.Fatalf("expected 4 task ids, got %d: %v", len(seen), seen)
	}

	_, frag := get(t, ts.URL+"/widget?symbol=S&mount=3")
	if !strings.Contains(frag, `id="tp-s-3-g1-t0"`) {
		t.Fatalf("mount query should scope ids:\n%s", frag)
	}
}

func TestTaskID(t *testing.T) {
	if got := taskID(idPrefix("Set Up!", 2), 1, 3); got != "tp-set_up_-2-g1-t3" {
		t.Fatalf("taskID: %q", got)
	}
}
