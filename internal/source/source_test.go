package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"taskprogress-cli/internal/model"
	"taskprogress-cli/internal/store"
)

const sampleJSON = `[
  {"name": "Initial setup", "tasks": [
    {"name": "Add name", "description": "Add your **name**", "value": 10, "checked": true},
    {"name": "Add photo", "description": "Upload a photo", "value": 20}
  ]},
  {"name": "Payments", "tasks": [
    {"name": "Bank", "description": "Connect a bank account", "value": 30, "checked": false}
  ]}
]`

func TestDecode_DefaultsCheckedToFalse(t *testing.T) {
	groups, err := Decode(strings.NewReader(sampleJSON))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if !groups[0].Tasks[0].Checked || groups[0].Tasks[1].Checked {
		t.Fatalf("checked flags: %+v", groups[0].Tasks)
	}
	if groups[1].Tasks[0].Value != 30 {
		t.Fatalf("value: %v", groups[1].Tasks[0].Value)
	}
}

func TestDecode_DefensiveChecks(t *testing.T) {
	groups, err := Decode(strings.NewReader(`[{"name":"A","completed":true,"tasks":[{"value":-5}]}]`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if groups[0].Tasks[0].Value != 0 {
		t.Fatalf("expected negative value clamped; got %v", groups[0].Tasks[0].Value)
	}
	if groups[0].Completed {
		t.Fatalf("completed must not be trusted from input")
	}

	if _, err := Decode(strings.NewReader(`[{"name":"A","tasks":[]},{"name":"A","tasks":[]}]`)); !errors.Is(err, ErrDuplicateGroup) {
		t.Fatalf("expected duplicate group error; got %v", err)
	}
	if _, err := Decode(strings.NewReader(`{"name":"A"}`)); err == nil {
		t.Fatalf("expected error for non-array payload")
	}
}

func TestDecode_EmptyAndNull(t *testing.T) {
	for _, in := range []string{"", "null", "[]"} {
		groups, err := Decode(strings.NewReader(in))
		if err != nil {
			t.Fatalf("Decode(%q): %v", in, err)
		}
		if groups == nil || len(groups) != 0 {
			t.Fatalf("Decode(%q): expected empty non-nil slice, got %#v", in, groups)
		}
	}
}

func TestDecode_RejectsTrailingData(t *testing.T) {
	for _, in := range []string{`[] []`, `[{"name":"A","tasks":[]}] garbage`, `[]}`} {
		if _, err := Decode(strings.NewReader(in)); err == nil {
			t.Fatalf("Decode(%q): expected error for trailing data", in)
		}
	}
	if _, err := Decode(strings.NewReader("[]\n\n")); err != nil {
		t.Fatalf("trailing whitespace should be fine: %v", err)
	}
}

func TestDecode_MissingTasksStaysNil(t *testing.T) {
	groups, err := Decode(strings.NewReader(`[{"name":"A"}]`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if groups[0].Tasks != nil {
		t.Fatalf("expected nil tasks for absent field")
	}
}

func TestOpen_PicksFetcher(t *testing.T) {
	cases := []struct {
		src  string
		want any
	}{
		{"https://example.com/progress", &HTTPFetcher{}},
		{"HTTP://example.com/progress", &HTTPFetcher{}},
		{"sqlite:/tmp/x", SQLiteFetcher{}},
		{"/tmp/progress.sqlite", SQLiteFetcher{}},
		{"data.db", SQLiteFetcher{}},
		{"-", ReaderFetcher{}},
		{"progress.json", FileFetcher{}},
	}
	for _, tc := range cases {
		f, err := Open(tc.src, Options{Stdin: strings.NewReader("[]")})
		if err != nil {
			t.Fatalf("Open(%q): %v", tc.src, err)
		}
		if reflect.TypeOf(f) != reflect.TypeOf(tc.want) {
			t.Fatalf("Open(%q) = %T, want %T", tc.src, f, tc.want)
		}
	}
	if _, err := Open("  ", Options{}); !errors.Is(err, ErrEmptySource) {
		t.Fatalf("expected ErrEmptySource; got %v", err)
	}
	if f, _ := Open("sqlite:/data/p.db", Options{}); f.(SQLiteFetcher).Path != "/data/p.db" {
		t.Fatalf("sqlite prefix not stripped: %+v", f)
	}
}

func TestHTTPFetcher_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method: %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleJSON))
	}))
	defer srv.Close()

	f, err := Open(srv.URL, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	groups, err := f.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(groups) != 2 || groups[0].Name != "Initial setup" {
		t.Fatalf("unexpected groups: %+v", groups)
	}
}

func TestHTTPFetcher_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := &HTTPFetcher{URL: srv.URL}
	_, err := f.Fetch(context.Background())
	if err == nil || !strings.Contains(err.Error(), "500") {
		t.Fatalf("expected 500 error; got %v", err)
	}
}

func TestFileAndReaderFetchers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")
	if err := os.WriteFile(path, []byte(sampleJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	fromFile, err := FileFetcher{Path: path}.Fetch(context.Background())
	if err != nil {
		t.Fatalf("file fetch: %v", err)
	}
	fromReader, err := ReaderFetcher{R: strings.NewReader(sampleJSON)}.Fetch(context.Background())
	if err != nil {
		t.Fatalf("reader fetch: %v", err)
	}
	if !reflect.DeepEqual(fromFile, fromReader) {
		t.Fatalf("file and reader disagree:\n%+v\n%+v", fromFile, fromReader)
	}
	if _, err := (FileFetcher{Path: filepath.Join(t.TempDir(), "missing.json")}).Fetch(context.Background()); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error; got %v", err)
	}
}

func TestSQLite_RoundTrip(t *testing.T) {
	ctx := context.Background()
	want, err := Decode(strings.NewReader(sampleJSON))
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "progress.sqlite")
	if err := WriteSQLite(ctx, path, want); err != nil {
		t.Fatalf("WriteSQLite: %v", err)
	}
	// Writing again replaces rather than appends.
	if err := WriteSQLite(ctx, path, want); err != nil {
		t.Fatalf("WriteSQLite (again): %v", err)
	}

	got, err := SQLiteFetcher{Path: path}.Fetch(ctx)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}
}

func TestSQLite_RoundTripKeepsAbsentTaskList(t *testing.T) {
	ctx := context.Background()
	want, err := Decode(strings.NewReader(`[{"name":"A"},{"name":"B","tasks":[]}]`))
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "progress.db")
	if err := WriteSQLite(ctx, path, want); err != nil {
		t.Fatalf("WriteSQLite: %v", err)
	}
	got, err := SQLiteFetcher{Path: path}.Fetch(ctx)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got[0].Tasks != nil {
		t.Fatalf("absent task list came back as %#v", got[0].Tasks)
	}
	if got[1].Tasks == nil || len(got[1].Tasks) != 0 {
		t.Fatalf("empty task list came back as %#v", got[1].Tasks)
	}

	st := store.New("")
	st.Load(got)
	if a, _ := st.Group("A"); a.Completed {
		t.Fatalf("group without a task list must not be complete after a round trip")
	}
	if b, _ := st.Group("B"); !b.Completed {
		t.Fatalf("group with an empty task list is complete")
	}
}

func TestSQLite_ReadsFilesWithoutPresenceColumn(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "old.db")
	db, err := openSQLite(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.ExecContext(ctx, `
CREATE TABLE groups (id INTEGER PRIMARY KEY, name TEXT NOT NULL UNIQUE, position INTEGER NOT NULL);
CREATE TABLE tasks (group_id INTEGER NOT NULL, position INTEGER NOT NULL, name TEXT NOT NULL DEFAULT '',
  description TEXT NOT NULL DEFAULT '', checked INTEGER NOT NULL DEFAULT 0, value REAL NOT NULL DEFAULT 0);
INSERT INTO groups(id, name, position) VALUES (1, 'Empty', 0);`); err != nil {
		t.Fatal(err)
	}
	_ = db.Close()

	got, err := SQLiteFetcher{Path: path}.Fetch(ctx)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(got) != 1 || got[0].Tasks == nil {
		t.Fatalf("expected one group with an empty task list; got %#v", got)
	}
}

func TestSQLite_MissingFile(t *testing.T) {
	_, err := SQLiteFetcher{Path: filepath.Join(t.TempDir(), "nope.sqlite")}.Fetch(context.Background())
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error; got %v", err)
	}
}

type failingFetcher struct{ err error }

func (f failingFetcher) Fetch(context.Context) ([]model.Group, error) { return nil, f.err }

func TestRun_LoadsState(t *testing.T) {
	st := store.New("")
	f := ReaderFetcher{R: strings.NewReader(sampleJSON)}
	if err := Run(context.Background(), f, st, nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if st.Loading() || st.Len() != 2 {
		t.Fatalf("state not loaded: loading=%v len=%d", st.Loading(), st.Len())
	}
	// 10 of 60 checked.
	if got := st.Overall(); got != 17 {
		t.Fatalf("overall: %d", got)
	}
}

func TestRun_FailureSettlesEmpty(t *testing.T) {
	st := store.New("")
	boom := errors.New("network down")
	if err := Run(context.Background(), failingFetcher{err: boom}, st, nil); !errors.Is(err, boom) {
		t.Fatalf("expected fetch error; got %v", err)
	}
	if st.Loading() {
		t.Fatalf("expected loading=false after failure")
	}
	if !st.Empty() {
		t.Fatalf("expected empty state after failure")
	}
}
