// Package source fetches the task group collection a widget renders.
package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"taskprogress-cli/internal/model"
)

// DefaultURL is the mock endpoint the widget was first built against.
const DefaultURL = "https://gist.githubusercontent.com/huvber/ba0d534f68e34f1be86d7fe7eff92c96/raw/98a91477905ea518222a6d88dd8b475328a632d3/mock-progress"

var (
	ErrEmptySource    = errors.New("source is empty")
	ErrDuplicateGroup = errors.New("duplicate group name")
)

// Fetcher returns the raw group collection.
type Fetcher interface {
	Fetch(ctx context.Context) ([]model.Group, error)
}

type Options struct {
	// Timeout bounds an HTTP fetch. Zero means no timeout.
	Timeout time.Duration
	// Stdin is read when the source is "-".
	Stdin io.Reader
}

// Open picks a Fetcher for src:
//   - http:// and https:// URLs are fetched over HTTP
//   - sqlite:<path>, or a path ending in .sqlite/.db, is read from SQLite
//   - "-" reads JSON from Options.Stdin
//   - anything else is a JSON file path
func Open(src string, opts Options) (Fetcher, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, ErrEmptySource
	}
	lower := strings.ToLower(src)
	switch {
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return &HTTPFetcher{URL: src, Timeout: opts.Timeout}, nil
	case strings.HasPrefix(lower, "sqlite:"):
		return SQLiteFetcher{Path: src[len("sqlite:"):]}, nil
	case src == "-":
		r := opts.Stdin
		if r == nil {
			r = os.Stdin
		}
		return ReaderFetcher{R: r}, nil
	}
	switch strings.ToLower(filepath.Ext(src)) {
	case ".sqlite", ".sqlite3", ".db":
		return SQLiteFetcher{Path: src}, nil
	}
	return FileFetcher{Path: src}, nil
}

// FileFetcher reads a JSON collection from disk.
type FileFetcher struct {
	Path string
}

func (f FileFetcher) Fetch(ctx context.Context) ([]model.Group, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fh, err := os.Open(f.Path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return Decode(fh)
}

// ReaderFetcher decodes a JSON collection from a reader (stdin).
type ReaderFetcher struct {
	R io.Reader
}

func (f ReaderFetcher) Fetch(ctx context.Context) ([]model.Group, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Decode(f.R)
}

// Decode parses the JSON array contract:
//
//	[{"name": "...", "tasks": [{"name": "...", "description": "...", "checked": false, "value": 10}]}]
//
// Absent "checked" defaults to false. Negative values are clamped to zero.
func Decode(r io.Reader) ([]model.Group, error) {
	var groups []model.Group
	dec := json.NewDecoder(r)
	if err := dec.Decode(&groups); err != nil {
		if errors.Is(err, io.EOF) {
			return []model.Group{}, nil
		}
		return nil, fmt.Errorf("decode groups: %w", err)
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("unexpected data after the group array")
		}
		return nil, fmt.Errorf("decode groups: %w", err)
	}
	return Normalize(groups)
}

// Normalize applies the basic defensive checks shared by every source.
func Normalize(groups []model.Group) ([]model.Group, error) {
	if groups == nil {
		return []model.Group{}, nil
	}
	seen := make(map[string]bool, len(groups))
	for i := range groups {
		name := groups[i].Name
		if seen[name] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateGroup, name)
		}
		seen[name] = true
		for j := range groups[i].Tasks {
			if groups[i].Tasks[j].Value < 0 {
				groups[i].Tasks[j].Value = 0
			}
		}
		// Completed is derived by the state store, never trusted from input.
		groups[i].Completed = false
	}
	return groups, nil
}
