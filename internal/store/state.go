package store

import (
	"errors"
	"fmt"
	"sort"

	"taskprogress-cli/internal/completion"
	"taskprogress-cli/internal/model"
)

var (
	ErrUnknownGroup = errors.New("unknown group")
	ErrTaskIndex    = errors.New("task index out of range")
)

// State is the progress state of one mounted widget: the loaded groups, which
// groups are expanded, and whether the initial load is still pending.
//
// The tasks' own Checked flags are the only record of completion; the
// name -> flags lookup is derived on demand by Overlay.
//
// State is not safe for concurrent use. Callers mutate it from a single
// goroutine (the TUI update loop) or treat it as read-only after Load.
type State struct {
	Symbol string

	groups   []model.Group
	expanded map[string]bool
	loading  bool
	err      error
}

// New returns a State that is still loading.
func New(symbol string) *State {
	return &State{
		Symbol:   symbol,
		expanded: map[string]bool{},
		loading:  true,
	}
}

// Load seeds the state from a fetched collection.
func (s *State) Load(groups []model.Group) {
	s.groups = model.CloneGroups(groups)
	for i := range s.groups {
		s.groups[i].Completed = completion.GroupComplete(s.groups[i].Tasks)
	}
	s.err = nil
	s.loading = false
}

// Fail settles the state after a failed fetch: no groups, not loading.
func (s *State) Fail(err error) {
	s.groups = nil
	s.err = err
	s.loading = false
}

func (s *State) Loading() bool { return s.loading }

// Err returns the load error, if the fetch failed.
func (s *State) Err() error { return s.err }

// Empty reports whether there is nothing to render.
func (s *State) Empty() bool { return len(s.groups) == 0 }

// Groups returns a copy of the loaded groups.
func (s *State) Groups() []model.Group { return model.CloneGroups(s.groups) }

// Len returns the number of loaded groups.
func (s *State) Len() int { return len(s.groups) }

// GroupAt returns a copy of the group at index i.
func (s *State) GroupAt(i int) (model.Group, bool) {
	if i < 0 || i >= len(s.groups) {
		return model.Group{}, false
	}
	return s.groups[i].Clone(), true
}

// Group returns a copy of the named group.
func (s *State) Group(name string) (model.Group, bool) {
	i := s.indexOf(name)
	if i < 0 {
		return model.Group{}, false
	}
	return s.groups[i].Clone(), true
}

func (s *State) indexOf(name string) int {
	for i := range s.groups {
		if s.groups[i].Name == name {
			return i
		}
	}
	return -1
}

// ToggleTask flips one task's checked flag and recomputes the group's
// completed flag.
func (s *State) ToggleTask(groupName string, taskIndex int) error {
	gi := s.indexOf(groupName)
	if gi < 0 {
		return fmt.Errorf("toggle %q: %w", groupName, ErrUnknownGroup)
	}
	g := &s.groups[gi]
	if taskIndex < 0 || taskIndex >= len(g.Tasks) {
		return fmt.Errorf("toggle %q[%d] (%d tasks): %w", groupName, taskIndex, len(g.Tasks), ErrTaskIndex)
	}
	g.Tasks[taskIndex].Checked = !g.Tasks[taskIndex].Checked
	g.Completed = completion.GroupComplete(g.Tasks)
	return nil
}

// ToggleGroupExpansion expands a collapsed group or collapses an expanded one.
func (s *State) ToggleGroupExpansion(groupName string) {
	if s.expanded == nil {
		s.expanded = map[string]bool{}
	}
	if s.expanded[groupName] {
		delete(s.expanded, groupName)
		return
	}
	s.expanded[groupName] = true
}

// Expanded reports whether the named group shows its tasks.
func (s *State) Expanded(groupName string) bool { return s.expanded[groupName] }

// ExpandedNames returns the expanded group names, sorted.
func (s *State) ExpandedNames() []string {
	out := make([]string, 0, len(s.expanded))
	for name := range s.expanded {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (s *State) ExpandAll() {
	if s.expanded == nil {
		s.expanded = map[string]bool{}
	}
	for _, g := range s.groups {
		s.expanded[g.Name] = true
	}
}

func (s *State) CollapseAll() {
	s.expanded = map[string]bool{}
}

// Overlay returns the group name -> checked flags lookup.
func (s *State) Overlay() map[string][]bool { return completion.Overlay(s.groups) }

// Overall returns the weighted completion percentage across all groups.
func (s *State) Overall() int { return completion.Overall(s.groups, s.Overlay()) }
