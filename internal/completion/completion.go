// Package completion computes weighted completion for task groups.
//
// All functions are pure: they never mutate their inputs and never panic on
// empty or partial data.
package completion

import (
	"math"

	"taskprogress-cli/internal/model"
)

// GroupComplete reports whether every task is checked.
//
// An empty task list is complete. A nil task list (the group carried no tasks
// at all) is treated as not complete.
func GroupComplete(tasks []model.Task) bool {
	if tasks == nil {
		return false
	}
	for _, t := range tasks {
		if !t.Checked {
			return false
		}
	}
	return true
}

// Overall returns the weighted completion percentage across all groups, using
// checked as the per-group, per-task completion lookup.
//
// A group missing from checked, or a lookup slice shorter than the group's
// tasks, counts the missing entries as unchecked. When the total weight is
// zero the result is 0.
func Overall(groups []model.Group, checked map[string][]bool) int {
	var total, done float64
	for _, g := range groups {
		flags := checked[g.Name]
		for i, t := range g.Tasks {
			total += t.Value
			if i < len(flags) && flags[i] {
				done += t.Value
			}
		}
	}
	return Percent(done, total)
}

// OverallFromGroups is Overall with the lookup derived from the tasks' own
// checked flags.
func OverallFromGroups(groups []model.Group) int {
	var total, done float64
	for _, g := range groups {
		total += g.Weight()
		done += g.CheckedWeight()
	}
	return Percent(done, total)
}

// GroupPercent returns the weighted completion percentage of a single group.
func GroupPercent(g model.Group) int {
	return Percent(g.CheckedWeight(), g.Weight())
}

// Overlay derives the group name -> checked flags lookup from groups.
func Overlay(groups []model.Group) map[string][]bool {
	out := make(map[string][]bool, len(groups))
	for _, g := range groups {
		flags := make([]bool, len(g.Tasks))
		for i, t := range g.Tasks {
			flags[i] = t.Checked
		}
		out[g.Name] = flags
	}
	return out
}

// Percent returns round(100*done/total), or 0 if total is not positive.
func Percent(done, total float64) int {
	if total <= 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		return 0
	}
	return Round(100 * done / total)
}

// Round rounds half up and clamps to [0, 100].
func Round(pct float64) int {
	if math.IsNaN(pct) || pct <= 0 {
		return 0
	}
	r := math.Floor(pct + 0.5)
	if r > 100 {
		return 100
	}
	return int(r)
}
