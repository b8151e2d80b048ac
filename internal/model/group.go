package model

// Task is a single checkable entry inside a Group.
//
// Value is the task's weight in the overall completion and is fixed once loaded.
type Task struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Checked     bool    `json:"checked"`
	Value       float64 `json:"value"`
}

// Group is a named, ordered collection of tasks. Name identifies the group
// within a collection.
type Group struct {
	Name  string `json:"name"`
	Tasks []Task `json:"tasks"`

	// Completed is derived from Tasks and never set directly by a user action.
	Completed bool `json:"completed"`
}

// Weight returns the sum of all task values in the group.
func (g Group) Weight() float64 {
	var w float64
	for _, t := range g.Tasks {
		w += t.Value
	}
	return w
}

// CheckedWeight returns the sum of values of checked tasks.
func (g Group) CheckedWeight() float64 {
	var w float64
	for _, t := range g.Tasks {
		if t.Checked {
			w += t.Value
		}
	}
	return w
}

// CheckedCount returns the number of checked tasks.
func (g Group) CheckedCount() int {
	n := 0
	for _, t := range g.Tasks {
		if t.Checked {
			n++
		}
	}
	return n
}

// Clone returns a deep copy of the group. A nil task slice stays nil.
func (g Group) Clone() Group {
	out := g
	if g.Tasks != nil {
		out.Tasks = make([]Task, len(g.Tasks))
		copy(out.Tasks, g.Tasks)
	}
	return out
}

// CloneGroups deep-copies a group collection.
func CloneGroups(groups []Group) []Group {
	if groups == nil {
		return nil
	}
	out := make([]Group, len(groups))
	for i, g := range groups {
		out[i] = g.Clone()
	}
	return out
}
