package cli

import (
	"strconv"
	"strings"

	"taskprogress-cli/internal/store"
)

type toggle struct {
	Group string
	Index int
}

// parseToggle parses "<group>:<index>". The index follows the last colon so
// group names may contain colons themselves.
func parseToggle(v string) (toggle, error) {
	i := strings.LastIndex(v, ":")
	if i < 0 {
		return toggle{}, errInvalidToggle(v, "missing ':'")
	}
	group := strings.TrimSpace(v[:i])
	if group == "" {
		return toggle{}, errInvalidToggle(v, "empty group")
	}
	idx, err := strconv.Atoi(strings.TrimSpace(v[i+1:]))
	if err != nil {
		return toggle{}, errInvalidToggle(v, "task index is not a number")
	}
	return toggle{Group: group, Index: idx}, nil
}

// applyToggles flips each task in order. Toggling the same task twice
// restores it.
func applyToggles(st *store.State, values []string) error {
	for _, v := range values {
		tg, err := parseToggle(v)
		if err != nil {
			return err
		}
		if err := st.ToggleTask(tg.Group, tg.Index); err != nil {
			return err
		}
	}
	return nil
}
