package cli

import "fmt"

type invalidToggleError struct {
	value  string
	reason string
}

func (e invalidToggleError) Error() string {
	return fmt.Sprintf("invalid --toggle %q: %s (want <group>:<task-index>)", e.value, e.reason)
}

func errInvalidToggle(value, reason string) error {
	return invalidToggleError{value: value, reason: reason}
}
