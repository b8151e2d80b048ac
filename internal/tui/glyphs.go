package tui

import (
	"os"
	"strings"
	"sync"
)

// Terminal apps can't change the user's actual font. Instead, we can choose
// between Unicode and ASCII glyph sets for UI affordances (twisties, checkboxes,
// separators). This helps on terminals/fonts that don't render some glyphs cleanly.

type glyphSet int

const (
	glyphSetUnicode glyphSet = iota
	glyphSetASCII
)

var (
	glyphsMu      sync.RWMutex
	currentGlyphs = glyphSetUnicode
)

// applyGlyphPreference selects the glyph set. An explicit value (from config)
// wins over TASKPROGRESS_TUI_GLYPHS.
func applyGlyphPreference(explicit string) {
	v := strings.ToLower(strings.TrimSpace(explicit))
	if v == "" {
		v = strings.ToLower(strings.TrimSpace(os.Getenv("TASKPROGRESS_TUI_GLYPHS")))
	}
	switch v {
	case "", "unicode", "utf8":
		setGlyphs(glyphSetUnicode)
	case "ascii":
		setGlyphs(glyphSetASCII)
	default:
		// Unknown value: ignore.
	}
}

func setGlyphs(gs glyphSet) {
	glyphsMu.Lock()
	currentGlyphs = gs
	glyphsMu.Unlock()
}

func glyphs() glyphSet {
	glyphsMu.RLock()
	gs := currentGlyphs
	glyphsMu.RUnlock()
	return gs
}

func glyphTwistyCollapsed() string {
	if glyphs() == glyphSetASCII {
		return ">"
	}
	return "▸"
}

func glyphTwistyExpanded() string {
	if glyphs() == glyphSetASCII {
		return "v"
	}
	return "▾"
}

func glyphCheckboxOn() string {
	if glyphs() == glyphSetASCII {
		return "[x]"
	}
	return "☑"
}

func glyphCheckboxOff() string {
	if glyphs() == glyphSetASCII {
		return "[ ]"
	}
	return "☐"
}

// glyphGroupDone / glyphGroupOpen mark a group heading as fully completed or not.
func glyphGroupDone() string {
	if glyphs() == glyphSetASCII {
		return "(*)"
	}
	return "✔"
}

func glyphGroupOpen() string {
	if glyphs() == glyphSetASCII {
		return "( )"
	}
	return "○"
}

func glyphBullet() string {
	if glyphs() == glyphSetASCII {
		return "*"
	}
	return "•"
}

func glyphHRule() string {
	if glyphs() == glyphSetASCII {
		return "-"
	}
	return "─"
}

func glyphEllipsis() string {
	if glyphs() == glyphSetASCII {
		return "..."
	}
	return "…"
}
