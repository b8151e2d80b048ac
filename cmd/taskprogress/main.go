package main

import (
	"os"
	"path/filepath"
	"strings"

	"taskprogress-cli/internal/cli"
)

var subcommands = map[string]bool{
	"status":     true,
	"render":     true,
	"groups":     true,
	"serve":      true,
	"snapshot":   true,
	"version":    true,
	"help":       true,
	"completion": true,
}

func isSourceArg(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || subcommands[s] {
		return false
	}
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") || strings.HasPrefix(lower, "sqlite:") {
		return true
	}
	switch strings.ToLower(filepath.Ext(s)) {
	case ".json", ".db", ".sqlite", ".sqlite3":
		return true
	}
	return false
}

func rewriteDirectSourceArgs(argv []string) []string {
	// Convenience: `taskprogress ./progress.json` works like
	// `taskprogress --source ./progress.json`.
	//
	// Cobra treats the first non-flag token as a subcommand, so we rewrite argv before parsing.
	if len(argv) < 2 {
		return argv
	}

	valueFlags := map[string]bool{
		"--source":   true,
		"--symbol":   true,
		"--timeout":  true,
		"--log-file": true,
		"--config":   true,
		"--format":   true,
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			if i+1 < len(argv) && isSourceArg(argv[i+1]) {
				out := make([]string, 0, len(argv)+1)
				out = append(out, argv[:i]...)
				out = append(out, "--source")
				out = append(out, argv[i+1:]...)
				return out
			}
			return argv
		}
		if strings.HasPrefix(a, "-") {
			if !strings.Contains(a, "=") && valueFlags[a] {
				i++ // skip value if present
			}
			continue
		}

		// First positional token.
		if isSourceArg(a) {
			out := make([]string, 0, len(argv)+1)
			out = append(out, argv[:i]...)
			out = append(out, "--source")
			out = append(out, argv[i:]...)
			return out
		}
		return argv
	}
	return argv
}

func main() {
	os.Args = rewriteDirectSourceArgs(os.Args)

	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
