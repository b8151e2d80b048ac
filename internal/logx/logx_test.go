package logx

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestNew_EmptyPathIsNop(t *testing.T) {
	l, err := New("", false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if l.Core().Enabled(zap.ErrorLevel) {
		t.Fatalf("expected no-op logger")
	}
}

func TestNew_WritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "taskprogress.log")
	l, err := New(path, false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Error("fetch failed", zap.String("source", "https://example.invalid"))
	_ = l.Sync()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	s := string(b)
	if !strings.Contains(s, `"msg":"fetch failed"`) || !strings.Contains(s, `"source":"https://example.invalid"`) {
		t.Fatalf("unexpected log output: %s", s)
	}
}
