package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestLogger_WritesKeyValuesAsJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(LevelInfo, &buf).Named("ingest")

	logger.Warn("batch failed", "batch", 2, "error", errors.New("boom"))
	logger.Debug("hidden")

	out := buf.String()
	for _, want := range []string{`"msg":"batch failed"`, `"batch":2`, `"error":"boom"`, `"logger":"ingest"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("log line missing %s: %s", want, out)
		}
	}
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug entry should be filtered at info level: %s", out)
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]Level{
		"debug":   LevelDebug,
		" WARN ":  LevelWarn,
		"warning": LevelWarn,
		"error":   LevelError,
		"":        LevelInfo,
		"verbose": LevelInfo,
	}
	for raw, want := range cases {
		if got := ParseLevel(raw); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", raw, got, want)
		}
	}
}

func TestLogger_NilReceiverDoesNotPanic(t *testing.T) {
	t.Parallel()

	var logger *Logger
	logger.Info("noop")
	logger.With("k", "v").Warn("noop")
}
