package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestLoggerWritesLevelAndMessage(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)

	l.Info("hello %s", "world")
	l.Warn("careful")
	l.Error("boom %d", 42)

	out := buf.String()
	for _, want := range []string{"INFO", "hello world", "WARN", "careful", "ERROR", "boom 42"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q missing %q", out, want)
		}
	}
}

func TestLoggerDefaultsNilDestinationToStderr(t *testing.T) {
	l := New(nil)
	if l.dst == nil {
		t.Fatal("New(nil) left dst nil, want os.Stderr")
	}
	// Must not panic when writing to the default destination.
	l.Debug("ping")
}

func TestLoggerReopenSwitchesDestination(t *testing.T) {
	var first, second bytes.Buffer
	l := New(&first)
	l.Info("to first")

	l.Reopen(&second)
	l.Info("to second")

	if strings.Contains(second.String(), "to first") {
		t.Fatal("second buffer unexpectedly contains the pre-reopen message")
	}
	if !strings.Contains(second.String(), "to second") {
		t.Fatalf("second buffer = %q, want it to contain 'to second'", second.String())
	}
}
