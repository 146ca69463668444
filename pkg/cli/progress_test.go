package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestSimpleProgress(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewProgressReporter(buf, "Checking")

	progress.Start(4)
	progress.Increment()
	progress.Increment()
	if !strings.Contains(buf.String(), "(2/4)") {
		t.Errorf("output lacks 2/4: %q", buf.String())
	}

	progress.Finish()
	out := buf.String()
	if !strings.Contains(out, "Checking:") || !strings.Contains(out, "100% (4/4)") {
		t.Errorf("output = %q", out)
	}
	if !strings.HasSuffix(out, "\n") {
		t.Error("Finish() did not end the line")
	}
}

func TestSimpleProgress_IncrementStopsAtTotal(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewProgressReporter(buf, "Checking").(*SimpleProgress)

	progress.Start(1)
	progress.Increment()
	progress.Increment()
	if progress.current != 1 {
		t.Errorf("current = %d, want 1", progress.current)
	}
}

func TestSimpleProgress_ZeroTotal(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewProgressReporter(buf, "Checking")

	progress.Start(0)
	progress.Increment()
	progress.Finish()

	if buf.Len() != 0 {
		t.Errorf("output = %q, want nothing", buf.String())
	}
}

func TestSimpleProgress_Error(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewProgressReporter(buf, "Checking")

	progress.Start(3)
	progress.Error(errors.New("unreadable file"))

	if !strings.Contains(buf.String(), "Error: unreadable file") {
		t.Errorf("output = %q", buf.String())
	}
}
