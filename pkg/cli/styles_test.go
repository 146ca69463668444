package cli

import (
	"bytes"
	"testing"
)

func TestStyles_PlainForNonTerminals(t *testing.T) {
	s := NewStyles(&bytes.Buffer{})

	if got := s.OK("Stored %s", "greet"); got != "✓ Stored greet" {
		t.Errorf("OK() = %q", got)
	}
	if got := s.Fail("Error: %s", "unexpected end of input"); got != "✗ Error: unexpected end of input" {
		t.Errorf("Fail() = %q", got)
	}
	if got := s.Heading.Render("Summary:"); got != "Summary:" {
		t.Errorf("Heading = %q", got)
	}
	if got := s.Muted.Render("  expected: NAME"); got != "  expected: NAME" {
		t.Errorf("Muted = %q", got)
	}
}
