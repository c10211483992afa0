package suggestions

import (
	"strings"
	"testing"
)

func TestModerateLengthBounds(t *testing.T) {
	m := NewModerator()

	if v := m.Moderate("Too short"); v.Allowed {
		t.Fatalf("9 runes should be rejected, got %+v", v)
	}
	if v := m.Moderate("Just right"); !v.Allowed {
		t.Fatalf("10 runes should pass, got reason %q", v.Reason)
	}
	if v := m.Moderate(strings.Repeat("a", 2001)); v.Allowed {
		t.Fatal("2001 runes should be rejected")
	}
	if v := m.Moderate("É" + strings.Repeat("é", 1999)); !v.Allowed {
		t.Fatalf("2000 runes should pass, got reason %q", v.Reason)
	}
}

func TestModerateURLLimit(t *testing.T) {
	m := NewModerator()

	three := "Check these out: https://a.io https://b.io https://c.io"
	if v := m.Moderate(three); !v.Allowed {
		t.Fatalf("three URLs should pass, got reason %q", v.Reason)
	}
	if v := m.Moderate(three + " https://d.io"); v.Allowed {
		t.Fatal("four URLs should be rejected")
	} else if v.Reason != "too many URLs" {
		t.Fatalf("unexpected reason %q", v.Reason)
	}
}

func TestModerateMentionLimit(t *testing.T) {
	m := NewModerator()

	if v := m.Moderate("Please ping <@1> <@2> <@!3> about this idea"); !v.Allowed {
		t.Fatalf("three mentions should pass, got reason %q", v.Reason)
	}
	if v := m.Moderate("Ping <@1> <@2> <@!3> <@4> about this idea"); v.Allowed {
		t.Fatal("four mentions should be rejected")
	}
}

func TestModerateBannedWords(t *testing.T) {
	m := NewModerator()
	if v := m.Moderate("This is definitely not SPAM at all"); v.Allowed {
		t.Fatal("banned word should be rejected case-insensitively")
	}

	custom := NewModerator("pineapple")
	if v := m.Moderate("Add pineapple topping as an option"); !v.Allowed {
		t.Fatalf("stock banned list should not apply to custom moderator, got %q", v.Reason)
	}
	if v := custom.Moderate("Add pineapple topping as an option"); v.Allowed {
		t.Fatal("custom banned word should be rejected")
	}
}

func TestModerateNormalizesWhitespaceAndCase(t *testing.T) {
	m := NewModerator()

	v := m.Moderate("first point.\r\n\r\n\r\n\r\nsecond point here")
	if !v.Allowed {
		t.Fatalf("unexpected rejection: %q", v.Reason)
	}
	if strings.Contains(v.Normalized, "\r") {
		t.Fatal("CRLF should be normalized to LF")
	}
	if strings.Contains(v.Normalized, "\n\n\n") {
		t.Fatalf("newline runs should collapse, got %q", v.Normalized)
	}
	if !strings.HasPrefix(v.Normalized, "First") {
		t.Fatalf("sentence start should be capitalized, got %q", v.Normalized)
	}
	if !strings.Contains(v.Normalized, "Second point") {
		t.Fatalf("sentence after period should be capitalized, got %q", v.Normalized)
	}
}

func TestModerateReflowsCodeFences(t *testing.T) {
	m := NewModerator()

	v := m.Moderate("Use this snippet:\n```go\n\n  x := 1  \n\n```")
	if !v.Allowed {
		t.Fatalf("unexpected rejection: %q", v.Reason)
	}
	if !strings.Contains(v.Normalized, "```go\nx := 1\n```") {
		t.Fatalf("fence should be reflowed with language tag kept, got %q", v.Normalized)
	}
}
