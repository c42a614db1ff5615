package env

import "testing"

func TestGetPrefersPrefixedVariable(t *testing.T) {
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("PIM_LOG_FORMAT", "console")

	if got := Get("LOG_FORMAT", "x"); got != "console" {
		t.Fatalf("expected prefixed value, got %q", got)
	}
}

func TestGetFallsBack(t *testing.T) {
	t.Setenv("PIM_SOMETHING_UNSET", "")
	t.Setenv("SOMETHING_UNSET", "  ")

	if got := Get("SOMETHING_UNSET", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}
}

func TestLogFormat(t *testing.T) {
	t.Setenv("PIM_LOG_FORMAT", "CONSOLE")
	if got := LogFormat(); got != "console" {
		t.Fatalf("expected console, got %q", got)
	}
	t.Setenv("PIM_LOG_FORMAT", "pretty")
	if got := LogFormat(); got != "json" {
		t.Fatalf("expected json for unknown format, got %q", got)
	}
}
