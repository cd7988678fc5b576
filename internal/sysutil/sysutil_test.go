package sysutil

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestSetLogLevel_AllVariants(t *testing.T) {
	orig := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(orig) })

	cases := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{" DEBUG ", zerolog.DebugLevel}, // trimmed, any case
		{"info", zerolog.InfoLevel},
		{"", zerolog.InfoLevel}, // unset env falls back to info
		{"warn", zerolog.WarnLevel},
		{"Warning", zerolog.WarnLevel}, // long-form alias
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"panic", zerolog.PanicLevel},
		{"verbose", zerolog.InfoLevel}, // unrecognized -> info
	}

	for _, tc := range cases {
		SetLogLevel(tc.in)
		if got := zerolog.GlobalLevel(); got != tc.want {
			t.Fatalf("SetLogLevel(%q) -> %v; want %v", tc.in, got, tc.want)
		}
	}
}

func TestIsTruthy(t *testing.T) {
	trues := []string{"1", "true", "True", " yes ", "Y", "on", "ON"}
	falses := []string{"", "0", "false", "no", "off", "n", " ", "enabledd"}

	for _, v := range trues {
		if !IsTruthy(v) {
			t.Fatalf("IsTruthy(%q) = false; want true", v)
		}
	}
	for _, v := range falses {
		if IsTruthy(v) {
			t.Fatalf("IsTruthy(%q) = true; want false", v)
		}
	}
}

func TestFirstNonEmpty(t *testing.T) {
	// zero args
	if got := FirstNonEmpty(); got != "" {
		t.Fatalf("FirstNonEmpty() = %q; want \"\"", got)
	}
	// whitespace-only args count as empty
	if got := FirstNonEmpty(" ", "\t", "\n"); got != "" {
		t.Fatalf("FirstNonEmpty(empties) = %q; want \"\"", got)
	}
	// returns the first non-blank value as-is, spacing intact
	if got := FirstNonEmpty("   ", "  amen  ", "grace"); got != "  amen  " {
		t.Fatalf("FirstNonEmpty(...) = %q; want %q", got, "  amen  ")
	}
	// short-circuits on the first value
	if got := FirstNonEmpty("db-path", "fallback-path"); got != "db-path" {
		t.Fatalf("FirstNonEmpty(...) = %q; want %q", got, "db-path")
	}
}
