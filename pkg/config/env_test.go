package config

import (
	"testing"
	"time"
)

func TestGetEnvString(t *testing.T) {
	t.Setenv("MP_TEST_STRING", "@utro_channel")
	if got := GetEnvString("MP_TEST_STRING", "fallback"); got != "@utro_channel" {
		t.Errorf("got %q, want set value", got)
	}
	if got := GetEnvString("MP_TEST_STRING_UNSET", "fallback"); got != "fallback" {
		t.Errorf("got %q, want fallback", got)
	}
	t.Setenv("MP_TEST_STRING", "")
	if got := GetEnvString("MP_TEST_STRING", "fallback"); got != "fallback" {
		t.Errorf("empty value should fall back, got %q", got)
	}
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("MP_TEST_INT", "9091")
	if got := GetEnvInt("MP_TEST_INT", 9090); got != 9091 {
		t.Errorf("got %d, want 9091", got)
	}
	t.Setenv("MP_TEST_INT", "not-a-number")
	if got := GetEnvInt("MP_TEST_INT", 9090); got != 9090 {
		t.Errorf("unparseable value should fall back, got %d", got)
	}
	if got := GetEnvInt("MP_TEST_INT_UNSET", 9090); got != 9090 {
		t.Errorf("unset variable should fall back, got %d", got)
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		raw  string
		def  bool
		want bool
	}{
		{"1", false, true},
		{"true", false, true},
		{"TRUE", false, true},
		{"t", false, true},
		{"0", true, false},
		{"false", true, false},
		{"F", true, false},
		{"yes", false, false}, // not ParseBool syntax, falls back
		{"", true, true},
	}

	for _, tt := range tests {
		t.Setenv("MP_TEST_BOOL", tt.raw)
		if got := GetEnvBool("MP_TEST_BOOL", tt.def); got != tt.want {
			t.Errorf("GetEnvBool(%q, %v) = %v, want %v", tt.raw, tt.def, got, tt.want)
		}
	}
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("MP_TEST_DURATION", "90s")
	if got := GetEnvDuration("MP_TEST_DURATION", time.Minute); got != 90*time.Second {
		t.Errorf("got %v, want 90s", got)
	}
	t.Setenv("MP_TEST_DURATION", "soon")
	if got := GetEnvDuration("MP_TEST_DURATION", time.Minute); got != time.Minute {
		t.Errorf("unparseable value should fall back, got %v", got)
	}
}
