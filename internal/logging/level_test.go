package logging

import (
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input     string
		wantLevel slog.Level
		wantOK    bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{"Warn", slog.LevelWarn, true},
		{"warning", slog.LevelWarn, true},
		{" error ", slog.LevelError, true},
		{"", DefaultLevel, false},
		{"trace", DefaultLevel, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseLevel(tt.input)
			if got != tt.wantLevel || ok != tt.wantOK {
				t.Errorf("ParseLevel(%q) = (%v, %v), want (%v, %v)", tt.input, got, ok, tt.wantLevel, tt.wantOK)
			}
			if ParseLevelOrDefault(tt.input) != tt.wantLevel {
				t.Errorf("ParseLevelOrDefault(%q) = %v, want %v", tt.input, ParseLevelOrDefault(tt.input), tt.wantLevel)
			}
		})
	}
}

func TestLevelNamesParse(t *testing.T) {
	for _, name := range LevelNames {
		if _, ok := ParseLevel(name); !ok {
			t.Errorf("ParseLevel(%q) should succeed", name)
		}
	}
}
