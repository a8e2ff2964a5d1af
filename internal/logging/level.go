package logging

import (
	"log/slog"
	"strings"
)

// DefaultLevel applies when log_level is empty or unknown.
const DefaultLevel = slog.LevelInfo

// LevelNames lists the accepted level names, most verbose first.
var LevelNames = []string{"debug", "info", "warn", "error"}

var levelsByName = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// ParseLevel maps a case-insensitive level name to a slog.Level. Unknown
// names yield (DefaultLevel, false).
func ParseLevel(s string) (slog.Level, bool) {
	level, ok := levelsByName[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return DefaultLevel, false
	}
	return level, true
}

// ParseLevelOrDefault drops the ok result of ParseLevel.
func ParseLevelOrDefault(s string) slog.Level {
	level, _ := ParseLevel(s)
	return level
}
