package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	slogmulti "github.com/samber/slog-multi"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation settings for the log file.
const (
	MaxFileSizeMB  = 10
	MaxFileBackups = 3
	MaxFileAgeDays = 28
)

// Manager owns the process logger. It starts in bootstrap mode (text on
// stderr) and is upgraded to stderr text plus a rotating JSON file once
// configuration is loaded.
type Manager struct {
	handler *SwappableHandler
	logger  *slog.Logger
	stderr  io.Writer
	file    *lumberjack.Logger
	level   *slog.LevelVar
	mu      sync.Mutex
}

// NewManager creates a logging manager in bootstrap mode.
func NewManager() *Manager {
	return newManager(os.Stderr)
}

func newManager(stderr io.Writer) *Manager {
	level := new(slog.LevelVar)
	level.Set(DefaultLevel)

	handler := NewSwappableHandler(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	return &Manager{
		handler: handler,
		logger:  slog.New(handler),
		stderr:  stderr,
		level:   level,
	}
}

// Logger returns the process logger. The instance is stable across Upgrade
// calls.
func (m *Manager) Logger() *slog.Logger {
	return m.logger
}

// Upgrade switches to full mode: text on stderr and JSON to logFilePath,
// rotated by size. The file is created immediately so a bad path fails here
// rather than on the first write.
func (m *Manager) Upgrade(logFilePath string, level slog.Level) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	dir := filepath.Dir(logFilePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory %q; %w", dir, err)
	}

	f, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file %q; %w", logFilePath, err)
	}
	_ = f.Close()

	if m.file != nil {
		_ = m.file.Close()
	}
	m.file = &lumberjack.Logger{
		Filename:   logFilePath,
		MaxSize:    MaxFileSizeMB,
		MaxBackups: MaxFileBackups,
		MaxAge:     MaxFileAgeDays,
		Compress:   true,
	}

	m.level.Set(level)
	opts := &slog.HandlerOptions{Level: m.level}

	m.handler.Swap(slogmulti.Fanout(
		slog.NewTextHandler(m.stderr, opts),
		slog.NewJSONHandler(m.file, opts),
	))

	return nil
}

// SetLevel changes the log level at runtime.
func (m *Manager) SetLevel(level slog.Level) {
	m.level.Set(level)
}

// Close closes the log file, if any. It is safe to call more than once.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.file == nil {
		return nil
	}
	err := m.file.Close()
	m.file = nil
	return err
}
