package logger

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MockLogger records log entries in memory for assertions in tests.
type MockLogger struct {
	mu      sync.Mutex
	entries []MockEntry
	level   Level
}

// MockEntry stores a single log emission.
type MockEntry struct {
	Level   Level
	Message string
	Fields  []Field
}

// Field returns the value of the named field and whether it was present.
func (e MockEntry) Field(key string) (interface{}, bool) {
	for _, f := range e.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// NewMockLogger creates a MockLogger that records every level.
func NewMockLogger() *MockLogger {
	return &MockLogger{level: LevelDebug}
}

func (m *MockLogger) Debug(format string, args ...interface{}) {
	m.record(LevelDebug, fmt.Sprintf(format, args...), nil)
}

func (m *MockLogger) Info(format string, args ...interface{}) {
	m.record(LevelInfo, fmt.Sprintf(format, args...), nil)
}

func (m *MockLogger) Warn(format string, args ...interface{}) {
	m.record(LevelWarn, fmt.Sprintf(format, args...), nil)
}

func (m *MockLogger) Error(format string, args ...interface{}) {
	m.record(LevelError, fmt.Sprintf(format, args...), nil)
}

func (m *MockLogger) DebugContext(_ context.Context, msg string, fields ...Field) {
	m.record(LevelDebug, msg, fields)
}

func (m *MockLogger) InfoContext(_ context.Context, msg string, fields ...Field) {
	m.record(LevelInfo, msg, fields)
}

func (m *MockLogger) WarnContext(_ context.Context, msg string, fields ...Field) {
	m.record(LevelWarn, msg, fields)
}

func (m *MockLogger) ErrorContext(_ context.Context, msg string, fields ...Field) {
	m.record(LevelError, msg, fields)
}

// With returns the same mock so derived loggers record into one place.
func (m *MockLogger) With(fields ...Field) Logger {
	return m
}

func (m *MockLogger) SetLevel(level Level) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.level = level
}

func (m *MockLogger) GetLevel() Level {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.level
}

func (m *MockLogger) record(level Level, msg string, fields []Field) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if level < m.level {
		return
	}
	m.entries = append(m.entries, MockEntry{
		Level:   level,
		Message: msg,
		Fields:  append([]Field(nil), fields...),
	})
}

// Entries returns a copy of all stored entries.
func (m *MockLogger) Entries() []MockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockEntry(nil), m.entries...)
}

// HasEntry reports whether an entry with the provided level contains the substring.
func (m *MockLogger) HasEntry(level Level, substring string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, entry := range m.entries {
		if entry.Level == level && strings.Contains(entry.Message, substring) {
			return true
		}
	}
	return false
}

// CountEntries counts entries recorded with the supplied level.
func (m *MockLogger) CountEntries(level Level) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for _, entry := range m.entries {
		if entry.Level == level {
			count++
		}
	}
	return count
}
