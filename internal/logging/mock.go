package logging

import (
	"fmt"
	"sync"
)

// MockLogger records entries instead of writing them. Child loggers created with
// WithField/WithFields/WithError share the parent's record.
type MockLogger struct {
	rec    *record
	fields []Field
	err    error
}

type record struct {
	mu      sync.Mutex
	entries []LogEntry
}

// LogEntry is one captured log call.
type LogEntry struct {
	Level   string
	Message string
	Fields  []Field
	Error   error
}

// NewMockLogger returns an empty MockLogger.
func NewMockLogger() *MockLogger {
	return &MockLogger{rec: &record{}}
}

func (m *MockLogger) add(level, msg string, fields []Field) {
	if m.rec == nil {
		m.rec = &record{}
	}
	all := make([]Field, 0, len(m.fields)+len(fields))
	all = append(all, m.fields...)
	all = append(all, fields...)

	m.rec.mu.Lock()
	defer m.rec.mu.Unlock()
	m.rec.entries = append(m.rec.entries, LogEntry{Level: level, Message: msg, Fields: all, Error: m.err})
}

func (m *MockLogger) Debug(msg string, fields ...Field) { m.add("DEBUG", msg, fields) }
func (m *MockLogger) Info(msg string, fields ...Field)  { m.add("INFO", msg, fields) }
func (m *MockLogger) Warn(msg string, fields ...Field)  { m.add("WARN", msg, fields) }
func (m *MockLogger) Error(msg string, fields ...Field) { m.add("ERROR", msg, fields) }

// Fatalf records a FATAL entry; the mock never exits.
func (m *MockLogger) Fatalf(msg string, args ...interface{}) {
	m.add("FATAL", fmt.Sprintf(msg, args...), nil)
}

func (m *MockLogger) WithError(err error) Logger {
	return &MockLogger{rec: m.shared(), fields: m.fields, err: err}
}

func (m *MockLogger) WithField(key string, value interface{}) Logger {
	return m.WithFields(Field{Key: key, Value: value})
}

func (m *MockLogger) WithFields(fields ...Field) Logger {
	all := make([]Field, 0, len(m.fields)+len(fields))
	all = append(all, m.fields...)
	all = append(all, fields...)
	return &MockLogger{rec: m.shared(), fields: all, err: m.err}
}

func (m *MockLogger) shared() *record {
	if m.rec == nil {
		m.rec = &record{}
	}
	return m.rec
}

// Entries returns a copy of every captured entry.
func (m *MockLogger) Entries() []LogEntry {
	rec := m.shared()
	rec.mu.Lock()
	defer rec.mu.Unlock()
	out := make([]LogEntry, len(rec.entries))
	copy(out, rec.entries)
	return out
}

// EntriesByLevel returns the captured entries of one level.
func (m *MockLogger) EntriesByLevel(level string) []LogEntry {
	var out []LogEntry
	for _, e := range m.Entries() {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

// HasEntry reports whether an entry with this level and message was captured.
func (m *MockLogger) HasEntry(level, message string) bool {
	for _, e := range m.Entries() {
		if e.Level == level && e.Message == message {
			return true
		}
	}
	return false
}

// FieldValue returns the value of key on the first entry with message msg.
func (m *MockLogger) FieldValue(msg, key string) (interface{}, bool) {
	for _, e := range m.Entries() {
		if e.Message != msg {
			continue
		}
		for _, f := range e.Fields {
			if f.Key == key {
				return f.Value, true
			}
		}
	}
	return nil, false
}
