package logger

import "sync"

// Entry is one message captured by Memory
type Entry struct {
	Message string
	Level   Level
}

// Memory keeps every message in order
type Memory struct {
	mu      sync.Mutex
	entries []Entry
}

func (m *Memory) Log(message string, level Level) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, Entry{Message: message, Level: level})
}

// Entries returns a copy of the captured messages
func (m *Memory) Entries() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Messages returns the messages logged at level
func (m *Memory) Messages(level Level) []string {
	var out []string
	for _, e := range m.Entries() {
		if e.Level == level {
			out = append(out, e.Message)
		}
	}
	return out
}

// Count returns how many messages were logged at level
func (m *Memory) Count(level Level) int {
	return len(m.Messages(level))
}
