// Package history keeps a bounded, append-only log of finished executions.
// State is in-memory only and lives for the daemon process.
package history

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Entry is one recorded execution. Input is the original input frozen at
// submission time, not whatever the clipboard held when the execution
// finished.
type Entry struct {
	ID           string
	Timestamp    time.Time
	Input        string
	Output       string
	PromptID     string
	Success      bool
	Error        string
	Conversation bool
}

// Log holds entries in insertion order, trimmed to a maximum count. Appends
// never drop a concurrent writer's entry; only the oldest entries age out.
type Log struct {
	mu      sync.Mutex
	entries []Entry
	max     int
}

// NewLog creates an empty log keeping at most max entries.
func NewLog(max int) *Log {
	if max <= 0 {
		max = 50
	}
	return &Log{max: max}
}

// Add appends an entry, assigning its id and timestamp, and returns it.
func (l *Log) Add(e Entry) Entry {
	e.ID = uuid.NewString()
	e.Timestamp = time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, e)
	if len(l.entries) > l.max {
		l.entries = l.entries[len(l.entries)-l.max:]
	}
	return e
}

// Entries returns all entries, most recent first.
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, 0, len(l.entries))
	for i := len(l.entries) - 1; i >= 0; i-- {
		out = append(out, l.entries[i])
	}
	return out
}

// Get returns the entry with the given id.
func (l *Log) Get(id string) (Entry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

// LastInput returns the input of the most recent entry.
func (l *Log) LastInput() (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.entries) == 0 {
		return "", false
	}
	return l.entries[len(l.entries)-1].Input, true
}

// LastOutput returns the output of the most recent successful entry.
func (l *Log) LastOutput() (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := len(l.entries) - 1; i >= 0; i-- {
		if l.entries[i].Success && l.entries[i].Output != "" {
			return l.entries[i].Output, true
		}
	}
	return "", false
}

// Len returns the number of stored entries.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Clear removes all entries.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}
