package history

import (
	"fmt"
	"testing"
)

func TestAddAssignsIDAndTimestamp(t *testing.T) {
	l := NewLog(10)
	e := l.Add(Entry{Input: "in", Output: "out", Success: true})
	if e.ID == "" {
		t.Fatal("Add should assign an id")
	}
	if e.Timestamp.IsZero() {
		t.Fatal("Add should assign a timestamp")
	}
	got, ok := l.Get(e.ID)
	if !ok || got.Output != "out" {
		t.Fatalf("Get(%s) = %+v, %v", e.ID, got, ok)
	}
}

func TestEntriesMostRecentFirst(t *testing.T) {
	l := NewLog(10)
	for i := 0; i < 3; i++ {
		l.Add(Entry{Input: fmt.Sprintf("in-%d", i), Success: true})
	}
	entries := l.Entries()
	if len(entries) != 3 {
		t.Fatalf("len = %d, want 3", len(entries))
	}
	if entries[0].Input != "in-2" || entries[2].Input != "in-0" {
		t.Fatalf("entries not most-recent-first: %+v", entries)
	}
}

func TestTrimKeepsNewestEntries(t *testing.T) {
	l := NewLog(3)
	for i := 0; i < 5; i++ {
		l.Add(Entry{Input: fmt.Sprintf("in-%d", i)})
	}
	if l.Len() != 3 {
		t.Fatalf("Len = %d, want 3", l.Len())
	}
	entries := l.Entries()
	if entries[len(entries)-1].Input != "in-2" {
		t.Fatalf("oldest surviving entry should be in-2, got %q", entries[len(entries)-1].Input)
	}
}

func TestLastInputAndLastOutput(t *testing.T) {
	l := NewLog(10)
	if _, ok := l.LastInput(); ok {
		t.Fatal("empty log has no last input")
	}
	if _, ok := l.LastOutput(); ok {
		t.Fatal("empty log has no last output")
	}

	l.Add(Entry{Input: "a", Output: "result-a", Success: true})
	l.Add(Entry{Input: "b", Error: "boom", Success: false})

	in, ok := l.LastInput()
	if !ok || in != "b" {
		t.Fatalf("LastInput = %q, %v", in, ok)
	}
	// LastOutput skips failed entries.
	out, ok := l.LastOutput()
	if !ok || out != "result-a" {
		t.Fatalf("LastOutput = %q, %v", out, ok)
	}
}

func TestClear(t *testing.T) {
	l := NewLog(10)
	l.Add(Entry{Input: "x"})
	l.Clear()
	if l.Len() != 0 {
		t.Fatalf("Len after Clear = %d", l.Len())
	}
}
