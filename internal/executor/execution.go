// execution.go defines the per-execution bookkeeping types the registry
// tracks.
package executor

import (
	"context"
	"time"

	"prompterd/internal/message"
)

// Status is an execution's lifecycle state.
//
// Lifecycle: pending -> running -> completed | failed
//
//	pending/running -> cancelled (via Stop)
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// terminal reports whether no further transition is allowed from s.
func (s Status) terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// Item is the user's selection that triggers an execution: which prompt,
// which model, and an optional structured conversation payload. Items are
// immutable once submitted.
type Item struct {
	ID    string
	Label string

	PromptID string
	Model    string // model key; empty falls back to the configured default

	// Conversation carries multi-turn data; nil means single-turn template
	// substitution.
	Conversation *message.Conversation

	// Stream requests incremental output relayed through the listener.
	Stream bool

	// SkipClipboard suppresses the output-sink write on success (the caller
	// displays the result itself).
	SkipClipboard bool

	// Alternative marks a speech-triggered run: the input is the supplied
	// context verbatim, even when empty.
	Alternative bool
}

// Execution is the registry's bookkeeping entry for one in-flight request.
// Exactly one Execution exists per live execution id; ids are never reused.
// status is guarded by the registry mutex; the remaining fields are frozen at
// submission except modelKey, which only the task goroutine writes before
// its terminal event.
type Execution struct {
	ID            string
	Item          *Item
	InputContext  *string // caller-supplied input override; nil = read live input source
	OriginalInput string  // input frozen at submission, for history
	Alternative   bool
	StartTime     time.Time

	status   Status
	cancel   context.CancelFunc
	modelKey string // resolved model key, for the success notification
}

// Label returns the display label for notifications and events.
func (e *Execution) Label() string {
	if e.Item == nil || e.Item.Label == "" {
		return "Unknown Prompt"
	}
	return e.Item.Label
}

// Result is the outcome of one execution. Created once at termination,
// immutable thereafter; ownership passes to the listener that consumes it.
type Result struct {
	ExecutionID string
	Success     bool
	Content     string // present iff success
	Err         string // error message iff not success; degraded-success detail otherwise
	Cancelled   bool   // a caller-requested stop, not an error
	Duration    time.Duration
}

// ExecutionStatus is the live-registry view of one execution, for status
// polling.
type ExecutionStatus struct {
	ID             string `json:"id"`
	Label          string `json:"label"`
	PromptID       string `json:"prompt_id,omitempty"`
	Status         Status `json:"status"`
	ElapsedSeconds int    `json:"elapsed_seconds"`
}
