// registry.go implements the execution registry: the single source of truth
// for what is currently running.
//
// All submissions, stops, and terminal events go through the registry. The
// mutex guards the live map and each execution's status; it is never held
// across the blocking completion call. Entries are inserted by Submit and
// removed exactly once, by whichever terminal event wins.
package executor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"prompterd/internal/clipboard"
	"prompterd/internal/completion"
	"prompterd/internal/history"
	"prompterd/internal/message"
	"prompterd/internal/notify"
	"prompterd/internal/settings"
)

// Config wires the registry's collaborators. Client, Builder, and Board are
// required; History and Notifier default to a bounded log and a no-op
// notifier.
type Config struct {
	Settings settings.Settings
	Client   completion.Client
	Builder  *message.Builder
	Board    clipboard.Board
	History  *history.Log
	Notifier notify.Notifier
	Logger   *slog.Logger
}

// Registry tracks all in-flight executions keyed by execution id. It is the
// only component that creates or removes Execution entries.
type Registry struct {
	mu         sync.Mutex
	executions map[string]*Execution
	order      []string // insertion order for stable snapshots
	latest     string   // most recently submitted execution id

	lmu      sync.RWMutex
	listener Listener

	cfg      settings.Settings
	client   completion.Client
	builder  *message.Builder
	board    clipboard.Board
	history  *history.Log
	notifier notify.Notifier
	sem      chan struct{} // nil = unbounded concurrency
	log      *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(c Config) *Registry {
	r := &Registry{
		executions: make(map[string]*Execution),
		cfg:        c.Settings,
		client:     c.Client,
		builder:    c.Builder,
		board:      c.Board,
		history:    c.History,
		notifier:   c.Notifier,
		log:        c.Logger,
	}
	if r.history == nil {
		r.history = history.NewLog(c.Settings.HistoryEntries)
	}
	if r.notifier == nil {
		r.notifier = notify.Nop{}
	}
	if r.log == nil {
		r.log = slog.Default()
	}
	if c.Settings.MaxConcurrent > 0 {
		r.sem = make(chan struct{}, c.Settings.MaxConcurrent)
	}
	return r
}

// Submit registers a new execution for item and starts it in the background,
// returning the fresh execution id immediately. Business failures (bad
// model, missing prompt) surface later as a Failed event, never as a
// synchronous error. The original input is frozen here: for alternative
// (speech) runs it is the supplied context verbatim, otherwise the supplied
// context or the live input source at submission time.
func (r *Registry) Submit(item *Item, inputContext *string) string {
	id := uuid.NewString()

	var original string
	switch {
	case item != nil && item.Alternative:
		if inputContext != nil {
			original = *inputContext
		}
	case inputContext != nil:
		original = *inputContext
	default:
		original, _ = r.board.Read()
	}

	ctx, cancel := context.WithCancel(context.Background())
	exec := &Execution{
		ID:            id,
		Item:          item,
		InputContext:  inputContext,
		OriginalInput: original,
		Alternative:   item != nil && item.Alternative,
		StartTime:     time.Now(),
		status:        StatusPending,
		cancel:        cancel,
	}

	r.mu.Lock()
	r.executions[id] = exec
	r.order = append(r.order, id)
	r.latest = id
	r.mu.Unlock()

	r.log.Debug("execution submitted", "execution_id", id, "label", exec.Label())
	go r.run(ctx, exec)
	return id
}

// IsBusy reports whether at least one execution is live.
func (r *Registry) IsBusy() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.executions) > 0
}

// HasExecution reports whether the execution id is live.
func (r *Registry) HasExecution(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.executions[id]
	return ok
}

// Count returns the number of live executions.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.executions)
}

// Latest returns the most recently submitted execution id, live or not.
func (r *Registry) Latest() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.latest
}

// History returns the registry's history log.
func (r *Registry) History() *history.Log {
	return r.history
}

// Snapshot returns the live executions in submission order.
func (r *Registry) Snapshot() []ExecutionStatus {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	out := make([]ExecutionStatus, 0, len(r.executions))
	for _, id := range r.order {
		exec, ok := r.executions[id]
		if !ok {
			continue
		}
		st := ExecutionStatus{
			ID:             exec.ID,
			Label:          exec.Label(),
			Status:         exec.status,
			ElapsedSeconds: int(now.Sub(exec.StartTime).Seconds()),
		}
		if exec.Item != nil {
			st.PromptID = exec.Item.PromptID
		}
		out = append(out, st)
	}
	return out
}

// Stop cancels the execution with the given id, or every live execution when
// id is empty. It returns whether anything was actually stopped; stopping an
// unknown or already-terminal id is a no-op returning false. The entry is
// detached from the live map before Stop returns, so IsBusy/HasExecution
// reflect the new state immediately even while the worker unwinds. With
// silent set, the cancellation notification and event are suppressed.
func (r *Registry) Stop(id string, silent bool) bool {
	if id != "" {
		return r.stopOne(id, silent)
	}

	r.mu.Lock()
	ids := make([]string, 0, len(r.executions))
	for _, oid := range r.order {
		if _, ok := r.executions[oid]; ok {
			ids = append(ids, oid)
		}
	}
	r.mu.Unlock()

	stopped := false
	for _, oid := range ids {
		if r.stopOne(oid, silent) {
			stopped = true
		}
	}
	return stopped
}

func (r *Registry) stopOne(id string, silent bool) bool {
	exec := r.claim(id, StatusCancelled)
	if exec == nil {
		return false
	}
	exec.cancel()
	r.log.Info("execution cancelled", "execution_id", id, "label", exec.Label(), "silent", silent)

	if !silent {
		if r.cfg.NotificationsEnabled() {
			r.notifier.Info(exec.Label()+" cancelled", "Execution was stopped")
		}
		r.events().OnCancelled(exec.Label(), id)
	}
	return true
}

// claim performs the first-wins terminal transition: it marks the execution
// terminal with the given status and removes it from the live map. Returns
// nil if the id is unknown or another terminal event already won.
func (r *Registry) claim(id string, to Status) *Execution {
	r.mu.Lock()
	defer r.mu.Unlock()

	exec, ok := r.executions[id]
	if !ok || exec.status.terminal() {
		return nil
	}
	exec.status = to
	delete(r.executions, id)
	r.removeFromOrder(id)
	return exec
}

// removeFromOrder drops an id from the insertion-order slice. Caller holds mu.
func (r *Registry) removeFromOrder(id string) {
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			return
		}
	}
}

// setRunning transitions pending -> running. Returns false if the execution
// was cancelled while pending.
func (r *Registry) setRunning(exec *Execution) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if exec.status != StatusPending {
		return false
	}
	exec.status = StatusRunning
	return true
}
