// events.go defines the caller-facing event contract and the streaming
// relay. Delivery is best-effort: with no listener registered, events are
// dropped.
package executor

import "time"

// Listener receives execution lifecycle events. Every event carries the
// execution id so a listener juggling concurrent executions can attribute it.
// Callbacks run on the execution's goroutine (or the Stop caller's, for
// cancellations) and must not block.
type Listener interface {
	// OnStarted fires when the task begins running.
	OnStarted(label, executionID string)

	// OnChunk relays partial output: the new fragment, everything
	// accumulated so far, and a final event carrying the full text once the
	// stream ends.
	OnChunk(chunk, accumulated string, final bool, executionID string)

	// OnFinished fires exactly once per execution that completes
	// successfully, including degraded successes (res.Err non-empty).
	OnFinished(res Result, label string, duration time.Duration, executionID string)

	// OnError fires exactly once per execution that fails.
	OnError(message, label string, duration time.Duration, executionID string)

	// OnCancelled fires when a stop request wins; not emitted for silent
	// stops.
	OnCancelled(label, executionID string)
}

// NopListener ignores all events. Embed it to implement only part of
// Listener.
type NopListener struct{}

func (NopListener) OnStarted(label, executionID string)                                {}
func (NopListener) OnChunk(chunk, accumulated string, final bool, executionID string)  {}
func (NopListener) OnFinished(res Result, label string, d time.Duration, id string)    {}
func (NopListener) OnError(message, label string, d time.Duration, executionID string) {}
func (NopListener) OnCancelled(label, executionID string)                              {}

// SetListener registers the caller's event listener. Passing nil detaches.
func (r *Registry) SetListener(l Listener) {
	r.lmu.Lock()
	defer r.lmu.Unlock()
	r.listener = l
}

func (r *Registry) events() Listener {
	r.lmu.RLock()
	defer r.lmu.RUnlock()
	if r.listener == nil {
		return NopListener{}
	}
	return r.listener
}

// relay hands a streaming chunk to the registered listener. Direct,
// non-blocking hand-off; dropped when nothing is registered.
func (r *Registry) relay(chunk, accumulated string, final bool, executionID string) {
	r.events().OnChunk(chunk, accumulated, final, executionID)
}
