// task.go runs one execution to exactly one terminal event: resolve the
// model and input, build the messages, call the completion backend, then
// perform the success or failure side effects.
package executor

import (
	"context"
	"fmt"
	"time"

	"prompterd/internal/completion"
	"prompterd/internal/history"
	"prompterd/internal/message"
	"prompterd/internal/notify"
	"prompterd/internal/settings"
)

// run drives one execution on its own goroutine. Every fault inside the task
// body, panics included, becomes a Failed terminal event; an execution never
// leaves its entry stuck in the registry.
func (r *Registry) run(ctx context.Context, exec *Execution) {
	defer func() {
		if p := recover(); p != nil {
			r.completeError(exec, fmt.Sprintf("panic in execution task: %v", p))
		}
	}()

	if r.sem != nil {
		select {
		case r.sem <- struct{}{}:
			defer func() { <-r.sem }()
		case <-ctx.Done():
			// Cancelled while waiting for a slot; Stop already reported it.
			return
		}
	}

	if !r.setRunning(exec) {
		return
	}
	r.events().OnStarted(exec.Label(), exec.ID)

	res := r.execute(ctx, exec)
	switch {
	case res.Cancelled:
		// The backend call unwound after a stop was requested. Stop already
		// claimed the entry and reported the cancellation; this result is
		// discarded, never double-reported.
		r.log.Debug("discarding result after cancellation", "execution_id", exec.ID)
	case res.Success:
		r.completeFinished(exec, res)
	default:
		r.completeError(exec, res.Err)
	}
}

// execute produces the raw task result. It performs no side effects; those
// belong to the terminal handlers so ordering stays in one place.
func (r *Registry) execute(ctx context.Context, exec *Execution) Result {
	res := Result{ExecutionID: exec.ID}
	item := exec.Item

	if item == nil {
		res.Err = "no item associated with execution"
		return res
	}

	// Model selection: the item's model, else the configured default. An
	// unresolvable model is a configuration error before any backend call.
	modelKey := item.Model
	if modelKey == "" {
		modelKey = r.cfg.DefaultModel
	}
	if modelKey == "" {
		res.Err = "no model specified and no default model configured"
		return res
	}
	if !r.client.HasModel(modelKey) {
		res.Err = fmt.Sprintf("model %q not found in configuration", modelKey)
		return res
	}
	exec.modelKey = modelKey

	msgs, err := r.resolveMessages(exec)
	if err != nil {
		res.Err = err.Error()
		return res
	}

	var content string
	if item.Stream {
		content, err = r.client.CompleteStream(ctx, modelKey, msgs, func(c completion.Chunk) {
			r.relay(c.Text, c.Accumulated, false, exec.ID)
		})
		if err == nil {
			r.relay("", content, true, exec.ID)
		}
	} else {
		content, err = r.client.Complete(ctx, modelKey, msgs)
	}
	if err != nil {
		if ctx.Err() != nil {
			res.Success = true
			res.Cancelled = true
			return res
		}
		res.Err = err.Error()
		return res
	}

	res.Success = true
	res.Content = content
	return res
}

// resolveMessages builds the request payload: conversation turns when the
// item carries them, single-turn template substitution otherwise. The input
// override is used verbatim; without one, the live input source is read at
// task-start time.
func (r *Registry) resolveMessages(exec *Execution) ([]message.Message, error) {
	item := exec.Item

	if item.Conversation != nil && len(item.Conversation.Turns) > 0 {
		prompt, ok := r.cfg.PromptByID(item.PromptID)
		if item.PromptID != "" && !ok {
			return nil, fmt.Errorf("%q: %w", item.PromptID, settings.ErrUnknownPrompt)
		}
		return r.builder.ResolveConversation(prompt, item.Conversation)
	}

	if item.PromptID == "" {
		return nil, fmt.Errorf("missing prompt id")
	}
	prompt, ok := r.cfg.PromptByID(item.PromptID)
	if !ok {
		return nil, fmt.Errorf("%q: %w", item.PromptID, settings.ErrUnknownPrompt)
	}

	var input string
	if exec.InputContext != nil {
		input = *exec.InputContext
	} else {
		input, _ = r.board.Read()
	}
	return r.builder.ResolvePrompt(prompt, input)
}

// completeFinished claims the Finished terminal event and performs the
// success side effects in order: output-sink write, history entry with the
// frozen original input, notification, listener event. A failed sink write
// is a degraded success: the result keeps the generated content and carries
// the failure detail, so no work is lost.
func (r *Registry) completeFinished(exec *Execution, res Result) {
	if r.claim(exec.ID, StatusCompleted) == nil {
		return
	}
	res.Duration = time.Since(exec.StartTime)

	degraded := false
	if res.Content != "" && (exec.Item == nil || !exec.Item.SkipClipboard) {
		if err := r.board.Write(res.Content); err != nil {
			degraded = true
			res.Err = fmt.Sprintf("completed but failed to copy result to clipboard: %v\n\nResult:\n%s", err, res.Content)
			r.log.Warn("output sink write failed", "execution_id", exec.ID, "error", err)
		}
	}

	r.history.Add(history.Entry{
		Input:        exec.OriginalInput,
		Output:       res.Content,
		PromptID:     promptID(exec),
		Success:      true,
		Error:        res.Err,
		Conversation: exec.Item != nil && exec.Item.Conversation != nil,
	})

	if r.cfg.NotificationsEnabled() {
		if degraded {
			r.notifier.Error(exec.Label()+" completed with warning", notify.Truncate(res.Err, 200))
		} else {
			detail := fmt.Sprintf("%s processed in %s", r.client.DisplayName(exec.modelKey), notify.FormatDuration(res.Duration))
			r.notifier.Success(exec.Label()+" completed", detail)
		}
	}

	r.log.Info("execution finished",
		"execution_id", exec.ID,
		"label", exec.Label(),
		"model", exec.modelKey,
		"duration", res.Duration,
		"output_chars", len(res.Content),
		"degraded", degraded)
	r.events().OnFinished(res, exec.Label(), res.Duration, exec.ID)
}

// completeError claims the Failed terminal event: history entry, error
// notification, listener event.
func (r *Registry) completeError(exec *Execution, errMsg string) {
	if r.claim(exec.ID, StatusFailed) == nil {
		return
	}
	duration := time.Since(exec.StartTime)

	r.history.Add(history.Entry{
		Input:        exec.OriginalInput,
		PromptID:     promptID(exec),
		Success:      false,
		Error:        errMsg,
		Conversation: exec.Item != nil && exec.Item.Conversation != nil,
	})

	if r.cfg.NotificationsEnabled() {
		r.notifier.Error(exec.Label()+" failed", notify.Truncate(errMsg, 200))
	}

	r.log.Warn("execution failed",
		"execution_id", exec.ID,
		"label", exec.Label(),
		"duration", duration,
		"error", errMsg)
	r.events().OnError(errMsg, exec.Label(), duration, exec.ID)
}

func promptID(exec *Execution) string {
	if exec.Item == nil {
		return ""
	}
	return exec.Item.PromptID
}
