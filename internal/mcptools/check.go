// check.go defines the check_executions tool types: lightweight status
// polling with aggregate counts and per-execution status (no result content).
package mcptools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"prompterd/internal/executor"
)

// CheckExecutionsArgs is the input for the check_executions tool.
type CheckExecutionsArgs struct {
	// ExecutionIDs filters to specific executions. Empty returns all known.
	ExecutionIDs []string `json:"execution_ids,omitempty" jsonschema:"Filter to specific execution IDs. Empty returns all."`
}

// CheckExecutionsOutput contains a compact summary plus individual statuses.
type CheckExecutionsOutput struct {
	Summary    ExecutionSummary  `json:"summary"`
	Executions []ExecutionStatus `json:"executions"`
}

// ExecutionSummary provides aggregate counts across all matched executions.
type ExecutionSummary struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Running   int `json:"running"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
	Cancelled int `json:"cancelled"`
}

// ExecutionStatus is the per-execution view. It omits the full result
// content; use get_result for that.
type ExecutionStatus struct {
	ID             string `json:"id"`
	Label          string `json:"label,omitempty"`
	Status         string `json:"status"`
	Error          string `json:"error,omitempty"`           // brief error message if failed
	ElapsedSeconds int    `json:"elapsed_seconds,omitempty"` // wall-clock seconds (meaning varies by status)
}

func (s *Server) checkExecutions(ctx context.Context, req *mcp.CallToolRequest, args CheckExecutionsArgs) (*mcp.CallToolResult, CheckExecutionsOutput, error) {
	idSet := make(map[string]bool, len(args.ExecutionIDs))
	for _, id := range args.ExecutionIDs {
		idSet[id] = true
	}
	match := func(id string) bool { return len(idSet) == 0 || idSet[id] }

	var out CheckExecutionsOutput

	seen := make(map[string]bool)
	for _, live := range s.reg.Snapshot() {
		if !match(live.ID) {
			continue
		}
		seen[live.ID] = true
		out.Executions = append(out.Executions, ExecutionStatus{
			ID:             live.ID,
			Label:          live.Label,
			Status:         string(live.Status),
			ElapsedSeconds: live.ElapsedSeconds,
		})
		tally(&out.Summary, live.Status)
	}

	s.mu.Lock()
	for _, id := range s.order {
		if !match(id) || seen[id] {
			continue
		}
		rec := s.records[id]
		out.Executions = append(out.Executions, ExecutionStatus{
			ID:             id,
			Label:          rec.label,
			Status:         string(rec.status),
			Error:          rec.errMsg,
			ElapsedSeconds: int(rec.duration.Seconds()),
		})
		tally(&out.Summary, rec.status)
	}
	s.mu.Unlock()

	return nil, out, nil
}

func tally(sum *ExecutionSummary, status executor.Status) {
	sum.Total++
	switch status {
	case executor.StatusPending:
		sum.Pending++
	case executor.StatusRunning:
		sum.Running++
	case executor.StatusCompleted:
		sum.Completed++
	case executor.StatusFailed:
		sum.Failed++
	case executor.StatusCancelled:
		sum.Cancelled++
	}
}
