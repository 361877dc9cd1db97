// cancel.go defines the cancel_executions tool types.
package mcptools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// CancelExecutionsArgs is the input for the cancel_executions tool.
type CancelExecutionsArgs struct {
	// ExecutionIDs cancels specific executions. Empty cancels all live ones.
	ExecutionIDs []string `json:"execution_ids,omitempty" jsonschema:"Specific execution IDs to cancel. Empty cancels all live executions."`
	// Silent suppresses the cancellation notification and event.
	Silent bool `json:"silent,omitempty" jsonschema:"Suppress the user-facing cancellation notification"`
}

// CancelExecutionsOutput reports how many executions were actually cancelled.
type CancelExecutionsOutput struct {
	Cancelled int `json:"cancelled"`
}

func (s *Server) cancelExecutions(ctx context.Context, req *mcp.CallToolRequest, args CancelExecutionsArgs) (*mcp.CallToolResult, CancelExecutionsOutput, error) {
	var out CancelExecutionsOutput
	if len(args.ExecutionIDs) == 0 {
		for _, live := range s.reg.Snapshot() {
			if s.reg.Stop(live.ID, args.Silent) {
				out.Cancelled++
			}
		}
		return nil, out, nil
	}
	for _, id := range args.ExecutionIDs {
		if s.reg.Stop(id, args.Silent) {
			out.Cancelled++
		}
	}
	return nil, out, nil
}
