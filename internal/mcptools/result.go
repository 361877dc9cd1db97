// result.go defines the get_result tool types: full output retrieval for
// specific finished executions.
package mcptools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// GetResultArgs is the input for the get_result tool.
type GetResultArgs struct {
	ExecutionIDs []string `json:"execution_ids" jsonschema:"Execution IDs to retrieve full results for"`
}

// GetResultOutput contains the full content for each requested execution.
type GetResultOutput struct {
	Results []ExecutionResult `json:"results"`
}

// ExecutionResult includes the full output text for a single execution.
type ExecutionResult struct {
	ID      string `json:"id"`
	Label   string `json:"label,omitempty"`
	Status  string `json:"status"`
	Content string `json:"content,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (s *Server) getResult(ctx context.Context, req *mcp.CallToolRequest, args GetResultArgs) (*mcp.CallToolResult, GetResultOutput, error) {
	out := GetResultOutput{Results: make([]ExecutionResult, 0, len(args.ExecutionIDs))}
	for _, id := range args.ExecutionIDs {
		rec, ok := s.recordFor(id)
		if !ok {
			status := "not_found"
			if s.reg.HasExecution(id) {
				status = "running"
			}
			out.Results = append(out.Results, ExecutionResult{
				ID:     id,
				Status: status,
			})
			continue
		}
		out.Results = append(out.Results, ExecutionResult{
			ID:      id,
			Label:   rec.label,
			Status:  string(rec.status),
			Content: rec.content,
			Error:   rec.errMsg,
		})
	}
	return nil, out, nil
}
