// submit.go defines the submit_prompt tool: background execution of a
// configured prompt preset.
package mcptools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"prompterd/internal/executor"
)

// SubmitPromptArgs is the input for the submit_prompt tool.
type SubmitPromptArgs struct {
	// PromptID selects the configured prompt preset.
	PromptID string `json:"prompt_id" jsonschema:"ID of the configured prompt preset to run"`
	// Model overrides the preset's model key.
	Model string `json:"model,omitempty" jsonschema:"Model key override. Empty uses the preset's model or the default."`
	// Input overrides the clipboard as the execution input. A present but
	// empty string is honored verbatim.
	Input *string `json:"input,omitempty" jsonschema:"Input text override. Omitted means the live clipboard is read."`
	// Label names the execution in notifications and status output.
	Label string `json:"label,omitempty" jsonschema:"Display label. Defaults to the preset name."`
	// SkipClipboard leaves the clipboard untouched on success.
	SkipClipboard bool `json:"skip_clipboard,omitempty" jsonschema:"Do not copy the output to the clipboard"`
}

// SubmitPromptOutput returns the id to correlate later events with.
type SubmitPromptOutput struct {
	ExecutionID string `json:"execution_id"`
}

func (s *Server) submitPrompt(ctx context.Context, req *mcp.CallToolRequest, args SubmitPromptArgs) (*mcp.CallToolResult, SubmitPromptOutput, error) {
	if args.PromptID == "" {
		return nil, SubmitPromptOutput{}, fmt.Errorf("prompt_id is required")
	}

	label := args.Label
	if label == "" {
		if p, ok := s.cfg.PromptByID(args.PromptID); ok {
			label = p.Name
		}
	}
	prompt, _ := s.cfg.PromptByID(args.PromptID)
	model := args.Model
	if model == "" {
		model = prompt.Model
	}

	item := &executor.Item{
		ID:            args.PromptID,
		Label:         label,
		PromptID:      args.PromptID,
		Model:         model,
		SkipClipboard: args.SkipClipboard,
	}
	id := s.reg.Submit(item, args.Input)
	return nil, SubmitPromptOutput{ExecutionID: id}, nil
}
