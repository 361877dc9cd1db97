// models.go defines the list_models and list_prompts tool types.
package mcptools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"prompterd/internal/completion"
)

// ListModelsArgs is the input for the list_models tool. No arguments needed.
type ListModelsArgs struct{}

// ListModelsOutput lists the configured model keys and, when the backend is
// reachable, the models it has available.
type ListModelsOutput struct {
	DefaultModel string                 `json:"default_model,omitempty"`
	Configured   []ConfiguredModel      `json:"configured"`
	Available    []completion.ModelInfo `json:"available,omitempty"`
}

// ConfiguredModel describes one model key from the settings file.
type ConfiguredModel struct {
	Key         string `json:"key"`
	Model       string `json:"model"`
	Host        string `json:"host,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
}

func (s *Server) listModels(ctx context.Context, req *mcp.CallToolRequest, args ListModelsArgs) (*mcp.CallToolResult, ListModelsOutput, error) {
	out := ListModelsOutput{DefaultModel: s.cfg.DefaultModel}
	for key, m := range s.cfg.Models {
		out.Configured = append(out.Configured, ConfiguredModel{
			Key:         key,
			Model:       m.Model,
			Host:        m.Host,
			DisplayName: m.DisplayName,
		})
	}
	if s.lister != nil {
		available, err := s.lister.ListModels(ctx)
		if err != nil {
			s.log.Warn("backend model listing failed", "error", err)
		} else {
			out.Available = available
		}
	}
	return nil, out, nil
}

// ListPromptsArgs is the input for the list_prompts tool. No arguments needed.
type ListPromptsArgs struct{}

// ListPromptsOutput lists the configured prompt presets.
type ListPromptsOutput struct {
	Prompts []PromptInfo `json:"prompts"`
}

// PromptInfo describes a single configured prompt preset.
type PromptInfo struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Model       string   `json:"model,omitempty"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

func (s *Server) listPrompts(ctx context.Context, req *mcp.CallToolRequest, args ListPromptsArgs) (*mcp.CallToolResult, ListPromptsOutput, error) {
	out := ListPromptsOutput{Prompts: make([]PromptInfo, 0, len(s.cfg.Prompts))}
	for _, p := range s.cfg.Prompts {
		out.Prompts = append(out.Prompts, PromptInfo{
			ID:          p.ID,
			Name:        p.Name,
			Model:       p.Model,
			Description: p.Description,
			Tags:        p.Tags,
		})
	}
	return nil, out, nil
}
