// Package mcptools exposes the execution registry over MCP. It is the
// daemon's caller surface: a hotkey helper, editor, or agent submits prompt
// executions and polls or cancels them through these tools.
//
// The server is also the registry's event listener; it records terminal
// outcomes so results stay queryable after the registry has released the
// execution. State is in-memory only and lives for the daemon process.
package mcptools

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"prompterd/internal/completion"
	"prompterd/internal/executor"
	"prompterd/internal/settings"
)

const version = "0.3.0"

// maxRecords bounds the retained terminal outcomes.
const maxRecords = 200

// ModelLister lists the models available on the completion backend.
type ModelLister interface {
	ListModels(ctx context.Context) ([]completion.ModelInfo, error)
}

// Server owns the MCP tool handlers and the terminal-outcome records.
type Server struct {
	executor.NopListener

	reg    *executor.Registry
	cfg    settings.Settings
	lister ModelLister
	log    *slog.Logger

	mu      sync.Mutex
	records map[string]record
	order   []string // insertion order for stable listing
}

// record is one observed terminal outcome.
type record struct {
	status   executor.Status
	label    string
	content  string
	errMsg   string
	duration time.Duration
}

// NewServer creates the tool server and registers it as the registry's
// listener.
func NewServer(reg *executor.Registry, cfg settings.Settings, lister ModelLister, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		reg:     reg,
		cfg:     cfg,
		lister:  lister,
		log:     log,
		records: make(map[string]record),
	}
	reg.SetListener(s)
	return s
}

// Run serves MCP over stdio until ctx is cancelled. Live executions are
// stopped on the way out.
func (s *Server) Run(ctx context.Context) error {
	srv := mcp.NewServer(&mcp.Implementation{Name: "prompterd", Version: version}, nil)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "submit_prompt",
		Description: "Submit a prompt execution in the background. Returns the execution id immediately; poll check_executions for progress and get_result for the output.",
	}, s.submitPrompt)
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "check_executions",
		Description: "Lightweight status poll: aggregate counts plus per-execution status. No result content; use get_result for that.",
	}, s.checkExecutions)
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "cancel_executions",
		Description: "Cancel specific executions, or every live execution when no ids are given.",
	}, s.cancelExecutions)
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "get_result",
		Description: "Retrieve the full output for finished executions.",
	}, s.getResult)
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "list_models",
		Description: "List configured model keys and the models available on the backend.",
	}, s.listModels)
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "list_prompts",
		Description: "List the configured prompt presets.",
	}, s.listPrompts)

	defer s.reg.Stop("", true)
	s.log.Info("mcp server started", "version", version)
	return srv.Run(ctx, &mcp.StdioTransport{})
}

// OnFinished records a completed execution (including degraded successes,
// which keep their content and carry the warning).
func (s *Server) OnFinished(res executor.Result, label string, d time.Duration, id string) {
	s.record(id, record{status: executor.StatusCompleted, label: label, content: res.Content, errMsg: res.Err, duration: d})
}

// OnError records a failed execution.
func (s *Server) OnError(message, label string, d time.Duration, id string) {
	s.record(id, record{status: executor.StatusFailed, label: label, errMsg: message, duration: d})
}

// OnCancelled records a cancelled execution.
func (s *Server) OnCancelled(label, id string) {
	s.record(id, record{status: executor.StatusCancelled, label: label})
}

func (s *Server) record(id string, rec record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[id]; !exists {
		s.order = append(s.order, id)
	}
	s.records[id] = rec
	if len(s.order) > maxRecords {
		drop := s.order[0]
		s.order = s.order[1:]
		delete(s.records, drop)
	}
}

func (s *Server) recordFor(id string) (record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	return rec, ok
}
