// Package mcp provides the gate MCP server, registering the phase tools
// and publishing model instructions.
package mcp

import (
	"context"
	_ "embed"
	"net/url"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/jhuilla/gate"
	"github.com/jhuilla/gate/internal/config"
	"github.com/jhuilla/gate/internal/report"
	"github.com/jhuilla/gate/internal/workflow"
)

//go:embed instructions.md
var Instructions string

// handler holds shared dependencies for all tool handlers.
type handler struct {
	mu     sync.RWMutex
	engine *workflow.Engine // replaced when the client reports a workspace root
	store  report.Store
}

// NewServer creates an MCP server with all gate tools registered. Phase
// runs are saved to store so that gate_inspect can find them again.
func NewServer(eng *workflow.Engine, store report.Store) *mcp.Server {
	h := &handler{engine: eng, store: store}

	opts := &mcp.ServerOptions{
		Instructions: Instructions,
		Capabilities: &mcp.ServerCapabilities{
			Tools: &mcp.ToolCapabilities{ListChanged: false},
		},
		InitializedHandler: func(ctx context.Context, req *mcp.InitializedRequest) {
			h.updateWorkspaceFromRoots(ctx, req.Session)
		},
	}
	s := mcp.NewServer(&mcp.Implementation{Name: "gate", Version: gate.Version}, opts)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "gate_phases",
		Description: "List the configured phases with their gates and commands, in execution order.",
	}, h.phasesHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name: "gate_run",
		Description: `Run every gate of a phase in order and report pass/fail per gate.

Use this after making code changes. Gates run sequentially; by default the first failure
skips the remaining gates. Results are stored for drill-down via gate_inspect.`,
	}, h.runHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name: "gate_bundle",
		Description: `Run a phase and, if it fails, return the remediation bundle: the failing commands,
extracted compiler diagnostics, the tail of each failing gate's log, and the rules to follow
while fixing. Returns a short pass notice when the phase passes.`,
	}, h.bundleHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name: "gate_inspect",
		Description: `Show the full result of one gate from an earlier gate_run or gate_bundle call.

Use the run_id from the tool output and the gate name.`,
	}, h.inspectHandler)

	return s
}

func (h *handler) currentEngine() *workflow.Engine {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.engine
}

// updateWorkspaceFromRoots queries the client for MCP roots and, if the
// first root holds a gate config, runs gates from there. Called during
// session initialization, before any tool calls.
func (h *handler) updateWorkspaceFromRoots(ctx context.Context, session *mcp.ServerSession) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	roots, err := session.ListRoots(ctx, &mcp.ListRootsParams{})
	if err != nil || len(roots.Roots) == 0 {
		return
	}

	u, err := url.Parse(roots.Roots[0].URI)
	if err != nil || u.Scheme != "file" {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	log := h.engine.Logger
	if log == nil {
		log = zap.NewNop()
	}
	loaded, err := config.Load(u.Path, "")
	if err != nil {
		log.Warn("ignoring client root without a usable config", zap.String("root", u.Path), zap.Error(err))
		return
	}

	eng := *h.engine
	eng.Config = loaded.Config
	eng.RepoRoot = loaded.RepoRoot
	h.engine = &eng
	log.Debug("workspace updated from client roots", zap.String("repo_root", loaded.RepoRoot))
}

// textResult is a helper to build a text-only tool result.
func textResult(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}, nil, nil
}

// errorResult is a helper to build an error tool result.
func errorResult(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}, nil, nil
}
