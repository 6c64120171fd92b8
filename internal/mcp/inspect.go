package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/jhuilla/gate/internal/report"
)

type inspectParams struct {
	RunID string `json:"run_id" jsonschema:"the run ID from a gate_run or gate_bundle result"`
	Gate  string `json:"gate" jsonschema:"name of a gate in that run"`
}

func (h *handler) inspectHandler(ctx context.Context, req *mcp.CallToolRequest, params inspectParams) (*mcp.CallToolResult, any, error) {
	if params.RunID == "" {
		return errorResult("run_id is required")
	}
	if params.Gate == "" {
		return errorResult("gate is required")
	}

	result, err := h.store.Load(params.RunID)
	if err != nil {
		return errorResult(fmt.Sprintf("Failed to load run %s: %v", params.RunID, err))
	}

	g, err := result.Gate(params.Gate)
	if err != nil {
		return errorResult(err.Error())
	}

	return textResult(formatInspectOutput(result, g))
}

func formatInspectOutput(pr *report.PhaseResult, g *report.GateResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Run: %s (phase %s)\n", pr.ID, pr.Phase)
	fmt.Fprintf(&b, "Gate: %s: %s\n", g.Name, g.Status)
	fmt.Fprintf(&b, "Command: %s\n", g.Command)
	if g.ExitCode != nil {
		fmt.Fprintf(&b, "Exit: %d\n", *g.ExitCode)
	}
	fmt.Fprintf(&b, "Duration: %dms\n", g.DurationMs)
	if g.Reason != "" {
		fmt.Fprintf(&b, "Reason: %s\n", g.Reason)
	}

	if len(g.Highlights) > 0 {
		fmt.Fprintln(&b)
		fmt.Fprintf(&b, "Highlights (%d):\n", len(g.Highlights))
		for _, hl := range g.Highlights {
			fmt.Fprintf(&b, "  %s:%d:%d: [%s] %s\n", hl.File, hl.Line, hl.Col, hl.Tool, hl.Message)
		}
	}

	if strings.TrimSpace(g.LogTail) != "" {
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, "Log tail:")
		for _, line := range strings.Split(g.LogTail, "\n") {
			fmt.Fprintf(&b, "    %s\n", line)
		}
	}

	return b.String()
}
