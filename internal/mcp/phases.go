package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type phasesParams struct{}

func (h *handler) phasesHandler(ctx context.Context, req *mcp.CallToolRequest, _ phasesParams) (*mcp.CallToolResult, any, error) {
	eng := h.currentEngine()
	cfg := eng.Config

	var b strings.Builder
	fmt.Fprintf(&b, "Repo root: %s\n", eng.RepoRoot)
	if cfg.StopOnFirstFailure() {
		fmt.Fprintln(&b, "Stop on first failure: yes")
	} else {
		fmt.Fprintln(&b, "Stop on first failure: no")
	}
	fmt.Fprintln(&b)

	for _, phase := range eng.Phases() {
		fmt.Fprintf(&b, "%s:\n", phase)
		for _, name := range cfg.Phases[phase] {
			def, ok := cfg.Gates[name]
			if !ok {
				fmt.Fprintf(&b, "  %s: (not defined)\n", name)
				continue
			}
			fmt.Fprintf(&b, "  %s: %s (timeout %s", name, def.Command, def.TimeoutDuration())
			if def.Cwd != "" && def.Cwd != "." {
				fmt.Fprintf(&b, ", cwd %s", def.Cwd)
			}
			fmt.Fprintln(&b, ")")
		}
	}

	return textResult(b.String())
}
