package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/jhuilla/gate/internal/bundle"
	"github.com/jhuilla/gate/internal/report"
	"github.com/jhuilla/gate/internal/workflow"
)

type runParams struct {
	Phase string `json:"phase" jsonschema:"name of the phase to run, as listed by gate_phases"`
}

func (h *handler) runHandler(ctx context.Context, req *mcp.CallToolRequest, params runParams) (*mcp.CallToolResult, any, error) {
	pr, _, err := h.runPhase(ctx, params.Phase)
	if err != nil {
		return errorResult(fmt.Sprintf("run failed: %v", err))
	}
	return textResult(formatRun(pr))
}

func (h *handler) bundleHandler(ctx context.Context, req *mcp.CallToolRequest, params runParams) (*mcp.CallToolResult, any, error) {
	pr, eng, err := h.runPhase(ctx, params.Phase)
	if err != nil {
		return errorResult(fmt.Sprintf("run failed: %v", err))
	}
	if pr.Passed() {
		return textResult(fmt.Sprintf("Status: PASS\nRun: %s\n\nPhase %s passed. Nothing to fix.\n", pr.ID, pr.Phase))
	}
	return textResult(fmt.Sprintf("Run: %s\n\n%s", pr.ID, bundle.Render(pr, eng.Config)))
}

// runPhase runs phase and saves the result for gate_inspect.
func (h *handler) runPhase(ctx context.Context, phase string) (*report.PhaseResult, *workflow.Engine, error) {
	if phase == "" {
		return nil, nil, errors.New("phase is required")
	}
	eng := h.currentEngine()
	pr, err := eng.RunPhase(ctx, phase)
	if err != nil {
		return nil, nil, err
	}
	if err := h.store.Save(pr); err != nil && eng.Logger != nil {
		eng.Logger.Warn("saving run", zap.String("run_id", pr.ID), zap.Error(err))
	}
	return pr, eng, nil
}

func formatRun(pr *report.PhaseResult) string {
	var b strings.Builder

	if pr.Passed() {
		fmt.Fprintln(&b, "Status: PASS")
	} else {
		fmt.Fprintln(&b, "Status: FAIL")
	}
	fmt.Fprintf(&b, "Run: %s\n", pr.ID)
	fmt.Fprintf(&b, "Phase: %s (%dms)\n", pr.Phase, pr.DurationMs)
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, "Gates:")
	for _, g := range pr.Gates {
		switch {
		case g.Status == report.StatusSkip:
			fmt.Fprintf(&b, "  %s: skip (%s)\n", g.Name, g.Reason)
		case g.ExitCode != nil && g.Status == report.StatusFail:
			fmt.Fprintf(&b, "  %s: fail (exit %d)\n", g.Name, *g.ExitCode)
		default:
			fmt.Fprintf(&b, "  %s: %s\n", g.Name, g.Status)
		}
	}
	fmt.Fprintln(&b)

	if pr.Passed() {
		fmt.Fprintln(&b, "All gates passed.")
		return b.String()
	}

	first, err := pr.Gate(pr.FailedGate)
	if err == nil {
		if len(first.Highlights) > 0 {
			fmt.Fprintln(&b, "Highlights:")
			for _, hl := range first.Highlights {
				fmt.Fprintf(&b, "  %s:%d:%d: %s\n", hl.File, hl.Line, hl.Col, hl.Message)
			}
			fmt.Fprintln(&b)
		}
	}
	fmt.Fprintf(&b, "Inspect with gate_inspect(run_id=%q, gate=%q).\n", pr.ID, pr.FailedGate)
	return b.String()
}
