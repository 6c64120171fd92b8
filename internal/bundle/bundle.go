// Package bundle renders a failed phase result as a plain-text remediation
// document for an automated fixing agent. The fixed lines are parsed by
// downstream agents and must not change.
package bundle

import (
	"fmt"
	"strings"

	"github.com/jhuilla/gate/internal/config"
	"github.com/jhuilla/gate/internal/report"
)

const (
	noHighlights = "  (no structured highlights captured)"
	noLogOutput  = "  (no log output captured)"
)

var rules = []string{
	"- Make the smallest change that makes the gate pass.",
	"- Do not change tests unless the tests themselves are wrong.",
	"- Do not add dependencies unless strictly unavoidable.",
	"- Do not refactor unrelated code.",
	"- When done, respond with a short list of files changed and why.",
}

// RerunCommand is the command that re-runs phase.
func RerunCommand(phase string) string {
	return "gate run " + phase
}

// Render returns the remediation document for pr, or "" when the phase
// passed or has no failed gates. The output depends only on its inputs.
func Render(pr *report.PhaseResult, cfg *config.Config) string {
	if pr == nil || pr.Passed() || len(pr.FailedGates) == 0 {
		return ""
	}

	primary := pr.FailedGate
	if primary == "" {
		primary = pr.FailedGates[0]
	}

	var lines []string
	add := func(l ...string) { lines = append(lines, l...) }

	add(
		"GATE FAILED: "+primary,
		"PHASE: "+pr.Phase,
		"",
		"To fix this repo, make the smallest change that causes this command to pass:",
		"  "+RerunCommand(pr.Phase),
		"",
	)

	for _, name := range pr.FailedGates {
		g, err := pr.Gate(name)
		if err != nil {
			continue
		}
		add(gateBlock(g, cfg)...)
		add("")
	}

	add(
		"━━━ NEXT ━━━",
		fmt.Sprintf("After making edits, the harness will rerun `%s`.", RerunCommand(pr.Phase)),
		"You do not need to run tests yourself.",
		"",
		"━━━ RULES ━━━",
	)
	add(rules...)

	return strings.Join(lines, "\n") + "\n"
}

func gateBlock(g *report.GateResult, cfg *config.Config) []string {
	lines := []string{
		"━━━ FAILED GATE ━━━",
		"Gate:    " + g.Name,
		"Command: " + g.Command,
	}
	if cwd := gateCwd(cfg, g.Name); cwd != "" {
		lines = append(lines, "Cwd:     "+cwd)
	}
	exit := ""
	if g.ExitCode != nil {
		exit = fmt.Sprint(*g.ExitCode)
	}
	lines = append(lines, "Exit:    "+exit, "", "HIGHLIGHTS:")

	if len(g.Highlights) == 0 {
		lines = append(lines, noHighlights)
	}
	for _, h := range g.Highlights {
		lines = append(lines, fmt.Sprintf("  %s:%d:%d  %s", h.File, h.Line, h.Col, h.Message))
	}

	lines = append(lines, "", "LOG TAIL:")
	if strings.TrimSpace(g.LogTail) == "" {
		return append(lines, noLogOutput)
	}
	for _, l := range strings.Split(g.LogTail, "\n") {
		lines = append(lines, "  "+strings.TrimSuffix(l, "\r"))
	}
	return lines
}

// gateCwd returns the configured cwd when it differs from the repo root.
func gateCwd(cfg *config.Config, name string) string {
	if cfg == nil {
		return ""
	}
	def, ok := cfg.Gates[name]
	if !ok || def.Cwd == "" || def.Cwd == "." {
		return ""
	}
	return def.Cwd
}
