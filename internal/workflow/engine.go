// Package workflow sequences the gates of a phase. It is consumed by both
// the CLI commands and the MCP server.
package workflow

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jhuilla/gate/internal/config"
	"github.com/jhuilla/gate/internal/highlight"
	"github.com/jhuilla/gate/internal/report"
	"github.com/jhuilla/gate/internal/runner"
)

// GateRunner executes a single gate. Implemented by runner.Runner.
type GateRunner interface {
	Run(ctx context.Context, spec runner.Spec) *runner.Result
}

// Engine holds shared dependencies for phase runs.
type Engine struct {
	Config   *config.Config
	Runner   GateRunner
	RepoRoot string      // gate cwd values resolve against this
	Logger   *zap.Logger // may be nil
	Progress io.Writer   // receives one line per gate before it starts; may be nil
}

// Phases returns the configured phase names in sorted order.
func (e *Engine) Phases() []string {
	return e.Config.PhaseNames()
}

// Resolve returns the ordered gate names of phase. Unknown phases, empty
// phases and references to undefined gates are configuration errors.
func (e *Engine) Resolve(phase string) ([]string, error) {
	names := e.Config.Phases[phase]
	if len(names) == 0 {
		return nil, config.Errorf(nil, "Phase '%s' is not defined or empty", phase)
	}
	for _, name := range names {
		if _, ok := e.Config.Gates[name]; !ok {
			return nil, config.Errorf(nil, "Gate '%s' referenced in phase '%s' is not defined", name, phase)
		}
	}
	return names, nil
}

// RunPhase runs the gates of phase in order and returns the assembled
// result. Gate failures are reported in the result; the only errors are
// configuration errors detected before any gate starts.
func (e *Engine) RunPhase(ctx context.Context, phase string) (*report.PhaseResult, error) {
	names, err := e.Resolve(phase)
	if err != nil {
		return nil, err
	}

	log := e.logger().With(zap.String("phase", phase))
	stop := e.Config.StopOnFirstFailure()

	pr := &report.PhaseResult{
		ID:          uuid.New().String(),
		Version:     report.Version,
		Phase:       phase,
		StartedAt:   time.Now().UTC(),
		FailedGates: []string{},
		Gates:       make([]report.GateResult, 0, len(names)),
	}
	log.Debug("phase started", zap.String("run_id", pr.ID), zap.Strings("gates", names), zap.Bool("stop_on_first_failure", stop))

	for _, name := range names {
		def := e.Config.Gates[name]

		if stop && len(pr.FailedGates) > 0 {
			pr.Gates = append(pr.Gates, skipped(name, def.Command, pr.FailedGates[0]))
			log.Debug("gate skipped", zap.String("gate", name))
			continue
		}

		gr := e.runGate(ctx, name, def)
		pr.Gates = append(pr.Gates, gr)
		if gr.Failed() {
			pr.FailedGates = append(pr.FailedGates, name)
		}
	}

	pr.DurationMs = time.Since(pr.StartedAt).Milliseconds()
	if len(pr.FailedGates) > 0 {
		pr.Status = report.StatusFail
		pr.FailedGate = pr.FailedGates[0]
	} else {
		pr.Status = report.StatusPass
	}

	log.Debug("phase finished",
		zap.String("status", string(pr.Status)),
		zap.Strings("failed_gates", pr.FailedGates),
		zap.Int64("duration_ms", pr.DurationMs))
	return pr, nil
}

func (e *Engine) runGate(ctx context.Context, name string, def config.GateDefinition) report.GateResult {
	if e.Progress != nil {
		fmt.Fprintf(e.Progress, "==> %s: %s\n", name, def.Command)
	}

	res := e.Runner.Run(ctx, runner.Spec{
		Name:      name,
		Command:   def.Command,
		Dir:       def.WorkDir(e.RepoRoot),
		Env:       def.Env,
		Timeout:   def.TimeoutDuration(),
		TailLines: e.Config.LogTailLines(),
	})

	gr := res.GateResult
	if gr.Highlights == nil {
		gr.Highlights = []report.Highlight{}
	}
	if matchers := matchersFor(name, def.Command); matchers != nil && gr.Failed() {
		gr.Highlights = highlight.Extract(string(res.Output), highlight.DefaultMax, matchers)
	}
	return gr
}

func skipped(name, command, firstFailed string) report.GateResult {
	return report.GateResult{
		Name:       name,
		Status:     report.StatusSkip,
		Command:    command,
		Reason:     fmt.Sprintf("skipped: stopOnFirstFailure after %s failed", firstFailed),
		Highlights: []report.Highlight{},
	}
}

var tscCommand = regexp.MustCompile(`(^|[\s/])tsc(\s|$)`)

// matchersFor picks the diagnostic matchers for a gate, or nil when its
// output has no known format.
func matchersFor(name, command string) []highlight.Matcher {
	if name == "typecheck" || tscCommand.MatchString(command) {
		return highlight.Tools[highlight.ToolTSC]
	}
	return nil
}

func (e *Engine) logger() *zap.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return zap.NewNop()
}
