// Package runner executes gate commands as child process groups with
// timeouts, signal escalation, and bounded output capture.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jhuilla/gate/internal/report"
)

// Defaults for Runner and Spec fields left at zero.
const (
	DefaultMaxOutput   = 500 * 1024
	DefaultGracePeriod = 3 * time.Second
	DefaultTimeout     = 60 * time.Second
	DefaultTailLines   = 50
)

// exitNotFound is the shell's exit status for an unknown command.
const exitNotFound = 127

// Runner executes gate commands.
type Runner struct {
	Live        io.Writer     // receives output as it is produced; may be nil
	Logger      *zap.Logger   // may be nil
	MaxOutput   int           // bytes of combined output retained
	GracePeriod time.Duration // wait between SIGTERM and SIGKILL
}

// Spec describes one gate invocation.
type Spec struct {
	Name      string
	Command   string            // run with sh -c
	Dir       string            // working directory; empty means the current one
	Env       map[string]string // merged over the inherited environment
	Timeout   time.Duration
	TailLines int
}

// Run executes spec and always returns a result with status pass or fail.
// Process-level failures (non-zero exit, timeout, unknown command, spawn
// errors) are reported in the result rather than as errors.
func (r *Runner) Run(ctx context.Context, spec Spec) *Result {
	log := r.logger().With(zap.String("gate", spec.Name))
	out := newTailBuffer(r.maxOutput(), r.Live)
	tail := spec.TailLines
	if tail <= 0 {
		tail = DefaultTailLines
	}
	timeout := spec.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	res := &Result{GateResult: report.GateResult{
		Name:       spec.Name,
		Command:    spec.Command,
		Highlights: []report.Highlight{},
	}}

	cmd := exec.Command("sh", "-c", spec.Command)
	cmd.Dir = spec.Dir
	cmd.Env = mergeEnv(os.Environ(), spec.Env)
	cmd.SysProcAttr = groupAttr()

	started := time.Now()
	finish := func() *Result {
		res.DurationMs = time.Since(started).Milliseconds()
		res.Output = out.Bytes()
		res.Truncated = out.Truncated()
		if res.LogTail == "" {
			res.LogTail = tailLines(string(res.Output), tail)
		}
		log.Debug("gate finished",
			zap.String("status", string(res.Status)),
			zap.Intp("exit_code", res.ExitCode),
			zap.Int64("duration_ms", res.DurationMs),
			zap.Bool("truncated", res.Truncated))
		return res
	}
	spawnFailed := func(err error) *Result {
		out.WriteString(fmt.Sprintf("Failed to start gate '%s': %v\n", spec.Name, err))
		log.Warn("gate failed to start", zap.Error(err))
		res.Status = report.StatusFail
		res.ExitCode = report.IntPtr(1)
		return finish()
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return spawnFailed(err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return spawnFailed(err)
	}
	if err := cmd.Start(); err != nil {
		return spawnFailed(err)
	}
	pgid := cmd.Process.Pid
	log.Debug("gate started", zap.Int("pid", pgid), zap.String("dir", cmd.Dir), zap.Duration("timeout", timeout))

	var drains errgroup.Group
	drains.Go(func() error { _, err := io.Copy(out, stdout); return err })
	drains.Go(func() error { _, err := io.Copy(out, stderr); return err })

	// Wait may only be called once both pipes are drained.
	done := make(chan error, 1)
	go func() {
		if err := drains.Wait(); err != nil {
			log.Debug("draining output", zap.Error(err))
		}
		done <- cmd.Wait()
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var waitErr error
	select {
	case waitErr = <-done:
	case <-timer.C:
		res.TimedOut = true
		out.WriteString(fmt.Sprintf("Gate '%s' timed out after %s.\n", spec.Name, formatSeconds(timeout)))
		log.Warn("gate timed out, terminating process group", zap.Int("pgid", pgid))
		r.terminate(log, pgid, done)
	case <-ctx.Done():
		res.Cancelled = true
		out.WriteString(fmt.Sprintf("Gate '%s' cancelled: %v.\n", spec.Name, ctx.Err()))
		log.Warn("gate cancelled, terminating process group", zap.Int("pgid", pgid))
		r.terminate(log, pgid, done)
	}

	if res.TimedOut || res.Cancelled {
		// The exit status of a killed group says nothing about the gate.
		res.Status = report.StatusFail
		res.ExitCode = report.IntPtr(1)
		return finish()
	}

	code, err := exitCode(waitErr)
	switch {
	case err != nil:
		out.WriteString(fmt.Sprintf("Gate '%s' failed: %v\n", spec.Name, err))
		res.Status = report.StatusFail
		res.ExitCode = report.IntPtr(1)
	case code == 0:
		res.Status = report.StatusPass
		res.ExitCode = report.IntPtr(0)
	case code == exitNotFound:
		res.Status = report.StatusFail
		res.ExitCode = report.IntPtr(1)
		res.LogTail = notFoundMessage(spec.Name, spec.Command)
		if r.Live != nil {
			_, _ = io.WriteString(r.Live, res.LogTail+"\n")
		}
	default:
		res.Status = report.StatusFail
		res.ExitCode = report.IntPtr(code)
	}
	return finish()
}

// terminate sends SIGTERM to the process group and SIGKILL if it is still
// running after the grace period, then waits for the exit notification.
func (r *Runner) terminate(log *zap.Logger, pgid int, done <-chan error) {
	if err := signalGroup(pgid, sigTerm); err != nil {
		log.Warn("sending SIGTERM to process group", zap.Int("pgid", pgid), zap.Error(err))
	}

	grace := time.NewTimer(r.gracePeriod())
	defer grace.Stop()

	select {
	case <-done:
		return
	case <-grace.C:
	}

	log.Warn("process group still running after grace period, sending SIGKILL", zap.Int("pgid", pgid))
	if err := signalGroup(pgid, sigKill); err != nil {
		log.Warn("sending SIGKILL to process group", zap.Int("pgid", pgid), zap.Error(err))
	}
	<-done
}

func notFoundMessage(name, command string) string {
	return strings.Join([]string{
		fmt.Sprintf("Gate '%s' failed: command not found (exit 127).", name),
		fmt.Sprintf("Command: %s", command),
		"Possible causes:",
		"  - the required toolchain is not installed or not in PATH",
		"  - the gate command has a typo in gate.config.yml",
		"  - a project dependency is not installed",
		"Install the project's dependencies and verify the command manually before retrying.",
	}, "\n")
}

// exitCode maps the result of cmd.Wait to a process exit code. Deaths by
// signal follow the shell convention of 128 + signal number.
func exitCode(err error) (int, error) {
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return 0, err
	}
	if sig, ok := signalled(exitErr.ProcessState); ok {
		return 128 + sig, nil
	}
	return exitErr.ExitCode(), nil
}

// mergeEnv appends overrides to base in key order. exec.Cmd keeps the last
// value of a duplicated key, so overrides win.
func mergeEnv(base []string, overrides map[string]string) []string {
	if len(overrides) == 0 {
		return base
	}
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	env := make([]string, 0, len(base)+len(keys))
	env = append(env, base...)
	for _, k := range keys {
		env = append(env, k+"="+overrides[k])
	}
	return env
}

func formatSeconds(d time.Duration) string {
	if d%time.Second == 0 {
		return fmt.Sprintf("%ds", int64(d/time.Second))
	}
	return d.String()
}

func (r *Runner) logger() *zap.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return zap.NewNop()
}

func (r *Runner) maxOutput() int {
	if r.MaxOutput > 0 {
		return r.MaxOutput
	}
	return DefaultMaxOutput
}

func (r *Runner) gracePeriod() time.Duration {
	if r.GracePeriod > 0 {
		return r.GracePeriod
	}
	return DefaultGracePeriod
}
