package runner

import "github.com/jhuilla/gate/internal/report"

// Result holds the outcome of a gate execution.
type Result struct {
	report.GateResult

	Output    []byte // retained combined stdout+stderr (may be truncated from the front)
	Truncated bool   // true if older output was discarded to respect the size cap
	TimedOut  bool   // the timeout fired before the process exited
	Cancelled bool   // the caller's context ended before the process exited
}
