package workflow

import (
	"fmt"
	"time"

	"github.com/jhuilla/gate/internal/report"
)

// FormatSummary renders a short human-readable table of a phase result.
func FormatSummary(pr *report.PhaseResult) string {
	var b []byte
	w := func(format string, args ...any) {
		b = fmt.Appendf(b, format, args...)
	}

	if pr.Passed() {
		w("ok")
	} else {
		w("FAIL")
	}
	w("  phase %s (%s)\n\n", pr.Phase, formatMs(pr.DurationMs))

	for _, g := range pr.Gates {
		switch g.Status {
		case report.StatusPass:
			w("  %-15s ok      %s\n", g.Name, formatMs(g.DurationMs))
		case report.StatusFail:
			code := 1
			if g.ExitCode != nil {
				code = *g.ExitCode
			}
			w("  %-15s FAIL    exit %d, %s\n", g.Name, code, formatMs(g.DurationMs))
		case report.StatusSkip:
			w("  %-15s -\n", g.Name)
		}
	}

	if !pr.Passed() {
		w("\nFailed gates:")
		for _, name := range pr.FailedGates {
			w(" %s", name)
		}
		w("\n")
	}
	return string(b)
}

func formatMs(ms int64) string {
	return (time.Duration(ms) * time.Millisecond).String()
}
