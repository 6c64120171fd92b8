// Package highlight extracts structured diagnostics from raw tool output.
//
// Each supported tool contributes an ordered list of line matchers. A line
// is offered to the matchers in order and the first match wins; lines no
// matcher accepts are treated as context and ignored.
package highlight

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jhuilla/gate/internal/report"
)

// DefaultMax is the highlight cap used when callers have no preference.
const DefaultMax = 20

// ToolTSC tags highlights produced from TypeScript compiler output.
const ToolTSC = "tsc"

// Matcher recognises a single diagnostic line.
type Matcher interface {
	Match(line string) (report.Highlight, bool)
}

// lineMatcher matches a regexp with four groups: file, line, col, message.
type lineMatcher struct {
	tool string
	re   *regexp.Regexp
}

func (m lineMatcher) Match(line string) (report.Highlight, bool) {
	sub := m.re.FindStringSubmatch(line)
	if sub == nil {
		return report.Highlight{}, false
	}
	ln, err := strconv.Atoi(sub[2])
	if err != nil {
		return report.Highlight{}, false
	}
	col, err := strconv.Atoi(sub[3])
	if err != nil {
		return report.Highlight{}, false
	}
	return report.Highlight{
		File:    sub[1],
		Line:    ln,
		Col:     col,
		Message: strings.TrimSpace(sub[4]),
		Tool:    m.tool,
	}, true
}

// TSC matches both layouts tsc uses for errors:
//
//	src/foo.ts(42,13): error TS2345: message
//	src/foo.ts:42:13 - error TS2345: message
var TSC = []Matcher{
	lineMatcher{tool: ToolTSC, re: regexp.MustCompile(`^(.+?)\((\d+),(\d+)\): error TS\d+: (.+)$`)},
	lineMatcher{tool: ToolTSC, re: regexp.MustCompile(`^(.+?):(\d+):(\d+) - error TS\d+: (.+)$`)},
}

// Tools maps a tool tag to its matchers.
var Tools = map[string][]Matcher{
	ToolTSC: TSC,
}

// Extract scans output line by line and returns at most max highlights in
// the order they appear. It never returns nil.
func Extract(output string, max int, matchers []Matcher) []report.Highlight {
	out := []report.Highlight{}
	if output == "" || max <= 0 {
		return out
	}

	for _, line := range strings.Split(output, "\n") {
		if len(out) >= max {
			break
		}
		line = strings.TrimSuffix(line, "\r")
		for _, m := range matchers {
			if h, ok := m.Match(line); ok {
				out = append(out, h)
				break
			}
		}
	}
	return out
}

// ExtractTSC is Extract with the tsc matchers.
func ExtractTSC(output string, max int) []report.Highlight {
	return Extract(output, max, TSC)
}
