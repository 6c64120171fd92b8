package highlight

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jhuilla/gate/internal/report"
)

func TestExtractTSC_ParenFormat(t *testing.T) {
	output := strings.Join([]string{
		"src/foo.ts(42,13): error TS2345: Type 'X' is not assignable to type 'Y'.",
		"src/bar.ts(10,5): error TS2339: Property 'baz' does not exist on type 'Qux'.",
	}, "\n")

	got := ExtractTSC(output, DefaultMax)
	want := []report.Highlight{
		{File: "src/foo.ts", Line: 42, Col: 13, Message: "Type 'X' is not assignable to type 'Y'.", Tool: "tsc"},
		{File: "src/bar.ts", Line: 10, Col: 5, Message: "Property 'baz' does not exist on type 'Qux'.", Tool: "tsc"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ExtractTSC (-want +got):\n%s", diff)
	}
}

func TestExtractTSC_ColonFormat(t *testing.T) {
	got := ExtractTSC("src/foo.ts:42:13 - error TS2345: Type 'X' is not assignable to type 'Y'.", DefaultMax)
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	want := report.Highlight{File: "src/foo.ts", Line: 42, Col: 13, Message: "Type 'X' is not assignable to type 'Y'.", Tool: "tsc"}
	if got[0] != want {
		t.Errorf("got %+v, want %+v", got[0], want)
	}
}

func TestExtractTSC_ContinuationLinesIgnored(t *testing.T) {
	output := strings.Join([]string{
		"src/foo.ts(1,1): error TS1005: ';' expected.",
		"  This is additional context that should not become its own highlight.",
		"src/foo.ts(2,3): error TS2588: Cannot assign to 'x' because it is a constant.",
		"  More context that should be ignored for parsing purposes.",
	}, "\r\n")

	got := ExtractTSC(output, DefaultMax)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2: %+v", len(got), got)
	}
	if got[0].Line != 1 || got[0].Col != 1 || got[0].Message != "';' expected." {
		t.Errorf("got[0] = %+v", got[0])
	}
	if got[1].Line != 2 || got[1].Col != 3 || got[1].Message != "Cannot assign to 'x' because it is a constant." {
		t.Errorf("got[1] = %+v", got[1])
	}
}

func TestExtractTSC_Cap(t *testing.T) {
	var lines []string
	for i := 1; i <= 25; i++ {
		lines = append(lines, fmt.Sprintf("src/foo.ts(%d,1): error TS1005: ';' expected on line %d.", i, i))
	}
	output := strings.Join(lines, "\n")

	got := ExtractTSC(output, DefaultMax)
	if len(got) != 20 {
		t.Fatalf("len = %d, want 20", len(got))
	}
	if got[0].Line != 1 || got[19].Line != 20 {
		t.Errorf("kept lines %d..%d, want 1..20", got[0].Line, got[19].Line)
	}

	small := ExtractTSC(output, 3)
	if len(small) != 3 || small[2].Line != 3 {
		t.Errorf("max=3 returned %+v", small)
	}
}

func TestExtractTSC_Idempotent(t *testing.T) {
	output := "a.ts(1,2): error TS1: one\nnoise\nb.ts:3:4 - error TS2: two\n"
	first := ExtractTSC(output, DefaultMax)
	second := ExtractTSC(output, DefaultMax)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("extraction not idempotent (-first +second):\n%s", diff)
	}
}

func TestExtractTSC_NoMatches(t *testing.T) {
	got := ExtractTSC("Found 0 errors.\n", DefaultMax)
	if got == nil || len(got) != 0 {
		t.Errorf("got %#v, want empty non-nil slice", got)
	}
	if got := ExtractTSC("", DefaultMax); got == nil || len(got) != 0 {
		t.Errorf("empty output: got %#v", got)
	}
	if got := ExtractTSC("a.ts(1,2): error TS1: one", 0); len(got) != 0 {
		t.Errorf("max=0: got %+v", got)
	}
}

func TestExtractTSC_OverflowSkipped(t *testing.T) {
	got := ExtractTSC("a.ts(99999999999999999999,1): error TS1: huge\nb.ts(2,1): error TS1: ok", DefaultMax)
	if len(got) != 1 || got[0].File != "b.ts" {
		t.Errorf("got %+v, want only b.ts", got)
	}
}

func TestExtractTSC_TrimsMessage(t *testing.T) {
	got := ExtractTSC("a.ts(1,2): error TS1:    padded message   ", DefaultMax)
	if len(got) != 1 || got[0].Message != "padded message" {
		t.Errorf("got %+v", got)
	}
}

type prefixMatcher string

func (p prefixMatcher) Match(line string) (report.Highlight, bool) {
	if !strings.HasPrefix(line, string(p)) {
		return report.Highlight{}, false
	}
	return report.Highlight{File: "x", Line: 1, Col: 1, Message: line, Tool: "custom"}, true
}

func TestExtract_CustomMatchersInOrder(t *testing.T) {
	matchers := append([]Matcher{prefixMatcher("ERR ")}, TSC...)
	got := Extract("ERR boom\na.ts(1,2): error TS1: one", DefaultMax, matchers)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Tool != "custom" || got[1].Tool != "tsc" {
		t.Errorf("tools = %s,%s", got[0].Tool, got[1].Tool)
	}
}
