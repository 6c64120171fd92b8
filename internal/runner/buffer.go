package runner

import (
	"io"
	"strings"
	"sync"
	"unicode"
)

// tailBuffer keeps the most recent max bytes written to it and copies every
// write to an optional live sink. Both process streams write to it
// concurrently.
type tailBuffer struct {
	mu        sync.Mutex
	buf       []byte
	max       int
	live      io.Writer
	truncated bool
}

func newTailBuffer(max int, live io.Writer) *tailBuffer {
	return &tailBuffer{max: max, live: live}
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.live != nil {
		// The live sink is for operators; its failures never fail the gate.
		_, _ = b.live.Write(p)
	}

	b.buf = append(b.buf, p...)
	if over := len(b.buf) - b.max; over > 0 {
		b.buf = b.buf[over:]
		b.truncated = true
	}
	return len(p), nil
}

func (b *tailBuffer) WriteString(s string) {
	_, _ = b.Write([]byte(s))
}

// Bytes returns a copy of the retained output.
func (b *tailBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]byte(nil), b.buf...)
}

func (b *tailBuffer) Truncated() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.truncated
}

// tailLines returns the last n lines of s with trailing whitespace removed.
// When s holds fewer lines, all of it is returned.
func tailLines(s string, n int) string {
	s = strings.TrimRightFunc(s, unicode.IsSpace)
	if s == "" || n <= 0 {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return strings.Join(lines, "\n")
}
