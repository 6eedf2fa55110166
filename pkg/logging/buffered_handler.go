package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
)

// sink is the buffer shared by a BufferedHandler and every handler derived
// from it through WithAttrs/WithGroup.
type sink struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// BufferedHandler is a slog.Handler that keeps records in memory, one line
// per record, so tests can assert on what pagination logged.
//
//	h := logging.NewBufferedHandler(slog.LevelDebug)
//	logging.SetLogger(slog.New(h))
//	defer logging.SetLogger(nil)
//	...
//	if !h.Contains("page break") { ... }
type BufferedHandler struct {
	level  slog.Leveler
	out    *sink
	attrs  []string // rendered with the groups active when they were added
	groups []string
}

// NewBufferedHandler returns a handler recording every record at or above
// level. A nil level records everything.
func NewBufferedHandler(level slog.Leveler) *BufferedHandler {
	return &BufferedHandler{level: level, out: &sink{}}
}

func (h *BufferedHandler) Enabled(_ context.Context, level slog.Level) bool {
	if h.level == nil {
		return true
	}
	return level >= h.level.Level()
}

// Handle writes "LEVEL message k=v k=v" to the buffer.
func (h *BufferedHandler) Handle(_ context.Context, r slog.Record) error {
	var line strings.Builder
	line.WriteString(r.Level.String())
	line.WriteByte(' ')
	line.WriteString(r.Message)
	for _, a := range h.attrs {
		line.WriteByte(' ')
		line.WriteString(a)
	}
	r.Attrs(func(a slog.Attr) bool {
		line.WriteByte(' ')
		line.WriteString(h.prefixed(a))
		return true
	})
	line.WriteByte('\n')

	h.out.mu.Lock()
	defer h.out.mu.Unlock()
	h.out.buf.WriteString(line.String())
	return nil
}

func (h *BufferedHandler) prefixed(a slog.Attr) string {
	if len(h.groups) == 0 {
		return a.String()
	}
	return strings.Join(h.groups, ".") + "." + a.String()
}

func (h *BufferedHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]string, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	for _, a := range attrs {
		merged = append(merged, h.prefixed(a))
	}
	return &BufferedHandler{level: h.level, out: h.out, attrs: merged, groups: h.groups}
}

func (h *BufferedHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	groups := make([]string, 0, len(h.groups)+1)
	groups = append(groups, h.groups...)
	groups = append(groups, name)
	return &BufferedHandler{level: h.level, out: h.out, attrs: h.attrs, groups: groups}
}

// String returns everything captured so far.
func (h *BufferedHandler) String() string {
	h.out.mu.Lock()
	defer h.out.mu.Unlock()
	return h.out.buf.String()
}

// Contains reports whether the captured output contains s.
func (h *BufferedHandler) Contains(s string) bool {
	return strings.Contains(h.String(), s)
}

// Reset drops all captured output.
func (h *BufferedHandler) Reset() {
	h.out.mu.Lock()
	defer h.out.mu.Unlock()
	h.out.buf.Reset()
}
