package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// HomePlaceholder replaces the home directory in log output.
const HomePlaceholder = "~"

// PathHandler wraps an slog.Handler and shortens paths under the home
// directory in every string attribute, including attributes nested in groups.
type PathHandler struct {
	handler slog.Handler
	home    string
}

// NewPathHandler creates a PathHandler wrapping handler. home is the
// directory to redact; when empty, os.UserHomeDir is used. If handler is nil
// the handler of slog.Default() is wrapped.
func NewPathHandler(handler slog.Handler, home string) *PathHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	if home == "" {
		if h, err := os.UserHomeDir(); err == nil {
			home = h
		}
	}
	return &PathHandler{handler: handler, home: filepath.Clean(home)}
}

// Enabled reports whether the handler handles records at the given level.
func (h *PathHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle rewrites the record's attributes and passes it on.
func (h *PathHandler) Handle(ctx context.Context, r slog.Record) error {
	rewritten := slog.NewRecord(r.Time, r.Level, h.redact(r.Message), r.PC)
	r.Attrs(func(a slog.Attr) bool {
		rewritten.AddAttrs(h.rewriteAttr(a))
		return true
	})
	return h.handler.Handle(ctx, rewritten)
}

// WithAttrs returns a new handler with the given attributes added.
func (h *PathHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	rewritten := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		rewritten[i] = h.rewriteAttr(a)
	}
	return &PathHandler{handler: h.handler.WithAttrs(rewritten), home: h.home}
}

// WithGroup returns a new handler with the given group name.
func (h *PathHandler) WithGroup(name string) slog.Handler {
	return &PathHandler{handler: h.handler.WithGroup(name), home: h.home}
}

func (h *PathHandler) rewriteAttr(a slog.Attr) slog.Attr {
	a.Value = a.Value.Resolve()

	switch a.Value.Kind() {
	case slog.KindGroup:
		attrs := a.Value.Group()
		rewritten := make([]slog.Attr, len(attrs))
		for i, ga := range attrs {
			rewritten[i] = h.rewriteAttr(ga)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(rewritten...)}
	case slog.KindString:
		return slog.String(a.Key, h.redact(a.Value.String()))
	case slog.KindAny:
		if ss, ok := a.Value.Any().([]string); ok {
			out := make([]string, len(ss))
			for i, s := range ss {
				out[i] = h.redact(s)
			}
			return slog.Any(a.Key, out)
		}
	}
	return a
}

// redact replaces every occurrence of the home directory prefix in s.
// A match must end at a path separator or at the end of the string so that
// /home/al is not rewritten inside /home/alice.
func (h *PathHandler) redact(s string) string {
	if h.home == "" || h.home == "." || h.home == string(filepath.Separator) {
		return s
	}

	var sb strings.Builder
	rest := s
	for {
		i := strings.Index(rest, h.home)
		if i < 0 {
			sb.WriteString(rest)
			return sb.String()
		}
		end := i + len(h.home)
		if end == len(rest) || rest[end] == filepath.Separator {
			sb.WriteString(rest[:i])
			sb.WriteString(HomePlaceholder)
		} else {
			sb.WriteString(rest[:end])
		}
		rest = rest[end:]
	}
}

// NewLogger creates a text slog.Logger writing to w with path redaction.
// verbose selects slog.LevelDebug; otherwise only warnings and errors are logged.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewPathHandler(slog.NewTextHandler(w, handlerOptions(verbose)), ""))
}

// NewJSONLogger is like NewLogger but writes JSON lines.
func NewJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewPathHandler(slog.NewJSONHandler(w, handlerOptions(verbose)), ""))
}

func handlerOptions(verbose bool) *slog.HandlerOptions {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return &slog.HandlerOptions{Level: level}
}
