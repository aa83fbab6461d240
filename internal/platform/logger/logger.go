package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
)

const (
	Reset  = "\033[0m"
	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Cyan   = "\033[36m"
	Gray   = "\033[90m"
)

var levelStyles = map[slog.Level]struct {
	color string
	label string
}{
	slog.LevelDebug: {Gray, "DEBUG"},
	slog.LevelInfo:  {Green, "INFO "},
	slog.LevelWarn:  {Yellow, "WARN "},
	slog.LevelError: {Red, "ERROR"},
}

// PrettyHandler writes one colourised line per record.
type PrettyHandler struct {
	out        io.Writer
	level      slog.Leveler
	mu         *sync.Mutex
	timeFormat string
	attrs      []slog.Attr
	group      string
}

func NewPrettyHandler(out io.Writer, level slog.Leveler, timeFormat string) *PrettyHandler {
	if timeFormat == "" {
		timeFormat = "2006-01-02 15:04:05"
	}
	if level == nil {
		level = slog.LevelInfo
	}
	return &PrettyHandler{
		out:        out,
		level:      level,
		mu:         &sync.Mutex{},
		timeFormat: timeFormat,
	}
}

func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	style, ok := levelStyles[r.Level]
	if !ok {
		style = levelStyles[slog.LevelInfo]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s[RELAY]%s %s %s|%s %s%s%s %s|%s %s",
		Cyan, Reset,
		r.Time.Format(h.timeFormat),
		Gray, Reset,
		style.color, style.label, Reset,
		Gray, Reset,
		r.Message,
	)

	for _, a := range h.attrs {
		writeAttr(&b, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&b, h.group, a)
		return true
	})
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, b.String())
	return err
}

func writeAttr(b *strings.Builder, group string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	key := a.Key
	if group != "" {
		key = group + "." + key
	}
	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			writeAttr(b, key, ga)
		}
		return
	}
	fmt.Fprintf(b, " %s%s%s=%v", Cyan, key, Reset, a.Value.Any())
}

func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	nh := *h
	nh.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	nh.attrs = append(nh.attrs, h.attrs...)
	for _, a := range attrs {
		if h.group != "" {
			a.Key = h.group + "." + a.Key
		}
		nh.attrs = append(nh.attrs, a)
	}
	return &nh
}

func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	nh := *h
	if nh.group != "" {
		nh.group += "." + name
	} else {
		nh.group = name
	}
	return &nh
}

// New builds the process logger. format is "pretty", "json" or "text".
func New(out io.Writer, level slog.Level, format string) *slog.Logger {
	var h slog.Handler
	switch strings.ToLower(format) {
	case "json":
		h = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})
	case "text":
		h = slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})
	default:
		h = NewPrettyHandler(out, level, "")
	}
	return slog.New(h)
}
