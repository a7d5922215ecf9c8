package log

import (
	"context"
	"io"
	"log/slog"
)

const (
	colorReset  = "\x1b[0m"
	colorGray   = "\x1b[90m"
	colorCyan   = "\x1b[36m"
	colorGreen  = "\x1b[32m"
	colorYellow = "\x1b[33m"
	colorRed    = "\x1b[31m"
	colorPurple = "\x1b[35m"
)

func levelColor(l slog.Level) string {
	switch {
	case l <= LevelTrace:
		return colorGray
	case l <= slog.LevelDebug:
		return colorCyan
	case l <= slog.LevelInfo:
		return colorGreen
	case l <= slog.LevelWarn:
		return colorYellow
	case l <= slog.LevelError:
		return colorRed
	default:
		return colorPurple
	}
}

// NewTerminalHandlerWithLevel returns a text handler emitting records at or above lvl,
// with aligned level names, optionally coloured.
func NewTerminalHandlerWithLevel(w io.Writer, lvl slog.Level, useColor bool) slog.Handler {
	return slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) > 0 || a.Key != slog.LevelKey {
				return a
			}
			level, ok := a.Value.Any().(slog.Level)
			if !ok {
				return a
			}
			name := LevelAlignedString(level)
			if useColor {
				name = levelColor(level) + name + colorReset
			}
			return slog.String(slog.LevelKey, name)
		},
	})
}

type discardHandler struct{}

// DiscardHandler returns a handler that drops every record.
func DiscardHandler() slog.Handler {
	return discardHandler{}
}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h discardHandler) WithGroup(string) slog.Handler           { return h }
