//go:build !debugheaplog

package xlog

import (
	"context"
	"log/slog"
)

// Enabled reports whether l would emit a record at lvl. A nil logger is
// never enabled.
func Enabled(l *slog.Logger, lvl slog.Level) bool {
	return l != nil && l.Handler().Enabled(context.Background(), lvl)
}

// LogAttrs logs msg and attrs at level on l. A nil l is a silent no-op,
// letting callers embed [Logger] without guarding every call.
func LogAttrs(l *slog.Logger, level slog.Level, msg string, attrs ...slog.Attr) {
	if l != nil {
		l.LogAttrs(context.Background(), level, msg, attrs...)
	}
}
