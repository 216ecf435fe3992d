//go:build debugheaplog

package xlog

import (
	"log/slog"
	"time"
	"unsafe"
)

const timefmt = "[01-02 15:04:05.000]"

var timebuf [len(timefmt) * 2]byte

// Enabled always reports true under debugheaplog: every call site prints,
// since the point of this build is to see every allocation-bearing log call.
func Enabled(l *slog.Logger, lvl slog.Level) bool { return true }

// LogAttrs bypasses slog entirely and prints directly, tracking the heap
// allocation delta since the previous call via [LogAllocs]. This trades
// structured logging for the ability to see exactly which engine event
// triggered an allocation.
func LogAttrs(_ *slog.Logger, level slog.Level, msg string, attrs ...slog.Attr) {
	now := time.Now()
	n := len(now.AppendFormat(timebuf[:0], timefmt))
	LogAllocs(msg)
	print("time=", unsafe.String(&timebuf[0], n), " ")
	switch {
	case level == LevelTrace:
		print("TRACE ")
	case level < slog.LevelDebug:
		print("SEQS ")
	default:
		print(level.String(), " ")
	}
	print(msg)
	for _, a := range attrs {
		switch a.Value.Kind() {
		case slog.KindString:
			print(" ", a.Key, "=", a.Value.String())
		case slog.KindInt64:
			print(" ", a.Key, "=", a.Value.Int64())
		case slog.KindUint64:
			print(" ", a.Key, "=", a.Value.Uint64())
		case slog.KindBool:
			print(" ", a.Key, "=", a.Value.Bool())
		}
	}
	println()
}
