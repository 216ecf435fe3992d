package engine

import "log/slog"

// debug, trace, info and logerr give Connection its own package-local
// logging calls over the embedded xlog.Logger, the same way the teacher's
// ControlBlock declares its own lowercase debug/trace/logerr wrapping the
// shared internal logging helpers rather than reaching across a package
// boundary for an unexported method promoted by embedding.
func (c *Connection) debug(msg string, attrs ...slog.Attr) { c.Logger.Debug(msg, attrs...) }

func (c *Connection) trace(msg string, attrs ...slog.Attr) { c.Logger.Trace(msg, attrs...) }

func (c *Connection) info(msg string, attrs ...slog.Attr) { c.Logger.Info(msg, attrs...) }

func (c *Connection) logerr(msg string, attrs ...slog.Attr) { c.Logger.Error(msg, attrs...) }
