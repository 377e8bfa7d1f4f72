package logs

import "log/slog"

// Logger is the minimal structured-logging surface injected into transport
// code; slog backs the default.
type Logger interface {
	Warn(msg string, args ...any)
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

type slogWrapper struct{}

func (s slogWrapper) Warn(msg string, args ...any)  { slog.Warn(msg, args...) }
func (s slogWrapper) Info(msg string, args ...any)  { slog.Info(msg, args...) }
func (s slogWrapper) Error(msg string, args ...any) { slog.Error(msg, args...) }

// DefaultLogger can be swapped per module, e.g. for silent test runs.
var DefaultLogger Logger = slogWrapper{}
