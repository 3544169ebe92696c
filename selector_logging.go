package store

import "time"

// SelectLogEvent describes a selection attempt for logging.
type SelectLogEvent struct {
	Engine   string
	Expr     string
	Path     string
	Duration time.Duration
	Err      error
}

// SelectorLogger records selector events.
type SelectorLogger interface {
	LogSelection(SelectLogEvent)
}

// SelectorLoggerFunc adapts a function to SelectorLogger.
type SelectorLoggerFunc func(SelectLogEvent)

// LogSelection implements SelectorLogger.
func (f SelectorLoggerFunc) LogSelection(event SelectLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopSelectorLogger struct{}

func (noopSelectorLogger) LogSelection(SelectLogEvent) {}

// NoopSelectorLogger returns a logger that discards all events. Runtimes use
// it as the default so the logging path needs no nil checks.
func NoopSelectorLogger() SelectorLogger {
	return noopSelectorLogger{}
}
