package logging

import (
	"context"
	"log/slog"
)

// Sink accepts leveled messages and forwards them only while enabled
// reports true.
type Sink struct {
	logger  *slog.Logger
	enabled func() bool
}

func NewSink(logger *slog.Logger, enabled func() bool) *Sink {
	if logger == nil {
		logger = Discard()
	}
	if enabled == nil {
		enabled = func() bool { return true }
	}
	return &Sink{logger: logger, enabled: enabled}
}

func (s *Sink) Log(msg string, level Level, args ...any) {
	if s == nil || !s.enabled() {
		return
	}
	s.logger.Log(context.Background(), level.SLog(), msg, args...)
}

func (s *Sink) Logger() *slog.Logger {
	return s.logger
}
