// Package telnetlog provides a log/slog-based debug logger for a
// telnetio.Engine, adapted from the teacher's utils.DebugLog: every
// decoded event and every outbound write is logged at a single
// configurable level, collapsed from the teacher's six hook types to one
// because the core's Event model has four variants, not six.
package telnetlog

import (
	"context"
	"log/slog"

	"github.com/uSpike/telnetio"
)

// LevelNone disables logging for a given category; pass it as Level to
// Attach to turn the whole thing off without removing the call site.
const LevelNone slog.Level = -8

// Attach registers OnEvent and OnSend hooks on e that log through logger
// at level, and returns a function that... does nothing, since Engine's
// hook registration (like the teacher's EventPublisher) has no unregister
// mechanism; the returned func exists so callers can defer detach() without
// caring whether a future revision adds one.
func Attach(e *telnetio.Engine, logger *slog.Logger, level slog.Level) func() {
	if level == LevelNone {
		return func() {}
	}

	e.OnEvent(func(ev telnetio.Event) {
		logEvent(logger, level, ev)
	})
	e.OnSend(func(data []byte) {
		logger.LogAttrs(context.Background(), level, "Sent bytes", slog.Int("length", len(data)))
	})

	return func() {}
}

func logEvent(logger *slog.Logger, level slog.Level, ev telnetio.Event) {
	switch ev.Kind {
	case telnetio.EventData:
		logger.LogAttrs(context.Background(), level, "Received data", slog.Int("length", len(ev.Data)))
	case telnetio.EventCommand:
		logger.LogAttrs(context.Background(), level, "Received command", slog.String("command", ev.String()))
	case telnetio.EventSubCommand:
		logger.LogAttrs(context.Background(), level, "Received subnegotiation", slog.String("command", ev.String()))
	case telnetio.EventError:
		logger.LogAttrs(context.Background(), level, "Received framing error",
			slog.String("kind", ev.ErrKind.String()),
			slog.Any("data", ev.ErrData),
		)
	}
}
