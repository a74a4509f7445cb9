package telemetry

import (
	"log/slog"
	"os"
)

// InitSlog installs the process-wide slog handler. `interactive` picks
// a human-readable text handler over json, with debug enabled.
func InitSlog(interactive bool) {
	var handler slog.Handler
	if interactive {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	slog.SetDefault(slog.New(handler))
}
