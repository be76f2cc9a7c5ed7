// Package notify delivers user-facing cart notices.
package notify

import (
	"context"
	"log/slog"

	"github.com/nikolayk812/cartkeeper/internal/port"
)

// LogNotifier writes notices to a structured logger.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, message string, severity port.Severity) {
	level := slog.LevelInfo
	if severity == port.SeverityError {
		level = slog.LevelWarn
	}

	n.logger.Log(ctx, level, message, "severity", string(severity))
}
