package utils

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/mudforge/telnet"
)

// LevelNone can be assigned to any category to drop its messages entirely.
const LevelNone slog.Level = -8

// DebugLogConfig assigns a log level to each traffic category so consumers
// can dial categories up or down independently.
type DebugLogConfig struct {
	ErrorLevel         slog.Level
	InboundEventLevel  slog.Level
	OutboundEventLevel slog.Level
	CapabilityLevel    slog.Level
}

// DebugLog writes session traffic to a structured logger. Sessions never log
// on their own, so the connection loop reports to one of these at each step:
// inbound events as they decode, outbound events as they drain, capability
// snapshots as they change.
type DebugLog struct {
	logger *slog.Logger
	config DebugLogConfig
}

func NewDebugLog(logger *slog.Logger, config DebugLogConfig) *DebugLog {
	return &DebugLog{logger: logger, config: config}
}

// LogInbound records one decoded event received from the peer.
func (l *DebugLog) LogInbound(event telnet.Event) {
	l.logger.LogAttrs(context.Background(), l.config.InboundEventLevel, "Received event",
		slog.String("event", event.String()))
}

// LogOutbound records a batch of events drained for transmission.
func (l *DebugLog) LogOutbound(events []telnet.Event) {
	for _, event := range events {
		l.logger.LogAttrs(context.Background(), l.config.OutboundEventLevel, "Sent event",
			slog.String("event", event.String()))
	}
}

// LogError records a connection-loop error.
func (l *DebugLog) LogError(err error) {
	l.logger.LogAttrs(context.Background(), l.config.ErrorLevel, "Encountered error",
		slog.Any("error", err))
}

// LogCapabilities records the capability snapshot after a call that reported
// a change.
func (l *DebugLog) LogCapabilities(caps telnet.ClientCapabilities) {
	l.logger.LogAttrs(context.Background(), l.config.CapabilityLevel, "Capabilities changed",
		slog.String("client", caps.ClientName),
		slog.String("version", caps.ClientVersion),
		slog.String("encoding", caps.Encoding),
		slog.String("color", caps.Color.String()),
		slog.Int("width", int(caps.Width)),
		slog.Int("height", int(caps.Height)),
		slog.Bool("screenReader", caps.ScreenReader),
	)
}

// NewFileDebugLogger opens a JSON slog backed by the named file, for
// programs whose stdout and stderr are busy being a UI. The caller closes
// the returned closer when done logging.
func NewFileDebugLogger(path string, level slog.Level) (*slog.Logger, io.Closer, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}

	logger := slog.New(slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level}))
	return logger, file, nil
}
