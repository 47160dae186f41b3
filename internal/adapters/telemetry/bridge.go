package telemetry

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/delta/internal/core/ports"
)

// LogBridge implements sdktrace.SpanProcessor and reports failed spans through a Logger.
type LogBridge struct {
	logger ports.Logger
}

// NewLogBridge returns a new LogBridge.
func NewLogBridge(logger ports.Logger) *LogBridge {
	return &LogBridge{
		logger: logger,
	}
}

// OnStart does nothing.
func (b *LogBridge) OnStart(context.Context, sdktrace.ReadWriteSpan) {}

// OnEnd warns about spans that ended with an error status.
func (b *LogBridge) OnEnd(s sdktrace.ReadOnlySpan) {
	if b.logger == nil || s.Status().Code != codes.Error {
		return
	}

	desc := s.Status().Description
	if desc == "" {
		desc = "span failed"
	}

	var msg strings.Builder
	msg.WriteString(s.Name())
	msg.WriteString(" failed: ")
	msg.WriteString(desc)
	for _, attr := range s.Attributes() {
		msg.WriteString(" ")
		msg.WriteString(string(attr.Key))
		msg.WriteString("=")
		msg.WriteString(attr.Value.Emit())
	}
	b.logger.Warn(msg.String())
}

// ForceFlush does nothing.
func (b *LogBridge) ForceFlush(context.Context) error {
	return nil
}

// Shutdown does nothing.
func (b *LogBridge) Shutdown(context.Context) error {
	return nil
}
