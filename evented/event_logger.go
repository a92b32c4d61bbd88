package evented

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogEvents writes one debug entry per event page, including the decoded
// payload. Pages that fail to decode are logged without it.
func LogEvents(logger *zap.Logger, cover Cover, pages []*EventPage) {
	if !logger.Core().Enabled(zapcore.DebugLevel) {
		return
	}
	for _, page := range pages {
		fields := []zap.Field{
			zap.String("domain", cover.Domain),
			zap.String("root", cover.Root.String()),
			zap.Uint32("seq", page.Sequence),
			zap.String("event", TypeName(page.Event.GetTypeUrl())),
		}
		if page.CreatedAt != nil {
			fields = append(fields, zap.Time("created_at", page.CreatedAt.AsTime()))
		}
		if payload, err := UnpackPayload(page.Event); err == nil {
			fields = append(fields, zap.Any("payload", payload.AsMap()))
		} else {
			fields = append(fields, zap.NamedError("payload_error", err))
		}
		logger.Debug("event", fields...)
	}
}
