package audit

import (
	"context"

	"go.uber.org/zap"

	"github.com/you/offersvc/domain"
)

// ZapAuditLogger implements domain.AuditLogger on a structured logger.
// Delivery of these events to an external sink (push, analytics) is a
// collaborator concern; here they only need to be durable in the logs.
type ZapAuditLogger struct {
	logger *zap.Logger
}

// NewZapAuditLogger creates a zap-backed audit logger
func NewZapAuditLogger(logger *zap.Logger) domain.AuditLogger {
	return &ZapAuditLogger{logger: logger.Named("audit")}
}

// LogEvent implements domain.AuditLogger
func (l *ZapAuditLogger) LogEvent(_ context.Context, event *domain.AuditEvent) {
	fields := []zap.Field{
		zap.String("event_type", string(event.EventType)),
		zap.Time("timestamp", event.Timestamp),
		zap.Bool("success", event.Success),
	}
	if event.UserID != 0 {
		fields = append(fields, zap.Uint("user_id", event.UserID))
	}
	if event.Phone != "" {
		fields = append(fields, zap.String("phone", event.Phone))
	}
	if event.OfferID != 0 {
		fields = append(fields, zap.Uint("offer_id", event.OfferID))
	}
	if event.CarID != 0 {
		fields = append(fields, zap.Uint("car_id", event.CarID))
	}
	if event.ErrorMsg != "" {
		fields = append(fields, zap.String("error", event.ErrorMsg))
	}
	if len(event.Metadata) > 0 {
		fields = append(fields, zap.Any("metadata", event.Metadata))
	}

	if event.Success {
		l.logger.Info("audit event", fields...)
	} else {
		l.logger.Warn("audit event", fields...)
	}
}
