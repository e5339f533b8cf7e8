package domain

import (
	"context"
	"time"
)

// AuditEventType defines the type of audit event
type AuditEventType string

const (
	// Phone verification events
	CodeRequestedEvent  AuditEventType = "OTP_REQUESTED"
	CodeVerifiedEvent   AuditEventType = "OTP_VERIFIED"
	CodeVerifyFailEvent AuditEventType = "OTP_VERIFICATION_FAILED"

	// Offer lifecycle events
	OfferSubmittedEvent AuditEventType = "OFFER_SUBMITTED"
	OfferBlockedEvent   AuditEventType = "OFFER_BLOCKED"
	OfferAcceptedEvent  AuditEventType = "OFFER_ACCEPTED"
	OfferRejectedEvent  AuditEventType = "OFFER_REJECTED"
)

// AuditEvent represents a business event that occurred in the system
type AuditEvent struct {
	EventType AuditEventType         `json:"event_type"`
	UserID    uint                   `json:"user_id,omitempty"`
	Phone     string                 `json:"phone,omitempty"`
	OfferID   uint                   `json:"offer_id,omitempty"`
	CarID     uint                   `json:"car_id,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	ErrorMsg  string                 `json:"error_msg,omitempty"`
	Success   bool                   `json:"success"`
}

// AuditLogger records business events for later inspection
type AuditLogger interface {
	LogEvent(ctx context.Context, event *AuditEvent)
}

// NewAuditEvent creates a new audit event with common fields populated
func NewAuditEvent(eventType AuditEventType) *AuditEvent {
	return &AuditEvent{
		EventType: eventType,
		Timestamp: time.Now().UTC(),
		Success:   true,
	}
}

// WithError marks the event failed and records the cause
func (e *AuditEvent) WithError(err error) *AuditEvent {
	e.Success = false
	if err != nil {
		e.ErrorMsg = err.Error()
	}
	return e
}

// WithUser sets the acting user
func (e *AuditEvent) WithUser(userID uint) *AuditEvent {
	e.UserID = userID
	return e
}

// WithPhone sets the phone field
func (e *AuditEvent) WithPhone(phone string) *AuditEvent {
	e.Phone = phone
	return e
}

// WithOffer sets the offer and listing the event concerns
func (e *AuditEvent) WithOffer(offerID, carID uint) *AuditEvent {
	e.OfferID = offerID
	e.CarID = carID
	return e
}

// WithMetadata adds metadata to the event
func (e *AuditEvent) WithMetadata(key string, value interface{}) *AuditEvent {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}
