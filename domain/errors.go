package domain

import (
	"errors"
	"fmt"
)

// Verification errors
var (
	ErrInvalidPhone         = errors.New("phone number must have exactly ten subscriber digits")
	ErrInvalidCode          = errors.New("verification code must be six digits")
	ErrNoActiveVerification = errors.New("no verification code outstanding for this phone")
	ErrResendThrottled      = errors.New("please wait before requesting a new code")
	ErrCodeExpired          = errors.New("verification code has expired")
	ErrCodeInvalid          = errors.New("incorrect verification code")
	ErrVerifyTimeout        = errors.New("verification timed out, resend the code and try again")
	ErrVerification         = errors.New("verification failed")
	ErrProvider             = errors.New("identity provider error")
	ErrSessionClosed        = errors.New("verification session was closed")
)

// User errors
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
)

// Offer errors
var (
	ErrListingNotFound = errors.New("listing not found")
	ErrOfferNotFound   = errors.New("offer not found")
	ErrSelfOffer       = errors.New("cannot make an offer on your own listing")
	ErrInvalidAmount   = errors.New("offer amount must be positive")
	ErrNotSeller       = errors.New("only the seller can respond to this offer")
	ErrOfferResolved   = errors.New("this offer was already resolved")
)

// Token and session errors
var (
	ErrTokenInvalid    = errors.New("invalid token")
	ErrTokenExpired    = errors.New("token has expired")
	ErrTokenMalformed  = errors.New("malformed token")
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session has expired")
)

// OfferBlockedError is returned when the pricing gate vetoes a
// submission. It carries the computed percentage so the surface can tell
// the buyer how far below asking the offer landed.
type OfferBlockedError struct {
	PercentBelowAsking float64
}

func (e *OfferBlockedError) Error() string {
	return fmt.Sprintf("offer is %.0f%% below asking price and cannot be submitted", e.PercentBelowAsking)
}
