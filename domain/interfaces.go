package domain

import "context"

// UserRepository defines user data access operations
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	FindByPhone(ctx context.Context, phone string) (*User, error)
	FindByID(ctx context.Context, id uint) (*User, error)
	Update(ctx context.Context, user *User) error
	MarkVerified(ctx context.Context, userID uint) error
}

// ListingRepository reads listing ownership and pricing. The catalog
// itself is maintained elsewhere.
type ListingRepository interface {
	FindByID(ctx context.Context, carID uint) (*Listing, error)
}

// OfferRepository defines offer data access operations
type OfferRepository interface {
	Create(ctx context.Context, offer *Offer) error
	FindByID(ctx context.Context, id uint) (*Offer, error)
	// FindLatest returns the most recent offer for a (car, buyer) pair.
	FindLatest(ctx context.Context, carID, buyerID uint) (*Offer, error)
	// UpdateStatus performs a single-row conditional transition and
	// reports how many rows changed; zero means the offer was no longer
	// in the expected state.
	UpdateStatus(ctx context.Context, id uint, from, to OfferStatus) (int64, error)
}

// SessionRepository defines session data access operations
type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	FindByID(ctx context.Context, sessionID string) (*Session, error)
	Delete(ctx context.Context, sessionID string) error
}

// IdentityProvider is the external one-time-code service. VerifyOneTimeCode
// returns the provider-assigned subject id on success and classifies
// rejections as ErrCodeExpired, ErrCodeInvalid or a generic error.
type IdentityProvider interface {
	SendOneTimeCode(ctx context.Context, phoneE164 string) error
	VerifyOneTimeCode(ctx context.Context, phoneE164, code string) (string, error)
}

// VerificationService drives the one-time-code challenge for a phone
type VerificationService interface {
	SendCode(ctx context.Context, phone string) error
	// VerifyCode returns the verified subject id.
	VerifyCode(ctx context.Context, phone, code string) (string, error)
	// Cancel resets the session and invalidates any in-flight request so
	// a late provider response cannot advance an abandoned flow.
	Cancel(phone string)
}

// ReconcileService creates-or-fetches a durable user record for a
// verified identity
type ReconcileService interface {
	Reconcile(ctx context.Context, subjectID, phone string) (*ReconcileResult, error)
}

// OfferService owns the offer state machine and its authorization rules
type OfferService interface {
	Submit(ctx context.Context, carID, buyerID uint, amount int64, message string) (*Offer, error)
	Respond(ctx context.Context, offerID, actingUserID uint, decision OfferDecision) (*Offer, error)
	Status(ctx context.Context, carID, buyerID uint) (OfferStatus, error)
	Actions(ctx context.Context, carID, buyerID uint) (ActionSet, error)
}

// AuthService composes verification, reconciliation and session issuance
type AuthService interface {
	LoginWithPhone(ctx context.Context, phone, code string) (*AuthResult, error)
	Logout(ctx context.Context, sessionID string) error
	GetUserProfile(ctx context.Context, userID uint) (*User, error)
}

// TokenService defines token operations
type TokenService interface {
	GenerateAccessToken(userID uint, sessionID string) (string, error)
	GenerateRefreshToken(userID uint, sessionID string) (string, error)
	ValidateAccessToken(token string) (*TokenClaims, error)
	ValidateRefreshToken(token string) (*TokenClaims, error)
}
