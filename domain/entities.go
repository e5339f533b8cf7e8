package domain

import "time"

// User represents a marketplace user. A record is created the first time
// a phone number is verified and only updated by later verifications.
type User struct {
	ID         uint
	Phone      string
	Name       string
	Email      string
	City       string
	IsVerified bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Listing is the car listing an offer is made against. Catalog CRUD lives
// outside this service; we only read the current owner and asking price.
type Listing struct {
	ID          uint
	SellerID    uint
	Title       string
	AskingPrice int64
	Sold        bool
}

// OfferStatus is the lifecycle state of an offer
type OfferStatus string

const (
	// OfferStatusNone is the query sentinel for "no offer exists yet"
	OfferStatusNone     OfferStatus = "none"
	OfferStatusPending  OfferStatus = "pending"
	OfferStatusAccepted OfferStatus = "accepted"
	OfferStatusRejected OfferStatus = "rejected"
)

// OfferDecision is the seller's response to a pending offer
type OfferDecision string

const (
	DecisionAccept OfferDecision = "accept"
	DecisionReject OfferDecision = "reject"
)

// Offer represents a priced offer on a listing. AskingPrice is snapshotted
// at submission time. Status transitions exactly once away from pending;
// renegotiation requires a new Offer record.
type Offer struct {
	ID          uint
	CarID       uint
	BuyerID     uint
	SellerID    uint
	Amount      int64
	AskingPrice int64
	Message     string
	Status      OfferStatus
	CreatedAt   time.Time
}

// VerificationStep tracks a phone verification session's progress
type VerificationStep string

const (
	StepPhone     VerificationStep = "phone"
	StepCodeSent  VerificationStep = "code_sent"
	StepVerifying VerificationStep = "verifying"
	StepVerified  VerificationStep = "verified"
	StepFailed    VerificationStep = "failed"
)

// ReconcileResult is the outcome of matching a verified identity against
// the users table. Persisted is false only when reconciliation degraded
// to an in-memory placeholder record.
type ReconcileResult struct {
	IsExisting bool
	Persisted  bool
	User       *User
}

// AuthResult represents a successful phone login
type AuthResult struct {
	User         *User
	IsExisting   bool
	AccessToken  string
	RefreshToken string
	SessionID    string
	ExpiresIn    int64
}

// Session represents a logged-in user session
type Session struct {
	ID        string
	UserID    uint
	ExpiresAt time.Time
	CreatedAt time.Time
}

// TokenClaims represents JWT token claims
type TokenClaims struct {
	UserID    uint   `json:"user_id"`
	SessionID string `json:"session_id,omitempty"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}
