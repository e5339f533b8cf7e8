package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/you/offersvc/domain"
)

// AuthServiceImpl implements domain.AuthService. Login is passwordless:
// proving possession of the phone via the verification service is the
// credential, reconciliation supplies the durable identity, and a Redis
// session plus JWT pair carries it forward.
type AuthServiceImpl struct {
	verificationSvc domain.VerificationService
	reconcileSvc    domain.ReconcileService
	sessionRepo     domain.SessionRepository
	tokenSvc        domain.TokenService
	userRepo        domain.UserRepository
	sessionTTL      time.Duration
	accessTTL       time.Duration
	logger          *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(
	verificationSvc domain.VerificationService,
	reconcileSvc domain.ReconcileService,
	sessionRepo domain.SessionRepository,
	tokenSvc domain.TokenService,
	userRepo domain.UserRepository,
	sessionTTL, accessTTL time.Duration,
	logger *zap.Logger,
) domain.AuthService {
	return &AuthServiceImpl{
		verificationSvc: verificationSvc,
		reconcileSvc:    reconcileSvc,
		sessionRepo:     sessionRepo,
		tokenSvc:        tokenSvc,
		userRepo:        userRepo,
		sessionTTL:      sessionTTL,
		accessTTL:       accessTTL,
		logger:          logger,
	}
}

// LoginWithPhone implements domain.AuthService
func (s *AuthServiceImpl) LoginWithPhone(ctx context.Context, phone, code string) (*domain.AuthResult, error) {
	subjectID, err := s.verificationSvc.VerifyCode(ctx, phone, code)
	if err != nil {
		return nil, err
	}

	result, err := s.reconcileSvc.Reconcile(ctx, subjectID, phone)
	if err != nil {
		return nil, fmt.Errorf("failed to reconcile user: %w", err)
	}

	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    result.User.ID,
		ExpiresAt: time.Now().Add(s.sessionTTL),
		CreatedAt: time.Now(),
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	accessToken, err := s.tokenSvc.GenerateAccessToken(result.User.ID, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.tokenSvc.GenerateRefreshToken(result.User.ID, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	s.logger.Info("phone login",
		zap.Uint("user_id", result.User.ID),
		zap.Bool("is_existing", result.IsExisting),
		zap.Bool("persisted", result.Persisted))

	return &domain.AuthResult{
		User:         result.User,
		IsExisting:   result.IsExisting,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		SessionID:    session.ID,
		ExpiresIn:    int64(s.accessTTL.Seconds()),
	}, nil
}

// Logout implements domain.AuthService
func (s *AuthServiceImpl) Logout(ctx context.Context, sessionID string) error {
	return s.sessionRepo.Delete(ctx, sessionID)
}

// GetUserProfile implements domain.AuthService
func (s *AuthServiceImpl) GetUserProfile(ctx context.Context, userID uint) (*domain.User, error) {
	return s.userRepo.FindByID(ctx, userID)
}
