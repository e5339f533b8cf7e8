package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/you/offersvc/domain"
	"github.com/you/offersvc/internal/mocks"
)

func newAuthServiceForTest(
	verificationSvc *mocks.MockVerificationService,
	reconcileSvc *mocks.MockReconcileService,
	sessionRepo *mocks.MockSessionRepository,
) domain.AuthService {
	return NewAuthService(
		verificationSvc,
		reconcileSvc,
		sessionRepo,
		mocks.NewMockTokenService(),
		mocks.NewMockUserRepository(),
		24*time.Hour,
		15*time.Minute,
		zap.NewNop(),
	)
}

func TestAuthServiceImpl_LoginWithPhone_Success(t *testing.T) {
	reconcileSvc := mocks.NewMockReconcileService()
	reconcileSvc.ReconcileFunc = func(ctx context.Context, subjectID, phone string) (*domain.ReconcileResult, error) {
		return &domain.ReconcileResult{
			IsExisting: false,
			Persisted:  true,
			User:       &domain.User{ID: 7, Name: "User", Phone: phone, IsVerified: true},
		}, nil
	}
	sessionRepo := mocks.NewMockSessionRepository()

	svc := newAuthServiceForTest(mocks.NewMockVerificationService(), reconcileSvc, sessionRepo)
	result, err := svc.LoginWithPhone(context.Background(), "+911234567890", "123456")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.User.ID != 7 {
		t.Errorf("expected user 7, got %d", result.User.ID)
	}
	if result.IsExisting {
		t.Error("expected a new user")
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Error("expected both tokens to be issued")
	}
	if !strings.Contains(result.AccessToken, result.SessionID) {
		t.Error("access token should be bound to the session")
	}
	if result.ExpiresIn != int64((15 * time.Minute).Seconds()) {
		t.Errorf("expected expires_in %d, got %d", int64((15 * time.Minute).Seconds()), result.ExpiresIn)
	}

	session, err := sessionRepo.FindByID(context.Background(), result.SessionID)
	if err != nil {
		t.Fatalf("session should be stored: %v", err)
	}
	if session.UserID != 7 {
		t.Errorf("session bound to user %d, expected 7", session.UserID)
	}
}

func TestAuthServiceImpl_LoginWithPhone_VerificationFailure(t *testing.T) {
	verificationSvc := mocks.NewMockVerificationService()
	verificationSvc.VerifyCodeFunc = func(ctx context.Context, phone, code string) (string, error) {
		return "", domain.ErrCodeInvalid
	}

	sessionCreates := 0
	sessionRepo := mocks.NewMockSessionRepository()
	sessionRepo.CreateFunc = func(ctx context.Context, session *domain.Session) error {
		sessionCreates++
		return nil
	}

	svc := newAuthServiceForTest(verificationSvc, mocks.NewMockReconcileService(), sessionRepo)
	_, err := svc.LoginWithPhone(context.Background(), "+911234567890", "000000")
	if !errors.Is(err, domain.ErrCodeInvalid) {
		t.Fatalf("expected invalid code error, got %v", err)
	}
	if sessionCreates != 0 {
		t.Errorf("no session should be created on a failed verify, got %d", sessionCreates)
	}
}

func TestAuthServiceImpl_LoginWithPhone_DegradedReconciliationStillLogsIn(t *testing.T) {
	reconcileSvc := mocks.NewMockReconcileService()
	reconcileSvc.ReconcileFunc = func(ctx context.Context, subjectID, phone string) (*domain.ReconcileResult, error) {
		return &domain.ReconcileResult{
			IsExisting: false,
			Persisted:  false,
			User:       &domain.User{Name: "User", Phone: phone, IsVerified: true},
		}, nil
	}

	svc := newAuthServiceForTest(mocks.NewMockVerificationService(), reconcileSvc, mocks.NewMockSessionRepository())
	result, err := svc.LoginWithPhone(context.Background(), "+911234567890", "123456")
	if err != nil {
		t.Fatalf("degraded reconciliation must not block login: %v", err)
	}
	if result.AccessToken == "" {
		t.Error("expected an access token despite the placeholder record")
	}
}

func TestAuthServiceImpl_Logout(t *testing.T) {
	sessionRepo := mocks.NewMockSessionRepository()
	session := &domain.Session{ID: "sess-1", UserID: 7, ExpiresAt: time.Now().Add(time.Hour)}
	if err := sessionRepo.Create(context.Background(), session); err != nil {
		t.Fatalf("seed session: %v", err)
	}

	svc := newAuthServiceForTest(mocks.NewMockVerificationService(), mocks.NewMockReconcileService(), sessionRepo)
	if err := svc.Logout(context.Background(), "sess-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := sessionRepo.FindByID(context.Background(), "sess-1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("expected session to be gone, got %v", err)
	}
}
