package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/you/offersvc/domain"
	"github.com/you/offersvc/internal/mocks"
)

func testVerificationConfig() VerificationConfig {
	return VerificationConfig{
		CodeLength:       6,
		SubscriberDigits: 10,
		CountryCode:      "+91",
		AttemptTimeout:   50 * time.Millisecond,
		MaxAttempts:      3,
		RetryBackoff:     time.Millisecond,
		ResendWindow:     0,
	}
}

func newVerificationServiceForTest(t *testing.T, cfg VerificationConfig) (*VerificationServiceImpl, *mocks.MockIdentityProvider) {
	t.Helper()

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	provider := mocks.NewMockIdentityProvider()

	svc := NewVerificationService(provider, redisClient, mocks.NewMockAuditLogger(), zap.NewNop(), cfg)
	return svc, provider
}

func TestVerificationServiceImpl_SendCode(t *testing.T) {
	tests := []struct {
		name          string
		phone         string
		setupProvider func(*mocks.MockIdentityProvider)
		expectedError error
		expectedCalls int64
	}{
		{
			name:          "successful send",
			phone:         "+911234567890",
			expectedError: nil,
			expectedCalls: 1,
		},
		{
			name:          "subscriber number without country code",
			phone:         "1234567890",
			expectedError: nil,
			expectedCalls: 1,
		},
		{
			name:          "too few digits rejected before the provider is called",
			phone:         "12345",
			expectedError: domain.ErrInvalidPhone,
			expectedCalls: 0,
		},
		{
			name:          "letters rejected before the provider is called",
			phone:         "12345abcde",
			expectedError: domain.ErrInvalidPhone,
			expectedCalls: 0,
		},
		{
			name:  "provider failure surfaces as provider error",
			phone: "+911234567890",
			setupProvider: func(p *mocks.MockIdentityProvider) {
				p.SendOneTimeCodeFunc = func(ctx context.Context, phone string) error {
					return errors.New("sms gateway unavailable")
				}
			},
			expectedError: domain.ErrProvider,
			expectedCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, provider := newVerificationServiceForTest(t, testVerificationConfig())
			if tt.setupProvider != nil {
				tt.setupProvider(provider)
			}

			err := svc.SendCode(context.Background(), tt.phone)

			if tt.expectedError == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.expectedError != nil && !errors.Is(err, tt.expectedError) {
				t.Fatalf("expected error %v, got %v", tt.expectedError, err)
			}
			if got := provider.SendCalls(); got != tt.expectedCalls {
				t.Errorf("expected %d provider calls, got %d", tt.expectedCalls, got)
			}
		})
	}
}

func TestVerificationServiceImpl_SendCode_SingleFlight(t *testing.T) {
	svc, provider := newVerificationServiceForTest(t, testVerificationConfig())
	phone := "+911234567890"

	if err := svc.SendCode(context.Background(), phone); err != nil {
		t.Fatalf("first send failed: %v", err)
	}
	// Duplicate tap while the first request is still outstanding.
	if err := svc.SendCode(context.Background(), phone); err != nil {
		t.Fatalf("second send should be a silent no-op, got %v", err)
	}

	if got := provider.SendCalls(); got != 1 {
		t.Errorf("expected exactly one provider call, got %d", got)
	}
	if step := svc.Step(phone); step != domain.StepCodeSent {
		t.Errorf("expected step %s, got %s", domain.StepCodeSent, step)
	}
}

func TestVerificationServiceImpl_SendCode_FailureAllowsResend(t *testing.T) {
	svc, provider := newVerificationServiceForTest(t, testVerificationConfig())
	phone := "+911234567890"

	provider.SendOneTimeCodeFunc = func(ctx context.Context, p string) error {
		return errors.New("sms gateway unavailable")
	}
	if err := svc.SendCode(context.Background(), phone); !errors.Is(err, domain.ErrProvider) {
		t.Fatalf("expected provider error, got %v", err)
	}

	// The failed send is terminal; the guard must not block a retry.
	provider.SendOneTimeCodeFunc = nil
	if err := svc.SendCode(context.Background(), phone); err != nil {
		t.Fatalf("resend after failure should work, got %v", err)
	}
	if got := provider.SendCalls(); got != 2 {
		t.Errorf("expected 2 provider calls, got %d", got)
	}
}

func TestVerificationServiceImpl_SendCode_ResendThrottle(t *testing.T) {
	cfg := testVerificationConfig()
	cfg.ResendWindow = 30 * time.Second
	svc, provider := newVerificationServiceForTest(t, cfg)
	phone := "+911234567890"

	if err := svc.SendCode(context.Background(), phone); err != nil {
		t.Fatalf("first send failed: %v", err)
	}

	// A brand-new session for the same phone (other tab, reopened modal)
	// still hits the Redis throttle.
	svc.Cancel(phone)
	err := svc.SendCode(context.Background(), phone)
	if !errors.Is(err, domain.ErrResendThrottled) {
		t.Fatalf("expected throttle error, got %v", err)
	}
	if got := provider.SendCalls(); got != 1 {
		t.Errorf("expected 1 provider call, got %d", got)
	}
}

func TestVerificationServiceImpl_SendCode_LateResponseAfterCancelIgnored(t *testing.T) {
	svc, provider := newVerificationServiceForTest(t, testVerificationConfig())
	phone := "+911234567890"

	entered := make(chan struct{})
	release := make(chan struct{})
	provider.SendOneTimeCodeFunc = func(ctx context.Context, p string) error {
		close(entered)
		<-release
		return nil
	}

	firstSend := make(chan error, 1)
	go func() {
		firstSend <- svc.SendCode(context.Background(), phone)
	}()
	<-entered

	// User closes the modal while the first send is still with the
	// provider, then reopens it and the fresh send fails outright.
	svc.Cancel(phone)
	provider.SendOneTimeCodeFunc = func(ctx context.Context, p string) error {
		return errors.New("sms gateway unavailable")
	}
	if err := svc.SendCode(context.Background(), phone); !errors.Is(err, domain.ErrProvider) {
		t.Fatalf("expected provider error, got %v", err)
	}

	// The abandoned flow's provider call now returns success. It must
	// not advance the fresh session: no code was sent for it.
	close(release)
	<-firstSend

	if step := svc.Step(phone); step != domain.StepPhone {
		t.Errorf("expected step %s, got %s", domain.StepPhone, step)
	}

	// The fresh session is still usable.
	provider.SendOneTimeCodeFunc = nil
	if err := svc.SendCode(context.Background(), phone); err != nil {
		t.Fatalf("send on the fresh session should work, got %v", err)
	}
	if step := svc.Step(phone); step != domain.StepCodeSent {
		t.Errorf("expected step %s, got %s", domain.StepCodeSent, step)
	}
}

func TestVerificationServiceImpl_VerifyCode(t *testing.T) {
	tests := []struct {
		name            string
		code            string
		sendFirst       bool
		setupProvider   func(*mocks.MockIdentityProvider)
		expectedSubject string
		expectedError   error
		expectedCalls   int64
		expectedStep    domain.VerificationStep
	}{
		{
			name:            "successful verification",
			code:            "123456",
			sendFirst:       true,
			expectedSubject: "subject-+911234567890",
			expectedError:   nil,
			expectedCalls:   1,
			// Session is destroyed on the terminal outcome.
			expectedStep: domain.StepPhone,
		},
		{
			name:          "short code rejected before the provider is called",
			code:          "123",
			sendFirst:     true,
			expectedError: domain.ErrInvalidCode,
			expectedCalls: 0,
			expectedStep:  domain.StepCodeSent,
		},
		{
			name:          "non-numeric code rejected before the provider is called",
			code:          "12a456",
			sendFirst:     true,
			expectedError: domain.ErrInvalidCode,
			expectedCalls: 0,
			expectedStep:  domain.StepCodeSent,
		},
		{
			name:          "verify without a prior send",
			code:          "123456",
			sendFirst:     false,
			expectedError: domain.ErrNoActiveVerification,
			expectedCalls: 0,
			expectedStep:  domain.StepPhone,
		},
		{
			name:      "incorrect code returned immediately without retry",
			code:      "123456",
			sendFirst: true,
			setupProvider: func(p *mocks.MockIdentityProvider) {
				p.VerifyOneTimeCodeFunc = func(ctx context.Context, phone, code string) (string, error) {
					return "", domain.ErrCodeInvalid
				}
			},
			expectedError: domain.ErrCodeInvalid,
			expectedCalls: 1,
			expectedStep:  domain.StepCodeSent,
		},
		{
			name:      "expired code returned immediately without retry",
			code:      "123456",
			sendFirst: true,
			setupProvider: func(p *mocks.MockIdentityProvider) {
				p.VerifyOneTimeCodeFunc = func(ctx context.Context, phone, code string) (string, error) {
					return "", domain.ErrCodeExpired
				}
			},
			expectedError: domain.ErrCodeExpired,
			expectedCalls: 1,
			expectedStep:  domain.StepCodeSent,
		},
		{
			name:      "unclassified provider error is terminal",
			code:      "123456",
			sendFirst: true,
			setupProvider: func(p *mocks.MockIdentityProvider) {
				p.VerifyOneTimeCodeFunc = func(ctx context.Context, phone, code string) (string, error) {
					return "", errors.New("internal provider error")
				}
			},
			expectedError: domain.ErrVerification,
			expectedCalls: 1,
			expectedStep:  domain.StepPhone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, provider := newVerificationServiceForTest(t, testVerificationConfig())
			phone := "+911234567890"

			if tt.sendFirst {
				if err := svc.SendCode(context.Background(), phone); err != nil {
					t.Fatalf("send failed: %v", err)
				}
			}
			if tt.setupProvider != nil {
				tt.setupProvider(provider)
			}

			subject, err := svc.VerifyCode(context.Background(), phone, tt.code)

			if tt.expectedError == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if subject != tt.expectedSubject {
					t.Errorf("expected subject %q, got %q", tt.expectedSubject, subject)
				}
			} else if !errors.Is(err, tt.expectedError) {
				t.Fatalf("expected error %v, got %v", tt.expectedError, err)
			}

			if got := provider.VerifyCalls(); got != tt.expectedCalls {
				t.Errorf("expected %d provider calls, got %d", tt.expectedCalls, got)
			}
			if step := svc.Step(phone); step != tt.expectedStep {
				t.Errorf("expected step %s, got %s", tt.expectedStep, step)
			}
		})
	}
}

func TestVerificationServiceImpl_VerifyCode_TimeoutExhaustsRetries(t *testing.T) {
	svc, provider := newVerificationServiceForTest(t, testVerificationConfig())
	phone := "+911234567890"

	provider.VerifyOneTimeCodeFunc = func(ctx context.Context, p, c string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}

	if err := svc.SendCode(context.Background(), phone); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	_, err := svc.VerifyCode(context.Background(), phone, "123456")
	if !errors.Is(err, domain.ErrVerifyTimeout) {
		t.Fatalf("expected timeout error, got %v", err)
	}
	if got := provider.VerifyCalls(); got != 3 {
		t.Errorf("expected 3 attempts, got %d", got)
	}
	// Back to code_sent so the user can resend.
	if step := svc.Step(phone); step != domain.StepCodeSent {
		t.Errorf("expected step %s, got %s", domain.StepCodeSent, step)
	}
}

func TestVerificationServiceImpl_VerifyCode_FailureAllowsResend(t *testing.T) {
	svc, provider := newVerificationServiceForTest(t, testVerificationConfig())
	phone := "+911234567890"

	provider.VerifyOneTimeCodeFunc = func(ctx context.Context, p, c string) (string, error) {
		return "", domain.ErrCodeInvalid
	}

	if err := svc.SendCode(context.Background(), phone); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if _, err := svc.VerifyCode(context.Background(), phone, "123456"); !errors.Is(err, domain.ErrCodeInvalid) {
		t.Fatalf("expected invalid code error, got %v", err)
	}

	// The consumed send is terminal; a fresh code can be requested.
	if err := svc.SendCode(context.Background(), phone); err != nil {
		t.Fatalf("resend after failed verify should work, got %v", err)
	}
	if got := provider.SendCalls(); got != 2 {
		t.Errorf("expected 2 send calls, got %d", got)
	}
}

func TestVerificationServiceImpl_CancelAbandonsInFlightVerify(t *testing.T) {
	cfg := testVerificationConfig()
	cfg.AttemptTimeout = 5 * time.Second
	svc, provider := newVerificationServiceForTest(t, cfg)
	phone := "+911234567890"

	started := make(chan struct{}, 3)
	provider.VerifyOneTimeCodeFunc = func(ctx context.Context, p, c string) (string, error) {
		started <- struct{}{}
		<-ctx.Done()
		return "", ctx.Err()
	}

	if err := svc.SendCode(context.Background(), phone); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	errCh := make(chan error, 1)
	go func() {
		_, err := svc.VerifyCode(context.Background(), phone, "123456")
		errCh <- err
	}()

	<-started
	svc.Cancel(phone)

	select {
	case err := <-errCh:
		if !errors.Is(err, domain.ErrSessionClosed) {
			t.Fatalf("expected session closed error, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("verify did not return after cancel")
	}

	// The abandoned flow is gone; a late provider response has nothing
	// left to mutate.
	if step := svc.Step(phone); step != domain.StepPhone {
		t.Errorf("expected step %s after cancel, got %s", domain.StepPhone, step)
	}
}
