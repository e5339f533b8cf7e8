package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/you/offersvc/domain"
)

// errAttemptTimedOut marks a single verify attempt abandoned by its
// timer; the loop decides whether to retry.
var errAttemptTimedOut = errors.New("verification attempt timed out")

type VerificationConfig struct {
	CodeLength       int
	SubscriberDigits int
	CountryCode      string
	AttemptTimeout   time.Duration
	MaxAttempts      int
	RetryBackoff     time.Duration
	ResendWindow     time.Duration
}

// verificationSession is the transient state of one verification flow.
// requestID is the single-flight token: while it is set, further sends
// for the same phone are no-ops. gen fences late provider responses:
// any outcome computed under an old generation is discarded instead of
// mutating a session the user already abandoned. The counter is seeded
// from the service's per-phone generation map, which outlives the
// session itself, so a flow started after a cancel can never share a
// generation with one that was abandoned.
type verificationSession struct {
	phone     string
	requestID string
	step      domain.VerificationStep
	attempt   int
	lastErr   error
	gen       int
	ctx       context.Context
	cancel    context.CancelFunc
}

// VerificationServiceImpl implements domain.VerificationService. Session
// state lives in memory for the lifetime of the flow; Redis only holds
// the cross-device resend throttle.
type VerificationServiceImpl struct {
	provider    domain.IdentityProvider
	redisClient *redis.Client
	audit       domain.AuditLogger
	logger      *zap.Logger
	config      VerificationConfig

	mu       sync.Mutex
	sessions map[string]*verificationSession
	// gens carries each phone's fence generation across session
	// lifetimes; destroying a session always advances it.
	gens map[string]int
}

// NewVerificationService creates a new verification service
func NewVerificationService(provider domain.IdentityProvider, redisClient *redis.Client, audit domain.AuditLogger, logger *zap.Logger, config VerificationConfig) *VerificationServiceImpl {
	return &VerificationServiceImpl{
		provider:    provider,
		redisClient: redisClient,
		audit:       audit,
		logger:      logger,
		config:      config,
		sessions:    make(map[string]*verificationSession),
		gens:        make(map[string]int),
	}
}

// SendCode implements domain.VerificationService
func (s *VerificationServiceImpl) SendCode(ctx context.Context, phone string) error {
	normalized, err := s.normalizePhone(phone)
	if err != nil {
		return err
	}

	s.mu.Lock()
	sess := s.sessions[normalized]
	if sess == nil {
		sessCtx, cancel := context.WithCancel(context.Background())
		sess = &verificationSession{phone: normalized, step: domain.StepPhone, gen: s.gens[normalized], ctx: sessCtx, cancel: cancel}
		s.sessions[normalized] = sess
	}
	if sess.requestID != "" {
		// Duplicate tap while a send is outstanding. Absorbed silently so
		// the provider is charged for exactly one code.
		s.mu.Unlock()
		s.logger.Debug("duplicate send absorbed", zap.String("phone", normalized))
		return nil
	}
	sess.requestID = uuid.NewString()
	gen := sess.gen
	sessCtx := sess.ctx
	s.mu.Unlock()

	if s.config.ResendWindow > 0 {
		throttled, terr := s.resendThrottled(ctx, normalized)
		if terr != nil {
			s.logger.Warn("resend throttle check failed", zap.Error(terr))
		} else if throttled {
			s.clearRequest(normalized, gen)
			return domain.ErrResendThrottled
		}
	}

	if err := s.provider.SendOneTimeCode(sessCtx, normalized); err != nil {
		s.clearRequest(normalized, gen)
		s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.CodeRequestedEvent).WithPhone(normalized).WithError(err))
		if !errors.Is(err, domain.ErrProvider) {
			err = fmt.Errorf("%w: %s", domain.ErrProvider, err.Error())
		}
		return err
	}

	s.mu.Lock()
	if cur := s.sessions[normalized]; cur != nil && cur.gen == gen {
		cur.step = domain.StepCodeSent
	}
	s.mu.Unlock()

	if s.config.ResendWindow > 0 {
		if err := s.redisClient.Set(ctx, resendKey(normalized), 1, s.config.ResendWindow).Err(); err != nil {
			s.logger.Warn("failed to set resend throttle", zap.Error(err))
		}
	}

	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.CodeRequestedEvent).WithPhone(normalized))
	return nil
}

// VerifyCode implements domain.VerificationService
func (s *VerificationServiceImpl) VerifyCode(ctx context.Context, phone, code string) (string, error) {
	normalized, err := s.normalizePhone(phone)
	if err != nil {
		return "", err
	}
	if !s.validCode(code) {
		return "", domain.ErrInvalidCode
	}

	s.mu.Lock()
	sess := s.sessions[normalized]
	if sess == nil || (sess.step != domain.StepCodeSent && sess.step != domain.StepVerifying) {
		s.mu.Unlock()
		return "", domain.ErrNoActiveVerification
	}
	sess.step = domain.StepVerifying
	sess.attempt = 0
	gen := sess.gen
	sessCtx := sess.ctx
	s.mu.Unlock()

	for attempt := 1; attempt <= s.config.MaxAttempts; attempt++ {
		s.setAttempt(normalized, gen, attempt)

		subject, err := s.attemptVerify(sessCtx, normalized, code)
		switch {
		case err == nil:
			if !s.finish(normalized, gen, domain.StepVerified, nil) {
				return "", domain.ErrSessionClosed
			}
			s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.CodeVerifiedEvent).WithPhone(normalized))
			return subject, nil

		case errors.Is(err, errAttemptTimedOut):
			if attempt < s.config.MaxAttempts {
				s.logger.Info("verify attempt timed out, retrying",
					zap.String("phone", normalized), zap.Int("attempt", attempt))
				select {
				case <-time.After(s.config.RetryBackoff):
				case <-sessCtx.Done():
					return "", domain.ErrSessionClosed
				}
				continue
			}
			s.finish(normalized, gen, domain.StepCodeSent, domain.ErrVerifyTimeout)
			s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.CodeVerifyFailEvent).WithPhone(normalized).WithError(domain.ErrVerifyTimeout))
			return "", domain.ErrVerifyTimeout

		case errors.Is(err, domain.ErrSessionClosed):
			return "", domain.ErrSessionClosed

		case errors.Is(err, domain.ErrCodeExpired), errors.Is(err, domain.ErrCodeInvalid):
			s.finish(normalized, gen, domain.StepCodeSent, err)
			s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.CodeVerifyFailEvent).WithPhone(normalized).WithError(err))
			return "", err

		default:
			s.finish(normalized, gen, domain.StepFailed, err)
			s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.CodeVerifyFailEvent).WithPhone(normalized).WithError(err))
			if !errors.Is(err, domain.ErrVerification) {
				err = fmt.Errorf("%w: %s", domain.ErrVerification, err.Error())
			}
			return "", err
		}
	}

	return "", domain.ErrVerifyTimeout
}

// Cancel implements domain.VerificationService
func (s *VerificationServiceImpl) Cancel(phone string) {
	normalized, err := s.normalizePhone(phone)
	if err != nil {
		normalized = phone
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.sessions[normalized]
	if sess == nil {
		return
	}
	s.gens[normalized] = sess.gen + 1
	sess.cancel()
	delete(s.sessions, normalized)
}

// Step reports the current step of a phone's session, or StepPhone when
// no session exists.
func (s *VerificationServiceImpl) Step(phone string) domain.VerificationStep {
	normalized, err := s.normalizePhone(phone)
	if err != nil {
		return domain.StepPhone
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess := s.sessions[normalized]; sess != nil {
		return sess.step
	}
	return domain.StepPhone
}

// attemptVerify runs one provider check raced against the attempt timer.
// The result channel is buffered so a response arriving after the timer
// won is dropped on the floor rather than leaking a goroutine.
func (s *VerificationServiceImpl) attemptVerify(sessCtx context.Context, phone, code string) (string, error) {
	type outcome struct {
		subject string
		err     error
	}
	ch := make(chan outcome, 1)

	attemptCtx, cancel := context.WithTimeout(sessCtx, s.config.AttemptTimeout)
	defer cancel()

	go func() {
		subject, err := s.provider.VerifyOneTimeCode(attemptCtx, phone, code)
		ch <- outcome{subject: subject, err: err}
	}()

	var out outcome
	select {
	case out = <-ch:
	case <-attemptCtx.Done():
		out.err = attemptCtx.Err()
	}

	// A context-aware provider surfaces the deadline itself; fold both
	// paths into the same classification.
	if errors.Is(out.err, context.DeadlineExceeded) || errors.Is(out.err, context.Canceled) {
		if sessCtx.Err() != nil {
			return "", domain.ErrSessionClosed
		}
		return "", errAttemptTimedOut
	}

	return out.subject, out.err
}

// finish applies a terminal-or-retryable outcome to the session, fenced
// by the generation captured when the attempt started. Terminal steps
// destroy the session; code_sent keeps it so the user can resend.
func (s *VerificationServiceImpl) finish(phone string, gen int, step domain.VerificationStep, lastErr error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.sessions[phone]
	if sess == nil || sess.gen != gen {
		return false
	}

	sess.step = step
	sess.lastErr = lastErr
	sess.requestID = ""

	if step == domain.StepVerified || step == domain.StepFailed {
		s.gens[phone] = sess.gen + 1
		sess.cancel()
		delete(s.sessions, phone)
	}
	return true
}

func (s *VerificationServiceImpl) clearRequest(phone string, gen int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess := s.sessions[phone]; sess != nil && sess.gen == gen {
		sess.requestID = ""
	}
}

func (s *VerificationServiceImpl) setAttempt(phone string, gen int, attempt int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess := s.sessions[phone]; sess != nil && sess.gen == gen {
		sess.attempt = attempt
	}
}

func (s *VerificationServiceImpl) resendThrottled(ctx context.Context, phone string) (bool, error) {
	ttl, err := s.redisClient.TTL(ctx, resendKey(phone)).Result()
	if err != nil {
		return false, err
	}
	return ttl > 0, nil
}

func resendKey(phone string) string {
	return "otp:res:" + phone
}

// normalizePhone strips formatting, applies the default country code and
// returns a +<cc><subscriber> string. The subscriber part must have
// exactly the configured digit count.
func (s *VerificationServiceImpl) normalizePhone(phone string) (string, error) {
	var digits strings.Builder
	for i := 0; i < len(phone); i++ {
		c := phone[i]
		switch {
		case c >= '0' && c <= '9':
			digits.WriteByte(c)
		case c == '+' || c == ' ' || c == '-' || c == '(' || c == ')':
		default:
			return "", domain.ErrInvalidPhone
		}
	}

	cc := strings.TrimPrefix(s.config.CountryCode, "+")
	num := digits.String()
	if len(num) == s.config.SubscriberDigits+len(cc) && strings.HasPrefix(num, cc) {
		num = num[len(cc):]
	}
	if len(num) != s.config.SubscriberDigits {
		return "", domain.ErrInvalidPhone
	}

	return "+" + cc + num, nil
}

func (s *VerificationServiceImpl) validCode(code string) bool {
	if len(code) != s.config.CodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}

var _ domain.VerificationService = (*VerificationServiceImpl)(nil)
