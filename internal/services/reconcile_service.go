package services

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/you/offersvc/domain"
)

// defaultUserName is the placeholder name given to records created by
// reconciliation; the user fills in their profile later.
const defaultUserName = "User"

// ReconcileServiceImpl implements domain.ReconcileService. It turns a
// verified identity into a durable user record, treating a unique-key
// conflict on insert as a concurrent session having won the race.
type ReconcileServiceImpl struct {
	userRepo domain.UserRepository
	logger   *zap.Logger
}

// NewReconcileService creates a new reconcile service
func NewReconcileService(userRepo domain.UserRepository, logger *zap.Logger) domain.ReconcileService {
	return &ReconcileServiceImpl{
		userRepo: userRepo,
		logger:   logger,
	}
}

// Reconcile implements domain.ReconcileService. It never fails the
// caller's authentication: when every persistence path is exhausted it
// degrades to a non-persisted placeholder record. Safe to call twice for
// the same identity; the second call reports IsExisting.
func (s *ReconcileServiceImpl) Reconcile(ctx context.Context, subjectID, phone string) (*domain.ReconcileResult, error) {
	user, err := s.userRepo.FindByPhone(ctx, phone)
	if err == nil {
		if !user.IsVerified {
			// Monotonic: verification only ever sets the flag.
			if merr := s.userRepo.MarkVerified(ctx, user.ID); merr != nil {
				s.logger.Warn("failed to mark user verified", zap.Uint("user_id", user.ID), zap.Error(merr))
			} else {
				user.IsVerified = true
			}
		}
		return &domain.ReconcileResult{IsExisting: true, Persisted: true, User: user}, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		s.logger.Warn("user lookup failed, attempting insert", zap.String("subject", subjectID), zap.Error(err))
	}

	user = &domain.User{
		Name:       defaultUserName,
		Phone:      phone,
		Email:      "",
		IsVerified: true,
	}

	err = s.userRepo.Create(ctx, user)
	if err == nil {
		return &domain.ReconcileResult{IsExisting: false, Persisted: true, User: user}, nil
	}

	if errors.Is(err, domain.ErrUserAlreadyExists) {
		// A concurrent reconciliation for the same phone completed first.
		// Expected under two-tab or two-device verification; read theirs.
		existing, ferr := s.userRepo.FindByPhone(ctx, phone)
		if ferr == nil {
			return &domain.ReconcileResult{IsExisting: true, Persisted: true, User: existing}, nil
		}
		s.logger.Warn("fallback fetch after duplicate insert failed", zap.String("subject", subjectID), zap.Error(ferr))
	} else {
		s.logger.Warn("user insert failed", zap.String("subject", subjectID), zap.Error(err))
	}

	// The identity is verified regardless of the store's health; hand the
	// caller a placeholder so login is never blocked by a persistence
	// hiccup.
	return &domain.ReconcileResult{
		IsExisting: false,
		Persisted:  false,
		User: &domain.User{
			Name:       defaultUserName,
			Phone:      phone,
			Email:      "",
			IsVerified: true,
		},
	}, nil
}
