package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/you/offersvc/internal/config"
	httpx "github.com/you/offersvc/internal/http"
	"github.com/you/offersvc/internal/http/handlers"
	"github.com/you/offersvc/internal/http/middleware"
	"github.com/you/offersvc/internal/infrastructure/audit"
	"github.com/you/offersvc/internal/infrastructure/auth"
	"github.com/you/offersvc/internal/infrastructure/database"
	"github.com/you/offersvc/internal/infrastructure/identity"
	"github.com/you/offersvc/internal/infrastructure/repositories"
	"github.com/you/offersvc/internal/services"
)

func Run(cfg *config.Config) error {
	logger, err := newLogger(cfg.GinMode)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	gdb, err := database.Open(cfg.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if err := database.AutoMigrate(gdb); err != nil {
		return err
	}

	rdb := database.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB).Client
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}

	// Infrastructure services
	tokenSvc := auth.NewJWTService(cfg.JWTSecret, cfg.JWTIssuer, cfg.AccessTTL, cfg.RefreshTTL)
	provider := identity.NewTwilioVerifyProvider(cfg.TwilioSID, cfg.TwilioToken, cfg.TwilioVerifySID, logger)
	auditLogger := audit.NewZapAuditLogger(logger)

	// Repositories
	userRepo := repositories.NewUserRepository(gdb)
	listingRepo := repositories.NewListingRepository(gdb)
	offerRepo := repositories.NewOfferRepository(gdb)
	sessionRepo := repositories.NewSessionRepository(rdb, cfg.RefreshTTL)

	// Domain services
	verificationCfg := services.VerificationConfig{
		CodeLength:       cfg.OTPCodeLength,
		SubscriberDigits: cfg.OTPSubscriberDigits,
		CountryCode:      cfg.OTPCountryCode,
		AttemptTimeout:   cfg.OTPAttemptTimeout,
		MaxAttempts:      cfg.OTPMaxAttempts,
		RetryBackoff:     cfg.OTPRetryBackoff,
		ResendWindow:     cfg.OTPResendWindow,
	}
	verificationSvc := services.NewVerificationService(provider, rdb, auditLogger, logger, verificationCfg)
	reconcileSvc := services.NewReconcileService(userRepo, logger)
	offerSvc := services.NewOfferService(offerRepo, listingRepo, auditLogger, logger)
	authSvc := services.NewAuthService(verificationSvc, reconcileSvc, sessionRepo, tokenSvc, userRepo, cfg.RefreshTTL, cfg.AccessTTL, logger)

	// Handlers and middleware
	authH := handlers.NewAuthHandlers(authSvc, verificationSvc)
	offerH := handlers.NewOfferHandlers(offerSvc)
	jwtMW := middleware.NewAuthMW(tokenSvc, sessionRepo)

	r := httpx.BuildRouter(authH, offerH, jwtMW)

	addr := ":" + cfg.Port
	logger.Info("listening", zap.String("addr", addr))
	return http.ListenAndServe(addr, r)
}

func newLogger(mode string) (*zap.Logger, error) {
	if mode == "release" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
