package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/you/offersvc/domain"
	"github.com/you/offersvc/internal/http/middleware"
)

// AuthHandlers handles phone verification and login HTTP requests
type AuthHandlers struct {
	authSvc         domain.AuthService
	verificationSvc domain.VerificationService
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(authSvc domain.AuthService, verificationSvc domain.VerificationService) *AuthHandlers {
	return &AuthHandlers{
		authSvc:         authSvc,
		verificationSvc: verificationSvc,
	}
}

// SendCodeRequest represents a verification code request
type SendCodeRequest struct {
	Phone string `json:"phone" binding:"required"`
}

// VerifyCodeRequest represents a code check and login request
type VerifyCodeRequest struct {
	Phone string `json:"phone" binding:"required"`
	Code  string `json:"code" binding:"required"`
}

// CancelRequest represents a verification cancellation
type CancelRequest struct {
	Phone string `json:"phone" binding:"required"`
}

// SendCode handles one-time-code requests
func (h *AuthHandlers) SendCode(c *gin.Context) {
	var req SendCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.verificationSvc.SendCode(c.Request.Context(), req.Phone)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidPhone):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrResendThrottled):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to send verification code"})
		}
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"data": gin.H{"message": "Verification code sent"},
	})
}

// VerifyCode handles code checks; a successful check logs the user in
func (h *AuthHandlers) VerifyCode(c *gin.Context) {
	var req VerifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.authSvc.LoginWithPhone(c.Request.Context(), req.Phone, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidPhone), errors.Is(err, domain.ErrInvalidCode):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrNoActiveVerification):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrCodeInvalid), errors.Is(err, domain.ErrCodeExpired):
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrVerifyTimeout):
			c.JSON(http.StatusGatewayTimeout, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Verification failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"access_token":  result.AccessToken,
			"refresh_token": result.RefreshToken,
			"token_type":    "Bearer",
			"expires_in":    result.ExpiresIn,
			"is_existing":   result.IsExisting,
			"user": gin.H{
				"id":    result.User.ID,
				"name":  result.User.Name,
				"phone": result.User.Phone,
			},
		},
	})
}

// CancelVerification resets an in-progress verification flow, e.g. when
// the hosting modal is closed
func (h *AuthHandlers) CancelVerification(c *gin.Context) {
	var req CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.verificationSvc.Cancel(req.Phone)
	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{"message": "Verification cancelled"},
	})
}

// Me returns the authenticated user's profile
func (h *AuthHandlers) Me(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	user, err := h.authSvc.GetUserProfile(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"id":          user.ID,
			"name":        user.Name,
			"phone":       user.Phone,
			"email":       user.Email,
			"city":        user.City,
			"is_verified": user.IsVerified,
		},
	})
}

// Logout deletes the current session
func (h *AuthHandlers) Logout(c *gin.Context) {
	sessionID := c.GetString("session_id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No active session"})
		return
	}

	if err := h.authSvc.Logout(c.Request.Context(), sessionID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Logout failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{"message": "Logged out"},
	})
}
