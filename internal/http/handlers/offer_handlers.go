package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/you/offersvc/domain"
	"github.com/you/offersvc/internal/http/middleware"
)

// OfferHandlers handles offer lifecycle HTTP requests
type OfferHandlers struct {
	offerSvc domain.OfferService
}

// NewOfferHandlers creates new offer handlers
func NewOfferHandlers(offerSvc domain.OfferService) *OfferHandlers {
	return &OfferHandlers{offerSvc: offerSvc}
}

// MakeOfferRequest represents an offer submission
type MakeOfferRequest struct {
	CarID   uint   `json:"car_id" binding:"required"`
	Amount  int64  `json:"amount" binding:"required"`
	Message string `json:"message,omitempty"`
}

// RespondRequest represents a seller's decision on a pending offer
type RespondRequest struct {
	Decision domain.OfferDecision `json:"decision" binding:"required,oneof=accept reject"`
}

// MakeOffer handles offer submission
func (h *OfferHandlers) MakeOffer(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var req MakeOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	offer, err := h.offerSvc.Submit(c.Request.Context(), req.CarID, userID, req.Amount, req.Message)
	if err != nil {
		var blocked *domain.OfferBlockedError
		switch {
		case errors.As(err, &blocked):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":                "Offer is too far below the asking price",
				"percent_below_asking": blocked.PercentBelowAsking,
			})
		case errors.Is(err, domain.ErrListingNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrSelfOffer), errors.Is(err, domain.ErrInvalidAmount):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit offer"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"data": gin.H{
			"id":           offer.ID,
			"car_id":       offer.CarID,
			"amount":       offer.Amount,
			"asking_price": offer.AskingPrice,
			"status":       offer.Status,
		},
	})
}

// Respond handles accept/reject of a pending offer
func (h *OfferHandlers) Respond(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	offerID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid offer id"})
		return
	}

	var req RespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	offer, err := h.offerSvc.Respond(c.Request.Context(), uint(offerID), userID, req.Decision)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrOfferNotFound), errors.Is(err, domain.ErrListingNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrNotSeller):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrOfferResolved):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to respond to offer"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"id":     offer.ID,
			"status": offer.Status,
		},
	})
}

// OfferStatus returns the buyer's latest offer status on a listing.
// Surfaces poll this; the result is a point-in-time read.
func (h *OfferHandlers) OfferStatus(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	carID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid car id"})
		return
	}

	status, err := h.offerSvc.Status(c.Request.Context(), uint(carID), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read offer status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{"status": status},
	})
}

// Actions returns the action gate derived from the latest offer status
func (h *OfferHandlers) Actions(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	carID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid car id"})
		return
	}

	actions, err := h.offerSvc.Actions(c.Request.Context(), uint(carID), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to derive actions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": actions})
}

// PricePreview classifies an amount against an asking price for live
// feedback on the offer entry form. Same function the submission gate
// enforces.
func (h *OfferHandlers) PricePreview(c *gin.Context) {
	askingPrice, err := strconv.ParseInt(c.Query("asking_price"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid asking_price"})
		return
	}

	amount, err := strconv.ParseInt(c.Query("amount"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount"})
		return
	}

	assessment := domain.ClassifyPrice(askingPrice, amount)
	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"class":                assessment.Class,
			"percent_below_asking": assessment.PercentBelowAsking,
		},
	})
}
