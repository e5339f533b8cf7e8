package httpx

import (
	"github.com/gin-gonic/gin"

	"github.com/you/offersvc/internal/http/handlers"
	"github.com/you/offersvc/internal/http/middleware"
)

func BuildRouter(ah *handlers.AuthHandlers, oh *handlers.OfferHandlers, jwtmw *middleware.AuthMW) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	auth := r.Group("/auth")
	auth.POST("/otp/send", ah.SendCode)
	auth.POST("/otp/verify", ah.VerifyCode)
	auth.POST("/otp/cancel", ah.CancelVerification)

	// Live pricing feedback needs no login; the form shows it before the
	// buyer has verified.
	r.GET("/pricing/preview", oh.PricePreview)

	v := r.Group("/").Use(jwtmw.WithJWT())
	v.GET("/auth/me", ah.Me)
	v.POST("/auth/logout", ah.Logout)
	v.POST("/offers", oh.MakeOffer)
	v.POST("/offers/:id/respond", oh.Respond)
	v.GET("/cars/:id/offer-status", oh.OfferStatus)
	v.GET("/cars/:id/actions", oh.Actions)

	return r
}
