package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abhishekprajapati1/clavel-assignment/internal/apperr"
	"github.com/abhishekprajapati1/clavel-assignment/internal/middleware"
)

const maxWebhookBody = 64 << 10

func (h HandlerSet) UserAccessInfo(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	info, err := h.payments.AccessInfo(c.Request.Context(), user.ID)
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, toAccessInfoResponse(info))
}

func (h HandlerSet) CreateCheckoutSession(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	result, err := h.payments.CreateCheckout(c.Request.Context(), user)
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":  result.SessionID,
		"url": result.CheckoutURL,
	})
}

type verifySessionResponse struct {
	Status             string             `json:"status"`
	SessionID          string             `json:"session_id"`
	AlreadyPremium     bool               `json:"already_premium"`
	PremiumActivatedAt time.Time          `json:"premium_activated_at"`
	Access             accessInfoResponse `json:"access"`
}

// VerifySession confirms a checkout for the signed-in user. A pending
// payment answers 202 so the client can poll again.
func (h HandlerSet) VerifySession(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	result, err := h.payments.Confirm(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, verifySessionResponse{
		Status:             "paid",
		SessionID:          result.SessionID,
		AlreadyPremium:     result.AlreadyPremium,
		PremiumActivatedAt: result.ActivatedAt,
		Access:             toAccessInfoResponse(result.Access),
	})
}

func (h HandlerSet) StripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			middleware.Abort(c, apperr.ErrPayloadTooLarge)
			return
		}
		middleware.Abort(c, apperr.Validation("unreadable webhook body"))
		return
	}
	if err := h.payments.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature")); err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
