package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/abhishekprajapati1/clavel-assignment/internal/apperr"
)

// Abort renders err as the API error body and stops the chain. Causes are
// attached to the gin context for the request logger and never sent to the
// client.
func Abort(c *gin.Context, err error) {
	ae := apperr.As(err)
	if ae == nil {
		ae = apperr.Internal(err)
	}
	if ae.Cause != nil || ae.Kind == apperr.KindInternal {
		_ = c.Error(err)
	}

	body := gin.H{
		"error":   ae.Code,
		"message": ae.Message,
	}
	if ae.Action != "" {
		body["action"] = ae.Action
	}
	if ae.RedirectTo != "" {
		body["redirect_to"] = ae.RedirectTo
	}
	c.AbortWithStatusJSON(ae.HTTPStatus, body)
}
