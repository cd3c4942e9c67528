package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhishekprajapati1/clavel-assignment/internal/access"
	"github.com/abhishekprajapati1/clavel-assignment/internal/apperr"
	"github.com/abhishekprajapati1/clavel-assignment/internal/middleware"
)

// CheckCapability runs behind RequirePremium, so reaching it means the
// capability is granted.
func (h HandlerSet) CheckCapability(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	capability, ok := access.ParseCapability(c.Param("capability"))
	if !ok {
		middleware.Abort(c, apperr.NotFound("capability"))
		return
	}

	info := access.ForUser(user)
	c.JSON(http.StatusOK, gin.H{
		"capability": capability,
		"allowed":    info.Allows(capability),
		"access":     toAccessInfoResponse(info),
	})
}
