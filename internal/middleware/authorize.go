package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/abhishekprajapati1/clavel-assignment/internal/access"
	"github.com/abhishekprajapati1/clavel-assignment/internal/apperr"
	"github.com/abhishekprajapati1/clavel-assignment/internal/models"
)

func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	roleSet := make(map[models.UserRole]struct{}, len(roles))
	for _, role := range roles {
		roleSet[role] = struct{}{}
	}

	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			Abort(c, apperr.ErrNotAuthenticated)
			return
		}

		if _, ok := roleSet[user.Role]; !ok {
			Abort(c, apperr.ErrAdminRequired)
			return
		}

		c.Next()
	}
}

// RequirePremium answers 402 with an upgrade hint unless the current user
// has premium access. Admins always pass.
func RequirePremium() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			Abort(c, apperr.ErrNotAuthenticated)
			return
		}

		if !access.ForUser(user).HasPremiumAccess {
			Abort(c, apperr.ErrPremiumRequired)
			return
		}

		c.Next()
	}
}
