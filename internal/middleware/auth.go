package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/abhishekprajapati1/clavel-assignment/internal/apperr"
	"github.com/abhishekprajapati1/clavel-assignment/internal/models"
	"github.com/abhishekprajapati1/clavel-assignment/internal/security"
	"github.com/abhishekprajapati1/clavel-assignment/internal/service"
)

const (
	AccessCookie  = "access_token"
	RefreshCookie = "refresh_token"

	ctxUser    = "current_user"
	ctxClaims  = "access_claims"
	ctxSession = "current_session"
)

type Authenticator interface {
	Authenticate(ctx context.Context, accessToken, ip string) (service.Principal, error)
}

// Auth accepts the access token from an Authorization bearer header or the
// access_token cookie.
func Auth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			token, _ = c.Cookie(AccessCookie)
		}
		if token == "" {
			Abort(c, apperr.ErrNotAuthenticated)
			return
		}

		principal, err := auth.Authenticate(c.Request.Context(), token, c.ClientIP())
		if err != nil {
			Abort(c, err)
			return
		}

		c.Set(ctxUser, principal.User)
		c.Set(ctxClaims, principal.Claims)
		c.Set(ctxSession, principal.Session)

		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func CurrentUser(c *gin.Context) (models.User, bool) {
	v, ok := c.Get(ctxUser)
	if !ok {
		return models.User{}, false
	}
	user, ok := v.(models.User)
	return user, ok
}

func CurrentSession(c *gin.Context) (models.Session, bool) {
	v, ok := c.Get(ctxSession)
	if !ok {
		return models.Session{}, false
	}
	session, ok := v.(models.Session)
	return session, ok
}

func CurrentClaims(c *gin.Context) (*security.Claims, bool) {
	v, ok := c.Get(ctxClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*security.Claims)
	return claims, ok
}
