package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/abhishekprajapati1/clavel-assignment/internal/middleware"
)

func (h HandlerSet) setAuthCookies(c *gin.Context, accessToken, refreshToken string) {
	h.setCookie(c, middleware.AccessCookie, accessToken, int(h.cfg.Security.JWTAccessTTL.Seconds()))
	if refreshToken != "" {
		h.setCookie(c, middleware.RefreshCookie, refreshToken, int(h.cfg.Security.JWTRefreshTTL.Seconds()))
	}
}

func (h HandlerSet) clearAuthCookies(c *gin.Context) {
	h.setCookie(c, middleware.AccessCookie, "", -1)
	h.setCookie(c, middleware.RefreshCookie, "", -1)
}

func (h HandlerSet) setCookie(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(sameSite(h.cfg.Cookies.SameSite))
	c.SetCookie(name, value, maxAge, "/", h.cfg.Cookies.Domain, h.cfg.Cookies.Secure || h.cfg.IsProduction(), true)
}

func sameSite(mode string) http.SameSite {
	switch strings.ToLower(mode) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
