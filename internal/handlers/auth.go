package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhishekprajapati1/clavel-assignment/internal/apperr"
	"github.com/abhishekprajapati1/clavel-assignment/internal/middleware"
	"github.com/abhishekprajapati1/clavel-assignment/internal/service"
)

type signupRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
}

func (h HandlerSet) Signup(c *gin.Context) {
	var req signupRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.auth.Signup(c.Request.Context(), service.SignupInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		middleware.Abort(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Account created. Check your email to verify your address.",
		"user":    toUserResponse(user),
	})
}

type signinRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type tokenResponse struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token,omitempty"`
	TokenType    string        `json:"token_type"`
	ExpiresIn    int           `json:"expires_in"`
	User         *userResponse `json:"user,omitempty"`
}

func (h HandlerSet) Signin(c *gin.Context) {
	var req signinRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.auth.Signin(c.Request.Context(), service.SigninInput{
		Email:     req.Email,
		Password:  req.Password,
		UserAgent: c.GetHeader("User-Agent"),
		IPAddress: c.ClientIP(),
	})
	if err != nil {
		middleware.Abort(c, err)
		return
	}

	h.setAuthCookies(c, result.AccessToken, result.RefreshToken)
	user := toUserResponse(result.User)
	c.JSON(http.StatusOK, tokenResponse{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		TokenType:    "bearer",
		ExpiresIn:    int(h.cfg.Security.JWTAccessTTL.Seconds()),
		User:         &user,
	})
}

type tokenRequest struct {
	Token string `json:"token" binding:"required"`
}

func (h HandlerSet) VerifyEmail(c *gin.Context) {
	var req tokenRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.auth.VerifyEmail(c.Request.Context(), req.Token)
	if err != nil {
		middleware.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Email verified successfully",
		"user":    toUserResponse(user),
	})
}

type emailRequest struct {
	Email string `json:"email" binding:"required"`
}

func (h HandlerSet) ResendVerification(c *gin.Context) {
	var req emailRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.auth.ResendVerification(c.Request.Context(), req.Email); err != nil {
		middleware.Abort(c, err)
		return
	}
	message(c, http.StatusOK, "If the account exists and is unverified, a new link has been sent.")
}

func (h HandlerSet) ForgotPassword(c *gin.Context) {
	var req emailRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.auth.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		middleware.Abort(c, err)
		return
	}
	message(c, http.StatusOK, "If the account exists, a password reset link has been sent.")
}

type resetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

func (h HandlerSet) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.auth.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		middleware.Abort(c, err)
		return
	}
	h.clearAuthCookies(c)
	message(c, http.StatusOK, "Password has been reset. Please sign in again.")
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// RefreshToken reads the refresh token from the body, falling back to the
// refresh_token cookie.
func (h HandlerSet) RefreshToken(c *gin.Context) {
	var req refreshRequest
	if c.Request.ContentLength > 0 {
		if !bindJSON(c, &req) {
			return
		}
	}
	if req.RefreshToken == "" {
		req.RefreshToken, _ = c.Cookie(middleware.RefreshCookie)
	}
	if req.RefreshToken == "" {
		middleware.Abort(c, apperr.ErrNotAuthenticated)
		return
	}

	result, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		middleware.Abort(c, err)
		return
	}

	h.setAuthCookies(c, result.AccessToken, "")
	c.JSON(http.StatusOK, tokenResponse{
		AccessToken: result.AccessToken,
		TokenType:   "bearer",
		ExpiresIn:   int(h.cfg.Security.JWTAccessTTL.Seconds()),
	})
}

func (h HandlerSet) Details(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}

func (h HandlerSet) Logout(c *gin.Context) {
	session, ok := middleware.CurrentSession(c)
	if !ok {
		middleware.Abort(c, apperr.ErrNotAuthenticated)
		return
	}
	if err := h.auth.Logout(c.Request.Context(), session.ID); err != nil {
		middleware.Abort(c, err)
		return
	}
	h.clearAuthCookies(c)
	message(c, http.StatusOK, "Logged out successfully")
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

func (h HandlerSet) ChangePassword(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req changePasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.auth.ChangePassword(c.Request.Context(), user.ID, req.CurrentPassword, req.NewPassword); err != nil {
		middleware.Abort(c, err)
		return
	}
	h.clearAuthCookies(c)
	message(c, http.StatusOK, "Password changed. Please sign in again.")
}

func (h HandlerSet) DeactivateAccount(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.auth.DeactivateAccount(c.Request.Context(), user.ID); err != nil {
		middleware.Abort(c, err)
		return
	}
	h.clearAuthCookies(c)
	message(c, http.StatusOK, "Account deactivated")
}

func (h HandlerSet) ListSessions(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	current, _ := middleware.CurrentSession(c)

	sessions, err := h.auth.Sessions(c.Request.Context(), user.ID)
	if err != nil {
		middleware.Abort(c, err)
		return
	}

	resp := make([]sessionResponse, 0, len(sessions))
	for _, s := range sessions {
		resp = append(resp, toSessionResponse(s, current.ID))
	}
	c.JSON(http.StatusOK, gin.H{"sessions": resp})
}

func (h HandlerSet) SessionStats(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	stats, err := h.auth.SessionStats(c.Request.Context(), user.ID)
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionStatsResponse{
		TotalSessions:    stats.Total,
		ActiveSessions:   stats.Active,
		InactiveSessions: stats.Inactive,
		DeviceBreakdown:  stats.ByDevice,
		BrowserBreakdown: stats.ByBrowser,
	})
}

func (h HandlerSet) RevokeAllSessions(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	n, err := h.auth.LogoutAll(c.Request.Context(), user.ID)
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	h.clearAuthCookies(c)
	c.JSON(http.StatusOK, gin.H{"message": "All sessions revoked", "revoked": n})
}

func (h HandlerSet) RevokeSession(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	sessionID := c.Param("id")
	if err := h.auth.RevokeSession(c.Request.Context(), user.ID, sessionID); err != nil {
		middleware.Abort(c, err)
		return
	}
	if current, ok := middleware.CurrentSession(c); ok && current.ID == sessionID {
		h.clearAuthCookies(c)
	}
	message(c, http.StatusOK, "Session revoked")
}
