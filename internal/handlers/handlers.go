package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/abhishekprajapati1/clavel-assignment/internal/apperr"
	"github.com/abhishekprajapati1/clavel-assignment/internal/config"
	"github.com/abhishekprajapati1/clavel-assignment/internal/middleware"
	"github.com/abhishekprajapati1/clavel-assignment/internal/models"
	"github.com/abhishekprajapati1/clavel-assignment/internal/service"
)

// HealthCheck checks one dependency for /healthz.
type HealthCheck struct {
	Name string
	Ping func(ctx context.Context) error
}

type HandlerSet struct {
	log      zerolog.Logger
	cfg      *config.AppConfig
	auth     *service.AuthService
	payments *service.PaymentService
	limiter  middleware.Limiter
	checks   []HealthCheck
}

func NewHandlerSet(
	log zerolog.Logger,
	cfg *config.AppConfig,
	auth *service.AuthService,
	payments *service.PaymentService,
	limiter middleware.Limiter,
	checks ...HealthCheck,
) HandlerSet {
	return HandlerSet{
		log:      log,
		cfg:      cfg,
		auth:     auth,
		payments: payments,
		limiter:  limiter,
		checks:   checks,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	requireAuth := middleware.Auth(h.auth)
	limited := h.rateLimit()

	auth := router.Group("/auth")
	{
		auth.POST("/signup", limited, h.Signup)
		auth.POST("/signin", limited, h.Signin)
		auth.POST("/verify-email", h.VerifyEmail)
		auth.POST("/resend-verification", limited, h.ResendVerification)
		auth.POST("/forgot", limited, h.ForgotPassword)
		auth.POST("/reset-password", h.ResetPassword)
		auth.POST("/refresh-token", h.RefreshToken)

		protected := auth.Group("")
		protected.Use(requireAuth)
		protected.GET("/details", h.Details)
		protected.POST("/logout", h.Logout)
		protected.POST("/change-password", h.ChangePassword)
		protected.DELETE("/account", h.DeactivateAccount)
		protected.GET("/sessions", h.ListSessions)
		protected.GET("/sessions/stats", h.SessionStats)
		protected.DELETE("/sessions", h.RevokeAllSessions)
		protected.DELETE("/sessions/:id", h.RevokeSession)
	}

	payment := router.Group("/payment")
	{
		payment.POST("/webhook", h.StripeWebhook)

		protected := payment.Group("")
		protected.Use(requireAuth)
		protected.GET("/user-access-info", h.UserAccessInfo)
		protected.POST("/create-checkout-session", h.CreateCheckoutSession)
		protected.GET("/verify-session/:id", h.VerifySession)
	}

	router.GET("/access/:capability", requireAuth, middleware.RequirePremium(), h.CheckCapability)

	admin := router.Group("/admin")
	admin.Use(requireAuth, middleware.RequireRoles(models.UserRoleAdmin))
	{
		admin.GET("/users", h.AdminListUsers)
		admin.PATCH("/users/:id/status", h.AdminSetUserStatus)
	}
}

func (h HandlerSet) rateLimit() gin.HandlerFunc {
	if h.limiter == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return middleware.RateLimit(h.limiter, h.log)
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		middleware.Abort(c, apperr.Validation(err.Error()))
		return false
	}
	return true
}

func message(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"message": msg})
}

func currentUser(c *gin.Context) (models.User, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		middleware.Abort(c, apperr.ErrNotAuthenticated)
	}
	return user, ok
}
