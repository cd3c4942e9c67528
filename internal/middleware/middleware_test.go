package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhishekprajapati1/clavel-assignment/internal/apperr"
	"github.com/abhishekprajapati1/clavel-assignment/internal/models"
	"github.com/abhishekprajapati1/clavel-assignment/internal/security"
	"github.com/abhishekprajapati1/clavel-assignment/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubAuth struct {
	users map[string]models.User
}

func (a stubAuth) Authenticate(_ context.Context, token, _ string) (service.Principal, error) {
	u, ok := a.users[token]
	if !ok {
		return service.Principal{}, apperr.ErrSessionRevoked
	}
	return service.Principal{
		User:    u,
		Session: models.Session{ID: "sess-" + u.ID, UserID: u.ID, IsActive: true},
		Claims:  &security.Claims{UserID: u.ID, SessionID: "sess-" + u.ID, Type: security.TokenAccess},
	}, nil
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	auth := stubAuth{users: map[string]models.User{
		"user-token":    {ID: "u1", Role: models.UserRoleUser},
		"premium-token": {ID: "u2", Role: models.UserRoleUser, IsPremium: true},
		"admin-token":   {ID: "u3", Role: models.UserRoleAdmin},
	}}

	r := gin.New()
	chain := append([]gin.HandlerFunc{Auth(auth)}, handlers...)
	chain = append(chain, func(c *gin.Context) {
		user, _ := CurrentUser(c)
		session, _ := CurrentSession(c)
		claims, _ := CurrentClaims(c)
		c.JSON(http.StatusOK, gin.H{"id": user.ID, "session": session.ID, "sid": claims.SessionID})
	})
	r.GET("/protected", chain...)
	return r
}

func do(r http.Handler, req *http.Request) (*httptest.ResponseRecorder, map[string]any) {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var body map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func TestAuth_TokenSources(t *testing.T) {
	r := newRouter()

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer user-token")
	w, body := do(r, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", body["id"])
	assert.Equal(t, "sess-u1", body["sid"])

	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: AccessCookie, Value: "premium-token"})
	w, body = do(r, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u2", body["id"])
}

func TestAuth_Rejections(t *testing.T) {
	r := newRouter()

	w, body := do(r, httptest.NewRequest(http.MethodGet, "/protected", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "NOT_AUTHENTICATED", body["error"])

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer revoked")
	w, body = do(r, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "SESSION_REVOKED", body["error"])
}

func TestRequirePremium(t *testing.T) {
	r := newRouter(RequirePremium())

	tests := []struct {
		token string
		code  int
	}{
		{"user-token", http.StatusPaymentRequired},
		{"premium-token", http.StatusOK},
		{"admin-token", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)
			w, body := do(r, req)
			assert.Equal(t, tt.code, w.Code)
			if tt.code == http.StatusPaymentRequired {
				assert.Equal(t, "upgrade_required", body["action"])
				assert.Equal(t, "/payment", body["redirect_to"])
			}
		})
	}
}

func TestRequireRoles(t *testing.T) {
	r := newRouter(RequireRoles(models.UserRoleAdmin))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer premium-token")
	w, _ := do(r, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer admin-token")
	w, _ = do(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

type countingLimiter struct {
	limit int
	hits  map[string]int
	err   error
}

func (l *countingLimiter) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	if l.err != nil {
		return false, 0, l.err
	}
	l.hits[key]++
	return l.hits[key] <= l.limit, 1500 * time.Millisecond, nil
}

func TestRateLimit(t *testing.T) {
	limiter := &countingLimiter{limit: 2, hits: map[string]int{}}
	r := gin.New()
	r.POST("/signin", RateLimit(limiter, zerolog.Nop()), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for i := 0; i < 2; i++ {
		w, _ := do(r, httptest.NewRequest(http.MethodPost, "/signin", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
	}
	w, body := do(r, httptest.NewRequest(http.MethodPost, "/signin", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "RATE_LIMITED", body["error"])
	assert.Equal(t, "2", w.Header().Get("Retry-After"))

	limiter.err = errors.New("redis down")
	w, _ = do(r, httptest.NewRequest(http.MethodPost, "/signin", nil))
	assert.Equal(t, http.StatusNoContent, w.Code, "limiter failures fail open")
}

func TestAbortHidesInternalCauses(t *testing.T) {
	r := gin.New()
	r.GET("/boom", func(c *gin.Context) { Abort(c, errors.New("pq: connection refused")) })

	w, body := do(r, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "INTERNAL_ERROR", body["error"])
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestRequestIDEchoed(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "req-123")
	w, _ := do(r, req)
	assert.Equal(t, "req-123", w.Header().Get(requestIDHeader))

	w, _ = do(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))
}

func TestRequestIDRejectsUnsafeValues(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, CurrentRequestID(c)) })

	for _, id := range []string{"bad id\nforged=1", strings.Repeat("a", maxRequestIDLen+1)} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(requestIDHeader, id)
		w, _ := do(r, req)
		got := w.Header().Get(requestIDHeader)
		assert.NotEqual(t, id, got)
		assert.Equal(t, got, w.Body.String())
	}
}

func TestLoggerRecordsPrincipal(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	r := newRouter()
	r.Use(RequestID(), Logger(log))
	r.GET("/logged", Auth(stubAuth{users: map[string]models.User{"t": {ID: "u9"}}}), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/logged", nil)
	req.Header.Set("Authorization", "Bearer t")
	req.Header.Set(requestIDHeader, "req-9")
	w, _ := do(r, req)
	require.Equal(t, http.StatusNoContent, w.Code)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "u9", line["user_id"])
	assert.Equal(t, "sess-u9", line["session_id"])
	assert.Equal(t, "req-9", line["request_id"])
	assert.Equal(t, float64(http.StatusNoContent), line["status"])
}

func TestCORSCredentialsOnlyForListedOrigins(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"https://app.example.com"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w, _ := do(r, req)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "Retry-After")

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example.net")
	w, _ = do(r, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))

	open := gin.New()
	open.Use(CORS(nil))
	open.OPTIONS("/", func(c *gin.Context) {})
	req = httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://anyone.example.org")
	w, _ = do(open, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
}
