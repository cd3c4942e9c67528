package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/abhishekprajapati1/clavel-assignment/internal/config"
	"github.com/abhishekprajapati1/clavel-assignment/internal/payment"
	"github.com/abhishekprajapati1/clavel-assignment/internal/repository"
	"github.com/abhishekprajapati1/clavel-assignment/internal/security"
)

const (
	testAccessSecret  = "access-secret-for-tests"
	testRefreshSecret = "refresh-secret-for-tests"
)

type fakeNotifier struct {
	mu           sync.Mutex
	verification map[string]string
	reset        map[string]string
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{verification: map[string]string{}, reset: map[string]string{}}
}

func (n *fakeNotifier) SendVerification(_ context.Context, email, _ string, token string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.verification[email] = token
	return nil
}

func (n *fakeNotifier) SendPasswordReset(_ context.Context, email, _ string, token string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reset[email] = token
	return nil
}

func (n *fakeNotifier) verificationToken(email string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.verification[email]
}

func (n *fakeNotifier) resetToken(email string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.reset[email]
}

type fakeLedger struct {
	mu   sync.Mutex
	used map[string]bool
}

func (l *fakeLedger) Consume(_ context.Context, jti string, _ time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.used == nil {
		l.used = map[string]bool{}
	}
	if l.used[jti] {
		return false, nil
	}
	l.used[jti] = true
	return true, nil
}

func (l *fakeLedger) Release(_ context.Context, jti string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.used, jti)
	return nil
}

type fakeProvider struct {
	mu       sync.Mutex
	sessions map[string]payment.CheckoutSession
	getErr   error
	created  int
	lastReq  payment.CheckoutRequest
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{sessions: map[string]payment.CheckoutSession{}}
}

func (p *fakeProvider) CreateCheckout(_ context.Context, req payment.CheckoutRequest) (payment.CheckoutSession, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.created++
	p.lastReq = req
	s := payment.CheckoutSession{
		ID:            "cs_test_" + req.UserID,
		URL:           "https://checkout.stripe.test/" + req.UserID,
		UserID:        req.UserID,
		Status:        payment.CheckoutOpen,
		PaymentStatus: payment.PaymentUnpaid,
		AmountTotal:   req.AmountCents,
		Currency:      req.Currency,
	}
	p.sessions[s.ID] = s
	return s, nil
}

func (p *fakeProvider) GetCheckout(_ context.Context, id string) (payment.CheckoutSession, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.getErr != nil {
		return payment.CheckoutSession{}, p.getErr
	}
	s, ok := p.sessions[id]
	if !ok {
		return payment.CheckoutSession{}, payment.ErrSessionNotFound
	}
	return s, nil
}

func (p *fakeProvider) set(s payment.CheckoutSession) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sessions[s.ID] = s
}

var errBadSignature = errors.New("bad signature")

type fakeWebhooks struct {
	event payment.Event
}

func (w fakeWebhooks) ParseEvent(_ []byte, signature string) (payment.Event, error) {
	if signature != "valid" {
		return payment.Event{}, errBadSignature
	}
	return w.event, nil
}

type fakeQueue struct {
	mu   sync.Mutex
	jobs []string
}

func (q *fakeQueue) EnqueueConfirm(_ context.Context, checkoutID, _ string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, checkoutID)
	return nil
}

type testEnv struct {
	users    *repository.MemoryUserRepository
	sessions *repository.MemorySessionRepository
	payments *repository.MemoryPaymentRepository
	notifier *fakeNotifier
	tokens   *security.TokenCodec
	auth     *AuthService
}

func testSecurityConfig() config.SecurityConfig {
	return config.SecurityConfig{
		JWTAccessSecret:  testAccessSecret,
		JWTRefreshSecret: testRefreshSecret,
		JWTAccessTTL:     30 * time.Minute,
		JWTRefreshTTL:    7 * 24 * time.Hour,
		VerificationTTL:  24 * time.Hour,
		ResetTTL:         time.Hour,
	}
}

func newTestEnv(t *testing.T, mutate ...func(*config.SecurityConfig)) *testEnv {
	t.Helper()

	cfg := testSecurityConfig()
	for _, m := range mutate {
		m(&cfg)
	}

	env := &testEnv{
		users:    repository.NewMemoryUserRepository(),
		sessions: repository.NewMemorySessionRepository(),
		payments: repository.NewMemoryPaymentRepository(),
		notifier: newFakeNotifier(),
		tokens:   security.NewTokenCodec(testAccessSecret, testRefreshSecret),
	}
	hasher := security.NewPasswordHasher(security.Argon2Params{Time: 1, Memory: 8 * 1024, Threads: 1})
	env.auth = NewAuthService(env.users, env.sessions, hasher, env.tokens, env.notifier, &fakeLedger{}, cfg, zerolog.Nop())
	return env
}

func (e *testEnv) signup(t *testing.T, email, password string) {
	t.Helper()
	_, err := e.auth.Signup(context.Background(), SignupInput{
		Email:     email,
		Password:  password,
		FirstName: "Test",
		LastName:  "User",
	})
	require.NoError(t, err)
}

func (e *testEnv) signin(t *testing.T, email, password string) AuthResult {
	t.Helper()
	res, err := e.auth.Signin(context.Background(), SigninInput{
		Email:     email,
		Password:  password,
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) Chrome/120.0 Safari/537.36",
		IPAddress: "203.0.113.7",
	})
	require.NoError(t, err)
	return res
}
