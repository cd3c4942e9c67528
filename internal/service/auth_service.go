package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/abhishekprajapati1/clavel-assignment/internal/apperr"
	"github.com/abhishekprajapati1/clavel-assignment/internal/config"
	"github.com/abhishekprajapati1/clavel-assignment/internal/ids"
	"github.com/abhishekprajapati1/clavel-assignment/internal/models"
	"github.com/abhishekprajapati1/clavel-assignment/internal/repository"
	"github.com/abhishekprajapati1/clavel-assignment/internal/security"
)

const minPasswordLength = 8

type AuthService struct {
	users    UserStore
	sessions SessionStore
	hasher   *security.PasswordHasher
	tokens   *security.TokenCodec
	notifier Notifier
	ledger   TokenLedger
	cfg      config.SecurityConfig
	log      zerolog.Logger
	now      func() time.Time
}

func NewAuthService(
	users UserStore,
	sessions SessionStore,
	hasher *security.PasswordHasher,
	tokens *security.TokenCodec,
	notifier Notifier,
	ledger TokenLedger,
	cfg config.SecurityConfig,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		hasher:   hasher,
		tokens:   tokens,
		notifier: notifier,
		ledger:   ledger,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
}

type SignupInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Signup creates an unverified account and queues its verification link.
// No session is created.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (models.User, error) {
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return models.User{}, err
	}
	if err := validatePassword(input.Password); err != nil {
		return models.User{}, err
	}
	firstName := strings.TrimSpace(input.FirstName)
	lastName := strings.TrimSpace(input.LastName)
	if firstName == "" || lastName == "" {
		return models.User{}, apperr.Validation("first and last name are required")
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return models.User{}, apperr.ErrEmailAlreadyExists
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return models.User{}, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		ID:           ids.New(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     lastName,
		Role:         models.UserRoleUser,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return models.User{}, apperr.ErrEmailAlreadyExists
		}
		return models.User{}, err
	}

	s.sendVerification(ctx, user)
	s.log.Info().Str("user_id", user.ID).Msg("user signed up")
	return user, nil
}

type SigninInput struct {
	Email     string
	Password  string
	UserAgent string
	IPAddress string
}

type AuthResult struct {
	AccessToken  string
	RefreshToken string
	User         models.User
	Session      models.Session
}

func (s *AuthService) Signin(ctx context.Context, input SigninInput) (AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return AuthResult{}, apperr.ErrInvalidCredentials
		}
		return AuthResult{}, err
	}

	ok, err := s.hasher.Verify(input.Password, user.PasswordHash)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("stored password hash unreadable")
		return AuthResult{}, err
	}
	if !ok {
		return AuthResult{}, apperr.ErrInvalidCredentials
	}
	if !user.IsActive {
		return AuthResult{}, apperr.ErrAccountInactive
	}
	if s.cfg.RequireVerifiedEmail && !user.IsVerified {
		return AuthResult{}, apperr.ErrEmailNotVerified
	}

	session := models.Session{
		ID:         ids.New(),
		UserID:     user.ID,
		DeviceInfo: security.ParseDeviceInfo(input.UserAgent),
		IsActive:   true,
		ExpiresAt:  s.now().Add(s.cfg.JWTRefreshTTL),
	}
	if input.IPAddress != "" {
		ip := input.IPAddress
		session.IPAddress = &ip
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return AuthResult{}, fmt.Errorf("create session: %w", err)
	}

	payload := security.TokenPayload{
		UserID:    user.ID,
		SessionID: session.ID,
		Role:      string(user.Role),
		Email:     user.Email,
	}
	accessToken, err := s.tokens.Issue(payload, security.TokenAccess, s.cfg.JWTAccessTTL)
	if err != nil {
		return AuthResult{}, err
	}
	refreshToken, err := s.tokens.Issue(payload, security.TokenRefresh, s.cfg.JWTRefreshTTL)
	if err != nil {
		return AuthResult{}, err
	}

	s.log.Info().
		Str("user_id", user.ID).
		Str("session_id", session.ID).
		Str("device", session.DeviceInfo.Device).
		Msg("user signed in")

	return AuthResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
		Session:      session,
	}, nil
}

// Refresh issues a new access token for a live session. The refresh token
// itself is not rotated.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (AuthResult, error) {
	claims, err := s.tokens.Verify(refreshToken, security.TokenRefresh)
	if err != nil {
		return AuthResult{}, err
	}

	session, user, err := s.liveSession(ctx, claims)
	if err != nil {
		return AuthResult{}, err
	}

	accessToken, err := s.tokens.Issue(security.TokenPayload{
		UserID:    user.ID,
		SessionID: session.ID,
		Role:      string(user.Role),
		Email:     user.Email,
	}, security.TokenAccess, s.cfg.JWTAccessTTL)
	if err != nil {
		return AuthResult{}, err
	}

	if err := s.sessions.Touch(ctx, session.ID, ""); err != nil {
		s.log.Warn().Err(err).Str("session_id", session.ID).Msg("touch session failed")
	}

	return AuthResult{AccessToken: accessToken, User: user, Session: session}, nil
}

type Principal struct {
	User    models.User
	Session models.Session
	Claims  *security.Claims
}

// Authenticate resolves an access token to its user, rejecting tokens whose
// session has been revoked or whose account was deactivated.
func (s *AuthService) Authenticate(ctx context.Context, accessToken, ip string) (Principal, error) {
	if accessToken == "" {
		return Principal{}, apperr.ErrNotAuthenticated
	}
	claims, err := s.tokens.Verify(accessToken, security.TokenAccess)
	if err != nil {
		return Principal{}, err
	}

	session, user, err := s.liveSession(ctx, claims)
	if err != nil {
		return Principal{}, err
	}

	if err := s.sessions.Touch(ctx, session.ID, ip); err != nil {
		s.log.Warn().Err(err).Str("session_id", session.ID).Msg("touch session failed")
	}

	return Principal{User: user, Session: session, Claims: claims}, nil
}

func (s *AuthService) liveSession(ctx context.Context, claims *security.Claims) (models.Session, models.User, error) {
	if claims.SessionID == "" {
		return models.Session{}, models.User{}, apperr.ErrTokenMalformed
	}

	session, err := s.sessions.GetByID(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return models.Session{}, models.User{}, apperr.ErrSessionRevoked
		}
		return models.Session{}, models.User{}, err
	}
	if !session.IsActive || session.UserID != claims.UserID || !s.now().Before(session.ExpiresAt) {
		return models.Session{}, models.User{}, apperr.ErrSessionRevoked
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return models.Session{}, models.User{}, apperr.ErrSessionRevoked
		}
		return models.Session{}, models.User{}, err
	}
	if !user.IsActive {
		return models.Session{}, models.User{}, apperr.ErrAccountInactive
	}
	return session, user, nil
}

// VerifyEmail marks the token's account verified. Verifying twice succeeds.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) (models.User, error) {
	claims, err := s.tokens.Verify(token, security.TokenVerification)
	if err != nil {
		return models.User{}, err
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return models.User{}, apperr.ErrUserNotFound
		}
		return models.User{}, err
	}
	if user.IsVerified {
		return user, nil
	}

	if err := s.users.MarkVerified(ctx, user.ID); err != nil {
		return models.User{}, err
	}
	user.IsVerified = true
	s.log.Info().Str("user_id", user.ID).Msg("email verified")
	return user, nil
}

// ResendVerification queues a fresh link. Unknown and already verified
// addresses succeed silently so the endpoint does not reveal accounts.
func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil
		}
		return err
	}
	if user.IsVerified || !user.IsActive {
		return nil
	}
	s.sendVerification(ctx, user)
	return nil
}

func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil
		}
		return err
	}
	if !user.IsActive {
		return nil
	}

	token, err := s.tokens.Issue(security.TokenPayload{UserID: user.ID, Email: user.Email}, security.TokenReset, s.cfg.ResetTTL)
	if err != nil {
		return err
	}
	if err := s.notifier.SendPasswordReset(ctx, user.Email, user.FullName(), token); err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("queue password reset failed")
	}
	return nil
}

// ResetPassword consumes a reset token once and signs out every session. The
// token stays usable when the reset fails.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) (err error) {
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	claims, err := s.tokens.Verify(token, security.TokenReset)
	if err != nil {
		return err
	}

	ttl := s.cfg.ResetTTL
	if claims.ExpiresAt != nil {
		ttl = claims.ExpiresAt.Sub(s.now())
	}
	fresh, err := s.ledger.Consume(ctx, claims.ID, ttl)
	if err != nil {
		return err
	}
	if !fresh {
		return apperr.ErrTokenUsed
	}
	defer func() {
		if err == nil {
			return
		}
		if releaseErr := s.ledger.Release(context.WithoutCancel(ctx), claims.ID); releaseErr != nil {
			s.log.Error().Err(releaseErr).Str("user_id", claims.UserID).Msg("release reset token failed")
		}
	}()

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperr.ErrUserNotFound
		}
		return err
	}
	if err := s.setPassword(ctx, user.ID, newPassword); err != nil {
		return err
	}
	s.log.Info().Str("user_id", user.ID).Msg("password reset")
	return nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	ok, err := s.hasher.Verify(currentPassword, user.PasswordHash)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.ErrInvalidCredentials.WithMessage("current password is incorrect")
	}
	return s.setPassword(ctx, user.ID, newPassword)
}

func (s *AuthService) setPassword(ctx context.Context, userID, password string) error {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}
	_, err = s.sessions.RevokeAll(ctx, userID)
	return err
}

// DeactivateAccount soft-disables the account and ends all its sessions.
func (s *AuthService) DeactivateAccount(ctx context.Context, userID string) error {
	return s.setActive(ctx, userID, false)
}

func (s *AuthService) setActive(ctx context.Context, userID string, active bool) error {
	if err := s.users.SetActive(ctx, userID, active); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperr.ErrUserNotFound
		}
		return err
	}
	if active {
		return nil
	}
	n, err := s.sessions.RevokeAll(ctx, userID)
	if err != nil {
		return err
	}
	s.log.Info().Str("user_id", userID).Int64("sessions", n).Msg("account deactivated")
	return nil
}

func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.Revoke(ctx, sessionID)
}

func (s *AuthService) LogoutAll(ctx context.Context, userID string) (int64, error) {
	return s.sessions.RevokeAll(ctx, userID)
}

func (s *AuthService) RevokeSession(ctx context.Context, userID, sessionID string) error {
	if err := s.sessions.RevokeForUser(ctx, userID, sessionID); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return apperr.ErrSessionNotFound
		}
		return err
	}
	return nil
}

func (s *AuthService) Sessions(ctx context.Context, userID string) ([]models.Session, error) {
	return s.sessions.ListByUser(ctx, userID)
}

func (s *AuthService) SessionStats(ctx context.Context, userID string) (models.SessionStats, error) {
	return s.sessions.Stats(ctx, userID)
}

// CleanupSessions deactivates sessions idle for longer than the refresh TTL
// and deletes inactive ones older than retention.
func (s *AuthService) CleanupSessions(ctx context.Context, retention time.Duration) (expired, purged int64, err error) {
	now := s.now()
	expired, err = s.sessions.ExpireIdle(ctx, now.Add(-s.cfg.JWTRefreshTTL))
	if err != nil {
		return 0, 0, fmt.Errorf("expire idle sessions: %w", err)
	}
	purged, err = s.sessions.PurgeInactive(ctx, now.Add(-retention))
	if err != nil {
		return expired, 0, fmt.Errorf("purge sessions: %w", err)
	}
	return expired, purged, nil
}

func (s *AuthService) ListUsers(ctx context.Context, limit, offset int) ([]models.User, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.users.List(ctx, limit, offset)
}

// SetUserStatus lets an admin (de)activate another account.
func (s *AuthService) SetUserStatus(ctx context.Context, actorID, userID string, active bool) error {
	if actorID == userID && !active {
		return apperr.Validation("admins cannot deactivate their own account")
	}
	return s.setActive(ctx, userID, active)
}

// EnsureAdmin creates the configured admin account, or promotes and
// re-enables it when it already exists.
func (s *AuthService) EnsureAdmin(ctx context.Context, cfg config.AdminConfig) error {
	if cfg.Email == "" || cfg.Password == "" {
		s.log.Debug().Msg("admin bootstrap skipped, no credentials configured")
		return nil
	}
	email, err := normalizeEmail(cfg.Email)
	if err != nil {
		return err
	}

	existing, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Role != models.UserRoleAdmin {
			if err := s.users.SetRole(ctx, existing.ID, models.UserRoleAdmin); err != nil {
				return err
			}
			s.log.Info().Str("user_id", existing.ID).Msg("promoted configured admin")
		}
		if !existing.IsVerified {
			if err := s.users.MarkVerified(ctx, existing.ID); err != nil {
				return err
			}
		}
		if !existing.IsActive {
			return s.users.SetActive(ctx, existing.ID, true)
		}
		return nil
	case !errors.Is(err, repository.ErrUserNotFound):
		return err
	}

	hash, err := s.hasher.Hash(cfg.Password)
	if err != nil {
		return err
	}
	admin := models.User{
		ID:           ids.New(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    cfg.FirstName,
		LastName:     cfg.LastName,
		Role:         models.UserRoleAdmin,
		IsActive:     true,
		IsVerified:   true,
	}
	if err := s.users.Create(ctx, admin); err != nil && !errors.Is(err, repository.ErrEmailTaken) {
		return err
	}
	s.log.Info().Str("email", email).Msg("admin account created")
	return nil
}

func (s *AuthService) sendVerification(ctx context.Context, user models.User) {
	token, err := s.tokens.Issue(security.TokenPayload{UserID: user.ID, Email: user.Email}, security.TokenVerification, s.cfg.VerificationTTL)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("issue verification token failed")
		return
	}
	if err := s.notifier.SendVerification(ctx, user.Email, user.FullName(), token); err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("queue verification email failed")
	}
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", apperr.Validation("invalid email address")
	}
	return email, nil
}

func validatePassword(pw string) error {
	if len(pw) < minPasswordLength {
		return apperr.Validation(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	return nil
}
