package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/abhishekprajapati1/clavel-assignment/internal/apperr"
	"github.com/abhishekprajapati1/clavel-assignment/internal/ids"
)

const tokenIssuer = "templater"

type TokenType string

const (
	TokenAccess       TokenType = "access"
	TokenRefresh      TokenType = "refresh"
	TokenVerification TokenType = "verification"
	TokenReset        TokenType = "reset"
)

type TokenPayload struct {
	UserID    string
	SessionID string
	Role      string
	Email     string
}

type Claims struct {
	UserID    string    `json:"user_id"`
	SessionID string    `json:"sid,omitempty"`
	Role      string    `json:"role,omitempty"`
	Email     string    `json:"email,omitempty"`
	Type      TokenType `json:"type"`
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies typed tokens. Refresh tokens are signed with
// their own secret; the claim "type" selects the key and must match the type
// the caller expects.
type TokenCodec struct {
	keys   map[TokenType][]byte
	method jwt.SigningMethod
	now    func() time.Time
}

type TokenOption func(*TokenCodec)

func WithClock(now func() time.Time) TokenOption {
	return func(c *TokenCodec) {
		c.now = now
	}
}

func NewTokenCodec(accessSecret, refreshSecret string, opts ...TokenOption) *TokenCodec {
	c := &TokenCodec{
		keys: map[TokenType][]byte{
			TokenAccess:       []byte(accessSecret),
			TokenVerification: []byte(accessSecret),
			TokenReset:        []byte(accessSecret),
			TokenRefresh:      []byte(refreshSecret),
		},
		method: jwt.SigningMethodHS512,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *TokenCodec) Issue(payload TokenPayload, typ TokenType, ttl time.Duration) (string, error) {
	key, ok := c.keys[typ]
	if !ok {
		return "", fmt.Errorf("issue token: unknown type %q", typ)
	}

	now := c.now()
	claims := Claims{
		UserID:    payload.UserID,
		SessionID: payload.SessionID,
		Role:      payload.Role,
		Email:     payload.Email,
		Type:      typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   payload.UserID,
			ID:        ids.New(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(c.method, claims).SignedString(key)
	if err != nil {
		return "", fmt.Errorf("sign jwt: %w", err)
	}
	return signed, nil
}

func (c *TokenCodec) Verify(tokenStr string, expected TokenType) (*Claims, error) {
	if tokenStr == "" {
		return nil, apperr.ErrTokenMalformed
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, c.keyFor,
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperr.ErrTokenExpired.Wrap(err)
		}
		return nil, apperr.ErrTokenMalformed.Wrap(err)
	}

	if claims.Type != expected {
		return nil, apperr.ErrTokenTypeMismatch.Wrap(fmt.Errorf("got %q, want %q", claims.Type, expected))
	}
	if claims.UserID == "" {
		return nil, apperr.ErrTokenMalformed.Wrap(errors.New("missing user_id"))
	}
	return claims, nil
}

func (c *TokenCodec) keyFor(token *jwt.Token) (interface{}, error) {
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, errors.New("unexpected claims type")
	}
	key, ok := c.keys[claims.Type]
	if !ok {
		return nil, fmt.Errorf("unknown token type %q", claims.Type)
	}
	return key, nil
}
