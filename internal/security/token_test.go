package security

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhishekprajapati1/clavel-assignment/internal/apperr"
)

func newTestCodec(now func() time.Time) *TokenCodec {
	return NewTokenCodec("access-secret", "refresh-secret", WithClock(now))
}

func TestTokenCodec_IssueVerify(t *testing.T) {
	codec := NewTokenCodec("access-secret", "refresh-secret")

	token, err := codec.Issue(TokenPayload{UserID: "u1", SessionID: "s1", Role: "admin"}, TokenAccess, time.Minute)
	require.NoError(t, err)

	claims, err := codec.Verify(token, TokenAccess)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "s1", claims.SessionID)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, TokenAccess, claims.Type)
	assert.NotEmpty(t, claims.ID)
}

func TestTokenCodec_ZeroTTLIsExpired(t *testing.T) {
	codec := NewTokenCodec("access-secret", "refresh-secret")

	for _, typ := range []TokenType{TokenAccess, TokenRefresh, TokenVerification, TokenReset} {
		token, err := codec.Issue(TokenPayload{UserID: "u1"}, typ, 0)
		require.NoError(t, err)

		_, err = codec.Verify(token, typ)
		assert.ErrorIs(t, err, apperr.ErrTokenExpired, "type %s", typ)
	}
}

func TestTokenCodec_ExpiresWithClock(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	codec := newTestCodec(func() time.Time { return now })

	token, err := codec.Issue(TokenPayload{UserID: "u1"}, TokenAccess, 30*time.Minute)
	require.NoError(t, err)

	now = now.Add(29 * time.Minute)
	_, err = codec.Verify(token, TokenAccess)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = codec.Verify(token, TokenAccess)
	assert.ErrorIs(t, err, apperr.ErrTokenExpired)
}

func TestTokenCodec_TypeIsolation(t *testing.T) {
	codec := NewTokenCodec("access-secret", "refresh-secret")

	tests := []struct {
		issued   TokenType
		expected TokenType
	}{
		{TokenRefresh, TokenAccess},
		{TokenAccess, TokenRefresh},
		{TokenReset, TokenAccess},
		{TokenVerification, TokenAccess},
		{TokenAccess, TokenReset},
		{TokenReset, TokenVerification},
	}

	for _, tt := range tests {
		t.Run(string(tt.issued)+"_as_"+string(tt.expected), func(t *testing.T) {
			token, err := codec.Issue(TokenPayload{UserID: "u1"}, tt.issued, time.Hour)
			require.NoError(t, err)

			_, err = codec.Verify(token, tt.expected)
			assert.ErrorIs(t, err, apperr.ErrTokenTypeMismatch)
		})
	}
}

func TestTokenCodec_Malformed(t *testing.T) {
	codec := NewTokenCodec("access-secret", "refresh-secret")
	other := NewTokenCodec("other-access", "other-refresh")

	foreign, err := other.Issue(TokenPayload{UserID: "u1"}, TokenAccess, time.Hour)
	require.NoError(t, err)

	good, err := codec.Issue(TokenPayload{UserID: "u1"}, TokenAccess, time.Hour)
	require.NoError(t, err)
	parts := strings.Split(good, ".")
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	noUser, err := codec.Issue(TokenPayload{}, TokenAccess, time.Hour)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"empty":     "",
		"garbage":   "not-a-jwt",
		"foreign":   foreign,
		"tampered":  tampered,
		"no_userid": noUser,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := codec.Verify(token, TokenAccess)
			assert.ErrorIs(t, err, apperr.ErrTokenMalformed)
		})
	}
}

func TestTokenCodec_RefreshUsesOwnSecret(t *testing.T) {
	codec := NewTokenCodec("access-secret", "refresh-secret")
	sameAccess := NewTokenCodec("access-secret", "another-refresh-secret")

	refresh, err := codec.Issue(TokenPayload{UserID: "u1", SessionID: "s1"}, TokenRefresh, time.Hour)
	require.NoError(t, err)

	_, err = sameAccess.Verify(refresh, TokenRefresh)
	assert.ErrorIs(t, err, apperr.ErrTokenMalformed)
}
