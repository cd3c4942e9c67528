package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/abhishekprajapati1/clavel-assignment/internal/apperr"
)

var fastParams = Argon2Params{Time: 1, Memory: 8 * 1024, Threads: 1}

func TestPasswordHasher_RoundTrip(t *testing.T) {
	h := NewPasswordHasher(fastParams)

	for _, pw := range []string{"Passw0rd!", "", "ünïcødé-pässwörd", "with spaces and $ signs $"} {
		hash, err := h.Hash(pw)
		require.NoError(t, err)

		ok, err := h.Verify(pw, hash)
		require.NoError(t, err)
		assert.True(t, ok, "password %q should verify", pw)

		ok, err = h.Verify(pw+"x", hash)
		require.NoError(t, err)
		assert.False(t, ok)
	}
}

func TestPasswordHasher_SaltPerCall(t *testing.T) {
	h := NewPasswordHasher(fastParams)

	a, err := h.Hash("Passw0rd!")
	require.NoError(t, err)
	b, err := h.Hash("Passw0rd!")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestPasswordHasher_VerifiesWithStoredParams(t *testing.T) {
	hash, err := NewPasswordHasher(fastParams).Hash("Passw0rd!")
	require.NoError(t, err)

	// a hasher configured differently still reads the params from the hash
	ok, err := NewPasswordHasher(Argon2Params{Time: 2, Memory: 16 * 1024, Threads: 2}).Verify("Passw0rd!", hash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPasswordHasher_LegacyBcrypt(t *testing.T) {
	legacy, err := bcrypt.GenerateFromPassword([]byte("Admin@123"), bcrypt.MinCost)
	require.NoError(t, err)

	h := NewPasswordHasher(fastParams)

	ok, err := h.Verify("Admin@123", legacy)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify("admin@123", legacy)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPasswordHasher_CorruptHash(t *testing.T) {
	h := NewPasswordHasher(fastParams)

	for _, corrupt := range []string{
		"",
		"plaintext",
		"$argon2id$v=19$t=1,m=8192,p=1$!!!$abc",
		"$argon2id$v=18$t=1,m=8192,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$t=x,m=8192,p=1$c2FsdA$aGFzaA",
		"$2b$10$short",
	} {
		ok, err := h.Verify("Passw0rd!", []byte(corrupt))
		assert.False(t, ok)
		assert.ErrorIs(t, err, apperr.ErrCorruptCredential, "hash %q", corrupt)
	}
}
