package security

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	tokens, err := NewSessionTokens("secret", time.Hour)
	require.NoError(t, err)
	raw, expires, err := tokens.Issue(Principal{SessionID: "s1", ClientID: "42", Name: "Ivan", Username: "ivan"})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, time.Minute)

	p, err := tokens.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, Principal{SessionID: "s1", ClientID: "42", Name: "Ivan", Username: "ivan"}, p)
}

func TestParseRejectsForeignAndExpiredTokens(t *testing.T) {
	tokens, err := NewSessionTokens("secret", time.Hour)
	require.NoError(t, err)
	other, err := NewSessionTokens("other", time.Hour)
	require.NoError(t, err)

	raw, _, err := other.Issue(Principal{SessionID: "s1", ClientID: "42"})
	require.NoError(t, err)
	_, err = tokens.Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)

	raw, _, err = tokens.Issue(Principal{SessionID: "s1", ClientID: "42"})
	require.NoError(t, err)
	tokens.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = tokens.Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsOtherAlgorithms(t *testing.T) {
	tokens, err := NewSessionTokens("secret", time.Hour)
	require.NoError(t, err)
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "s1", "cid": "42", "iss": issuer})
	raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = tokens.Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRandomSecret(t *testing.T) {
	a, err := RandomSecret(0)
	require.NoError(t, err)
	b, err := RandomSecret(0)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 43)
}

func TestEmptySecret(t *testing.T) {
	_, err := NewSessionTokens("", time.Hour)
	assert.ErrorIs(t, err, ErrEmptySecret)
}
