package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueParseRoundTrip(t *testing.T) {
	j := &JWTer{Secret: []byte("unit-test-secret"), Issuer: "devhub", TTL: time.Hour}

	token, err := j.Issue("user_abc", "admin")
	require.NoError(t, err)

	claims, err := j.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user_abc", claims.UID)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "devhub", claims.Issuer)
}

func TestParseWrongSecret(t *testing.T) {
	j := &JWTer{Secret: []byte("unit-test-secret"), Issuer: "devhub", TTL: time.Hour}
	other := &JWTer{Secret: []byte("different-secret"), Issuer: "devhub", TTL: time.Hour}

	token, err := other.Issue("user_abc", "")
	require.NoError(t, err)

	_, err = j.Parse(token)
	assert.Error(t, err)
}

func TestParseWrongIssuer(t *testing.T) {
	j := &JWTer{Secret: []byte("unit-test-secret"), Issuer: "devhub", TTL: time.Hour}
	other := &JWTer{Secret: []byte("unit-test-secret"), Issuer: "someone-else", TTL: time.Hour}

	token, err := other.Issue("user_abc", "")
	require.NoError(t, err)

	_, err = j.Parse(token)
	assert.Error(t, err)
}

func TestParseExpired(t *testing.T) {
	// TTL well past the parser's 60s leeway.
	j := &JWTer{Secret: []byte("unit-test-secret"), Issuer: "devhub", TTL: -2 * time.Minute}

	token, err := j.Issue("user_abc", "")
	require.NoError(t, err)

	_, err = j.Parse(token)
	assert.Error(t, err)
}

func TestParseGarbage(t *testing.T) {
	j := &JWTer{Secret: []byte("unit-test-secret"), Issuer: "devhub", TTL: time.Hour}
	_, err := j.Parse("not.a.token")
	assert.Error(t, err)
}
