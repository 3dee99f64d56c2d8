package utils

import (
	"testing" // Testing framework
	"time"    // Time durations

	"github.com/stretchr/testify/assert"  // Assertions
	"github.com/stretchr/testify/require" // Hard assertions
)

const testSecret = "test-secret"

// A token must round-trip: verifying a freshly issued token returns the
// claims it was issued with
func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWT("student@example.com", testSecret)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseJWT(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "student@example.com", claims.Email)
	// The expiry window must be one hour from issuance
	assert.WithinDuration(t, time.Now().Add(TokenTTL), claims.ExpiresAt.Time, 5*time.Second)
}

// An expired token must be rejected even though its signature is valid
func TestJWTExpired(t *testing.T) {
	token, err := generateJWT("student@example.com", testSecret, -time.Minute)
	require.NoError(t, err)

	_, err = ParseJWT(token, testSecret)
	assert.Error(t, err)
}

// A token signed with a different secret must be rejected
func TestJWTWrongSecret(t *testing.T) {
	token, err := GenerateJWT("student@example.com", "other-secret")
	require.NoError(t, err)

	_, err = ParseJWT(token, testSecret)
	assert.Error(t, err)
}

// Garbage input must be rejected, not parsed
func TestJWTMalformed(t *testing.T) {
	_, err := ParseJWT("not-a-token", testSecret)
	assert.Error(t, err)
}

// A tampered payload must fail signature verification
func TestJWTTampered(t *testing.T) {
	token, err := GenerateJWT("student@example.com", testSecret)
	require.NoError(t, err)

	// Flip a character in the payload segment
	tampered := []byte(token)
	mid := len(tampered) / 2
	if tampered[mid] == 'a' {
		tampered[mid] = 'b'
	} else {
		tampered[mid] = 'a'
	}
	_, err = ParseJWT(string(tampered), testSecret)
	assert.Error(t, err)
}
