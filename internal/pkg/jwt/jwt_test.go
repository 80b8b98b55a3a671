package jwt

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "crew-verify-secret"

func sign(t *testing.T, method jwt.SigningMethod, key interface{}, userID int64, notBefore, expiresAt time.Time) string {
	t.Helper()

	token := jwt.NewWithClaims(method, Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(notBefore),
			NotBefore: jwt.NewNumericDate(notBefore),
		},
	})
	s, err := token.SignedString(key)
	require.NoError(t, err)
	return s
}

func TestParseToken_Valid(t *testing.T) {
	token, err := GenerateToken(42, secret, 1)
	require.NoError(t, err)

	claims, err := ParseToken(token, secret)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestParseToken_Rejected(t *testing.T) {
	now := time.Now()
	valid, err := GenerateToken(7, secret, 1)
	require.NoError(t, err)

	// swap the payload for one claiming another user, keeping the old signature
	parts := strings.Split(valid, ".")
	require.Len(t, parts, 3)
	forged := sign(t, jwt.SigningMethodHS256, []byte("other"), 1, now, now.Add(time.Hour))
	parts[1] = strings.Split(forged, ".")[1]
	tampered := strings.Join(parts, ".")

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"expired", sign(t, jwt.SigningMethodHS256, []byte(secret), 7, now.Add(-2*time.Hour), now.Add(-time.Hour)), ErrExpiredToken},
		{"not yet valid", sign(t, jwt.SigningMethodHS256, []byte(secret), 7, now.Add(time.Hour), now.Add(2*time.Hour)), ErrInvalidToken},
		{"wrong secret", sign(t, jwt.SigningMethodHS256, []byte("wrong"), 7, now, now.Add(time.Hour)), ErrInvalidToken},
		{"tampered payload", tampered, ErrInvalidToken},
		{"alg none", sign(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, 7, now, now.Add(time.Hour)), ErrInvalidToken},
		{"garbage", "not-a-jwt", ErrInvalidToken},
		{"empty", "", ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := ParseToken(tt.token, secret)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, claims)
		})
	}
}

func TestParseToken_HeaderNotTrusted(t *testing.T) {
	token, err := GenerateToken(7, secret, 1)
	require.NoError(t, err)

	// rewriting the header to RS256 must not switch verification away from HMAC
	parts := strings.Split(token, ".")
	parts[0] = base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"RS256","typ":"JWT"}`))

	claims, err := ParseToken(strings.Join(parts, "."), secret)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Nil(t, claims)
}
