package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestNewJWTServiceRequiresSecret(t *testing.T) {
	_, err := NewJWTService(JWTConfig{})
	require.Error(t, err)
	require.EqualError(t, err, "jwt: secret must be provided")
}

func TestGenerateAndValidateAccessToken(t *testing.T) {
	current := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	now := func() time.Time { return current }

	svc, err := NewJWTService(JWTConfig{
		Secret:         "super-secret",
		Issuer:         "bellcenter",
		Audience:       "inbox",
		AccessTokenTTL: time.Hour,
		Clock:          now,
	})
	require.NoError(t, err)

	token, err := svc.GenerateAccessToken(AccessTokenInput{UserID: "user-123"})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)

	require.Equal(t, "user-123", claims.Identity())
	require.Equal(t, "bellcenter", claims.Issuer)
	require.Equal(t, jwt.ClaimStrings{"inbox"}, claims.Audience)
	require.True(t, claims.IssuedAt.Time.Equal(current))
	require.True(t, claims.ExpiresAt.Time.Equal(current.Add(time.Hour)))
}

func TestValidateAccessTokenFallsBackToSubject(t *testing.T) {
	current := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	svc, err := NewJWTService(JWTConfig{Secret: "secret", Clock: func() time.Time { return current }})
	require.NoError(t, err)

	raw := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "subject-user",
		ExpiresAt: jwt.NewNumericDate(current.Add(time.Minute)),
	})
	token, err := raw.SignedString([]byte("secret"))
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	require.Empty(t, claims.UserID)
	require.Equal(t, "subject-user", claims.Identity())
}

func TestValidateAccessTokenRequiresIdentity(t *testing.T) {
	current := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	svc, err := NewJWTService(JWTConfig{Secret: "secret", Clock: func() time.Time { return current }})
	require.NoError(t, err)

	raw := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(current.Add(time.Minute)),
	})
	token, err := raw.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(token)
	require.EqualError(t, err, "jwt: missing user id claim")
}

func TestValidateAccessTokenInvalidSignature(t *testing.T) {
	now := func() time.Time { return time.Date(2026, 1, 1, 13, 0, 0, 0, time.UTC) }

	issuer, err := NewJWTService(JWTConfig{Secret: "issuer-secret", AccessTokenTTL: time.Minute, Clock: now})
	require.NoError(t, err)

	token, err := issuer.GenerateAccessToken(AccessTokenInput{UserID: "user-123"})
	require.NoError(t, err)

	verifier, err := NewJWTService(JWTConfig{Secret: "other-secret", AccessTokenTTL: time.Minute, Clock: now})
	require.NoError(t, err)

	_, err = verifier.ValidateAccessToken(token)
	require.Error(t, err)
	require.True(t, errors.Is(err, jwt.ErrTokenSignatureInvalid))
}

func TestValidateAccessTokenExpired(t *testing.T) {
	current := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return current }

	svc, err := NewJWTService(JWTConfig{Secret: "secret", AccessTokenTTL: time.Minute, Clock: clock})
	require.NoError(t, err)

	token, err := svc.GenerateAccessToken(AccessTokenInput{UserID: "user-123"})
	require.NoError(t, err)

	current = current.Add(2 * time.Minute)

	_, err = svc.ValidateAccessToken(token)
	require.Error(t, err)
	require.True(t, errors.Is(err, jwt.ErrTokenExpired))
}

func TestValidateAccessTokenRejectsWrongIssuerAndAudience(t *testing.T) {
	now := func() time.Time { return time.Date(2026, 1, 1, 13, 0, 0, 0, time.UTC) }

	issuer, err := NewJWTService(JWTConfig{Secret: "secret", Issuer: "other", Clock: now})
	require.NoError(t, err)
	token, err := issuer.GenerateAccessToken(AccessTokenInput{UserID: "user-1", Audience: []string{"billing"}})
	require.NoError(t, err)

	wantIssuer, err := NewJWTService(JWTConfig{Secret: "secret", Issuer: "bellcenter", Clock: now})
	require.NoError(t, err)
	_, err = wantIssuer.ValidateAccessToken(token)
	require.EqualError(t, err, "jwt: invalid issuer")

	wantAudience, err := NewJWTService(JWTConfig{Secret: "secret", Audience: "inbox", Clock: now})
	require.NoError(t, err)
	_, err = wantAudience.ValidateAccessToken(token)
	require.True(t, errors.Is(err, jwt.ErrTokenInvalidAudience))
}
