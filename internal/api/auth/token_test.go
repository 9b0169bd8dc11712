package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewService_MissingSecret(t *testing.T) {
	_, err := NewService("", "HS256", time.Minute)
	assert.Error(t, err)

	_, err = NewService("   ", "HS256", time.Minute)
	assert.Error(t, err)
}

func TestNewService_MissingAlgorithm(t *testing.T) {
	_, err := NewService("secret", "", time.Minute)
	assert.Error(t, err)
}

func TestNewService_UnknownAlgorithm(t *testing.T) {
	_, err := NewService("secret", "HS9000", time.Minute)
	assert.Error(t, err)
}

func TestNewService_DefaultTTL(t *testing.T) {
	svc, err := NewService("secret", "HS256", 0)
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, svc.TTL())
}

func TestIssueValidate_Roundtrip(t *testing.T) {
	svc, err := NewService("secret", "HS256", 30*time.Minute)
	require.NoError(t, err)

	token, err := svc.Issue("alice", svc.TTL())
	require.NoError(t, err)

	subject, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", subject)
}

func TestValidate_ZeroTTLExpiresImmediately(t *testing.T) {
	svc, err := NewService("secret", "HS256", 30*time.Minute)
	require.NoError(t, err)

	token, err := svc.Issue("alice", 0)
	require.NoError(t, err)

	_, err = svc.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_WrongSecret(t *testing.T) {
	issuer, err := NewService("secret-a", "HS256", time.Minute)
	require.NoError(t, err)
	verifier, err := NewService("secret-b", "HS256", time.Minute)
	require.NoError(t, err)

	token, err := issuer.Issue("alice", time.Minute)
	require.NoError(t, err)

	_, err = verifier.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_Garbage(t *testing.T) {
	svc, err := NewService("secret", "HS256", time.Minute)
	require.NoError(t, err)

	_, err = svc.Validate("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_TamperedToken(t *testing.T) {
	svc, err := NewService("secret", "HS256", time.Minute)
	require.NoError(t, err)

	token, err := svc.Issue("alice", time.Minute)
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = svc.Validate(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
