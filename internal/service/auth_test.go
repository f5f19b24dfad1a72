package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novelreads/novelreads-server/internal/auth"
	domainerrors "github.com/novelreads/novelreads-server/internal/errors"
	"github.com/novelreads/novelreads-server/internal/service"
)

func TestAuthService_Register(t *testing.T) {
	env := newTestEnv(t)

	resp := env.register(t, "dana@example.com", "dana")

	assert.Equal(t, "dana@example.com", resp.User.Email)
	assert.Equal(t, "dana", resp.User.Username)
	assert.NotEmpty(t, resp.User.PasswordHash)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "Bearer", resp.TokenType)

	// A default profile exists.
	profile, err := env.store.Profiles.Get(context.Background(), resp.User.ID)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, profile.UserID)

	// The starter shelf exists.
	shelves, err := env.reading.Shelves(context.Background(), resp.User.ID)
	require.NoError(t, err)
	require.Len(t, shelves, 1)
	assert.Equal(t, service.DefaultShelfName, shelves[0].Name)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)

	env.register(t, "dana@example.com", "dana")

	_, err := env.auth.Register(context.Background(), service.RegisterRequest{
		Email:    "Dana@Example.com", // Email index is case-insensitive
		Password: "another password",
		Username: "dana2",
	})
	require.ErrorIs(t, err, domainerrors.ErrAlreadyExists)
}

func TestAuthService_Register_Validation(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.auth.Register(context.Background(), service.RegisterRequest{
		Email:    "not-an-email",
		Password: "long enough password",
		Username: "dana",
	})
	require.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = env.auth.Register(context.Background(), service.RegisterRequest{
		Email:    "dana@example.com",
		Password: "short",
		Username: "dana",
	})
	require.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestAuthService_Login(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "dana@example.com", "dana")

	resp, err := env.auth.Login(context.Background(), service.LoginRequest{
		Email:      "dana@example.com",
		Password:   "correct horse battery",
		DeviceInfo: auth.DeviceInfo{Platform: "iOS", DeviceName: "Dana's iPhone"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)

	sessions, err := env.sessions.ListUserSessions(context.Background(), resp.User.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 2) // Register session + login session
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "dana@example.com", "dana")

	_, err := env.auth.Login(context.Background(), service.LoginRequest{
		Email:      "dana@example.com",
		Password:   "wrong",
		DeviceInfo: auth.DeviceInfo{Platform: "iOS"},
	})
	require.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestAuthService_Login_UnknownEmailNotLeaked(t *testing.T) {
	env := newTestEnv(t)

	// Unknown email and wrong password come back indistinguishable.
	_, err := env.auth.Login(context.Background(), service.LoginRequest{
		Email:      "nobody@example.com",
		Password:   "whatever works",
		DeviceInfo: auth.DeviceInfo{Platform: "iOS"},
	})
	require.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestAuthService_RefreshTokens_Rotation(t *testing.T) {
	env := newTestEnv(t)
	registered := env.register(t, "dana@example.com", "dana")

	refreshed, err := env.auth.RefreshTokens(context.Background(), service.RefreshRequest{
		RefreshToken: registered.RefreshToken,
	})
	require.NoError(t, err)
	assert.NotEqual(t, registered.RefreshToken, refreshed.RefreshToken)
	assert.Equal(t, registered.SessionID, refreshed.SessionID)

	// The old refresh token is dead after rotation.
	_, err = env.auth.RefreshTokens(context.Background(), service.RefreshRequest{
		RefreshToken: registered.RefreshToken,
	})
	require.ErrorIs(t, err, domainerrors.ErrTokenExpired)

	// The new one works.
	_, err = env.auth.RefreshTokens(context.Background(), service.RefreshRequest{
		RefreshToken: refreshed.RefreshToken,
	})
	require.NoError(t, err)
}

func TestAuthService_Logout(t *testing.T) {
	env := newTestEnv(t)
	resp := env.register(t, "dana@example.com", "dana")

	require.NoError(t, env.auth.Logout(context.Background(), resp.SessionID, resp.User.ID))

	// Session is gone; refresh no longer possible.
	_, err := env.auth.RefreshTokens(context.Background(), service.RefreshRequest{
		RefreshToken: resp.RefreshToken,
	})
	require.ErrorIs(t, err, domainerrors.ErrTokenExpired)
}

func TestAuthService_VerifyAccessToken(t *testing.T) {
	env := newTestEnv(t)
	resp := env.register(t, "dana@example.com", "dana")

	user, claims, err := env.auth.VerifyAccessToken(context.Background(), resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, user.ID)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, "dana@example.com", claims.Email)

	_, _, err = env.auth.VerifyAccessToken(context.Background(), "garbage")
	require.ErrorIs(t, err, domainerrors.ErrUnauthorized)
}
