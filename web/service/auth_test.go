package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthServiceInitializeIsIdempotent(t *testing.T) {
	setup(t)

	auth := AuthService{}
	settings := SettingService{}

	require.NoError(t, auth.InitializePasswordHash("first-password-123"))
	firstHash, err := settings.GetPasswordHash()
	require.NoError(t, err)
	require.NotEmpty(t, firstHash)
	assert.True(t, auth.MustChangePassword())

	// second run must not replace the existing hash
	require.NoError(t, auth.InitializePasswordHash("other-password-456"))
	secondHash, err := settings.GetPasswordHash()
	require.NoError(t, err)
	assert.Equal(t, firstHash, secondHash)
}

func TestAuthServiceValidateCredentials(t *testing.T) {
	setup(t)

	auth := AuthService{}
	require.NoError(t, auth.InitializePasswordHash("correct horse battery"))

	ok, err := auth.ValidateCredentials("admin", "correct horse battery")
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = auth.ValidateCredentials("admin", "wrong password")
	assert.NoError(t, err)
	assert.False(t, ok)

	ok, err = auth.ValidateCredentials("somebody", "correct horse battery")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestAuthServiceChangePassword(t *testing.T) {
	setup(t)

	auth := AuthService{}
	settings := SettingService{}
	require.NoError(t, auth.InitializePasswordHash("old-password-abc"))
	oldHash, err := settings.GetPasswordHash()
	require.NoError(t, err)

	err = auth.ChangePassword("not the password", "long enough password")
	assert.ErrorIs(t, err, ErrWrongPassword)

	// 10 characters is under the 12 character policy floor
	err = auth.ChangePassword("old-password-abc", "short12345")
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	// failed attempts must not alter the stored hash
	hash, err := settings.GetPasswordHash()
	require.NoError(t, err)
	assert.Equal(t, oldHash, hash)

	require.NoError(t, auth.ChangePassword("old-password-abc", "new password that is long"))
	hash, err = settings.GetPasswordHash()
	require.NoError(t, err)
	assert.NotEqual(t, oldHash, hash)

	ok, err := auth.ValidateCredentials("admin", "new password that is long")
	assert.NoError(t, err)
	assert.True(t, ok)

	// a successful change clears the must-change flag
	assert.False(t, auth.MustChangePassword())
}

func TestAuthServiceTheme(t *testing.T) {
	setup(t)

	auth := AuthService{}

	theme, err := auth.GetTheme()
	assert.NoError(t, err)
	assert.Equal(t, ThemeDark, theme)

	assert.NoError(t, auth.SetTheme(ThemeLight))
	assert.ErrorIs(t, auth.SetTheme("sepia"), ErrInvalidTheme)
}
