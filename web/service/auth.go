package service

import (
	"github.com/gogorichielab/ppcollection/config"
	"github.com/gogorichielab/ppcollection/logger"
	"github.com/gogorichielab/ppcollection/util/crypto"
)

// minPasswordLength is the policy floor for new passwords.
const minPasswordLength = 12

// AuthService implements the single-admin legacy mode: one credential pair
// held in the settings store rather than the users table. Login prefers
// the user table and falls back to this.
type AuthService struct {
	settingService SettingService
}

// ValidateCredentials checks the admin username and password against the
// stored hash. The hash comparison is bcrypt's constant-time compare.
func (s *AuthService) ValidateCredentials(username string, password string) (bool, error) {
	if username != config.GetAdminUsername() {
		return false, nil
	}

	storedHash, err := s.settingService.GetPasswordHash()
	if err != nil {
		return false, err
	}
	if storedHash == "" {
		return false, nil
	}

	return crypto.CheckPasswordHash(storedHash, password), nil
}

// ChangePassword verifies the current password, applies the length policy
// and stores the new hash, clearing any must-change flag.
func (s *AuthService) ChangePassword(currentPassword string, newPassword string) error {
	storedHash, err := s.settingService.GetPasswordHash()
	if err != nil {
		return err
	}
	if storedHash == "" || !crypto.CheckPasswordHash(storedHash, currentPassword) {
		return ErrWrongPassword
	}

	if len(newPassword) < minPasswordLength {
		return ErrPasswordTooShort
	}

	newHash, err := crypto.HashPasswordAsBcrypt(newPassword)
	if err != nil {
		return err
	}
	if err := s.settingService.SetPasswordHash(newHash); err != nil {
		return err
	}
	return s.settingService.SetMustChangePassword(false)
}

// MustChangePassword reads the persisted flag forcing a credential change
// after first login or an administrative reset.
func (s *AuthService) MustChangePassword() bool {
	mustChange, err := s.settingService.GetMustChangePassword()
	if err != nil {
		logger.Warning("read must-change-password flag:", err)
		return false
	}
	return mustChange
}

// InitializePasswordHash is the idempotent first-run bootstrap: it only
// sets the hash when none exists yet, and arms the must-change flag.
func (s *AuthService) InitializePasswordHash(password string) error {
	exists, err := s.settingService.Exists(KeyPasswordHash)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	hash, err := crypto.HashPasswordAsBcrypt(password)
	if err != nil {
		return err
	}
	if err := s.settingService.SetPasswordHash(hash); err != nil {
		return err
	}
	return s.settingService.SetMustChangePassword(true)
}

func (s *AuthService) GetTheme() (string, error) {
	return s.settingService.GetTheme()
}

func (s *AuthService) SetTheme(theme string) error {
	return s.settingService.SetTheme(theme)
}
