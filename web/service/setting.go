package service

import (
	"strconv"

	"github.com/gogorichielab/ppcollection/database"
	"github.com/gogorichielab/ppcollection/database/model"
	"github.com/gogorichielab/ppcollection/util/random"
)

// Well-known settings keys. The caller assigns meaning to the values;
// flags are stored as "1"/"0".
const (
	KeyPasswordHash       = "password_hash"
	KeyMustChangePassword = "must_change_password"
	KeyTheme              = "theme"
	KeySessionSecret      = "secret"
	KeySessionMaxAge      = "sessionMaxAge"
	KeyPageSize           = "pageSize"
)

const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

var defaultValueMap = map[string]string{
	KeyTheme:         ThemeDark,
	KeySessionSecret: random.Seq(32),
	KeySessionMaxAge: "60",
	KeyPageSize:      "25",
}

// SettingService is a key/value store for small persisted flags.
// Concurrent writes to the same key are last-write-wins.
type SettingService struct{}

func (s *SettingService) getSetting(key string) (*model.Setting, error) {
	db := database.GetDB()
	setting := &model.Setting{}
	err := db.Model(model.Setting{}).Where("key = ?", key).First(setting).Error
	if err != nil {
		return nil, err
	}
	return setting, nil
}

func (s *SettingService) saveSetting(key string, value string) error {
	setting, err := s.getSetting(key)
	db := database.GetDB()
	if database.IsNotFound(err) {
		return db.Create(&model.Setting{
			Key:   key,
			Value: value,
		}).Error
	} else if err != nil {
		return err
	}
	setting.Value = value
	return db.Save(setting).Error
}

// GetValue returns the stored value for key, falling back to the
// built-in default when nothing is persisted.
func (s *SettingService) GetValue(key string) (string, error) {
	setting, err := s.getSetting(key)
	if database.IsNotFound(err) {
		return defaultValueMap[key], nil
	} else if err != nil {
		return "", err
	}
	return setting.Value, nil
}

// SetValue upserts the value for key.
func (s *SettingService) SetValue(key string, value string) error {
	return s.saveSetting(key, value)
}

// Exists reports whether key has a persisted value (defaults do not count).
func (s *SettingService) Exists(key string) (bool, error) {
	_, err := s.getSetting(key)
	if database.IsNotFound(err) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	return true, nil
}

func (s *SettingService) getBool(key string) (bool, error) {
	str, err := s.GetValue(key)
	if err != nil {
		return false, err
	}
	return str == "1", nil
}

func (s *SettingService) setBool(key string, value bool) error {
	str := "0"
	if value {
		str = "1"
	}
	return s.saveSetting(key, str)
}

func (s *SettingService) getInt(key string) (int, error) {
	str, err := s.GetValue(key)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(str)
}

func (s *SettingService) GetPasswordHash() (string, error) {
	return s.GetValue(KeyPasswordHash)
}

func (s *SettingService) SetPasswordHash(hash string) error {
	return s.saveSetting(KeyPasswordHash, hash)
}

func (s *SettingService) GetMustChangePassword() (bool, error) {
	return s.getBool(KeyMustChangePassword)
}

func (s *SettingService) SetMustChangePassword(value bool) error {
	return s.setBool(KeyMustChangePassword, value)
}

// GetTheme returns the stored theme, defaulting to dark.
func (s *SettingService) GetTheme() (string, error) {
	theme, err := s.GetValue(KeyTheme)
	if err != nil {
		return "", err
	}
	if theme == "" {
		return ThemeDark, nil
	}
	return theme, nil
}

// SetTheme stores the theme. Only dark and light are accepted.
func (s *SettingService) SetTheme(theme string) error {
	if theme != ThemeDark && theme != ThemeLight {
		return ErrInvalidTheme
	}
	return s.saveSetting(KeyTheme, theme)
}

// GetSecret returns the session secret, generating and persisting one on
// first use when none is configured.
func (s *SettingService) GetSecret() (string, error) {
	secret, err := s.GetValue(KeySessionSecret)
	if err != nil {
		return "", err
	}
	exists, err := s.Exists(KeySessionSecret)
	if err != nil {
		return "", err
	}
	if !exists {
		if err := s.saveSetting(KeySessionSecret, secret); err != nil {
			return "", err
		}
	}
	return secret, nil
}

func (s *SettingService) GetSessionMaxAge() (int, error) {
	return s.getInt(KeySessionMaxAge)
}

func (s *SettingService) GetPageSize() (int, error) {
	return s.getInt(KeyPageSize)
}

// ResetSettings removes every persisted setting.
func (s *SettingService) ResetSettings() error {
	db := database.GetDB()
	return db.Where("1 = 1").Delete(model.Setting{}).Error
}
