package service

import (
	"testing"

	"github.com/gogorichielab/ppcollection/database"
	"github.com/gogorichielab/ppcollection/database/model"

	"github.com/stretchr/testify/assert"
)

func TestSettingServiceRoundTrip(t *testing.T) {
	setup(t)

	s := SettingService{}

	value, err := s.GetValue("answer")
	assert.NoError(t, err)
	assert.Equal(t, "", value)

	exists, err := s.Exists("answer")
	assert.NoError(t, err)
	assert.False(t, exists)

	assert.NoError(t, s.SetValue("answer", "42"))

	value, err = s.GetValue("answer")
	assert.NoError(t, err)
	assert.Equal(t, "42", value)

	exists, err = s.Exists("answer")
	assert.NoError(t, err)
	assert.True(t, exists)
}

func TestSettingServiceOverwrite(t *testing.T) {
	setup(t)

	s := SettingService{}
	assert.NoError(t, s.SetValue("answer", "42"))
	assert.NoError(t, s.SetValue("answer", "43"))

	value, err := s.GetValue("answer")
	assert.NoError(t, err)
	assert.Equal(t, "43", value)

	// overwrite, not duplicate
	var count int64
	err = database.GetDB().Model(model.Setting{}).Where("key = ?", "answer").Count(&count).Error
	assert.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestSettingServiceTheme(t *testing.T) {
	setup(t)

	s := SettingService{}

	theme, err := s.GetTheme()
	assert.NoError(t, err)
	assert.Equal(t, ThemeDark, theme)

	assert.NoError(t, s.SetTheme(ThemeLight))
	theme, err = s.GetTheme()
	assert.NoError(t, err)
	assert.Equal(t, ThemeLight, theme)

	err = s.SetTheme("solarized")
	assert.ErrorIs(t, err, ErrInvalidTheme)

	// rejected writes leave the stored theme alone
	theme, err = s.GetTheme()
	assert.NoError(t, err)
	assert.Equal(t, ThemeLight, theme)
}

func TestSettingServiceMustChangeFlag(t *testing.T) {
	setup(t)

	s := SettingService{}

	mustChange, err := s.GetMustChangePassword()
	assert.NoError(t, err)
	assert.False(t, mustChange)

	assert.NoError(t, s.SetMustChangePassword(true))
	mustChange, err = s.GetMustChangePassword()
	assert.NoError(t, err)
	assert.True(t, mustChange)

	value, err := s.GetValue(KeyMustChangePassword)
	assert.NoError(t, err)
	assert.Equal(t, "1", value)
}
