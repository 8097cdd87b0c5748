package models

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Setting keys understood by the organizer
const (
	SettingAPIKey    = "apiKey"
	SettingBaseURL   = "baseUrl"
	SettingModel     = "model"
	SettingProvider  = "provider"
	SettingDebugMode = "debugMode"
	SettingThemeMode = "themeMode"
	SettingLanguage  = "language"
)

// SettingKeys lists every key the settings endpoints accept
var SettingKeys = []string{
	SettingAPIKey, SettingBaseURL, SettingModel, SettingProvider,
	SettingDebugMode, SettingThemeMode, SettingLanguage,
}

var ErrUnknownSetting = errors.New("unknown setting")

const (
	ProviderOpenAI = "openai"
	ProviderCustom = "custom"
	ProviderGemini = "gemini"
)

// Settings is the typed view of the key-value settings table.
type Settings struct {
	APIKey    string `json:"apiKey"`
	BaseURL   string `json:"baseUrl"`
	Model     string `json:"model"`
	Provider  string `json:"provider"`
	DebugMode bool   `json:"debugMode"`
	ThemeMode string `json:"themeMode"`
	Language  string `json:"language"`
}

func SettingsFromMap(m map[string]string) Settings {
	debug, _ := strconv.ParseBool(m[SettingDebugMode])
	return Settings{
		APIKey:    m[SettingAPIKey],
		BaseURL:   m[SettingBaseURL],
		Model:     m[SettingModel],
		Provider:  m[SettingProvider],
		DebugMode: debug,
		ThemeMode: m[SettingThemeMode],
		Language:  m[SettingLanguage],
	}
}

// SettingRequest is the body of PUT /settings/:key
type SettingRequest struct {
	Value string `json:"value"`
}

// ValidateSetting checks a value before it is stored under key.
func ValidateSetting(key, value string) error {
	if !slices.Contains(SettingKeys, key) {
		return fmt.Errorf("%w: %s", ErrUnknownSetting, key)
	}
	switch key {
	case SettingProvider:
		switch strings.ToLower(value) {
		case "", ProviderOpenAI, ProviderCustom, ProviderGemini:
		default:
			return fmt.Errorf("invalid provider %q", value)
		}
	case SettingDebugMode:
		if value == "" {
			return nil
		}
		if _, err := strconv.ParseBool(value); err != nil {
			return fmt.Errorf("invalid debugMode %q", value)
		}
	}
	return nil
}

// MaskSecret hides all but the last four characters of a credential
func MaskSecret(v string) string {
	if v == "" {
		return ""
	}
	if len(v) <= 4 {
		return "****"
	}
	return "****" + v[len(v)-4:]
}
