package storage

import "github.com/julianstephens/daynote/internal/constants"

// Settings are user preferences persisted alongside the days.
type Settings struct {
	Locale string `json:"locale"`
}

// DefaultSettings returns the settings written by Init.
func DefaultSettings() Settings {
	return Settings{Locale: constants.DefaultLocale}
}
