package postgres

import (
	"context"
	"fmt"

	"github.com/julianstephens/daynote/internal/constants"
	"github.com/julianstephens/daynote/internal/storage"
)

func (s *Store) GetSettings(ctx context.Context) (storage.Settings, error) {
	if s.db == nil {
		return storage.Settings{}, storage.ErrNotLoaded
	}

	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM settings")
	if err != nil {
		return storage.Settings{}, fmt.Errorf("%w: %w", storage.ErrStorageRead, err)
	}
	defer rows.Close()

	settings := storage.Settings{}
	count := 0
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return storage.Settings{}, fmt.Errorf("%w: %w", storage.ErrStorageRead, err)
		}
		if key == constants.SettingLocale {
			settings.Locale = value
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return storage.Settings{}, fmt.Errorf("%w: %w", storage.ErrStorageRead, err)
	}

	if count == 0 {
		return storage.Settings{}, fmt.Errorf("settings: %w", storage.ErrNotFound)
	}
	return settings, nil
}

func (s *Store) SaveSettings(ctx context.Context, settings storage.Settings) error {
	if s.db == nil {
		return storage.ErrNotLoaded
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
		constants.SettingLocale, settings.Locale)
	if err != nil {
		return fmt.Errorf("%w: %w", storage.ErrStorageWrite, err)
	}
	return nil
}
