package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/julianstephens/daynote/internal/constants"
	"github.com/julianstephens/daynote/internal/keyring"
	"github.com/julianstephens/daynote/internal/logger"
	"github.com/julianstephens/daynote/internal/storage"
	"github.com/julianstephens/daynote/internal/storage/jsonfile"
	"github.com/julianstephens/daynote/internal/storage/postgres"
	"github.com/julianstephens/daynote/internal/storage/sqlite"
)

// OpenStore picks a backend for the --config value without opening it.
//
//   - postgres:// or postgresql:// URIs use PostgreSQL and must not embed a password.
//   - paths ending in .json use the JSON document store.
//   - an empty value uses DAYNOTE_DB_CONNECTION or the keyring entry when set,
//     else the default SQLite file.
//   - any other value is a SQLite file path.
func OpenStore(config string) (storage.Provider, error) {
	config = strings.TrimSpace(config)

	if postgres.IsConnString(config) {
		if err := postgres.ValidateConnString(config); err != nil {
			return nil, fmt.Errorf("%w (store credentials with 'daynote keyring set' or %s instead)", err, constants.EnvDBConnection)
		}
		logger.Debug("Using PostgreSQL store", "source", "flag")
		return postgres.New(config), nil
	}

	if config == "" {
		connStr, src, err := keyring.Default().Resolve()
		if err != nil {
			logger.Warn("Keyring lookup failed, falling back to SQLite", "error", err)
		}
		if connStr != "" {
			logger.Debug("Using PostgreSQL store", "source", string(src))
			return postgres.New(connStr), nil
		}
		config = constants.DefaultConfigPath
	}

	path, err := ExpandPath(config)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		logger.Debug("Using JSON store", "path", path)
		return jsonfile.NewStore(path), nil
	}
	logger.Debug("Using SQLite store", "path", path)
	return sqlite.NewStore(path), nil
}

// ExpandPath resolves a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
