package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cristianoliveira/appfeed/internal/client"
	"github.com/cristianoliveira/appfeed/internal/colors"
	"github.com/cristianoliveira/appfeed/internal/config"
	"github.com/cristianoliveira/appfeed/internal/storage/sqlite"
)

const (
	// BackendSQLite selects the local SQLite database at db_path.
	BackendSQLite = "sqlite"
	// BackendRemote selects the appfeed server at server_url.
	BackendRemote = "remote"

	dbDirMode os.FileMode = 0700
)

var (
	_ Storage = (*sqlite.SQLiteStorage)(nil)
	_ Storage = (*client.Client)(nil)
)

// BackendFromConfig returns the backend the configuration points at: the
// remote server when server_url is set, the local database otherwise.
func BackendFromConfig() string {
	if config.Get("server_url", "") != "" {
		return BackendRemote
	}
	return BackendSQLite
}

// NewFromConfig opens the store selected by the configuration.
func NewFromConfig() (Storage, error) {
	return NewForBackend(BackendFromConfig())
}

// NewForBackend opens the named backend with its configured settings.
func NewForBackend(backend string) (Storage, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case BackendRemote:
		serverURL := config.Get("server_url", "")
		if serverURL == "" {
			return nil, fmt.Errorf("storage: remote backend needs server_url")
		}
		token := config.Get("server_token", "")
		if token == "" {
			colors.Warning("server_token is empty; requests will be rejected")
		}
		return client.New(serverURL, token), nil
	case "", BackendSQLite:
		return OpenSQLite(config.Get("db_path", ""))
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", backend)
	}
}

// OpenSQLite opens the database at dbPath, creating its directory first.
func OpenSQLite(dbPath string) (*sqlite.SQLiteStorage, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("storage: db_path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), dbDirMode); err != nil {
		return nil, fmt.Errorf("storage: create database directory: %w", err)
	}
	colors.Debug("opening sqlite database:", dbPath)
	store, err := sqlite.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}
	return store, nil
}
