// Package dbtest opens throwaway SQLite databases for tests.
package dbtest

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"resident-directory-service/internal/infrastructure/config"
	"resident-directory-service/internal/infrastructure/database"
)

// Config returns a sqlite config whose database and media root live in t.TempDir().
func Config(t testing.TB) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		EnvType:         "LOCAL",
		Debug:           true,
		DBDriver:        "sqlite",
		DBPath:          filepath.Join(dir, "test.db"),
		DBMigrationMode: "auto",
		DBLogLevel:      "silent",
		JWTSecretKey:    "test-secret",
		StorageBackend:  "local",
		MediaRoot:       filepath.Join(dir, "media"),
		MediaURL:        "/media/",
		MaxUploadSize:   1 << 20,
		RateLimitRPS:    1000,
		RateLimitBurst:  1000,
	}
}

// Open returns a migrated pool for cfg. The pool is closed when the test ends.
func Open(t testing.TB, cfg *config.Config) *database.ConnectionPool {
	t.Helper()
	pool, err := database.NewConnectionPool(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pool.Close() })
	require.NoError(t, database.Migrate(pool.DB, "auto"))
	return pool
}

// New is Open(Config(t)) returning the bare *gorm.DB.
func New(t testing.TB) *gorm.DB {
	t.Helper()
	return Open(t, Config(t)).DB
}
