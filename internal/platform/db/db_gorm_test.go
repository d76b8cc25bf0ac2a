package db

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// TestBuildDSN verifies the PostgreSQL keyword DSN.
func TestBuildDSN(t *testing.T) {
	t.Parallel()

	cfg := Config{
		User:     "testuser",
		Password: "testpass",
		Name:     "testdb",
		Host:     "localhost",
		Port:     "5432",
		SSLMode:  "disable",
		TimeZone: "Asia/Kolkata",
	}

	expected := "host=localhost user=testuser password=testpass dbname=testdb port=5432 sslmode=disable TimeZone=Asia/Kolkata"
	assert.Equal(t, expected, BuildDSN(cfg))
}

// TestConnectWithRetry_SuccessOnFirstTry returns the DB without retrying.
func TestConnectWithRetry_SuccessOnFirstTry(t *testing.T) {
	t.Parallel()

	mockDB := &gorm.DB{}
	attempts := 0
	opener := func(dsn string) (*gorm.DB, error) {
		attempts++
		return mockDB, nil
	}

	db, err := ConnectWithRetry("test-dsn", 5*time.Second, opener)

	require.NoError(t, err)
	assert.Same(t, mockDB, db)
	assert.Equal(t, 1, attempts)
}

// TestConnectWithRetry_RetriesOnFailure keeps trying until the opener succeeds.
func TestConnectWithRetry_RetriesOnFailure(t *testing.T) {
	// not parallel: sleeps between retries
	mockDB := &gorm.DB{}
	attempts := 0
	opener := func(dsn string) (*gorm.DB, error) {
		attempts++
		if attempts < 2 {
			return nil, errors.New("connection refused")
		}
		return mockDB, nil
	}

	db, err := ConnectWithRetry("test-dsn", 10*time.Second, opener)

	require.NoError(t, err)
	assert.Same(t, mockDB, db)
	assert.Equal(t, 2, attempts)
}

// TestConnectWithRetry_TimeoutAfterRetries wraps the last opener error.
func TestConnectWithRetry_TimeoutAfterRetries(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	opener := func(dsn string) (*gorm.DB, error) { return nil, cause }

	_, err := ConnectWithRetry("test-dsn", 0, opener)

	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
}

// TestLoadConfigFromEnv reads DB_* variables and applies defaults.
func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("DB_USER", "envuser")
	t.Setenv("DB_PASSWORD", "envpass")
	t.Setenv("DB_NAME", "envdb")
	t.Setenv("DB_HOST", "envhost")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("DB_SSLMODE", "")
	t.Setenv("RUN_MIGRATIONS", "true")

	cfg := LoadConfigFromEnv()

	assert.Equal(t, DriverPostgres, cfg.Driver)
	assert.Equal(t, "envuser", cfg.User)
	assert.Equal(t, "envpass", cfg.Password)
	assert.Equal(t, "envdb", cfg.Name)
	assert.Equal(t, "envhost", cfg.Host)
	assert.Equal(t, "5433", cfg.Port)
	assert.Equal(t, "disable", cfg.SSLMode)
	assert.True(t, cfg.Migrate)
}

type migrated struct {
	ID   uint `gorm:"primaryKey"`
	Name string
}

// TestOpen_SQLite opens a file database and migrates the given models.
func TestOpen_SQLite(t *testing.T) {
	t.Parallel()

	cfg := Config{Driver: DriverSQLite, Path: filepath.Join(t.TempDir(), "test.db"), Migrate: true}

	db, err := Open(cfg, &migrated{})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	assert.True(t, db.Migrator().HasTable(&migrated{}))
	assert.True(t, db.Config.TranslateError)
}

// TestOpen_UnsupportedDriver rejects unknown drivers.
func TestOpen_UnsupportedDriver(t *testing.T) {
	t.Parallel()

	_, err := Open(Config{Driver: "mysql"})
	assert.Error(t, err)
}
