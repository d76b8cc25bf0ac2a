// Package db は全フィーチャーが使うリレーショナルストアへの接続を開きます。
package db

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	// DriverPostgres は本番用のドライバーです。
	DriverPostgres = "postgres"
	// DriverSQLite はローカル開発とテストで使います。
	DriverSQLite = "sqlite"

	connectTimeout = 60 * time.Second
	retryInterval  = 3 * time.Second
)

// Config は DB_* から読み込んだ接続設定を保持します。
type Config struct {
	Driver   string
	User     string
	Password string
	Name     string
	Host     string
	Port     string
	SSLMode  string
	TimeZone string
	// Path は SQLite のデータベースファイル。
	Path string
	// Migrate が true なら起動時に AutoMigrate を実行する。
	Migrate bool
}

// LoadConfigFromEnv は環境変数からデータベース設定を読み込みます。
func LoadConfigFromEnv() Config {
	return Config{
		Driver:   getEnv("DB_DRIVER", DriverPostgres),
		User:     os.Getenv("DB_USER"),
		Password: os.Getenv("DB_PASSWORD"),
		Name:     os.Getenv("DB_NAME"),
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
		TimeZone: getEnv("DB_TIMEZONE", "Asia/Kolkata"),
		Path:     getEnv("DB_PATH", "./tokenize.db"),
		Migrate:  os.Getenv("RUN_MIGRATIONS") == "true",
	}
}

// BuildDSN は cfg から PostgreSQL の keyword/value 形式の接続文字列を返します。
func BuildDSN(cfg Config) string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		cfg.Host, cfg.User, cfg.Password, cfg.Name, cfg.Port, cfg.SSLMode, cfg.TimeZone)
}

// Opener は DSN から gorm の接続を開きます。リトライをテストするために切り出しています。
type Opener func(dsn string) (*gorm.DB, error)

// ConnectWithRetry は成功するか timeout を過ぎるまで数秒おきに open を呼びます。
func ConnectWithRetry(dsn string, timeout time.Duration, open Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := open(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("db connect failed after %s: %w", timeout, err)
		}
		slog.Warn("db connect failed, retrying", "error", err, "interval", retryInterval)
		time.Sleep(retryInterval)
	}
}

// gormConfig はエラー変換を有効にし、ドライバーに関係なくアダプターが
// gorm.ErrDuplicatedKey で判定できるようにします。
func gormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	}
}

// Open は cfg で接続し、cfg.Migrate が true なら models をマイグレーションします。
func Open(cfg Config, models ...interface{}) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Driver {
	case DriverSQLite:
		db, err = gorm.Open(sqlite.Open(cfg.Path), gormConfig())
		if err == nil {
			slog.Info("using sqlite", "path", cfg.Path)
		}
	case DriverPostgres:
		db, err = ConnectWithRetry(BuildDSN(cfg), connectTimeout, func(dsn string) (*gorm.DB, error) {
			return gorm.Open(postgres.Open(dsn), gormConfig())
		})
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if cfg.Migrate {
		if err := db.AutoMigrate(models...); err != nil {
			return nil, fmt.Errorf("failed to migrate: %w", err)
		}
		slog.Info("migrations applied", "models", len(models))
	}
	return db, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
