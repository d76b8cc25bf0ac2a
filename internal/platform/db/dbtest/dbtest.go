// Package dbtest はアダプターのテスト用に独立したインメモリ SQLite を開きます。
package dbtest

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open はモデルをマイグレーション済みの新しいインメモリ DB を返します。
// 呼び出しごとに名前付きの shared-cache DB を使うので、トランザクションが掴んでいる
// 接続を含め、プール内のどの接続からも同じスキーマが見えます。
func Open(t *testing.T, models ...interface{}) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to initialize test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// 接続を1本にして shared-cache のテーブルロックを避ける
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models...), "failed to migrate tables")
	return db
}
