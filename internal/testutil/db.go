package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"Orion_Tube/internal/model"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq int64

// NewDB 每个测试一个独立的内存SQLite库，开启外键约束并迁移全部模型
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := fmt.Sprintf("file:orion_test_%d_%d?mode=memory&cache=shared&_fk=1", time.Now().UnixNano(), atomic.AddInt64(&dbSeq, 1))
	db, err := gorm.Open(sqlite.Open(name), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Exec("PRAGMA foreign_keys = ON").Error)
	require.NoError(t, db.AutoMigrate(model.All()...))
	return db
}

// CreateUser 插入一个测试用户
func CreateUser(t *testing.T, db *gorm.DB, username string) *model.User {
	t.Helper()
	u := &model.User{Username: username, Password: "x"}
	require.NoError(t, db.Create(u).Error)
	return u
}

// CreateVideo 插入一个测试视频，at同时作为创建和更新时间
func CreateVideo(t *testing.T, db *gorm.DB, userID uint64, title, visibility string, at time.Time) *model.Video {
	t.Helper()
	v := &model.Video{UserID: userID, Title: title, Visibility: visibility}
	v.CreatedAt = at.UTC()
	v.UpdatedAt = at.UTC()
	require.NoError(t, db.Create(v).Error)
	return v
}

// Str 取字符串指针
func Str(s string) *string { return &s }
