package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	gorm_mysql "gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"
)

// MySQL的"Duplicate entry"错误号
const mysqlDuplicateEntry = 1062

// Dialector 根据驱动名返回gorm方言
func Dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "mysql", "":
		return gorm_mysql.Open(dsn), nil
	case "postgres":
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("不支持的数据库驱动: %s", driver)
	}
}

// Open 连接主库；replicas非空时通过dbresolver配置读写分离，读请求随机落到从库
func Open(driver, dsn string, replicas []string) (*gorm.DB, error) {
	dialector, err := Dialector(driver, dsn)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		// 把各驱动的唯一键冲突统一翻译成gorm.ErrDuplicatedKey
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	if len(replicas) > 0 {
		replicaDialectors := make([]gorm.Dialector, 0, len(replicas))
		for _, r := range replicas {
			d, err := Dialector(driver, r)
			if err != nil {
				return nil, err
			}
			replicaDialectors = append(replicaDialectors, d)
		}
		err = db.Use(dbresolver.Register(dbresolver.Config{
			Sources:  []gorm.Dialector{dialector},
			Replicas: replicaDialectors,
			Policy:   dbresolver.RandomPolicy{},
		}).SetMaxIdleConns(10).SetConnMaxLifetime(time.Hour))
		if err != nil {
			return nil, fmt.Errorf("读写分离配置失败: %w", err)
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)
	return db, nil
}

// IsDuplicateKey 判断是否为唯一键冲突：TranslateError翻译过的，或者原始的MySQL 1062
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry
}
