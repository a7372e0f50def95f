package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var db *gorm.DB

var autoMigrateModels []interface{}

// RegisterAutoMigrateModels 注册需要自动迁移的模型
func RegisterAutoMigrateModels(models ...interface{}) {
	autoMigrateModels = append(autoMigrateModels, models...)
}

// Open 连接数据库并执行自动迁移
func Open(dsn string) error {
	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.AutoMigrate(autoMigrateModels...); err != nil {
		return fmt.Errorf("auto migration failed: %w", err)
	}

	db = conn
	return nil
}

func Database() *gorm.DB {
	return db
}

// Migrate 对外暴露迁移，供测试用的非postgres连接使用
func Migrate(conn *gorm.DB) error {
	return conn.AutoMigrate(autoMigrateModels...)
}
