package database

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Options 数据库连接参数
type Options struct {
	Driver          string // postgres / sqlite
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	Logger          gormlogger.Interface
}

// Open 打开数据库连接并设置连接池
func Open(opts Options) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch opts.Driver {
	case "postgres":
		dialector = postgres.Open(opts.DSN)
	case "sqlite":
		dialector = sqlite.Open(sqliteDSN(opts.DSN))
	default:
		return nil, fmt.Errorf("不支持的数据库驱动: %q", opts.Driver)
	}

	gormCfg := &gorm.Config{
		// sqlite 的约束冲突翻译成 gorm.ErrDuplicatedKey / gorm.ErrForeignKeyViolated
		// postgres 保留原始 *pgconn.PgError，上层需要约束名定位字段
		TranslateError: opts.Driver == "sqlite",
	}
	if opts.Logger != nil {
		gormCfg.Logger = opts.Logger
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("数据库连接失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取底层 SQL DB 失败: %w", err)
	}

	if opts.Driver == "sqlite" {
		// 内存库每个连接是独立的库，只能保留一个连接
		sqlDB.SetMaxOpenConns(1)
		return db, nil
	}

	if opts.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}
	return db, nil
}

// Migrate 自动建表
func Migrate(db *gorm.DB, models ...interface{}) error {
	if len(models) == 0 {
		return nil
	}
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("自动建表出错: %w", err)
	}
	return nil
}

// Close 关闭连接池
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// sqliteDSN 强制打开外键约束
func sqliteDSN(dsn string) string {
	if dsn == "" {
		dsn = "file::memory:"
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&_foreign_keys=on"
	}
	return dsn + "?_foreign_keys=on"
}
