package db

import (
	"fmt"
	"time"

	"dealforge-calc/internal/config"

	"go.uber.org/zap/zapcore"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenGorm opens the configured driver and verifies the connection.
func OpenGorm(driver, dsn string, level zapcore.Level) (*gorm.DB, error) {
	var dial gorm.Dialector
	switch driver {
	case config.DriverMySQL:
		dial = mysql.Open(dsn)
	case config.DriverSQLite:
		dial = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}
	return OpenGormWithDialector(dial, gormLogLevel(level))
}

func OpenGormWithDialector(dial gorm.Dialector, level logger.LogLevel) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger: logger.Default.LogMode(level),
		// pinged explicitly below, after the pool is tuned
		DisableAutomaticPing: true,
	}
	db, err := gorm.Open(dial, cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(30)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

// gormLogLevel keeps SQL tracing for debug runs only.
func gormLogLevel(l zapcore.Level) logger.LogLevel {
	switch {
	case l <= zapcore.DebugLevel:
		return logger.Info
	case l <= zapcore.WarnLevel:
		return logger.Warn
	default:
		return logger.Error
	}
}
