package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

type Config struct {
	AppPort string `yaml:"app_port"`

	DBDriver   string `yaml:"db_driver"`
	SQLitePath string `yaml:"sqlite_path"`

	MySQLHost string `yaml:"mysql_host"`
	MySQLPort string `yaml:"mysql_port"`
	MySQLDB   string `yaml:"mysql_db"`
	MySQLUser string `yaml:"mysql_user"`
	MySQLPass string `yaml:"mysql_pass"`

	RedisAddr string `yaml:"redis_addr"`
	RedisDB   int    `yaml:"redis_db"`

	IdempTTLSecs     int    `yaml:"idempotency_ttl_seconds"`
	LogLevel         string `yaml:"log_level"`
	BatchConcurrency int    `yaml:"batch_concurrency"`
}

func defaults() *Config {
	return &Config{
		AppPort:          "8080",
		DBDriver:         DriverMySQL,
		SQLitePath:       "dealforge.db",
		MySQLHost:        "mysql",
		MySQLPort:        "3306",
		MySQLDB:          "dealforge",
		MySQLUser:        "dealforge",
		MySQLPass:        "dealforge",
		RedisAddr:        "redis:6379",
		IdempTTLSecs:     300,
		LogLevel:         "info",
		BatchConcurrency: 4,
	}
}

const defaultEnvFile = ".env"

// Load builds the config from defaults, then the YAML file named by
// CONFIG_FILE (if any), then environment variables. Variables from the dotenv
// file named by ENV_FILE (default ".env") fill in for unset ones; a missing
// default file is not an error.
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}
	c := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := c.mergeFile(path); err != nil {
			return nil, err
		}
	}
	c.applyEnv()
	return c, nil
}

func loadEnvFile() error {
	path, explicit := os.LookupEnv("ENV_FILE")
	if !explicit {
		path = defaultEnvFile
	}
	if path == "" {
		return nil
	}
	// godotenv never overrides variables that are already set
	err := godotenv.Load(path)
	if err == nil || (!explicit && errors.Is(err, fs.ErrNotExist)) {
		return nil
	}
	return fmt.Errorf("load env file %s: %w", path, err)
}

func (c *Config) mergeFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func (c *Config) applyEnv() {
	setString(&c.AppPort, "APP_PORT")
	setString(&c.DBDriver, "DB_DRIVER")
	setString(&c.SQLitePath, "SQLITE_PATH")
	setString(&c.MySQLHost, "MYSQL_HOST")
	setString(&c.MySQLPort, "MYSQL_PORT")
	setString(&c.MySQLDB, "MYSQL_DB")
	setString(&c.MySQLUser, "MYSQL_USER")
	setString(&c.MySQLPass, "MYSQL_PASS")
	setString(&c.RedisAddr, "REDIS_ADDR")
	setInt(&c.RedisDB, "REDIS_DB")
	setInt(&c.IdempTTLSecs, "IDEMPOTENCY_TTL_SECONDS")
	setString(&c.LogLevel, "LOG_LEVEL")
	setInt(&c.BatchConcurrency, "BATCH_CONCURRENCY")
}

func (c *Config) Validate() error {
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	switch c.DBDriver {
	case DriverMySQL:
		if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
			return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
		}
		// ensure port is valid
		if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
			return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return errors.New("missing SQLITE_PATH")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.BatchConcurrency < 1 {
		return fmt.Errorf("BATCH_CONCURRENCY must be at least 1, got %d", c.BatchConcurrency)
	}
	return nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

// DSN returns the connection string for the configured driver.
func (c *Config) DSN() string {
	if c.DBDriver == DriverSQLite {
		return c.SQLitePath
	}
	// parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}
