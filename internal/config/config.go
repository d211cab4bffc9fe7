package config

import (
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// Supported values for DB_DRIVER.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	DBDriver      string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBDSN         string
	DBIsolation   string
	TxMaxAttempts int
	HTTPAddr      string
	GinMode       string
	LogLevel      string
}

// fileConfig mirrors Config for the optional TOML file named by CONFIG_FILE.
type fileConfig struct {
	Database struct {
		Driver    string `toml:"driver"`
		Host      string `toml:"host"`
		Port      string `toml:"port"`
		User      string `toml:"user"`
		Password  string `toml:"password"`
		Name      string `toml:"name"`
		DSN       string `toml:"dsn"`
		Isolation string `toml:"isolation"`
	} `toml:"database"`
	Transaction struct {
		MaxAttempts int `toml:"max_attempts"`
	} `toml:"transaction"`
	Server struct {
		Addr     string `toml:"addr"`
		GinMode  string `toml:"gin_mode"`
		LogLevel string `toml:"log_level"`
	} `toml:"server"`
}

// Load builds the configuration from defaults, then the TOML file named by
// CONFIG_FILE (if any), then environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		DBDriver:      DriverMySQL,
		DBHost:        "localhost",
		DBUser:        "taskuser",
		DBPassword:    "taskpassword",
		DBName:        "taskboard",
		TxMaxAttempts: 3,
		HTTPAddr:      ":8080",
		GinMode:       "debug",
		LogLevel:      "info",
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := LoadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	cfg.DBDriver = getEnv("DB_DRIVER", cfg.DBDriver)
	cfg.DBHost = getEnv("DB_HOST", cfg.DBHost)
	cfg.DBPort = getEnv("DB_PORT", cfg.DBPort)
	cfg.DBUser = getEnv("DB_USER", cfg.DBUser)
	cfg.DBPassword = getEnv("DB_PASSWORD", cfg.DBPassword)
	cfg.DBName = getEnv("DB_NAME", cfg.DBName)
	cfg.DBDSN = getEnv("DB_DSN", cfg.DBDSN)
	cfg.DBIsolation = getEnv("DB_ISOLATION", cfg.DBIsolation)
	cfg.HTTPAddr = getEnv("HTTP_ADDR", cfg.HTTPAddr)
	cfg.GinMode = getEnv("GIN_MODE", cfg.GinMode)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)

	if raw := os.Getenv("TX_MAX_ATTEMPTS"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("parse TX_MAX_ATTEMPTS: %w", err)
		}
		cfg.TxMaxAttempts = n
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile overlays the keys defined in the TOML file at path onto cfg.
func LoadFile(path string, cfg *Config) error {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return fmt.Errorf("load config file: %w", err)
	}

	overlay := func(key string, dst *string, value string) {
		if meta.IsDefined(strings.Split(key, ".")...) {
			*dst = strings.TrimSpace(value)
		}
	}

	overlay("database.driver", &cfg.DBDriver, raw.Database.Driver)
	overlay("database.host", &cfg.DBHost, raw.Database.Host)
	overlay("database.port", &cfg.DBPort, raw.Database.Port)
	overlay("database.user", &cfg.DBUser, raw.Database.User)
	overlay("database.password", &cfg.DBPassword, raw.Database.Password)
	overlay("database.name", &cfg.DBName, raw.Database.Name)
	overlay("database.dsn", &cfg.DBDSN, raw.Database.DSN)
	overlay("database.isolation", &cfg.DBIsolation, raw.Database.Isolation)
	overlay("server.addr", &cfg.HTTPAddr, raw.Server.Addr)
	overlay("server.gin_mode", &cfg.GinMode, raw.Server.GinMode)
	overlay("server.log_level", &cfg.LogLevel, raw.Server.LogLevel)

	if meta.IsDefined("transaction", "max_attempts") {
		cfg.TxMaxAttempts = raw.Transaction.MaxAttempts
	}

	return nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverMySQL, DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.TxMaxAttempts < 1 {
		return fmt.Errorf("TX_MAX_ATTEMPTS must be at least 1, got %d", c.TxMaxAttempts)
	}
	if _, err := c.IsolationLevel(); err != nil {
		return err
	}
	return nil
}

// IsolationLevel resolves DBIsolation. An empty setting means serializable
// for server databases and the driver default for sqlite.
func (c *Config) IsolationLevel() (sql.IsolationLevel, error) {
	switch strings.ToLower(strings.TrimSpace(c.DBIsolation)) {
	case "":
		if c.DBDriver == DriverSQLite {
			return sql.LevelDefault, nil
		}
		return sql.LevelSerializable, nil
	case "default":
		return sql.LevelDefault, nil
	case "serializable":
		return sql.LevelSerializable, nil
	case "repeatable_read", "repeatable-read":
		return sql.LevelRepeatableRead, nil
	case "read_committed", "read-committed":
		return sql.LevelReadCommitted, nil
	default:
		return sql.LevelDefault, fmt.Errorf("unsupported DB_ISOLATION %q", c.DBIsolation)
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
