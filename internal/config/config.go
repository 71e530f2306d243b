package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"
	_ "time/tzdata"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Supported values of DB_DRIVER.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Admin is the bootstrap administrator created by cmd/seed.
type Admin struct {
	Email    string `env:"ADMIN_EMAIL" envDefault:"admin@empresa.com"`
	Password string `env:"ADMIN_PASSWORD" envDefault:"admin123"`
	Name     string `env:"ADMIN_NAME" envDefault:"Administrador"`
}

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort     string `env:"SERVER_PORT" envDefault:"8080"`
	DBDriver       string `env:"DB_DRIVER" envDefault:"mysql"`
	MySQLDSN       string `env:"MYSQL_DSN" envDefault:"user:password@tcp(localhost:3306)/prioritytracker?charset=utf8mb4&parseTime=True&loc=Local"`
	PostgresDSN    string `env:"POSTGRES_DSN"`
	SQLitePath     string `env:"SQLITE_PATH" envDefault:"prioritytracker.db"`
	RedisAddr      string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisDB        int    `env:"REDIS_DB" envDefault:"0"`
	RedisPass      string `env:"REDIS_PASSWORD"`
	JWTSecret      string `env:"JWT_SECRET,required"`
	CookieSecure   bool   `env:"COOKIE_SECURE" envDefault:"false"`
	TimeZone       string `env:"TZ" envDefault:"America/Mexico_City"`
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat      string `env:"LOG_FORMAT" envDefault:"json"`
	ResetDB        bool   `env:"RESET_DB" envDefault:"false"`
	LoginRateLimit int    `env:"LOGIN_RATE_LIMIT" envDefault:"10"`
	Admin          Admin
}

// Load reads the given .env files (".env" when none is passed, ignored if
// missing) and then parses the environment into Config.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	} else if err := godotenv.Load(files...); err != nil {
		return nil, fmt.Errorf("load env files: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case DriverMySQL, DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.DBDriver == DriverPostgres && c.PostgresDSN == "" {
		return errors.New("POSTGRES_DSN is required when DB_DRIVER=postgres")
	}
	if c.LoginRateLimit <= 0 {
		return errors.New("LOGIN_RATE_LIMIT must be positive")
	}
	if _, err := time.LoadLocation(c.TimeZone); err != nil {
		return fmt.Errorf("invalid TZ %q: %w", c.TimeZone, err)
	}
	return nil
}

// Location resolves TimeZone. Load has already rejected unknown zones; UTC
// covers a Config built by hand.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}
