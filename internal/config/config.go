package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/MrJamesThe3rd/farmbook/internal/database"
)

type Config struct {
	App struct {
		Name     string `envconfig:"APP_NAME" default:"Farmbook"`
		Port     int    `envconfig:"PORT" default:"8080"`
		LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
		LogFile  string `envconfig:"LOG_FILE" default:"farmbook.log"` // TUI only; it owns the terminal
	}

	DB struct {
		Driver   string `envconfig:"DB_DRIVER" default:"sqlite"`
		Path     string `envconfig:"DB_PATH" default:"data/farmbook.db"`
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"farmbook"`
	}

	Server struct {
		Timeout     time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		CORSOrigins []string      `envconfig:"CORS_ORIGINS" default:"*"`
	}

	Seed struct {
		File string `envconfig:"SEED_FILE"`
	}
}

// Driver returns the database/sql driver name for DB_DRIVER.
func (c *Config) Driver() (string, error) {
	switch strings.ToLower(c.DB.Driver) {
	case "sqlite", "sqlite3", "":
		return database.DriverSQLite, nil
	case "postgres", "postgresql", "pgx":
		return database.DriverPostgres, nil
	}

	return "", fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver)
}

// DSN returns the connection string for the configured driver.
func (c *Config) DSN() string {
	if driver, _ := c.Driver(); driver == database.DriverPostgres {
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(c.DB.User, c.DB.Password),
			Host:     net.JoinHostPort(c.DB.Host, strconv.Itoa(c.DB.Port)),
			Path:     "/" + c.DB.Name,
			RawQuery: "sslmode=disable",
		}

		return u.String()
	}

	return database.SQLiteDSN(c.DB.Path)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if _, err := cfg.Driver(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
