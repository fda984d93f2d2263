package storage

import (
	"strconv"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
)

// Config defines fields used for parsing database connection parameters from environment variables
type Config struct {
	URL      string `env:"DATABASE_URL"`
	User     string `env:"PG_USER" envDefault:"postgres"`
	Password string `env:"PG_PASSWORD"`
	Host     string `env:"PG_HOST" envDefault:"localhost"`
	Port     uint16 `env:"PG_PORT" envDefault:"5432"`
	DBName   string `env:"PG_DBNAME" envDefault:"studybud"`
	SSLMode  string `env:"PG_SSLMODE" envDefault:"disable"`
}

// DSN returns connection string in keyword/value format.
// URL takes precedence when it is set; an empty password is left out.
func (c Config) DSN() string {
	if c.URL != "" {
		return c.URL
	}

	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	dsn := "user=" + c.User
	if c.Password != "" {
		dsn += " password=" + c.Password
	}

	return dsn +
		" host=" + c.Host +
		" port=" + strconv.FormatUint(uint64(c.Port), 10) +
		" dbname=" + c.DBName +
		" sslmode=" + sslMode
}

// Option alters the default configuration of the pgxpool.Config used during new Store construction
type Option interface {
	apply(*pgxpool.Config)
}

type optionFunc func(c *pgxpool.Config)

func (f optionFunc) apply(c *pgxpool.Config) { f(c) }

// ConnectionTimeout sets timeout for connection to be established
func ConnectionTimeout(d time.Duration) Option {
	return optionFunc(func(c *pgxpool.Config) {
		c.ConnConfig.ConnectTimeout = d
	})
}

// MaxConns limits the size of the connection pool
func MaxConns(n int32) Option {
	return optionFunc(func(c *pgxpool.Config) {
		c.MaxConns = n
	})
}

// MaxConnIdleTime sets the duration after which an idle connection is closed by the pool
func MaxConnIdleTime(d time.Duration) Option {
	return optionFunc(func(c *pgxpool.Config) {
		c.MaxConnIdleTime = d
	})
}
