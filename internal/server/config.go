package server

import (
	"net/http"
	"strconv"
	"time"

	"studybud/internal/auth"
)

type Option interface {
	apply(*config)
}

type optionFunc func(c *config)

func (f optionFunc) apply(c *config) { f(c) }

// config defines fields used for configuring Server instance
type config struct {
	httpServer         *http.Server
	afterShutdown      []func()
	sessionKey         []byte
	secureCookies      bool
	requireLoginToPost bool
	hasher             *auth.PasswordHasher
	timeout            time.Duration
	timeoutMsg         string
}

func defaultConfig() *config {
	return &config{
		httpServer:         &http.Server{Addr: "0.0.0.0:8000"},
		requireLoginToPost: true,
		hasher:             auth.NewPasswordHasher(),
	}
}

// EnvConfig defines fields used for parsing from environment variables
type EnvConfig struct {
	Host               string `env:"HOST" envDefault:"0.0.0.0"`
	Port               uint16 `env:"PORT" envDefault:"8000"`
	SessionKey         string `env:"SESSION_KEY"`
	SecureCookies      bool   `env:"SECURE_COOKIES" envDefault:"false"`
	RequireLoginToPost bool   `env:"REQUIRE_LOGIN_TO_POST" envDefault:"true"`
}

// WithEnvConfig enables processing exported EnvConfig struct to acts as a source of config parameters
func WithEnvConfig(cfg EnvConfig) Option {
	return optionFunc(func(c *config) {
		c.httpServer.Addr = cfg.Host + ":" + strconv.FormatUint(uint64(cfg.Port), 10)
		c.sessionKey = []byte(cfg.SessionKey)
		c.secureCookies = cfg.SecureCookies
		c.requireLoginToPost = cfg.RequireLoginToPost
	})
}

// ReadTimeout sets read timeout for http.Server
func ReadTimeout(d time.Duration) Option {
	return optionFunc(func(c *config) {
		c.httpServer.ReadTimeout = d
	})
}

// WriteTimeout sets write timeout for http.Server
func WriteTimeout(d time.Duration) Option {
	return optionFunc(func(c *config) {
		c.httpServer.WriteTimeout = d
	})
}

// RegisterAfterShutdown registers a function to call after http.Server shutdown
// f will not be called in separated goroutine
func RegisterAfterShutdown(f func()) Option {
	return optionFunc(func(c *config) {
		c.afterShutdown = append(c.afterShutdown, f)
	})
}

// TimeoutHandler wraps the whole router in http.TimeoutHandler with provided duration and message
func TimeoutHandler(d time.Duration, msg string) Option {
	return optionFunc(func(c *config) {
		c.timeout = d
		c.timeoutMsg = msg
	})
}

// RequireLoginToPost decides whether posting in a room goes through the login gate.
// When disabled anonymous posts reach the room handler, which refuses them with a flash message.
func RequireLoginToPost(required bool) Option {
	return optionFunc(func(c *config) {
		c.requireLoginToPost = required
	})
}

// SessionKey sets the key used to sign session cookies
func SessionKey(key []byte) Option {
	return optionFunc(func(c *config) {
		c.sessionKey = key
	})
}

// BcryptCost sets the cost of password hashing
func BcryptCost(cost int) Option {
	return optionFunc(func(c *config) {
		c.hasher = auth.NewPasswordHasherWithCost(cost)
	})
}
