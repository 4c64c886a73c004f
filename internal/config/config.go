package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort      string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL   string `env:"DATABASE_URL,required"`
	DBMaxConns    int32  `env:"DB_MAX_CONNS" envDefault:"10"`
	RunMigrations bool   `env:"RUN_MIGRATIONS" envDefault:"true"`

	TokenSecret       string `env:"ACCESS_TOKEN_SECRET_KEY,required,notEmpty"`
	TokenAlgorithm    string `env:"ACCESS_TOKEN_ALGORITHM" envDefault:"HS256"`
	TokenTTLMinutes   int    `env:"ACCESS_TOKEN_TTL_MINUTES" envDefault:"60"`
	TokenLeewaySecs   int    `env:"ACCESS_TOKEN_LEEWAY_SECONDS" envDefault:"0"`
	MaxPostBodyBytes  int64  `env:"MAX_POST_PAYLOAD_BYTES" envDefault:"1048576"`
	PostCacheTTLSecs  int    `env:"POST_CACHE_TTL_SECONDS" envDefault:"300"`
	PostCacheSize     int    `env:"POST_CACHE_SIZE" envDefault:"1000"`
	LoginRateLimitMax int    `env:"LOGIN_RATE_LIMIT_MAX" envDefault:"5"`
	LoginRateWindow   int    `env:"LOGIN_RATE_LIMIT_WINDOW_SECONDS" envDefault:"60"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	MetricsEnabled bool `env:"METRICS_ENABLED" envDefault:"true"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLMinutes) * time.Minute
}

func (c *Config) TokenLeeway() time.Duration {
	return time.Duration(c.TokenLeewaySecs) * time.Second
}

func (c *Config) PostCacheTTL() time.Duration {
	return time.Duration(c.PostCacheTTLSecs) * time.Second
}

func (c *Config) LoginRateLimitWindow() time.Duration {
	return time.Duration(c.LoginRateWindow) * time.Second
}
