package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Драйверы клиентского кэша.
const (
	CacheSQLite = "sqlite"
	CacheRedis  = "redis"
)

// ClientConfig — конфигурация users-cli.
// Приоритет источников тот же, что у сервиса, но путь берётся из
// USERS_CLI_CONFIG, а локальный файл — ./cli.yaml.
type ClientConfig struct {
	Env      string              `yaml:"env" env:"ENV" env-default:"local"`
	API      APIConfig           `yaml:"api"`
	Cache    CacheConfig         `yaml:"cache"`
	Timeouts ClientTimeoutConfig `yaml:"timeouts"`
}

// APIConfig — адрес ресурса пользователей REST API.
type APIConfig struct {
	BaseURL string `yaml:"base_url" env:"API_BASE_URL" env-default:"http://localhost:5000/api/users"`
}

// CacheConfig — где хранится последний успешно загруженный список.
type CacheConfig struct {
	Driver   string `yaml:"driver" env:"CACHE_DRIVER" env-default:"sqlite"`
	Path     string `yaml:"path" env:"CACHE_PATH" env-default:"users-cache.db"`
	RedisURL string `yaml:"redis_url" env:"CACHE_REDIS_URL"`
	Key      string `yaml:"key" env:"CACHE_KEY" env-default:"users"`
}

// ClientTimeoutConfig — 0 означает «без таймаута» (http.Client по умолчанию).
type ClientTimeoutConfig struct {
	Request time.Duration `yaml:"request" env:"REQUEST_TIMEOUT" env-default:"0s"`
}

// MustLoadClient — обёртка над LoadClient с panic при ошибке.
func MustLoadClient(path string) *ClientConfig {
	cfg, err := LoadClient(path)
	if err != nil {
		panic(err)
	}

	return cfg
}

// LoadClient загружает конфигурацию клиента:
// 1) явный путь; 2) USERS_CLI_CONFIG; 3) ./cli.yaml; 4) ENV.
func LoadClient(path string) (*ClientConfig, error) {
	var cfg ClientConfig

	if err := load(&cfg, path, "USERS_CLI_CONFIG", "cli.yaml"); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *ClientConfig) validate() error {
	u, err := url.Parse(strings.TrimSpace(c.API.BaseURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.base_url must be an absolute URL (got %q)", c.API.BaseURL)
	}

	c.Cache.Driver = strings.ToLower(strings.TrimSpace(c.Cache.Driver))

	switch c.Cache.Driver {
	case CacheSQLite:
		if strings.TrimSpace(c.Cache.Path) == "" {
			return fmt.Errorf("cache.path is required for sqlite cache")
		}
	case CacheRedis:
		if strings.TrimSpace(c.Cache.RedisURL) == "" {
			return fmt.Errorf("cache.redis_url is required for redis cache")
		}
	default:
		return fmt.Errorf("cache.driver must be sqlite or redis (got %q)", c.Cache.Driver)
	}

	if strings.TrimSpace(c.Cache.Key) == "" {
		return fmt.Errorf("cache.key is required")
	}

	if c.Timeouts.Request < 0 {
		return fmt.Errorf("timeouts.request must be >= 0")
	}

	return nil
}
