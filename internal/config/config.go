// config предоставляет структуру конфигурации клиента и функции
// загрузки из файла/переменных окружения с предсказуемым приоритетом.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Виды хранилища токенов.
const (
	StorageMemory = "memory"
	StorageFile   = "file"
	StorageRedis  = "redis"
)

// ErrInvalidConfig — конфигурация прочитана, но не прошла проверку.
var ErrInvalidConfig = errors.New("invalid config")

// Config — корневая конфигурация клиента.
// Источники значений (по убыванию приоритета):
//  1. явный путь через флаг --config;
//  2. путь в переменной окружения CONFIG_PATH;
//  3. файл local.yaml из рабочей директории;
//  4. переменные окружения (cleanenv).
type Config struct {
	Env      string         `yaml:"env" env:"ENV" env-default:"local"`
	API      APIConfig      `yaml:"api"`
	Storage  StorageConfig  `yaml:"storage"`
	Cooldown CooldownConfig `yaml:"cooldown"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// APIConfig — параметры подключения к бэкенду.
type APIConfig struct {
	BaseURL   string        `yaml:"base_url" env:"API_BASE_URL" env-default:"http://127.0.0.1:3000/api"`
	Timeout   time.Duration `yaml:"timeout" env:"API_TIMEOUT" env-default:"10s"`
	UserAgent string        `yaml:"user_agent" env:"API_USER_AGENT" env-default:"modverse-cli"`
}

// StorageConfig — где хранятся access/refresh токены.
type StorageConfig struct {
	Kind        string `yaml:"kind" env:"TOKEN_STORE" env-default:"file"`
	FilePath    string `yaml:"file_path" env:"TOKEN_FILE" env-default:"~/.modverse/tokens.json"`
	RedisURL    string `yaml:"redis_url" env:"TOKEN_REDIS_URL"`
	RedisPrefix string `yaml:"redis_prefix" env:"TOKEN_REDIS_PREFIX" env-default:"modverse:"`
}

// CooldownConfig — окна повторной отправки писем.
type CooldownConfig struct {
	Verify     time.Duration `yaml:"verify" env:"COOLDOWN_VERIFY" env-default:"60s"`
	ResetEmail time.Duration `yaml:"reset_email" env:"COOLDOWN_RESET_EMAIL" env-default:"60s"`
}

// MetricsConfig — выгрузка метрик клиента в textfile (пусто — выключено).
type MetricsConfig struct {
	Textfile string `yaml:"textfile" env:"METRICS_TEXTFILE"`
}

// TokenFile возвращает путь к файлу токенов с раскрытым "~".
func (s StorageConfig) TokenFile() (string, error) {
	p := s.FilePath
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}

	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}

// Validate проверяет значения, которые cleanenv не может проверить сам.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: api.base_url %q must be an http(s) url", ErrInvalidConfig, c.API.BaseURL)
	}

	if c.API.Timeout <= 0 {
		return fmt.Errorf("%w: api.timeout must be positive", ErrInvalidConfig)
	}

	switch c.Storage.Kind {
	case StorageMemory:
	case StorageFile:
		if c.Storage.FilePath == "" {
			return fmt.Errorf("%w: storage.file_path is required for file storage", ErrInvalidConfig)
		}
	case StorageRedis:
		if c.Storage.RedisURL == "" {
			return fmt.Errorf("%w: storage.redis_url is required for redis storage", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown storage.kind %q", ErrInvalidConfig, c.Storage.Kind)
	}

	if c.Cooldown.Verify < 0 || c.Cooldown.ResetEmail < 0 {
		return fmt.Errorf("%w: cooldown must not be negative", ErrInvalidConfig)
	}

	return nil
}

// MustLoad — обёртка над Load с panic при ошибке.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}

	return cfg
}

// Load загружает конфигурацию по приоритету:
// 1) явный путь; 2) CONFIG_PATH; 3) ./local.yaml; 4) ENV.
// После чтения файла ENV-переменные накладываются поверх значений из YAML.
func Load(path string) (*Config, error) {
	var cfg Config

	tryRead := func(p string) (*Config, error) {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", p, err)
		}

		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to overlay env: %w", err)
		}

		return &cfg, nil
	}

	var (
		c   *Config
		err error
	)

	switch {
	// 1) Явный путь.
	case path != "":
		c, err = tryRead(path)
	// 2) CONFIG_PATH.
	case os.Getenv("CONFIG_PATH") != "":
		c, err = tryRead(os.Getenv("CONFIG_PATH"))
	// 3) ./local.yaml.
	case fileExists("local.yaml"):
		c, err = tryRead("local.yaml")
	// 4) Только ENV.
	default:
		if err = cleanenv.ReadEnv(&cfg); err != nil {
			err = fmt.Errorf("failed to read env: %w", err)
		}
		c = &cfg
	}
	if err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

func fileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
