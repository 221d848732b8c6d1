// config предоставляет структуру конфигурации сервиса и функции
// загрузки из файла/переменных окружения с предсказуемым приоритетом.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/pribylovaa/school-admin/internal/pkg/expires"
)

// Config — корневая конфигурация сервиса.
// Источники значений (по убыванию приоритета):
//  1. явный путь через флаг --config;
//  2. путь в переменной окружения CONFIG_PATH;
//  3. файл local.yaml из рабочей директории;
//  4. переменные окружения (cleanenv).
type Config struct {
	Env       string          `yaml:"env" env:"ENV" env-default:"local"`
	HTTP      HTTPConfig      `yaml:"http"`
	Auth      AuthConfig      `yaml:"auth"`
	DB        DBConfig        `yaml:"db"`
	Redis     RedisConfig     `yaml:"redis"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Timeouts  TimeoutConfig   `yaml:"timeouts"`
	Janitor   JanitorConfig   `yaml:"janitor"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// HTTPConfig — сетевые настройки HTTP-сервера.
type HTTPConfig struct {
	Host     string `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port     string `yaml:"port" env:"HTTP_PORT" env-default:"3000"`
	BasePath string `yaml:"base_path" env:"HTTP_BASE_PATH"`
}

// Addr возвращает адрес в формате host:port.
func (h HTTPConfig) Addr() string {
	return net.JoinHostPort(h.Host, h.Port)
}

// AuthConfig содержит параметры выпуска и валидации токенов.
// Сроки задаются строками вида "15m", "30d" (см. пакет expires).
type AuthConfig struct {
	JWTSecret           string   `yaml:"jwt_secret" env:"JWT_SECRET" env-required:"true"`
	JWTExpiresIn        string   `yaml:"jwt_expires_in" env:"JWT_EXPIRES_IN" env-default:"15m"`
	JWTRefreshSecret    string   `yaml:"jwt_refresh_secret" env:"JWT_REFRESH_SECRET" env-required:"true"`
	JWTRefreshExpiresIn string   `yaml:"jwt_refresh_expires_in" env:"JWT_REFRESH_EXPIRES_IN" env-default:"30d"`
	Issuer              string   `yaml:"issuer" env:"JWT_ISSUER" env-default:"school-admin"`
	Audience            []string `yaml:"audience" env:"JWT_AUDIENCE" env-default:"school-admin-api"`
	PhoneRegion         string   `yaml:"phone_region" env:"PHONE_REGION" env-default:"SY"`
}

// AccessTokenTTL разбирает срок жизни access-токена.
func (a AuthConfig) AccessTokenTTL() (time.Duration, error) {
	return expires.Parse(a.JWTExpiresIn)
}

// DBConfig — настройки подключения к базе данных.
type DBConfig struct {
	DatabaseURL string `yaml:"db_url" env:"DATABASE_URL" env-required:"true"`
	AutoMigrate bool   `yaml:"auto_migrate" env:"DB_AUTO_MIGRATE" env-default:"false"`
}

// RedisConfig — подключение к Redis. Пустой URL отключает ограничение частоты входа.
type RedisConfig struct {
	RedisURL string `yaml:"redis_url" env:"REDIS_URL"`
}

// RateLimitConfig — лимит попыток входа с одного адреса.
type RateLimitConfig struct {
	LoginLimit  int           `yaml:"login_limit" env:"RATE_LIMIT_LOGIN_LIMIT" env-default:"10"`
	LoginWindow time.Duration `yaml:"login_window" env:"RATE_LIMIT_LOGIN_WINDOW" env-default:"60s"`
}

// TimeoutConfig — таймауты сервиса.
type TimeoutConfig struct {
	Service time.Duration `yaml:"service" env:"SERVICE_TIMEOUT" env-default:"15s"`
}

// JanitorConfig — периодичность удаления просроченных refresh-токенов; 0 отключает.
type JanitorConfig struct {
	Period time.Duration `yaml:"period" env:"JANITOR_PERIOD" env-default:"30m"`
}

// TelemetryConfig — экспорт трассировок по OTLP/HTTP; пустой endpoint отключает.
type TelemetryConfig struct {
	OTLPEndpoint string `yaml:"otlp_endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName  string `yaml:"service_name" env:"OTEL_SERVICE_NAME" env-default:"school-api"`
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

	switch envPath := os.Getenv("CONFIG_PATH"); {
	case path != "":
		c, err = tryRead(path)
	case envPath != "":
		c, err = tryRead(envPath)
	default:
		if _, statErr := os.Stat("local.yaml"); statErr == nil {
			c, err = tryRead("local.yaml")
			break
		}

		if err = cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
		}
		c = &cfg
	}
	if err != nil {
		return nil, err
	}

	if err := c.validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// validate проверяет инварианты, которые cleanenv выразить не может.
func (c *Config) validate() error {
	if c.Auth.JWTSecret == c.Auth.JWTRefreshSecret {
		return errors.New("invalid config: jwt_secret and jwt_refresh_secret must differ")
	}

	if _, err := c.Auth.AccessTokenTTL(); err != nil {
		return fmt.Errorf("invalid config: jwt_expires_in: %w", err)
	}

	if c.RateLimit.LoginLimit <= 0 || c.RateLimit.LoginWindow <= 0 {
		return errors.New("invalid config: rate_limit values must be positive")
	}

	return nil
}
