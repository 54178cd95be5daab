package config

import (
	"errors"
	"fmt"
	"time"
	_ "time/tzdata" // часовые пояса без зависимости от образа

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix префикс переменных окружения, переопределяющих config.toml
// (например, CLUB_DATABASE_PASSWORD, CLUB_SERVER_HTTP_PORT)
const EnvPrefix = "CLUB"

// Драйверы хранилища
const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

// ErrInvalidConfig возвращается при некорректной конфигурации
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config конфигурация сервиса
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Logs     LogsConfig     `toml:"logs"`
	Metrics  MetricsConfig  `toml:"metrics"`
	Booking  BookingConfig  `toml:"booking"`
	Storage  StorageConfig  `toml:"storage"`
	Events   EventsConfig   `toml:"events"`
}

// ServerConfig настройки HTTP сервера (таймауты в секундах)
type ServerConfig struct {
	HTTPPort        int `toml:"http_port" split_words:"true"`
	ReadTimeout     int `toml:"read_timeout" split_words:"true"`
	WriteTimeout    int `toml:"write_timeout" split_words:"true"`
	IdleTimeout     int `toml:"idle_timeout" split_words:"true"`
	ShutdownTimeout int `toml:"shutdown_timeout" split_words:"true"`
}

// DatabaseConfig настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns" split_words:"true"`
	MaxIdleConns    int    `toml:"max_idle_conns" split_words:"true"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime" split_words:"true"` // секунды
}

// DSN возвращает строку подключения для lib/pq
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// LogsConfig настройки логирования
type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// MetricsConfig настройки Prometheus
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name" split_words:"true"`
}

// BookingConfig настройки движка бронирования
type BookingConfig struct {
	Timezone                string `toml:"timezone"`
	LockTimeoutMs           int    `toml:"lock_timeout_ms" split_words:"true"`
	AdmissionTimeoutSeconds int    `toml:"admission_timeout_seconds" split_words:"true"`
	MaxTxRetries            int    `toml:"max_tx_retries" split_words:"true"`
}

// Location возвращает часовой пояс клуба
func (b BookingConfig) Location() (*time.Location, error) {
	return time.LoadLocation(b.Timezone)
}

// LockTimeout таймаут ожидания блокировки
func (b BookingConfig) LockTimeout() time.Duration {
	return time.Duration(b.LockTimeoutMs) * time.Millisecond
}

// AdmissionTimeout общий таймаут создания бронирования
func (b BookingConfig) AdmissionTimeout() time.Duration {
	return time.Duration(b.AdmissionTimeoutSeconds) * time.Second
}

// StorageConfig выбор реализации хранилища
type StorageConfig struct {
	Driver   string `toml:"driver"`
	SeedFile string `toml:"seed_file" split_words:"true"` // только для memory
}

// EventsConfig публикация событий бронирования в RabbitMQ
type EventsConfig struct {
	Enabled   bool   `toml:"enabled"`
	RabbitURL string `toml:"rabbit_url" split_words:"true"`
	Exchange  string `toml:"exchange"`
}

// Load читает config.toml, применяет переменные окружения и значения по умолчанию
func Load(path string) (*Config, error) {
	cfg := Default()

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("config: apply env overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default возвращает конфигурацию со значениями по умолчанию
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     10,
			WriteTimeout:    10,
			IdleTimeout:     60,
			ShutdownTimeout: 15,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
		},
		Logs: LogsConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Path:        "/metrics",
			ServiceName: "club_booking",
		},
		Booking: BookingConfig{
			Timezone:                "UTC",
			LockTimeoutMs:           5000,
			AdmissionTimeoutSeconds: 10,
			MaxTxRetries:            1,
		},
		Storage: StorageConfig{
			Driver: StorageDriverPostgres,
		},
		Events: EventsConfig{
			Exchange: "club.bookings",
		},
	}
}

// Validate проверяет согласованность настроек
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("%w: server.http_port out of range: %d", ErrInvalidConfig, c.Server.HTTPPort)
	}

	switch c.Storage.Driver {
	case StorageDriverPostgres:
		if c.Database.DBName == "" {
			return fmt.Errorf("%w: database.dbname is required for postgres storage", ErrInvalidConfig)
		}
	case StorageDriverMemory:
	default:
		return fmt.Errorf("%w: unknown storage.driver %q", ErrInvalidConfig, c.Storage.Driver)
	}

	if _, err := c.Booking.Location(); err != nil {
		return fmt.Errorf("%w: booking.timezone: %v", ErrInvalidConfig, err)
	}

	if c.Booking.LockTimeoutMs < 0 || c.Booking.AdmissionTimeoutSeconds < 0 || c.Booking.MaxTxRetries < 0 {
		return fmt.Errorf("%w: booking timeouts and retries must be non-negative", ErrInvalidConfig)
	}

	if c.Events.Enabled && c.Events.RabbitURL == "" {
		return fmt.Errorf("%w: events.rabbit_url is required when events are enabled", ErrInvalidConfig)
	}

	return nil
}
