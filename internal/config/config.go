package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
)

// Драйверы и провайдеры, которые умеет собирать main
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"

	ProviderOmise   = "omise"
	ProviderSandbox = "sandbox"

	EventsAMQP   = "amqp"
	EventsMemory = "memory"
	EventsNone   = "none"
)

// Config конфигурация сервиса
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
	Logs      LogsConfig      `toml:"logs"`
	Metrics   MetricsConfig   `toml:"metrics"`
	Booking   BookingConfig   `toml:"booking"`
	Pricing   PricingConfig   `toml:"pricing"`
	Payments  PaymentsConfig  `toml:"payments"`
	Events    EventsConfig    `toml:"events"`
	Scheduler SchedulerConfig `toml:"scheduler"`
}

// ServerConfig параметры HTTP сервера, таймауты в секундах
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

// DatabaseConfig параметры подключения к базе
type DatabaseConfig struct {
	Driver          string `toml:"driver"`
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	Path            string `toml:"path"` // файл базы для sqlite3
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
	AutoMigrate     bool   `toml:"auto_migrate"`
}

// LogsConfig параметры логирования
type LogsConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// MetricsConfig параметры prometheus
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// BookingConfig окна жизненного цикла бронирования
type BookingConfig struct {
	PaymentWindow       time.Duration `toml:"payment_window"`
	CancellationNotice  time.Duration `toml:"cancellation_notice"`
	SlotDurationMinutes int           `toml:"slot_duration_minutes"`
	AdvanceBookingDays  int           `toml:"advance_booking_days"` // 0 = без ограничений
	Timezone            string        `toml:"timezone"`
}

// PricingConfig ставки сборов; в TOML задаются строками, чтобы не терять точность
type PricingConfig struct {
	PlatformFeeRate decimal.Decimal `toml:"platform_fee_rate"`
	TaxRate         decimal.Decimal `toml:"tax_rate"`
	Currency        string          `toml:"currency"`
}

// PaymentsConfig параметры платежного шлюза
type PaymentsConfig struct {
	Provider       string `toml:"provider"`
	PublicKey      string `toml:"public_key"`
	SecretKey      string `toml:"secret_key"`
	SourceType     string `toml:"source_type"`
	ReturnURI      string `toml:"return_uri"`
	SandboxBaseURL string `toml:"sandbox_base_url"`
}

// EventsConfig параметры публикации аудит-событий
type EventsConfig struct {
	Driver     string `toml:"driver"`
	URL        string `toml:"url"`
	Exchange   string `toml:"exchange"`
	BufferSize int    `toml:"buffer_size"`
}

// SchedulerConfig параметры фоновых задач
type SchedulerConfig struct {
	Enabled            bool   `toml:"enabled"`
	ExpireBookingsCron string `toml:"expire_bookings_cron"`
	ExpireBatchSize    int    `toml:"expire_batch_size"`
}

// Load загружает .env (если есть), затем TOML-файл, затем переменные окружения
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default конфигурация для локального запуска: sqlite, sandbox-шлюз, без публикации событий
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
			Driver:          DriverSQLite,
			Path:            "court_booking.db",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
			AutoMigrate:     true,
		},
		Logs: LogsConfig{Level: "info"},
		Metrics: MetricsConfig{
			Enabled:     true,
			Path:        "/metrics",
			ServiceName: "court-booking-service",
		},
		Booking: BookingConfig{
			PaymentWindow:       domain.DefaultPaymentWindow,
			CancellationNotice:  domain.DefaultCancellationNotice,
			SlotDurationMinutes: domain.DefaultSlotDurationMinutes,
			AdvanceBookingDays:  domain.DefaultAdvanceBookingDays,
			Timezone:            domain.DefaultTimezone,
		},
		Pricing: PricingConfig{
			PlatformFeeRate: decimal.RequireFromString(domain.DefaultPlatformFeeRate),
			TaxRate:         decimal.RequireFromString(domain.DefaultTaxRate),
			Currency:        domain.DefaultCurrency,
		},
		Payments: PaymentsConfig{
			Provider:       ProviderSandbox,
			SourceType:     "promptpay",
			SandboxBaseURL: "http://localhost:8080/sandbox",
		},
		Events: EventsConfig{
			Driver:     EventsNone,
			Exchange:   "court_booking.events",
			BufferSize: 256,
		},
		Scheduler: SchedulerConfig{
			Enabled:            true,
			ExpireBookingsCron: "* * * * *",
			ExpireBatchSize:    100,
		},
	}
}

// applyEnv переопределяет значения из переменных окружения, секреты обычно приходят отсюда
func (c *Config) applyEnv() error {
	setString(&c.Database.Driver, "DB_DRIVER")
	setString(&c.Database.Host, "DB_HOST")
	setString(&c.Database.User, "DB_USER")
	setString(&c.Database.Password, "DB_PASSWORD")
	setString(&c.Database.DBName, "DB_NAME")
	setString(&c.Database.Path, "DB_PATH")
	setString(&c.Logs.Level, "LOG_LEVEL")
	setString(&c.Payments.Provider, "PAYMENTS_PROVIDER")
	setString(&c.Payments.PublicKey, "OMISE_PUBLIC_KEY")
	setString(&c.Payments.SecretKey, "OMISE_SECRET_KEY")
	setString(&c.Events.Driver, "EVENTS_DRIVER")
	setString(&c.Events.URL, "AMQP_URL")

	if err := setInt(&c.Server.HTTPPort, "HTTP_PORT"); err != nil {
		return err
	}
	return setInt(&c.Database.Port, "DB_PORT")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		*dst = strings.TrimSpace(v)
	}
}

func setInt(dst *int, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("env %s: %w", key, err)
	}
	*dst = n
	return nil
}

// Validate проверяет согласованность конфигурации
func (c *Config) Validate() error {
	var errs []error

	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		errs = append(errs, fmt.Errorf("server.http_port %d out of range", c.Server.HTTPPort))
	}

	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.Host == "" || c.Database.DBName == "" {
			errs = append(errs, errors.New("database.host and database.dbname are required for postgres"))
		}
	case DriverSQLite:
		if c.Database.Path == "" {
			errs = append(errs, errors.New("database.path is required for sqlite3"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown database.driver %q", c.Database.Driver))
	}

	if c.Booking.PaymentWindow <= 0 {
		errs = append(errs, errors.New("booking.payment_window must be positive"))
	}
	if c.Booking.CancellationNotice <= 0 {
		errs = append(errs, errors.New("booking.cancellation_notice must be positive"))
	}
	if c.Booking.SlotDurationMinutes <= 0 {
		errs = append(errs, errors.New("booking.slot_duration_minutes must be positive"))
	}
	if c.Booking.AdvanceBookingDays < 0 {
		errs = append(errs, errors.New("booking.advance_booking_days must not be negative"))
	}
	if _, err := time.LoadLocation(c.Booking.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("unknown booking.timezone %q", c.Booking.Timezone))
	}

	if c.Pricing.PlatformFeeRate.IsNegative() {
		errs = append(errs, errors.New("pricing.platform_fee_rate must not be negative"))
	}
	if c.Pricing.TaxRate.IsNegative() {
		errs = append(errs, errors.New("pricing.tax_rate must not be negative"))
	}
	if len(c.Pricing.Currency) != 3 {
		errs = append(errs, fmt.Errorf("pricing.currency %q is not an ISO code", c.Pricing.Currency))
	}

	switch c.Payments.Provider {
	case ProviderOmise:
		if c.Payments.PublicKey == "" || c.Payments.SecretKey == "" {
			errs = append(errs, errors.New("omise keys are required (OMISE_PUBLIC_KEY, OMISE_SECRET_KEY)"))
		}
	case ProviderSandbox:
	default:
		errs = append(errs, fmt.Errorf("unknown payments.provider %q", c.Payments.Provider))
	}

	switch c.Events.Driver {
	case EventsAMQP:
		if c.Events.URL == "" {
			errs = append(errs, errors.New("events.url is required for amqp (AMQP_URL)"))
		}
	case EventsMemory, EventsNone:
	default:
		errs = append(errs, fmt.Errorf("unknown events.driver %q", c.Events.Driver))
	}

	if c.Scheduler.Enabled && strings.TrimSpace(c.Scheduler.ExpireBookingsCron) == "" {
		errs = append(errs, errors.New("scheduler.expire_bookings_cron is required"))
	}
	if c.Scheduler.ExpireBatchSize <= 0 {
		errs = append(errs, errors.New("scheduler.expire_batch_size must be positive"))
	}

	return errors.Join(errs...)
}

// DSN строка подключения для выбранного драйвера
func (d DatabaseConfig) DSN() string {
	if d.Driver == DriverSQLite {
		return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", d.Path)
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// Policy окна жизненного цикла в часовом поясе площадок
func (b BookingConfig) Policy() (domain.BookingPolicy, error) {
	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		return domain.BookingPolicy{}, fmt.Errorf("load timezone %q: %w", b.Timezone, err)
	}
	return domain.BookingPolicy{
		PaymentWindow:      b.PaymentWindow,
		CancellationNotice: b.CancellationNotice,
		Location:           loc,
	}, nil
}
