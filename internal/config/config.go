package config

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/andmv/LDM-BookingService/internal/refund"
)

// Config конфигурация сервиса, загружается из config.toml
type Config struct {
	Server         ServerConfig         `toml:"server"`
	Database       DatabaseConfig       `toml:"database"`
	Logs           LogsConfig           `toml:"logs"`
	Metrics        MetricsConfig        `toml:"metrics"`
	CatalogService CatalogServiceConfig `toml:"catalog_service"`
	PaymentGateway PaymentGatewayConfig `toml:"payment_gateway"`
	Bookings       BookingsConfig       `toml:"bookings"`
	Refunds        RefundsConfig        `toml:"refunds"`
}

// ServerConfig настройки HTTP сервера
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

// DatabaseConfig настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"`
}

// DSN собирает строку подключения
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// LogsConfig настройки логирования
type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// MetricsConfig настройки prometheus-метрик
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// CatalogServiceConfig настройки клиента каталога листингов и услуг
type CatalogServiceConfig struct {
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"`
}

// PaymentGatewayConfig настройки клиента платёжного шлюза
type PaymentGatewayConfig struct {
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"`
}

// BookingsConfig политика холдов и фоновой экспирации
type BookingsConfig struct {
	HoldTTLMinutes       int `toml:"hold_ttl_minutes"`
	SweepIntervalSeconds int `toml:"sweep_interval_seconds"`
}

// RefundsConfig политика возвратов при отмене
type RefundsConfig struct {
	Tiers             []RefundTierConfig `toml:"tiers"`
	DeductGatewayFee  bool               `toml:"deduct_gateway_fee"`
	GatewayFeePercent float64            `toml:"gateway_fee_percent"`
}

// RefundTierConfig одна ступень таблицы возвратов
type RefundTierConfig struct {
	MinLeadHours int     `toml:"min_lead_hours"`
	Percent      float64 `toml:"percent"`
}

// ToPolicy конвертирует конфигурацию в политику возвратов
func (r RefundsConfig) ToPolicy() refund.Policy {
	tiers := make([]refund.Tier, len(r.Tiers))
	for i, t := range r.Tiers {
		tiers[i] = refund.Tier{
			MinLeadMinutes: t.MinLeadHours * 60,
			Percent:        t.Percent,
		}
	}
	return refund.Policy{
		Tiers:             tiers,
		DeductGatewayFee:  r.DeductGatewayFee,
		GatewayFeePercent: r.GatewayFeePercent,
	}
}

// Load читает и валидирует конфигурацию из toml-файла
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to decode %s: %w", path, err)
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.HTTPPort == 0 {
		c.Server.HTTPPort = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 15
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 25
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = 300
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Metrics.ServiceName == "" {
		c.Metrics.ServiceName = "ldm-booking-service"
	}
	if c.CatalogService.Timeout == 0 {
		c.CatalogService.Timeout = 5
	}
	if c.PaymentGateway.Timeout == 0 {
		c.PaymentGateway.Timeout = 10
	}
	if c.Bookings.HoldTTLMinutes == 0 {
		c.Bookings.HoldTTLMinutes = 60
	}
	if c.Bookings.SweepIntervalSeconds == 0 {
		c.Bookings.SweepIntervalSeconds = 300
	}
}

func (c *Config) validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("database.dbname is required")
	}
	if c.CatalogService.URL == "" {
		return fmt.Errorf("catalog_service.url is required")
	}
	for _, t := range c.Refunds.Tiers {
		if t.Percent < 0 || t.Percent > 100 {
			return fmt.Errorf("refunds.tiers: percent must be in [0, 100], got %v", t.Percent)
		}
	}
	return nil
}
