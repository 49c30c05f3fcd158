package config

import (
	"fmt"
	"strings"

	"github.com/comanda-next/internal/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 应用配置结构
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Queue     QueueConfig     `mapstructure:"queue"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Security  SecurityConfig  `mapstructure:"security"`
	Session   SessionConfig   `mapstructure:"session"`
	Upstream  UpstreamConfig  `mapstructure:"upstream"`
	Store     StoreConfig     `mapstructure:"store"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Checkout  CheckoutConfig  `mapstructure:"checkout"`
	Table     TableConfig     `mapstructure:"table"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host                     string `mapstructure:"host"`
	Port                     string `mapstructure:"port"`
	Mode                     string `mapstructure:"mode"` // debug / release
	ReadHeaderTimeoutSeconds int    `mapstructure:"read_header_timeout_seconds"`
	IdleTimeoutSeconds       int    `mapstructure:"idle_timeout_seconds"`
}

// Addr 监听地址
func (c ServerConfig) Addr() string {
	return c.Host + ":" + c.Port
}

// LogConfig 日志配置
type LogConfig struct {
	Dir        string `mapstructure:"dir"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// ToLoggerOptions 转换为 logger 配置
func (c LogConfig) ToLoggerOptions() logger.Options {
	return logger.Options{
		Dir:        c.Dir,
		Filename:   c.Filename,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
	}
}

// DatabasePoolConfig 数据库连接池配置
type DatabasePoolConfig struct {
	MaxOpenConns           int `mapstructure:"max_open_conns"`
	MaxIdleConns           int `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSeconds int `mapstructure:"conn_max_lifetime_seconds"`
	ConnMaxIdleTimeSeconds int `mapstructure:"conn_max_idle_time_seconds"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver string             `mapstructure:"driver"` // sqlite / postgres
	DSN    string             `mapstructure:"dsn"`
	Pool   DatabasePoolConfig `mapstructure:"pool"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	URL      string `mapstructure:"url"` // 优先于 host/port
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// QueueConfig 异步队列配置
type QueueConfig struct {
	Enabled     bool           `mapstructure:"enabled"`
	Host        string         `mapstructure:"host"`
	Port        int            `mapstructure:"port"`
	Password    string         `mapstructure:"password"`
	DB          int            `mapstructure:"db"`
	Concurrency int            `mapstructure:"concurrency"`
	Queues      map[string]int `mapstructure:"queues"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	CheckoutRateLimit RateLimitConfig `mapstructure:"checkout_rate_limit"`
}

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	WindowSeconds int `mapstructure:"window_seconds"`
	MaxRequests   int `mapstructure:"max_requests"`
}

// SessionConfig 桌台会话令牌配置
type SessionConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

// UpstreamConfig 餐厅 REST 服务配置
type UpstreamConfig struct {
	BaseURL         string `mapstructure:"base_url"`
	TimeoutMS       int    `mapstructure:"timeout_ms"`
	ProductsPath    string `mapstructure:"products_path"`
	CreateOrderPath string `mapstructure:"create_order_path"`
	FinalizePath    string `mapstructure:"finalize_path"`
	APIKey          string `mapstructure:"api_key"`
}

// StoreConfig 会话存储配置
type StoreConfig struct {
	Driver   string `mapstructure:"driver"`   // memory / database / redis
	Fallback bool   `mapstructure:"fallback"` // 主存储失败时降级到内存

	PurgeIntervalSeconds int `mapstructure:"purge_interval_seconds"` // 过期条目清理周期，0 表示不清理
}

// CatalogConfig 菜单快照配置
type CatalogConfig struct {
	SnapshotTTLSeconds int `mapstructure:"snapshot_ttl_seconds"`
	SharedCacheSeconds int `mapstructure:"shared_cache_seconds"`
}

// CheckoutConfig 下单与买单配置
type CheckoutConfig struct {
	SuccessRevertSeconds   int    `mapstructure:"success_revert_seconds"`
	ConfirmationPath       string `mapstructure:"confirmation_path"`
	InFlightTimeoutSeconds int    `mapstructure:"in_flight_timeout_seconds"` // 进行中状态超时后视为失败
}

// TableConfig 桌台绑定配置
type TableConfig struct {
	BindingTTLHours int  `mapstructure:"binding_ttl_hours"`
	ClearOnFinalize bool `mapstructure:"clear_on_finalize"`
}

// TelemetryConfig 链路追踪配置
type TelemetryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"service_name"`
	Endpoint    string `mapstructure:"endpoint"` // OTLP/HTTP，如 127.0.0.1:4318
	Insecure    bool   `mapstructure:"insecure"`
}

// Load 从 .env 与 config.yml 加载配置
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		logger.Debugw("config_dotenv_skipped", "error", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("../")
	v.AddConfigPath("./etc")
	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		logger.Warnw("config_file_read_failed",
			"error", err,
			"fallback", "env_or_defaults",
		)
	} else {
		logger.Infow("config_file_loaded", "file", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		logger.Errorw("config_unmarshal_failed", "error", err)
		panic(fmt.Errorf("配置解析失败: %w", err))
	}
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_header_timeout_seconds", 10)
	v.SetDefault("server.idle_timeout_seconds", 60)
	v.SetDefault("log.dir", "")
	v.SetDefault("log.filename", "app.log")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("log.compress", true)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "./db/comanda.db")
	v.SetDefault("database.pool.max_open_conns", 1)
	v.SetDefault("database.pool.max_idle_conns", 1)
	v.SetDefault("database.pool.conn_max_lifetime_seconds", 0)
	v.SetDefault("database.pool.conn_max_idle_time_seconds", 0)
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.url", "")
	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "cmd")
	v.SetDefault("queue.enabled", false)
	v.SetDefault("queue.host", "127.0.0.1")
	v.SetDefault("queue.port", 6379)
	v.SetDefault("queue.password", "")
	v.SetDefault("queue.db", 1)
	v.SetDefault("queue.concurrency", 5)
	v.SetDefault("queue.queues", map[string]int{
		"default": 1,
	})
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{
		"Content-Type",
		"Content-Length",
		"Accept-Encoding",
		"Authorization",
		"Cache-Control",
		"X-Requested-With",
		"X-Request-ID",
	})
	v.SetDefault("cors.allow_credentials", true)
	v.SetDefault("cors.max_age", 600)
	v.SetDefault("security.checkout_rate_limit.window_seconds", 60)
	v.SetDefault("security.checkout_rate_limit.max_requests", 10)
	v.SetDefault("session.secret", "change-me-in-production")
	v.SetDefault("session.expire_hours", 12)
	v.SetDefault("upstream.base_url", "http://127.0.0.1:3000")
	v.SetDefault("upstream.timeout_ms", 10000)
	v.SetDefault("upstream.products_path", "/restaurant/{id}/products")
	v.SetDefault("upstream.create_order_path", "/order/create")
	v.SetDefault("upstream.finalize_path", "/order/finalize")
	v.SetDefault("upstream.api_key", "")
	v.SetDefault("store.driver", "database")
	v.SetDefault("store.fallback", true)
	v.SetDefault("store.purge_interval_seconds", 300)
	v.SetDefault("catalog.snapshot_ttl_seconds", 0)
	v.SetDefault("catalog.shared_cache_seconds", 30)
	v.SetDefault("checkout.success_revert_seconds", 5)
	v.SetDefault("checkout.confirmation_path", "/order-confirmation")
	v.SetDefault("checkout.in_flight_timeout_seconds", 120)
	v.SetDefault("table.binding_ttl_hours", 0)
	v.SetDefault("table.clear_on_finalize", true)
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "comanda-gateway")
	v.SetDefault("telemetry.endpoint", "127.0.0.1:4318")
	v.SetDefault("telemetry.insecure", true)
}
