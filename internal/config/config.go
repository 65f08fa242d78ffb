package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// 持久化后端。
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendMinIO    = "minio"
)

// Config aggregates application settings that may be sourced from files or environment variables.
type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	MinIO    MinIOConfig    `mapstructure:"minio"`
	AI       AIConfig       `mapstructure:"ai"`
	Export   ExportConfig   `mapstructure:"export"`
	Clamd    ClamdConfig    `mapstructure:"clamd"`
	Log      LogConfig      `mapstructure:"log"`
}

// APIConfig contains HTTP server settings.
type APIConfig struct {
	Port int `mapstructure:"port"`
	// MaxUploadMB 限制上传文件（图片、表格）的大小。
	MaxUploadMB int `mapstructure:"max_upload_mb"`
}

// StorageConfig 选择文档/配置/配色方案的持久化位置。
type StorageConfig struct {
	Backend  string        `mapstructure:"backend"`
	Dir      string        `mapstructure:"dir"`
	Debounce time.Duration `mapstructure:"debounce"`
}

// DatabaseConfig contains connection options for PostgreSQL.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`
}

// RedisConfig 包含 Redis 连接配置。
type RedisConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Addr 返回 host:port。
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// MinIOConfig contains connection options for MinIO/S3-compatible storage.
type MinIOConfig struct {
	Endpoint         string `mapstructure:"endpoint"`
	PublicEndpoint   string `mapstructure:"public_endpoint"`
	AccessKeyID      string `mapstructure:"access_key_id"`
	SecretAccessKey  string `mapstructure:"secret_access_key"`
	UseSSL           bool   `mapstructure:"use_ssl"`
	Bucket           string `mapstructure:"bucket"`
	Region           string `mapstructure:"region"`
	BucketLookup     string `mapstructure:"bucket_lookup"`
	AutoCreateBucket bool   `mapstructure:"auto_create_bucket"`
}

// AIConfig 是 Gemini 协作方配置，APIKey 为空时使用固定兜底结果。
type AIConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
	// RateLimit 是每分钟允许的推荐请求数，依赖 Redis 计数，0 表示不限。
	RateLimit int `mapstructure:"rate_limit"`
}

// ExportConfig 控制 PDF 导出。
type ExportConfig struct {
	// Async 为 true 时导出走 asynq 队列，结果通过 WebSocket 通知。
	Async       bool          `mapstructure:"async"`
	BrowserBin  string        `mapstructure:"browser_bin"`
	Timeout     time.Duration `mapstructure:"timeout"`
	URLExpiry   time.Duration `mapstructure:"url_expiry"`
	// MetricsAddr 是 worker 暴露 /metrics 的监听地址，留空则不启动。
	MetricsAddr string        `mapstructure:"metrics_addr"`
}

// ClamdConfig 上传扫描；Address 为空表示不扫描。
type ClamdConfig struct {
	Address string `mapstructure:"address"`
}

// LogConfig 日志级别与格式（text|json）。
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DSN builds a lib/pq compatible connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host,
		d.Port,
		d.User,
		d.Password,
		d.Name,
		d.SSLMode,
	)
}

// Load reads configuration from environment variables, after loading an optional .env file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if err := bindEnv(v); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Storage.Backend = strings.ToLower(strings.TrimSpace(cfg.Storage.Backend))

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// MustLoad wraps Load and panics on failure.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.max_upload_mb", 10)
	v.SetDefault("storage.backend", BackendFile)
	v.SetDefault("storage.dir", "./data")
	v.SetDefault("storage.debounce", time.Second)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "smartcv")
	v.SetDefault("database.user", "smartcv")
	v.SetDefault("database.password", "smartcv")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("minio.endpoint", "localhost:9000")
	v.SetDefault("minio.public_endpoint", "http://localhost:9000")
	v.SetDefault("minio.use_ssl", false)
	v.SetDefault("minio.bucket", "smartcv")
	v.SetDefault("minio.bucket_lookup", "auto")
	v.SetDefault("minio.auto_create_bucket", true)
	v.SetDefault("ai.model", "gemini-2.5-flash")
	v.SetDefault("ai.rate_limit", 20)
	v.SetDefault("export.async", false)
	v.SetDefault("export.timeout", 60*time.Second)
	v.SetDefault("export.url_expiry", 15*time.Minute)
	v.SetDefault("export.metrics_addr", ":9091")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

func bindEnv(v *viper.Viper) error {
	mappings := map[string]string{
		"api.port":                 "API_PORT",
		"api.max_upload_mb":        "API_MAX_UPLOAD_MB",
		"storage.backend":          "STORAGE_BACKEND",
		"storage.dir":              "STORAGE_DIR",
		"storage.debounce":         "STORAGE_DEBOUNCE",
		"database.host":            "DATABASE_HOST",
		"database.port":            "DATABASE_PORT",
		"database.name":            "POSTGRES_DB",
		"database.user":            "POSTGRES_USER",
		"database.password":        "POSTGRES_PASSWORD",
		"database.sslmode":         "DATABASE_SSLMODE",
		"redis.host":               "REDIS_HOST",
		"redis.port":               "REDIS_PORT",
		"minio.endpoint":           "MINIO_ENDPOINT",
		"minio.public_endpoint":    "MINIO_PUBLIC_ENDPOINT",
		"minio.access_key_id":      "MINIO_ACCESS_KEY_ID",
		"minio.secret_access_key":  "MINIO_SECRET_ACCESS_KEY",
		"minio.use_ssl":            "MINIO_USE_SSL",
		"minio.bucket":             "MINIO_BUCKET",
		"minio.region":             "MINIO_REGION",
		"minio.bucket_lookup":      "MINIO_BUCKET_LOOKUP",
		"minio.auto_create_bucket": "MINIO_AUTO_CREATE_BUCKET",
		"ai.api_key":               "GEMINI_API_KEY",
		"ai.model":                 "GEMINI_MODEL",
		"ai.rate_limit":            "AI_RATE_LIMIT",
		"export.async":             "EXPORT_ASYNC",
		"export.browser_bin":       "EXPORT_BROWSER_BIN",
		"export.timeout":           "EXPORT_TIMEOUT",
		"export.url_expiry":        "EXPORT_URL_EXPIRY",
		"export.metrics_addr":      "WORKER_METRICS_ADDR",
		"clamd.address":            "CLAMD_ADDRESS",
		"log.level":                "LOG_LEVEL",
		"log.format":               "LOG_FORMAT",
	}

	for key, env := range mappings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind %s to %s: %w", key, env, err)
		}
	}

	return nil
}

// NeedsRedis 报告当前配置是否依赖 Redis。
func (c Config) NeedsRedis() bool {
	return c.Storage.Backend == BackendRedis || c.Export.Async
}

// NeedsMinIO 报告当前配置是否依赖对象存储。
func (c Config) NeedsMinIO() bool {
	return c.Storage.Backend == BackendMinIO || c.Export.Async
}

func validate(cfg Config) error {
	if cfg.API.Port <= 0 {
		return errors.New("api port must be positive")
	}
	if cfg.API.MaxUploadMB <= 0 {
		return errors.New("api max upload size must be positive")
	}
	if cfg.Storage.Debounce < 0 {
		return errors.New("storage debounce must not be negative")
	}

	switch cfg.Storage.Backend {
	case BackendMemory:
	case BackendFile:
		if cfg.Storage.Dir == "" {
			return errors.New("storage dir is required for the file backend")
		}
	case BackendPostgres:
		if err := validateDatabase(cfg.Database); err != nil {
			return err
		}
	case BackendRedis, BackendMinIO:
	default:
		return fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	if cfg.NeedsRedis() {
		if cfg.Redis.Host == "" {
			return errors.New("redis host is required")
		}
		if cfg.Redis.Port <= 0 {
			return errors.New("redis port must be positive")
		}
	}
	if cfg.NeedsMinIO() {
		if cfg.MinIO.Endpoint == "" {
			return errors.New("minio endpoint is required")
		}
		if cfg.MinIO.AccessKeyID == "" {
			return errors.New("minio access key id is required")
		}
		if cfg.MinIO.SecretAccessKey == "" {
			return errors.New("minio secret access key is required")
		}
		if cfg.MinIO.Bucket == "" {
			return errors.New("minio bucket is required")
		}
	}
	if cfg.AI.RateLimit < 0 {
		return errors.New("ai rate limit must not be negative")
	}
	if cfg.Export.Timeout <= 0 {
		return errors.New("export timeout must be positive")
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	if d.Host == "" {
		return errors.New("database host is required")
	}
	if d.Port <= 0 {
		return errors.New("database port must be positive")
	}
	if d.Name == "" {
		return errors.New("database name is required")
	}
	if d.User == "" {
		return errors.New("database user is required")
	}
	if d.Password == "" {
		return errors.New("database password is required")
	}
	if d.SSLMode == "" {
		return errors.New("database sslmode is required")
	}
	return nil
}
