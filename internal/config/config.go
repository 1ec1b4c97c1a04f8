package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Tracing   TracingConfig `mapstructure:"tracing"`
	Redis     RedisConfig
	AMQP      AMQPConfig      `mapstructure:"amqp"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Practice  PracticeConfig  `mapstructure:"practice"`

	// 运行时标志（非配置文件，通过命令行参数设置）
	ForceMigrate bool   `mapstructure:"-"`
	File         string `mapstructure:"-"` // 实际读取的配置文件
}

type ServerConfig struct {
	Port string
	Mode string
}

type LogConfig struct {
	File string `mapstructure:"file"`
}

type DatabaseConfig struct {
	Driver     string `mapstructure:"driver"` // mysql | sqlite | memory
	Host       string
	Port       int
	User       string
	Password   string
	DBName     string
	Charset    string
	ParseTime  bool
	SQLitePath string `mapstructure:"sqlite_path"`
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	ExpireTime time.Duration `mapstructure:"expire_hours"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	ServiceName       string `mapstructure:"service_name"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type RedisConfig struct {
	Enabled  bool `mapstructure:"enabled"`
	Host     string
	Port     int
	Password string
	DB       int
}

type AMQPConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

// PracticeConfig 练习引擎参数，支持热更新
type PracticeConfig struct {
	FreeDailyQuestionLimit  int `mapstructure:"free_daily_question_limit"`
	SessionExpiryHours      int `mapstructure:"session_expiry_hours"`
	SubmitRateLimit         int `mapstructure:"submit_rate_limit"`
	SubmitRateWindowSeconds int `mapstructure:"submit_rate_window_seconds"`
	GeneratorTimeoutMS      int `mapstructure:"generator_timeout_ms"`
	IdempotencyTTLHours     int `mapstructure:"idempotency_ttl_hours"`
}

func (p PracticeConfig) SessionExpiry() time.Duration {
	return time.Duration(p.SessionExpiryHours) * time.Hour
}

func (p PracticeConfig) GeneratorTimeout() time.Duration {
	return time.Duration(p.GeneratorTimeoutMS) * time.Millisecond
}

func (p PracticeConfig) IdempotencyTTL() time.Duration {
	return time.Duration(p.IdempotencyTTLHours) * time.Hour
}

func (p PracticeConfig) SubmitRateWindow() time.Duration {
	return time.Duration(p.SubmitRateWindowSeconds) * time.Second
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("log.file", "logs/app.log")
	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.charset", "utf8mb4")
	v.SetDefault("database.parsetime", true)
	v.SetDefault("database.sqlite_path", "studypoint.db")
	v.SetDefault("jwt.expire_hours", 24)
	v.SetDefault("tracing.service_name", "studypoint-practice")
	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("amqp.exchange", "studypoint.events")
	v.SetDefault("rate_limit.max_requests", 600)
	v.SetDefault("rate_limit.window_minutes", 1)

	v.SetDefault("practice.free_daily_question_limit", 25)
	v.SetDefault("practice.session_expiry_hours", 24)
	v.SetDefault("practice.submit_rate_limit", 30)
	v.SetDefault("practice.submit_rate_window_seconds", 60)
	v.SetDefault("practice.generator_timeout_ms", 500)
	v.SetDefault("practice.idempotency_ttl_hours", 24)
}

// LoadConfig reads path, which is either a directory holding config.yaml or
// the file itself. Environment variables override file values.
func LoadConfig(path string) (*Config, error) {
	// .env 可选
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if ext := filepath.Ext(path); ext == ".yaml" || ext == ".yml" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(path)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("STUDYPOINT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Database
	v.BindEnv("database.driver", "DATABASE_DRIVER")
	v.BindEnv("database.host", "DATABASE_HOST")
	v.BindEnv("database.port", "DATABASE_PORT")
	v.BindEnv("database.user", "DATABASE_USER")
	v.BindEnv("database.password", "DATABASE_PASSWORD")
	v.BindEnv("database.dbname", "DATABASE_NAME")

	// JWT
	v.BindEnv("jwt.secret", "JWT_SECRET")

	// Redis
	v.BindEnv("redis.enabled", "REDIS_ENABLED")
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	// Server
	v.BindEnv("server.mode", "SERVER_MODE")

	// AMQP
	v.BindEnv("amqp.enabled", "AMQP_ENABLED")
	v.BindEnv("amqp.url", "AMQP_URL")

	// Tracing
	v.BindEnv("tracing.enabled", "TRACING_ENABLED")
	v.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.File = v.ConfigFileUsed()

	cfg.JWT.ExpireTime = cfg.JWT.ExpireTime * time.Hour

	// 生产环境校验 JWT Secret 强度
	if cfg.Server.Mode == "release" && len(cfg.JWT.Secret) < 32 {
		return nil, fmt.Errorf("JWT secret is too short (%d chars), must be at least 32 characters in release mode", len(cfg.JWT.Secret))
	}

	if err := cfg.Practice.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (p PracticeConfig) validate() error {
	switch {
	case p.FreeDailyQuestionLimit < 0:
		return fmt.Errorf("practice.free_daily_question_limit must not be negative")
	case p.SessionExpiryHours <= 0:
		return fmt.Errorf("practice.session_expiry_hours must be positive")
	case p.SubmitRateLimit <= 0 || p.SubmitRateWindowSeconds <= 0:
		return fmt.Errorf("practice submit rate limit must be positive")
	case p.GeneratorTimeoutMS <= 0:
		return fmt.Errorf("practice.generator_timeout_ms must be positive")
	}
	return nil
}
