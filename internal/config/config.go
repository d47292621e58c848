// Package config handles application configuration loading and validation using Viper.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Email      EmailConfig      `mapstructure:"email"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
	Retention  RetentionConfig  `mapstructure:"retention"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port        int    `mapstructure:"port"`
	Environment string `mapstructure:"environment"`
}

// DatabaseConfig contains database connection settings for PostgreSQL and Redis.
type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// PostgresConfig contains PostgreSQL database connection and pool settings.
type PostgresConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Database        string `mapstructure:"database"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"ssl_mode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
	MigrationsPath  string `mapstructure:"migrations_path"`
}

// RedisConfig contains Redis connection and pool settings.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// AuthConfig contains token signing and OTP settings.
type AuthConfig struct {
	JWTSecret       string `mapstructure:"jwt_secret"`
	TokenTTLHours   int    `mapstructure:"token_ttl_hours"`
	AdminOTPTTLMin  int    `mapstructure:"admin_otp_ttl_minutes"`
	SignupOTPTTLMin int    `mapstructure:"signup_otp_ttl_minutes"`
}

// EmailConfig contains SMTP delivery settings.
type EmailConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	Enabled  bool   `mapstructure:"enabled"`
}

// ClassifierConfig contains settings for the Python food image classifier.
type ClassifierConfig struct {
	PythonBin      string `mapstructure:"python_bin"`
	ScriptPath     string `mapstructure:"script_path"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// SchedulerConfig contains nightly job settings.
type SchedulerConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	RewardSweepTime string `mapstructure:"reward_sweep_time"` // cron expression
	Timezone        string `mapstructure:"timezone"`
}

// RetentionConfig controls pruning of old log entries.
type RetentionConfig struct {
	LogRetentionDays int `mapstructure:"log_retention_days"`
}

// MetricsConfig contains Prometheus exporter settings.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LoggingConfig contains application logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// Load reads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/nutriwise/")
	}

	// Explicit environment bindings (12-factor deployments override the file)
	_ = v.BindEnv("server.port", "SERVER_PORT")
	_ = v.BindEnv("server.environment", "SERVER_ENVIRONMENT")

	_ = v.BindEnv("database.postgres.host", "POSTGRES_HOST")
	_ = v.BindEnv("database.postgres.port", "POSTGRES_PORT")
	_ = v.BindEnv("database.postgres.database", "POSTGRES_DB")
	_ = v.BindEnv("database.postgres.user", "POSTGRES_USER")
	_ = v.BindEnv("database.postgres.password", "POSTGRES_PASSWORD")
	_ = v.BindEnv("database.postgres.ssl_mode", "POSTGRES_SSL_MODE")
	_ = v.BindEnv("database.postgres.max_open_conns", "POSTGRES_MAX_OPEN_CONNS")
	_ = v.BindEnv("database.postgres.max_idle_conns", "POSTGRES_MAX_IDLE_CONNS")
	_ = v.BindEnv("database.postgres.conn_max_lifetime", "POSTGRES_CONN_MAX_LIFETIME")
	_ = v.BindEnv("database.postgres.migrations_path", "POSTGRES_MIGRATIONS_PATH")

	_ = v.BindEnv("database.redis.host", "REDIS_HOST")
	_ = v.BindEnv("database.redis.port", "REDIS_PORT")
	_ = v.BindEnv("database.redis.password", "REDIS_PASSWORD")
	_ = v.BindEnv("database.redis.db", "REDIS_DB")
	_ = v.BindEnv("database.redis.pool_size", "REDIS_POOL_SIZE")

	_ = v.BindEnv("auth.jwt_secret", "JWT_SECRET")
	_ = v.BindEnv("auth.token_ttl_hours", "AUTH_TOKEN_TTL_HOURS")
	_ = v.BindEnv("auth.admin_otp_ttl_minutes", "AUTH_ADMIN_OTP_TTL_MINUTES")
	_ = v.BindEnv("auth.signup_otp_ttl_minutes", "AUTH_SIGNUP_OTP_TTL_MINUTES")

	_ = v.BindEnv("email.host", "SMTP_HOST")
	_ = v.BindEnv("email.port", "SMTP_PORT")
	_ = v.BindEnv("email.username", "SMTP_USERNAME")
	_ = v.BindEnv("email.password", "SMTP_PASSWORD")
	_ = v.BindEnv("email.from", "SMTP_FROM")
	_ = v.BindEnv("email.enabled", "SMTP_ENABLED")

	_ = v.BindEnv("classifier.python_bin", "CLASSIFIER_PYTHON_BIN")
	_ = v.BindEnv("classifier.script_path", "CLASSIFIER_SCRIPT_PATH")
	_ = v.BindEnv("classifier.timeout_seconds", "CLASSIFIER_TIMEOUT_SECONDS")

	_ = v.BindEnv("scheduler.enabled", "SCHEDULER_ENABLED")
	_ = v.BindEnv("scheduler.reward_sweep_time", "SCHEDULER_REWARD_SWEEP_TIME")
	_ = v.BindEnv("scheduler.timezone", "SCHEDULER_TIMEZONE")

	_ = v.BindEnv("logging.level", "LOG_LEVEL")
	_ = v.BindEnv("logging.format", "LOG_FORMAT")
	_ = v.BindEnv("logging.output", "LOG_OUTPUT")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.environment", "development")
	v.SetDefault("database.postgres.ssl_mode", "disable")
	v.SetDefault("database.postgres.max_open_conns", 20)
	v.SetDefault("database.postgres.max_idle_conns", 5)
	v.SetDefault("database.postgres.conn_max_lifetime", 300)
	v.SetDefault("auth.token_ttl_hours", 720) // 30 days
	v.SetDefault("auth.admin_otp_ttl_minutes", 10)
	v.SetDefault("auth.signup_otp_ttl_minutes", 5)
	v.SetDefault("classifier.python_bin", "python3")
	v.SetDefault("classifier.timeout_seconds", 30)
	v.SetDefault("scheduler.timezone", "UTC")
	v.SetDefault("scheduler.reward_sweep_time", "15 0 * * *")
	v.SetDefault("retention.log_retention_days", 365)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Database.Postgres.Host == "" {
		return fmt.Errorf("database.postgres.host is required")
	}
	if c.Database.Postgres.Database == "" {
		return fmt.Errorf("database.postgres.database is required")
	}
	if c.Database.Postgres.User == "" {
		return fmt.Errorf("database.postgres.user is required")
	}
	if c.Database.Redis.Host == "" {
		return fmt.Errorf("database.redis.host is required")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	if c.Email.Enabled {
		if c.Email.Host == "" {
			return fmt.Errorf("email.host is required when email is enabled")
		}
		if c.Email.From == "" {
			return fmt.Errorf("email.from is required when email is enabled")
		}
	}
	return nil
}

// GetLocation returns the scheduler timezone location.
func (c *SchedulerConfig) GetLocation() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// TokenTTL returns the JWT lifetime as a duration.
func (c *AuthConfig) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLHours) * time.Hour
}

// AdminOTPTTL returns the admin verification code lifetime.
func (c *AuthConfig) AdminOTPTTL() time.Duration {
	return time.Duration(c.AdminOTPTTLMin) * time.Minute
}

// SignupOTPTTL returns the app-user signup code lifetime.
func (c *AuthConfig) SignupOTPTTL() time.Duration {
	return time.Duration(c.SignupOTPTTLMin) * time.Minute
}
