package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	sharedConfig "github.com/kesher-io/kesher/internal/shared/config"
	"github.com/kesher-io/kesher/internal/shared/constants"
)

type Config struct {
	Server    sharedConfig.ServerConfig    `mapstructure:"server"`
	Database  sharedConfig.DatabaseConfig  `mapstructure:"database"`
	Logger    sharedConfig.LoggerConfig    `mapstructure:"logger"`
	Auth      sharedConfig.AuthConfig      `mapstructure:"auth"`
	Email     sharedConfig.EmailConfig     `mapstructure:"email"`
	Redis     sharedConfig.RedisConfig     `mapstructure:"redis"`
	Payment   sharedConfig.PaymentConfig   `mapstructure:"payment"`
	Scheduler sharedConfig.SchedulerConfig `mapstructure:"scheduler"`
}

var (
	appConfig   *Config
	appConfigMu sync.RWMutex
)

// Load loads configuration from .env, the config file and KESHER_* environment variables.
// configPath may be empty, in which case ./configs/config.yaml and its parents are searched.
func Load(env string, configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath("../configs")
		v.AddConfigPath("../../configs")
	}

	v.SetEnvPrefix("KESHER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if env != "" && env != "default" {
		v.Set("server.mode", env)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	appConfigMu.Lock()
	appConfig = &config
	appConfigMu.Unlock()

	return &config, nil
}

// Get returns the loaded configuration
func Get() *Config {
	appConfigMu.RLock()
	defer appConfigMu.RUnlock()
	return appConfig
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.timezone", "Asia/Jerusalem")

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.path", "kesher.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.username", "root")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.database", "kesher_dev")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 50)
	v.SetDefault("database.conn_max_lifetime", 60)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output_path", "stdout")

	v.SetDefault("auth.jwt.secret", "change-me-in-production")
	v.SetDefault("auth.jwt.access_exp_minutes", 720)
	v.SetDefault("auth.admin.email", "admin@kesher.local")
	v.SetDefault("auth.admin.password_hash", "")

	v.SetDefault("email.smtp_host", "localhost")
	v.SetDefault("email.smtp_port", 1025)
	v.SetDefault("email.smtp_user", "")
	v.SetDefault("email.smtp_password", "")
	v.SetDefault("email.from_address", "noreply@kesher.local")
	v.SetDefault("email.from_name", "Kesher")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("payment.default_gateway", "manual")
	v.SetDefault("payment.notify_base_url", "http://localhost:8080")
	v.SetDefault("payment.currency", constants.DefaultCurrency)
	v.SetDefault("payment.vat_percent", "18")
	v.SetDefault("payment.auto_invoice", true)
	v.SetDefault("payment.pending_ttl_hours", 48)
	v.SetDefault("payment.retry_delay_hours", 24)
	v.SetDefault("payment.max_failed_attempts", 3)
	v.SetDefault("payment.remind_days_before", 3)
	v.SetDefault("payment.tranzila.endpoint", "https://secure5.tranzila.com/cgi-bin/tranzila71u.cgi")
	v.SetDefault("payment.tranzila.query_endpoint", "https://secure5.tranzila.com/cgi-bin/tranzila_query.cgi")
	v.SetDefault("payment.payplus.base_url", "https://restapi.payplus.co.il/api/v1.0")

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.recurring_interval_minutes", 60)
	v.SetDefault("scheduler.reminders_interval_minutes", 15)
	v.SetDefault("scheduler.sequences_interval_minutes", 5)
	v.SetDefault("scheduler.pending_sweep_interval_minutes", 30)
}
