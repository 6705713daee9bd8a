package config

import "fmt"

type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	BaseURL        string   `mapstructure:"base_url"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	Timezone       string   `mapstructure:"timezone"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig selects MySQL (default) or a SQLite file for local sandboxes.
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`
	Path            string `mapstructure:"path"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

func (d *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&collation=utf8mb4_general_ci&parseTime=true&loc=UTC",
		d.Username, d.Password, d.Host, d.Port, d.Database)
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type JWTConfig struct {
	Secret           string `mapstructure:"secret"`
	AccessExpMinutes int    `mapstructure:"access_exp_minutes"`
}

// AdminConfig holds the single back-office account. PasswordHash is a bcrypt hash.
type AdminConfig struct {
	Email        string `mapstructure:"email"`
	PasswordHash string `mapstructure:"password_hash"`
}

type AuthConfig struct {
	JWT   JWTConfig   `mapstructure:"jwt"`
	Admin AdminConfig `mapstructure:"admin"`
}

type EmailConfig struct {
	SMTPHost     string `mapstructure:"smtp_host"`
	SMTPPort     int    `mapstructure:"smtp_port"`
	SMTPUser     string `mapstructure:"smtp_user"`
	SMTPPassword string `mapstructure:"smtp_password"`
	FromAddress  string `mapstructure:"from_address"`
	FromName     string `mapstructure:"from_name"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type TranzilaConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Terminal string `mapstructure:"terminal"`
	Password string `mapstructure:"password"`
	Endpoint string `mapstructure:"endpoint"`
	// QueryEndpoint looks a transaction up by index before a notify is trusted.
	QueryEndpoint string `mapstructure:"query_endpoint"`
	NotifyToken   string `mapstructure:"notify_token"`
}

type PayPlusConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	APIKey        string `mapstructure:"api_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PaymentPageID string `mapstructure:"payment_page_uid"`
	TerminalUID   string `mapstructure:"terminal_uid"`
	BaseURL       string `mapstructure:"base_url"`
}

type PaymentConfig struct {
	DefaultGateway    string         `mapstructure:"default_gateway"`
	NotifyBaseURL     string         `mapstructure:"notify_base_url"`
	Currency          string         `mapstructure:"currency"`
	VATPercent        string         `mapstructure:"vat_percent"`
	AutoInvoice       bool           `mapstructure:"auto_invoice"`
	PendingTTLHours   int            `mapstructure:"pending_ttl_hours"`
	RetryDelayHours   int            `mapstructure:"retry_delay_hours"`
	MaxFailedAttempts int            `mapstructure:"max_failed_attempts"`
	RemindDaysBefore  int            `mapstructure:"remind_days_before"`
	Tranzila          TranzilaConfig `mapstructure:"tranzila"`
	PayPlus           PayPlusConfig  `mapstructure:"payplus"`
}

type SchedulerConfig struct {
	Enabled                  bool `mapstructure:"enabled"`
	RecurringIntervalMins    int  `mapstructure:"recurring_interval_minutes"`
	RemindersIntervalMins    int  `mapstructure:"reminders_interval_minutes"`
	SequencesIntervalMins    int  `mapstructure:"sequences_interval_minutes"`
	PendingSweepIntervalMins int  `mapstructure:"pending_sweep_interval_minutes"`
}
