// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Event     EventConfig     `mapstructure:"event"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Assets    AssetsConfig    `mapstructure:"assets"`
	PDF       PDFConfig       `mapstructure:"pdf"`
	SMTP      SMTPConfig      `mapstructure:"smtp"`
	AWS       AWSConfig       `mapstructure:"aws"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// EventConfig describes the conference the certificates are issued for.
type EventConfig struct {
	Name           string `mapstructure:"name"`
	Venue          string `mapstructure:"venue"`
	Dates          string `mapstructure:"dates"`
	ChairmanName   string `mapstructure:"chairman_name"`
	ChairmanTitle  string `mapstructure:"chairman_title"`
	SecretaryName  string `mapstructure:"secretary_name"`
	SecretaryTitle string `mapstructure:"secretary_title"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AssetsConfig lists directories searched for certificate images, in order.
type AssetsConfig struct {
	SearchDirs []string `mapstructure:"search_dirs"`
}

// PDFConfig controls the external HTML-to-PDF converter.
type PDFConfig struct {
	BinaryPath     string   `mapstructure:"binary_path"`
	FallbackPaths  []string `mapstructure:"fallback_paths"`
	TimeoutMs      int      `mapstructure:"timeout_ms"`
	PageSize       string   `mapstructure:"page_size"`
	Orientation    string   `mapstructure:"orientation"`
	MarginInches   string   `mapstructure:"margin_inches"`
	JavascriptWait int      `mapstructure:"javascript_wait_ms"`
}

// SMTPConfig holds the outbound mail transport settings.
type SMTPConfig struct {
	Host             string `mapstructure:"host"`
	Port             int    `mapstructure:"port"`
	Username         string `mapstructure:"username"`
	Password         string `mapstructure:"password"`
	FromAddress      string `mapstructure:"from_address"`
	FromName         string `mapstructure:"from_name"`
	UseTLS           bool   `mapstructure:"use_tls"`
	ConnectTimeoutMs int    `mapstructure:"connect_timeout_ms"`
	SendTimeoutMs    int    `mapstructure:"send_timeout_ms"`
}

type AWSConfig struct {
	Region          string    `mapstructure:"region"`
	SES             SESConfig `mapstructure:"ses"`
	SNS             SNSConfig `mapstructure:"sns"`
	UseSESTransport bool      `mapstructure:"use_ses_transport"`
}

type SESConfig struct {
	FromAddress string `mapstructure:"from_address"`
}

type SNSConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	TopicARN string `mapstructure:"topic_arn"`
}

// PipelineConfig bounds concurrency for bulk runs.
type PipelineConfig struct {
	WorkerCount   int `mapstructure:"worker_count"`
	LockTTLMs     int `mapstructure:"lock_ttl_ms"`
	MaxFailDetail int `mapstructure:"max_fail_detail"`
}

// SchedulerConfig controls deferred bulk runs and periodic jobs.
type SchedulerConfig struct {
	CertificateDelayMs int  `mapstructure:"certificate_delay_ms"`
	ReminderIntervalMs int  `mapstructure:"reminder_interval_ms"`
	RemindersEnabled   bool `mapstructure:"reminders_enabled"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "console"
	Output string `mapstructure:"output"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}
