package conf

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// AppConfig holds the application configuration.
type AppConfig struct {
	Mode           string `mapstructure:"mode"`
	Name           string `mapstructure:"name"`
	TimeZone       string `mapstructure:"time_zone"`
	*LogConfig     `mapstructure:"log"`
	*MongodbConfig `mapstructure:"mongodb"`
	*QueueConfig   `mapstructure:"queue"`
	*WorkerConfig  `mapstructure:"worker"`
	*MetricsConfig `mapstructure:"metrics"`
}

// LogConfig holds the logger configuration.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxAge     int    `mapstructure:"max_age"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// MongodbConfig holds the MongoDB configuration.
type MongodbConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DB       string `mapstructure:"db"`
}

// QueueConfig holds the queue the application binds to. DeadQueue names a
// second collection receiving retry-exhausted messages; leave it empty to
// disable dead-lettering. GetRetryLimit bounds the dead-letter escalations
// a single claim call may perform and can be overridden from the
// environment as QUEUE_GET_RETRY_LIMIT.
type QueueConfig struct {
	Name              string `mapstructure:"name"`
	VisibilitySeconds int    `mapstructure:"visibility_seconds"`
	DelaySeconds      int    `mapstructure:"delay_seconds"`
	DeadQueue         string `mapstructure:"dead_queue"`
	MaxRetries        int    `mapstructure:"max_retries"`
	GetRetryLimit     int    `mapstructure:"get_retry_limit"`
}

// WorkerConfig holds all background worker configurations.
type WorkerConfig struct {
	Dispatcher DispatcherConfig `mapstructure:"dispatcher"`
	Janitor    JanitorConfig    `mapstructure:"janitor"`
}

// DispatcherConfig holds the configuration for the message dispatcher worker.
type DispatcherConfig struct {
	IntervalSeconds int    `mapstructure:"interval_seconds"`
	WebhookURL      string `mapstructure:"webhook_url"`
}

// JanitorConfig holds the configuration for the queue janitor worker.
type JanitorConfig struct {
	IntervalSeconds int `mapstructure:"interval_seconds"`
}

// MetricsConfig holds the metrics HTTP server configuration.
type MetricsConfig struct {
	Port int `mapstructure:"port"`
}

// Visibility returns the configured visibility timeout as a duration.
func (c *QueueConfig) Visibility() time.Duration {
	return time.Duration(c.VisibilitySeconds) * time.Second
}

// Delay returns the configured enqueue delay as a duration.
func (c *QueueConfig) Delay() time.Duration {
	return time.Duration(c.DelaySeconds) * time.Second
}

// NewConfig loads the application configuration from a file.
func NewConfig(confFile string) (*AppConfig, error) {
	// Load .env file. It's okay if it doesn't exist. Errors are ignored.
	// This is mainly for local development.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(confFile)

	// Replace dots in keys with underscores for environment variables (e.g., `queue.get_retry_limit` -> `QUEUE_GET_RETRY_LIMIT`).
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	// Enable automatic reading of environment variables.
	v.AutomaticEnv()

	// Queue defaults mirror the library defaults so the environment can
	// override them even when the file omits the keys.
	v.SetDefault("queue.visibility_seconds", 60)
	v.SetDefault("queue.delay_seconds", 60)
	v.SetDefault("queue.max_retries", 5)
	v.SetDefault("queue.get_retry_limit", 500)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var conf AppConfig
	if err := v.Unmarshal(&conf); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if conf.TimeZone != "" {
		loc, err := time.LoadLocation(conf.TimeZone)
		if err != nil {
			return nil, fmt.Errorf("failed to load timezone: %w", err)
		}
		time.Local = loc
	}

	return &conf, nil
}
