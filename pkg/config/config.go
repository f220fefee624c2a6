package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

type MetricsConfig struct {
	Enabled            bool `mapstructure:"enabled"`
	EnableModelLatency bool `mapstructure:"enable_model_latency"`
	EnableHTTP         bool `mapstructure:"enable_http"`
}

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Assistant AssistantConfig `mapstructure:"assistant"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Sanitizer SanitizerConfig `mapstructure:"sanitizer"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Directory DirectoryConfig `mapstructure:"directory"`
}

type ServerConfig struct {
	Port         int      `mapstructure:"port"`
	MetricsPort  int      `mapstructure:"metrics_port"`
	Host         string   `mapstructure:"host"`
	SecretKey    string   `mapstructure:"secret_key"`
	AllowOrigins []string `mapstructure:"allow_origins"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	TLS      bool   `mapstructure:"tls"`
}

type AssistantConfig struct {
	MaxActiveSessions int           `mapstructure:"max_active_sessions"`
	MaxMessages       int           `mapstructure:"max_messages"`
	SessionTimeout    time.Duration `mapstructure:"session_timeout"`
	ArchiveAfter      time.Duration `mapstructure:"archive_after"`
	HistorySize       int           `mapstructure:"history_size"`
	SessionStore      string        `mapstructure:"session_store"`
	SweepInterval     time.Duration `mapstructure:"sweep_interval"`
	HookWorkers       int           `mapstructure:"hook_workers"`
}

type RateLimitConfig struct {
	MaxPerWindow  int           `mapstructure:"max_per_window"`
	Window        time.Duration `mapstructure:"window"`
	BlockDuration time.Duration `mapstructure:"block_duration"`
	Store         string        `mapstructure:"store"`
}

type SanitizerConfig struct {
	MinLength        int      `mapstructure:"min_length"`
	MaxLength        int      `mapstructure:"max_length"`
	MaxCommentLength int      `mapstructure:"max_comment_length"`
	Denylist         []string `mapstructure:"denylist"`
}

type LLMConfig struct {
	Provider        string                 `mapstructure:"provider"`
	BaseURL         string                 `mapstructure:"base_url"`
	APIKey          string                 `mapstructure:"api_key"`
	Model           string                 `mapstructure:"model"`
	Temperature     float64                `mapstructure:"temperature"`
	TopP            float64                `mapstructure:"top_p"`
	MaxTokens       int                    `mapstructure:"max_tokens"`
	Timeout         time.Duration          `mapstructure:"timeout"`
	AIEnabled       bool                   `mapstructure:"ai_enabled"`
	FallbackEnabled bool                   `mapstructure:"fallback_enabled"`
	BreakerFailures int                    `mapstructure:"breaker_failures"`
	BreakerTimeout  time.Duration          `mapstructure:"breaker_timeout"`
	Options         map[string]interface{} `mapstructure:"options"`
}

type DirectoryConfig struct {
	BaseURL  string        `mapstructure:"base_url"`
	Token    string        `mapstructure:"token"`
	Timeout  time.Duration `mapstructure:"timeout"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

var globalConfig Config

func Load(configPath string) error {
	setViperDefaults(viper.GetViper())
	if err := loadConfigFile(configPath, "config", &globalConfig); err != nil {
		return fmt.Errorf("⚠️ Warning: Could not load main config file: %v", err)
	}
	setDefaultValues(&globalConfig)
	return nil
}

func loadConfigFile(configPath, fileName string, out interface{}) error {
	viper.SetConfigName(fileName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configPath)
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("config file %s.yaml not found, using only environment variables", fileName)
		}
		return fmt.Errorf("error reading config file %s.yaml: %w", fileName, err)
	}

	if err := viper.Unmarshal(out); err != nil {
		return fmt.Errorf("failed to unmarshal %s config: %w", fileName, err)
	}

	return nil
}

// setViperDefaults registers defaults for keys that must be visible to
// AutomaticEnv even when absent from the yaml file.
func setViperDefaults(v *viper.Viper) {
	v.SetDefault("llm.ai_enabled", true)
	v.SetDefault("llm.fallback_enabled", true)
	v.SetDefault("metrics.enabled", true)
}

func setDefaultValues(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.MetricsPort == 0 {
		cfg.Server.MetricsPort = 9090
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}

	a := &cfg.Assistant
	if a.MaxActiveSessions <= 0 {
		a.MaxActiveSessions = 3
	}
	if a.MaxMessages <= 0 {
		a.MaxMessages = 100
	}
	if a.SessionTimeout <= 0 {
		a.SessionTimeout = 30 * time.Minute
	}
	if a.ArchiveAfter <= 0 {
		a.ArchiveAfter = 720 * time.Hour
	}
	if a.HistorySize <= 0 {
		a.HistorySize = 5
	}
	if a.SessionStore == "" {
		a.SessionStore = StoreMemory
	}
	if a.SweepInterval <= 0 {
		a.SweepInterval = time.Minute
	}
	if a.HookWorkers <= 0 {
		a.HookWorkers = 2
	}

	r := &cfg.RateLimit
	if r.MaxPerWindow <= 0 {
		r.MaxPerWindow = 10
	}
	if r.Window <= 0 {
		r.Window = 60 * time.Second
	}
	if r.BlockDuration < 0 {
		r.BlockDuration = 0
	} else if r.BlockDuration == 0 {
		r.BlockDuration = 60 * time.Second
	}
	if r.Store == "" {
		r.Store = StoreMemory
	}

	s := &cfg.Sanitizer
	if s.MinLength <= 0 {
		s.MinLength = 2
	}
	if s.MaxLength <= 0 {
		s.MaxLength = 1000
	}
	if s.MaxCommentLength <= 0 {
		s.MaxCommentLength = 500
	}

	l := &cfg.LLM
	if l.Provider == "" {
		l.Provider = "ollama"
	}
	if l.Temperature == 0 {
		l.Temperature = 0.7
	}
	if l.TopP == 0 {
		l.TopP = 0.9
	}
	if l.MaxTokens <= 0 {
		l.MaxTokens = 500
	}
	if l.Timeout <= 0 {
		l.Timeout = 30 * time.Second
	}
	if l.BreakerFailures <= 0 {
		l.BreakerFailures = 5
	}
	if l.BreakerTimeout <= 0 {
		l.BreakerTimeout = 30 * time.Second
	}

	d := &cfg.Directory
	if d.Timeout <= 0 {
		d.Timeout = 5 * time.Second
	}
	if d.CacheTTL <= 0 {
		d.CacheTTL = 10 * time.Minute
	}
}

func GetConfig() *Config {
	return &globalConfig
}

// RedisRequired reports whether any component is configured to use redis.
func (c *Config) RedisRequired() bool {
	return strings.EqualFold(c.RateLimit.Store, StoreRedis) || c.Redis.Host != ""
}
