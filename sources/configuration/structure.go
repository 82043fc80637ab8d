package configuration

import (
	"time"
)

type Config struct {
	Service         ServiceConfig         `yaml:"service"`
	Server          ServerConfig          `yaml:"server"`
	Auth            AuthConfig            `yaml:"auth"`
	Database        DatabaseConfig        `yaml:"database"`
	Redis           RedisConfig           `yaml:"redis"`
	AI              AIConfig              `yaml:"ai"`
	Proxy           ProxyConfig           `yaml:"proxy"`
	Network         NetworkConfig         `yaml:"network"`
	Throttler       ThrottlerConfig       `yaml:"throttler"`
	Features        FeaturesConfig        `yaml:"features"`
	Cache           CacheConfig           `yaml:"cache"`
	Answers         AnswersConfig         `yaml:"answers"`
	Plans           PlansConfig           `yaml:"plans"`
	Personalization PersonalizationConfig `yaml:"personalization"`
}

type ServiceConfig struct {
	SystemMetricsPort      int `yaml:"system_metrics_port"`
	ApplicationMetricsPort int `yaml:"application_metrics_port"`
}

type ServerConfig struct {
	Port           int           `yaml:"port"`
	Mode           string        `yaml:"mode"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
	Issuer    string `yaml:"issuer"`
	Audience  string `yaml:"audience"`
}

type DatabaseConfig struct {
	Host     string   `yaml:"host"`
	Port     string   `yaml:"port"`
	User     string   `yaml:"user"`
	Password string   `yaml:"password"`
	DBName   string   `yaml:"dbname"`
	SSLMode  string   `yaml:"ssl_mode"`
	TimeZone string   `yaml:"time_zone"`
	Replicas []string `yaml:"replicas"`
	Migrate  bool     `yaml:"migrate"`
}

type RedisConfig struct {
	Host        string        `yaml:"host"`
	Port        int           `yaml:"port"`
	Password    string        `yaml:"password"`
	DB          int           `yaml:"db"`
	MaxRetries  int           `yaml:"max_retries"`
	DialTimeout time.Duration `yaml:"dial_timeout"`
}

type AIConfig struct {
	Provider        string   `yaml:"provider"`
	OpenRouterToken string   `yaml:"open_router_token"`
	OpenAIToken     string   `yaml:"openai_token"`
	OpenAIBaseURL   string   `yaml:"openai_base_url"`
	Model           string   `yaml:"model"`
	FallbackModels  []string `yaml:"fallback_models"`
	ContextWindow   int      `yaml:"context_window"`
}

type ProxyConfig struct {
	URL      string `yaml:"url"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

type NetworkConfig struct {
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

type ThrottlerConfig struct {
	Limit time.Duration `yaml:"limit"`
}

type FeaturesConfig struct {
	UnleashAPIURL     string `yaml:"unleash_api_url"`
	UnleashAppName    string `yaml:"unleash_app_name"`
	UnleashInstanceID string `yaml:"unleash_instance_id"`
	RefreshInterval   int    `yaml:"refresh_interval"`
}

type CacheConfig struct {
	TTL       time.Duration `yaml:"ttl"`
	KeyPrefix string        `yaml:"key_prefix"`
}

type AnswersConfig struct {
	Timeout           time.Duration `yaml:"timeout"`
	GenerationTimeout time.Duration `yaml:"generation_timeout"`
	Temperature       *float32      `yaml:"temperature"`
	MaxTokens         int           `yaml:"max_tokens"`
}

// Temperatures are pointers so that an explicit zero survives defaulting.
type PlansConfig struct {
	Timeout            time.Duration `yaml:"timeout"`
	Temperature        *float32      `yaml:"temperature"`
	MaxTokens          int           `yaml:"max_tokens"`
	RecentEvents       int           `yaml:"recent_events"`
	WorkoutTemperature *float32      `yaml:"workout_temperature"`
	WorkoutMaxTokens   int           `yaml:"workout_max_tokens"`
}

type PersonalizationConfig struct {
	Interval       time.Duration `yaml:"interval"`
	RunOnStart     bool          `yaml:"run_on_start"`
	Workers        int           `yaml:"workers"`
	RunDeadline    time.Duration `yaml:"run_deadline"`
	UserTimeout    time.Duration `yaml:"user_timeout"`
	LookbackWindow time.Duration `yaml:"lookback_window"`
	ProgressLimit  int           `yaml:"progress_limit"`
	TimeZone       string        `yaml:"time_zone"`
}
