package config

import (
	"flag"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/ozzus/fan-predict/internal/domain/models"
)

const writeMargin = 5 * time.Second

type Config struct {
	Env       string          `yaml:"env" env:"ENV" env-default:"local"`
	Jaeger    string          `yaml:"jaeger" env:"JAEGER" env-default:"jaeger"`
	Log       LogConfig       `yaml:"log"`
	HTTP      HTTPConfig      `yaml:"http"`
	GRPC      GRPCConfig      `yaml:"grpc"`
	DB        DBConfig        `yaml:"db"`
	Redis     RedisConfig     `yaml:"redis"`
	Provider  ProviderConfig  `yaml:"provider"`
	Limits    LimitsConfig    `yaml:"limits"`
	Cache     CacheConfig     `yaml:"cache"`
	Poller    PollerConfig    `yaml:"poller"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Persist   PersistConfig   `yaml:"persist"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

type HTTPConfig struct {
	Host            string        `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port            int           `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT" env-default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT" env-default:"30s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"10s"`
	CORSOrigins     []string      `yaml:"cors_origins" env:"HTTP_CORS_ORIGINS" env-default:"*"`
}

type GRPCConfig struct {
	Host string `yaml:"host" env:"GRPC_HOST"`
	Port int    `yaml:"port" env:"GRPC_PORT" env-default:"50051"`
}

type DBConfig struct {
	DSN      string `yaml:"dsn" env:"DB_DSN"`
	Host     string `yaml:"host" env:"DB_HOST"`
	Port     int    `yaml:"port" env:"DB_PORT"`
	User     string `yaml:"user" env:"DB_USER"`
	Password string `yaml:"password" env:"DB_PASSWORD"`
	Name     string `yaml:"name" env:"DB_NAME"`
	SSLMode  string `yaml:"sslmode" env:"DB_SSLMODE" env-default:"require"`
}

func (c DBConfig) Enabled() bool {
	return c.DSN != "" || c.Host != ""
}

func (c DBConfig) DatabaseURL() string {
	if c.DSN != "" {
		return c.DSN
	}

	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "require"
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   c.Name,
	}

	q := u.Query()
	q.Set("sslmode", sslMode)
	u.RawQuery = q.Encode()

	return u.String()
}

type RedisConfig struct {
	Addr          string `yaml:"addr" env:"REDIS_ADDR"`
	Password      string `yaml:"password" env:"REDIS_PASSWORD"`
	DB            int    `yaml:"db" env:"REDIS_DB"`
	ChannelPrefix string `yaml:"channel_prefix" env:"REDIS_CHANNEL_PREFIX" env-default:"matches:"`
}

type ProviderConfig struct {
	Name    string        `yaml:"name" env:"PROVIDER_NAME" env-default:"football-data"`
	BaseURL string        `yaml:"base_url" env:"PROVIDER_BASE_URL" env-default:"https://api.football-data.org/v4"`
	APIKey  string        `yaml:"api_key" env:"PROVIDER_API_KEY"`
	Timeout time.Duration `yaml:"timeout" env:"PROVIDER_TIMEOUT" env-default:"10s"`
}

type LimitsConfig struct {
	PerMinute         int           `yaml:"per_minute" env:"LIMITS_PER_MINUTE" env-default:"9"`
	Window            time.Duration `yaml:"window" env:"LIMITS_WINDOW" env-default:"60s"`
	RateLimitCooldown time.Duration `yaml:"rate_limit_cooldown" env:"LIMITS_RATE_LIMIT_COOLDOWN" env-default:"60s"`
	SuspendCooldown   time.Duration `yaml:"suspend_cooldown" env:"LIMITS_SUSPEND_COOLDOWN" env-default:"30m"`
	UpstreamTimeout   time.Duration `yaml:"upstream_timeout" env:"LIMITS_UPSTREAM_TIMEOUT" env-default:"3m"`
}

type CacheConfig struct {
	LiveTTL           time.Duration `yaml:"live_ttl" env:"CACHE_LIVE_TTL" env-default:"30s"`
	DefaultTTL        time.Duration `yaml:"default_ttl" env:"CACHE_DEFAULT_TTL" env-default:"180s"`
	StaleTTL          time.Duration `yaml:"stale_ttl" env:"CACHE_STALE_TTL" env-default:"1h"`
	SingleTTL         time.Duration `yaml:"single_ttl" env:"CACHE_SINGLE_TTL" env-default:"600s"`
	DefaultWindowDays int           `yaml:"default_window_days" env:"CACHE_DEFAULT_WINDOW_DAYS" env-default:"3"`
}

type PollerConfig struct {
	Enabled  bool          `yaml:"enabled" env:"POLLER_ENABLED" env-default:"true"`
	Interval time.Duration `yaml:"interval" env:"POLLER_INTERVAL" env-default:"60s"`
}

type TelemetryConfig struct {
	FlushThreshold int           `yaml:"flush_threshold" env:"TELEMETRY_FLUSH_THRESHOLD" env-default:"5"`
	FlushInterval  time.Duration `yaml:"flush_interval" env:"TELEMETRY_FLUSH_INTERVAL" env-default:"30s"`
}

type PersistConfig struct {
	QueueSize int           `yaml:"queue_size" env:"PERSIST_QUEUE_SIZE" env-default:"64"`
	Timeout   time.Duration `yaml:"timeout" env:"PERSIST_TIMEOUT" env-default:"5s"`
}

// Fallback is used whenever no active provider row can be read from the database.
func (c ProviderConfig) Fallback() models.ProviderConfig {
	return models.ProviderConfig{
		Name:     strings.TrimSpace(c.Name),
		BaseURL:  strings.TrimSpace(c.BaseURL),
		APIKey:   strings.TrimSpace(c.APIKey),
		Enabled:  true,
		IsActive: true,
	}
}

func MustLoad() *Config {
	_ = godotenv.Load()

	path := fetchConfigPath()
	if path == "" {
		panic("config path is empty")
	}
	return MustLoadByPath(path)
}

func MustLoadByPath(configPath string) *Config {
	cfg, err := LoadByPath(configPath)
	if err != nil {
		panic(err.Error())
	}
	return cfg
}

// LoadByPath reads the yaml file when it exists and env variables otherwise.
func LoadByPath(configPath string) (*Config, error) {
	var cfg Config

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("cannot read the env config: %w", err)
		}
		cfg.alignTimeouts()
		return &cfg, nil
	}

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("cannot read the config: %w", err)
	}

	cfg.alignTimeouts()
	return &cfg, nil
}

// alignTimeouts keeps one guarded provider call (limiter wait, attempt,
// 429 cooldown, retry) inside the upstream budget, and that budget inside
// the HTTP write deadline.
func (c *Config) alignTimeouts() {
	minUpstream := c.Limits.RateLimitCooldown + c.Limits.Window + 2*c.Provider.Timeout
	if c.Limits.UpstreamTimeout < minUpstream {
		c.Limits.UpstreamTimeout = minUpstream
	}
	if minWrite := c.Limits.UpstreamTimeout + writeMargin; c.HTTP.WriteTimeout < minWrite {
		c.HTTP.WriteTimeout = minWrite
	}
}

func fetchConfigPath() string {
	var res string

	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}
	if res == "" {
		res = "config/local.yaml"
	}

	return res
}
