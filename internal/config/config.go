package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	App       AppConfig       `koanf:"app"`
	Database  DatabaseConfig  `koanf:"database"`
	Redis     RedisConfig     `koanf:"redis"`
	Auth      AuthConfig      `koanf:"auth"`
	Retention RetentionConfig `koanf:"retention"`
	CORS      CORSConfig      `koanf:"cors"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	Log       LogConfig       `koanf:"log"`
}

type AppConfig struct {
	AppName     string `koanf:"name"`
	Environment string `koanf:"env"`
	HTTPPort    string `koanf:"http_port"`
	Debug       bool   `koanf:"debug"`
}

type DatabaseConfig struct {
	DBHost     string `koanf:"host"`
	DBPort     string `koanf:"port"`
	DBName     string `koanf:"name"`
	DBUser     string `koanf:"user"`
	DBPassword string `koanf:"password"`
	DBSSLMode  string `koanf:"ssl_mode"`

	ConnectTimeout        time.Duration `koanf:"connect_timeout"`
	PoolMaxConns          int32         `koanf:"pool_max_conns"`
	PoolMinConns          int32         `koanf:"pool_min_conns"`
	PoolMaxConnLifetime   time.Duration `koanf:"pool_max_conn_lifetime"`
	PoolMaxConnIdleTime   time.Duration `koanf:"pool_max_conn_idle_time"`
	PoolHealthCheckPeriod time.Duration `koanf:"pool_health_check_period"`
}

type RedisConfig struct {
	Host            string        `koanf:"host"`
	Port            string        `koanf:"port"`
	Password        string        `koanf:"password"`
	DB              int           `koanf:"db"`
	SessionCacheTTL time.Duration `koanf:"session_cache_ttl"`
}

// AuthConfig keeps token lifetimes as strings because "7d" is accepted
// alongside plain seconds and Go durations.
type AuthConfig struct {
	JWTSecret        string `koanf:"jwt_secret"`
	JWTRefreshSecret string `koanf:"jwt_refresh_secret"`
	JWTExpiresIn     string `koanf:"jwt_expires_in"`
	RefreshExpiresIn string `koanf:"refresh_expires_in"`
	SessionTTL       string `koanf:"session_ttl"`
	BcryptRounds     int    `koanf:"bcrypt_rounds"`
	CookieName       string `koanf:"cookie_name"`
	CookieSecure     bool   `koanf:"cookie_secure"`
}

type RetentionConfig struct {
	ConversationDays int `koanf:"conversation_days"`
	AnalyticsDays    int `koanf:"analytics_days"`
}

type CORSConfig struct {
	AllowedOrigins []string `koanf:"allowed_origins"`
}

type RateLimitConfig struct {
	AuthMax    int           `koanf:"auth_max"`
	AuthWindow time.Duration `koanf:"auth_window"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

const ConfigPathEnvVar = "CONFIG_PATH"

var DefaultConfigPaths = []string{"config.yaml", "config.yml"}

var errMissingRequiredEnv = errors.New("missing required environment variables")

const defaultTokenLifetime = 7 * 24 * time.Hour

func defaultConfig() Config {
	return Config{
		App: AppConfig{
			Environment: "development",
		},
		Database: DatabaseConfig{
			DBHost:         "localhost",
			DBPort:         "5432",
			DBName:         "sandy",
			DBUser:         "postgres",
			DBSSLMode:      "disable",
			ConnectTimeout: 5 * time.Second,
			PoolMaxConns:   10,
		},
		Redis: RedisConfig{
			Host:            "localhost",
			Port:            "6379",
			SessionCacheTTL: 60 * time.Second,
		},
		Auth: AuthConfig{
			JWTExpiresIn:     "7d",
			RefreshExpiresIn: "30d",
			SessionTTL:       "7d",
			BcryptRounds:     12,
			CookieName:       "auth-token",
		},
		Retention: RetentionConfig{
			ConversationDays: 90,
			AnalyticsDays:    365,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		RateLimit: RateLimitConfig{
			AuthMax:    20,
			AuthWindow: time.Minute,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

var envKeys = map[string]string{
	"app_name":  "app.name",
	"app_env":   "app.env",
	"http_port": "app.http_port",
	"debug":     "app.debug",

	"db_host":                     "database.host",
	"db_port":                     "database.port",
	"db_name":                     "database.name",
	"db_user":                     "database.user",
	"db_password":                 "database.password",
	"db_ssl_mode":                 "database.ssl_mode",
	"db_connect_timeout":          "database.connect_timeout",
	"db_pool_max_conns":           "database.pool_max_conns",
	"db_pool_min_conns":           "database.pool_min_conns",
	"db_pool_max_conn_lifetime":   "database.pool_max_conn_lifetime",
	"db_pool_max_conn_idle_time":  "database.pool_max_conn_idle_time",
	"db_pool_health_check_period": "database.pool_health_check_period",

	"redis_host":              "redis.host",
	"redis_port":              "redis.port",
	"redis_password":          "redis.password",
	"redis_db":                "redis.db",
	"redis_session_cache_ttl": "redis.session_cache_ttl",

	"jwt_secret":         "auth.jwt_secret",
	"jwt_refresh_secret": "auth.jwt_refresh_secret",
	"jwt_expires_in":     "auth.jwt_expires_in",
	"refresh_expires_in": "auth.refresh_expires_in",
	"session_ttl":        "auth.session_ttl",
	"bcrypt_rounds":      "auth.bcrypt_rounds",
	"auth_cookie_name":   "auth.cookie_name",
	"auth_cookie_secure": "auth.cookie_secure",

	"conversation_retention_days": "retention.conversation_days",
	"analytics_retention_days":    "retention.analytics_days",

	"cors_allowed_origins": "cors.allowed_origins",

	"auth_rate_limit_max":    "rate_limit.auth_max",
	"auth_rate_limit_window": "rate_limit.auth_window",

	"log_level":  "log.level",
	"log_format": "log.format",
}

var sliceConfigPaths = []string{"cors.allowed_origins"}

func Load() (Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransform), nil); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}

	if err := splitSliceFields(k); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	var missing []string
	req := func(key, v string) {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, key)
		}
	}

	req("APP_NAME", c.App.AppName)
	req("HTTP_PORT", c.App.HTTPPort)
	req("JWT_SECRET", c.Auth.JWTSecret)

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}
	return nil
}

// AccessTokenTTL returns the configured JWT lifetime.
func (a AuthConfig) AccessTokenTTL() time.Duration {
	return ParseExpiresIn(a.JWTExpiresIn, defaultTokenLifetime)
}

func (a AuthConfig) RefreshTokenTTL() time.Duration {
	return ParseExpiresIn(a.RefreshExpiresIn, 30*24*time.Hour)
}

func (a AuthConfig) SessionLifetime() time.Duration {
	return ParseExpiresIn(a.SessionTTL, defaultTokenLifetime)
}

// RefreshSecret falls back to the access secret when no dedicated refresh
// secret is configured.
func (a AuthConfig) RefreshSecret() string {
	if strings.TrimSpace(a.JWTRefreshSecret) != "" {
		return a.JWTRefreshSecret
	}
	return a.JWTSecret
}

// ParseExpiresIn understands "<n>d", a plain number of seconds, or any
// time.ParseDuration string. Anything else yields fallback.
func ParseExpiresIn(raw string, fallback time.Duration) time.Duration {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}

	if strings.HasSuffix(raw, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(raw, "d"))
		if err != nil || days <= 0 {
			return fallback
		}
		return time.Duration(days) * 24 * time.Hour
	}

	if secs, err := strconv.Atoi(raw); err == nil {
		if secs <= 0 {
			return fallback
		}
		return time.Duration(secs) * time.Second
	}

	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func envTransform(key string) string {
	return envKeys[strings.ToLower(key)]
}

func findConfigFile() string {
	if p := strings.TrimSpace(os.Getenv(ConfigPathEnvVar)); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func splitSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		s, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if err := k.Set(path, out); err != nil {
			return fmt.Errorf("set %s: %w", path, err)
		}
	}
	return nil
}
