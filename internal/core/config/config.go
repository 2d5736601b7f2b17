package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const defaultConfigPath = "./configs/config.yaml"

type HTTP struct {
	Host               string   `mapstructure:"host"`
	Port               int      `mapstructure:"port"`
	ReadTimeoutSec     int      `mapstructure:"read_timeout_sec"`
	WriteTimeoutSec    int      `mapstructure:"write_timeout_sec"`
	IdleTimeoutSec     int      `mapstructure:"idle_timeout_sec"`
	RequestTimeoutSec  int      `mapstructure:"request_timeout_sec"`
	MaxBodyBytes       int64    `mapstructure:"max_body_bytes"`
	MaxConcurrent      int64    `mapstructure:"max_concurrent"`
	RateLimitRPS       float64  `mapstructure:"rate_limit_rps"`
	RateLimitBurst     int      `mapstructure:"rate_limit_burst"`
	AuthRateLimitRPS   float64  `mapstructure:"auth_rate_limit_rps"`
	AuthRateLimitBurst int      `mapstructure:"auth_rate_limit_burst"`
	CORSOrigins        []string `mapstructure:"cors_origins"`
}

type App struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	HTTP HTTP   `mapstructure:"http"`
}

type FileRotate struct {
	Enable     bool   `mapstructure:"enable"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

type Log struct {
	Level  string     `mapstructure:"level"`
	JSON   bool       `mapstructure:"json"`
	Rotate FileRotate `mapstructure:"rotate"`
}

type Auth struct {
	JWTSecret        string `mapstructure:"jwt_secret"`
	Issuer           string `mapstructure:"issuer"`
	AccessExpiresIn  string `mapstructure:"access_expires_in"`
	RefreshExpiresIn string `mapstructure:"refresh_expires_in"`
	BcryptCost       int    `mapstructure:"bcrypt_cost"`
	LeewaySec        int    `mapstructure:"leeway_sec"`
}

func (a Auth) AccessTTL() (time.Duration, error)  { return ParseExpiry(a.AccessExpiresIn) }
func (a Auth) RefreshTTL() (time.Duration, error) { return ParseExpiry(a.RefreshExpiresIn) }
func (a Auth) Leeway() time.Duration              { return time.Duration(a.LeewaySec) * time.Second }

type Redis struct {
	Addr       string `mapstructure:"addr"`
	Password   string `mapstructure:"password"`
	DB         int    `mapstructure:"db"`
	UserTTLSec int    `mapstructure:"user_ttl_sec"`
}

func (r Redis) Enabled() bool { return r.Addr != "" }

type DB struct {
	Driver             string `mapstructure:"driver"`
	DSN                string `mapstructure:"dsn"`
	Username           string `mapstructure:"username"`
	Password           string `mapstructure:"password"`
	MaxOpenConns       int    `mapstructure:"max_open_conns"`
	MaxIdleConns       int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeMin int    `mapstructure:"conn_max_lifetime_min"`
	AutoMigrate        bool   `mapstructure:"auto_migrate"`
	LogLevel           string `mapstructure:"log_level"`
	SlowThresholdMs    int    `mapstructure:"slow_threshold_ms"`
}

type Tracing struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

type Seed struct {
	AdminEmail    string `mapstructure:"admin_email"`
	AdminPassword string `mapstructure:"admin_password"`
	AdminName     string `mapstructure:"admin_name"`
	AdminBio      string `mapstructure:"admin_bio"`
}

type Config struct {
	App     App     `mapstructure:"app"`
	Log     Log     `mapstructure:"log"`
	Auth    Auth    `mapstructure:"auth"`
	DB      DB      `mapstructure:"db"`
	Redis   Redis   `mapstructure:"redis"`
	Tracing Tracing `mapstructure:"tracing"`
	Seed    Seed    `mapstructure:"seed"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "accounts")
	v.SetDefault("app.env", "dev")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 3000)
	v.SetDefault("app.http.read_timeout_sec", 5)
	v.SetDefault("app.http.write_timeout_sec", 10)
	v.SetDefault("app.http.idle_timeout_sec", 60)
	v.SetDefault("app.http.request_timeout_sec", 10)
	v.SetDefault("app.http.max_body_bytes", 1<<20)
	v.SetDefault("app.http.max_concurrent", 300)
	v.SetDefault("app.http.rate_limit_rps", 200)
	v.SetDefault("app.http.rate_limit_burst", 400)
	v.SetDefault("app.http.auth_rate_limit_rps", 5)
	v.SetDefault("app.http.auth_rate_limit_burst", 10)
	v.SetDefault("app.http.cors_origins", []string{"*"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("log.rotate.enable", false)
	v.SetDefault("log.rotate.filename", "logs/accounts.log")
	v.SetDefault("log.rotate.max_size_mb", 100)
	v.SetDefault("log.rotate.max_backups", 7)
	v.SetDefault("log.rotate.max_age_days", 30)
	v.SetDefault("log.rotate.compress", true)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "")
	v.SetDefault("auth.access_expires_in", "15m")
	v.SetDefault("auth.refresh_expires_in", "7d")
	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("auth.leeway_sec", 0)

	v.SetDefault("db.driver", "postgres")
	v.SetDefault("db.dsn", "")
	v.SetDefault("db.username", "")
	v.SetDefault("db.password", "")
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime_min", 30)
	v.SetDefault("db.auto_migrate", true)
	v.SetDefault("db.log_level", "warn")
	v.SetDefault("db.slow_threshold_ms", 200)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.user_ttl_sec", 60)

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.endpoint", "localhost:4317")

	v.SetDefault("seed.admin_email", "admin@example.com")
	v.SetDefault("seed.admin_password", "")
	v.SetDefault("seed.admin_name", "Super Admin")
	v.SetDefault("seed.admin_bio", "Administrator account created by seed")
}

// legacyEnv keeps the variable names of existing deployments working.
var legacyEnv = map[string]string{
	"auth.jwt_secret":         "JWT_SECRET",
	"auth.access_expires_in":  "JWT_ACCESS_EXPIRES_IN",
	"auth.refresh_expires_in": "JWT_REFRESH_EXPIRES_IN",
	"auth.bcrypt_cost":        "BCRYPT_SALT",
	"app.http.port":           "PORT",
	"db.dsn":                  "DATABASE_URL",
}

// Load reads defaults, then the YAML file at path (CONFIG_PATH, or ./configs/config.yaml
// when present), then APP_* environment variables, then the legacy names.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	explicit := path != ""
	if !explicit {
		if path = os.Getenv("CONFIG_PATH"); path != "" {
			explicit = true
		} else {
			path = defaultConfigPath
		}
	}
	if _, err := os.Stat(path); err == nil || explicit {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		if val, ok := os.LookupEnv(env); ok && val != "" {
			if _, prefixed := os.LookupEnv("APP_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))); !prefixed {
				v.Set(key, val)
			}
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		errs = append(errs, errors.New("auth.jwt_secret is required"))
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("auth.bcrypt_cost must be within [4,31], got %d", c.Auth.BcryptCost))
	}
	if _, err := c.Auth.AccessTTL(); err != nil {
		errs = append(errs, fmt.Errorf("auth.access_expires_in: %w", err))
	}
	if _, err := c.Auth.RefreshTTL(); err != nil {
		errs = append(errs, fmt.Errorf("auth.refresh_expires_in: %w", err))
	}
	switch c.DB.Driver {
	case "postgres", "mysql", "memory":
	default:
		errs = append(errs, fmt.Errorf("db.driver %q is not supported", c.DB.Driver))
	}
	return errors.Join(errs...)
}
