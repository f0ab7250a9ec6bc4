// Package config loads the service settings from the environment and an optional config file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/spf13/viper"
)

const (
	EngineCasbin = "casbin"
	EngineOPA    = "opa"

	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// Config holds every setting of the service. Keys match the environment variable names in lower case.
type Config struct {
	Port string `mapstructure:"port"`

	PostgresUser     string `mapstructure:"postgres_user"`
	PostgresPassword string `mapstructure:"postgres_password"`
	PostgresHost     string `mapstructure:"postgres_host"`
	PostgresDB       string `mapstructure:"postgres_db"`
	PostgresSSL      string `mapstructure:"postgres_ssl"`

	JWTIssuer        string        `mapstructure:"jwt_issuer"`
	JWTAudience      string        `mapstructure:"jwt_audience"`
	PrivateKeyBase64 string        `mapstructure:"private_key_base64"`
	PublicKeyBase64  string        `mapstructure:"public_key_base64"`
	PrivateKeyFile   string        `mapstructure:"private_key_file"`
	PublicKeyFile    string        `mapstructure:"public_key_file"`
	TokenTTL         time.Duration `mapstructure:"token_ttl"`

	AuthzEngine    string `mapstructure:"authz_engine"`
	CasbinDBDriver string `mapstructure:"casbin_db_driver"`
	MySQLUser      string `mapstructure:"mysql_user"`
	MySQLPassword  string `mapstructure:"mysql_password"`
	MySQLHost      string `mapstructure:"mysql_host"`
	MySQLPort      string `mapstructure:"mysql_port"`
	MySQLDB        string `mapstructure:"mysql_db"`
	OPAPolicyFile  string `mapstructure:"opa_policy_file"`

	Timezone           string   `mapstructure:"timezone"`
	LogLevel           string   `mapstructure:"log_level"`
	FeedAllowedOrigins []string `mapstructure:"feed_allowed_origins"`
}

var defaults = map[string]any{
	"port":                 "8080",
	"postgres_user":        "",
	"postgres_password":    "",
	"postgres_host":        "localhost:5432",
	"postgres_db":          "canteen",
	"postgres_ssl":         "disable",
	"jwt_issuer":           "canteen-admin",
	"jwt_audience":         "canteen-dashboard",
	"private_key_base64":   "",
	"public_key_base64":    "",
	"private_key_file":     "",
	"public_key_file":      "",
	"token_ttl":            "12h",
	"authz_engine":         EngineOPA,
	"casbin_db_driver":     DriverPostgres,
	"mysql_user":           "",
	"mysql_password":       "",
	"mysql_host":           "localhost",
	"mysql_port":           "3306",
	"mysql_db":             "casbin",
	"opa_policy_file":      "",
	"timezone":             "Asia/Kolkata",
	"log_level":            "info",
	"feed_allowed_origins": []string{},
}

// Load reads the configuration. Environment variables override values from configFile, which may be empty.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	cfg := new(Config)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.AuthzEngine = strings.ToLower(cfg.AuthzEngine)
	cfg.CasbinDBDriver = strings.ToLower(cfg.CasbinDBDriver)
	cfg.FeedAllowedOrigins = splitList(cfg.FeedAllowedOrigins)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the settings that have a fixed set of values
func (c *Config) Validate() error {
	var errs []error

	switch c.AuthzEngine {
	case EngineCasbin, EngineOPA:
	default:
		errs = append(errs, fmt.Errorf("authz_engine must be %q or %q, got %q", EngineCasbin, EngineOPA, c.AuthzEngine))
	}

	switch c.CasbinDBDriver {
	case DriverPostgres, DriverMySQL:
	default:
		errs = append(errs, fmt.Errorf("casbin_db_driver must be %q or %q, got %q", DriverPostgres, DriverMySQL, c.CasbinDBDriver))
	}

	if c.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("token_ttl must be positive, got %s", c.TokenTTL))
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}

	return errors.Join(errs...)
}

// PostgresURL returns the pgx connection string
func (c *Config) PostgresURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.PostgresUser, c.PostgresPassword),
		Host:     c.PostgresHost,
		Path:     "/" + c.PostgresDB,
		RawQuery: url.Values{"sslmode": []string{c.PostgresSSL}}.Encode(),
	}
	return u.String()
}

// MySQLDSN returns the DSN of the MySQL database holding casbin policies
func (c *Config) MySQLDSN() string {
	m := mysql.NewConfig()
	m.User = c.MySQLUser
	m.Passwd = c.MySQLPassword
	m.Net = "tcp"
	m.Addr = net.JoinHostPort(c.MySQLHost, c.MySQLPort)
	m.DBName = c.MySQLDB
	m.ParseTime = true
	return m.FormatDSN()
}

// Location returns the time zone used for dashboard months and export dates
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// Level returns the configured log level, info when unset or invalid
func (c *Config) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// splitList flattens comma separated entries, which is how list values arrive from the environment
func splitList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
