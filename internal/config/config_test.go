package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, EngineOPA, cfg.AuthzEngine)
	assert.Equal(t, DriverPostgres, cfg.CasbinDBDriver)
	assert.Equal(t, 12*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "Asia/Kolkata", cfg.Timezone)
	assert.Empty(t, cfg.FeedAllowedOrigins)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("POSTGRES_USER", "canteen")
	t.Setenv("POSTGRES_PASSWORD", "p@ss word")
	t.Setenv("POSTGRES_HOST", "db:5432")
	t.Setenv("POSTGRES_DB", "canteen_admin")
	t.Setenv("POSTGRES_SSL", "require")
	t.Setenv("TOKEN_TTL", "30m")
	t.Setenv("AUTHZ_ENGINE", "Casbin")
	t.Setenv("CASBIN_DB_DRIVER", "mysql")
	t.Setenv("MYSQL_USER", "root")
	t.Setenv("MYSQL_PASSWORD", "secret")
	t.Setenv("MYSQL_HOST", "mysql")
	t.Setenv("FEED_ALLOWED_ORIGINS", "https://admin.campus.edu, http://localhost:3000")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 30*time.Minute, cfg.TokenTTL)
	assert.Equal(t, EngineCasbin, cfg.AuthzEngine)
	assert.Equal(t, DriverMySQL, cfg.CasbinDBDriver)
	assert.Equal(t, []string{"https://admin.campus.edu", "http://localhost:3000"}, cfg.FeedAllowedOrigins)
	assert.Equal(t, "postgres://canteen:p%40ss%20word@db:5432/canteen_admin?sslmode=require", cfg.PostgresURL())
	assert.Contains(t, cfg.MySQLDSN(), "root:secret@tcp(mysql:3306)/casbin?")
	assert.Contains(t, cfg.MySQLDSN(), "parseTime=true")
	assert.Equal(t, "DEBUG", cfg.Level().String())
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: \"7070\"\ntimezone: UTC\njwt_issuer: campus\n"), 0o600))

	t.Setenv("JWT_ISSUER", "env-issuer")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Port)
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.Equal(t, "env-issuer", cfg.JWTIssuer)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]struct {
		env     map[string]string
		file    string
		wantErr string
	}{
		"unknown engine": {
			env:     map[string]string{"AUTHZ_ENGINE": "xacml"},
			wantErr: `authz_engine must be "casbin" or "opa", got "xacml"`,
		},
		"unknown casbin driver": {
			env:     map[string]string{"CASBIN_DB_DRIVER": "sqlite"},
			wantErr: `casbin_db_driver must be "postgres" or "mysql", got "sqlite"`,
		},
		"unknown timezone": {
			env:     map[string]string{"TIMEZONE": "Mars/Olympus"},
			wantErr: "timezone",
		},
		"non positive ttl": {
			env:     map[string]string{"TOKEN_TTL": "0s"},
			wantErr: "token_ttl must be positive",
		},
		"bad log level": {
			env:     map[string]string{"LOG_LEVEL": "loud"},
			wantErr: "log_level",
		},
		"missing config file": {
			file:    filepath.Join(os.TempDir(), "does-not-exist", "config.yaml"),
			wantErr: "read config",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			_, err := Load(tc.file)
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}
