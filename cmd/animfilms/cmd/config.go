package cmd

import (
	"animfilms-backend/lib/configutil"
	"animfilms-backend/lib/restyutil"
	"animfilms-backend/lib/scrapers/wikitable"
	"animfilms-backend/pkg/migrations"
	"animfilms-backend/services/films"
	filmsdb "animfilms-backend/services/films/db"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"
)

type DatabaseConfig struct {
	// Url is a sqlite path (`<dev_state>/...`, `:memory:`) or a libsql url.
	Url       string `json:"url" yaml:"url"`
	AuthToken string `json:"auth_token" yaml:"auth_token"`
}

type SourceConfig struct {
	Url      string                  `json:"url" yaml:"url"`
	Selector wikitable.TableSelector `json:"selector" yaml:"selector"`
}

type RefreshConfig struct {
	IntervalHours    int    `json:"interval_hours" yaml:"interval_hours"`
	TimeoutSeconds   int    `json:"timeout_seconds" yaml:"timeout_seconds"`
	UserAgent        string `json:"user_agent" yaml:"user_agent"`
	CloudflareBypass bool   `json:"cloudflare_bypass" yaml:"cloudflare_bypass"`
}

type HttpConfig struct {
	Port int `json:"port" yaml:"port"`
}

type Config struct {
	Database DatabaseConfig    `json:"database" yaml:"database"`
	Source   SourceConfig      `json:"source" yaml:"source"`
	Refresh  RefreshConfig     `json:"refresh" yaml:"refresh"`
	Http     HttpConfig        `json:"http" yaml:"http"`
	Email    films.EmailConfig `json:"email" yaml:"email"`
}

var defaultConfig = Config{
	Database: DatabaseConfig{
		Url: "<dev_state>/animfilms.db",
	},
	Source: SourceConfig{
		Url: films.DefaultSourceUrl,
	},
	Refresh: RefreshConfig{
		IntervalHours:  24,
		TimeoutSeconds: 30,
		UserAgent:      wikitable.DefaultUserAgent,
	},
	Http: HttpConfig{
		Port: 5000,
	},
}

const (
	envDatabaseUrl       = "ANIMFILMS_DATABASE_URL"
	envDatabaseAuthToken = "ANIMFILMS_DATABASE_AUTH_TOKEN"
)

// loadConfig reads the config file (a missing file means every default is
// used), the environment takes precedence over the file for the database.
func loadConfig(path string) (Config, error) {
	cfg, err := configutil.ReadConfig[Config](path)
	if errors.Is(err, os.ErrNotExist) {
		slog.Debug("config file not found, using defaults", "path", path)
		cfg = Config{}
	} else if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg, err = configutil.WithDefaults(cfg, defaultConfig)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	if url, ok := os.LookupEnv(envDatabaseUrl); ok && url != "" {
		cfg.Database.Url = url
	}
	if token, ok := os.LookupEnv(envDatabaseAuthToken); ok && token != "" {
		cfg.Database.AuthToken = token
	}
	return cfg, nil
}

func (c Config) RefreshInterval() time.Duration {
	return time.Duration(c.Refresh.IntervalHours) * time.Hour
}

func (c Config) OpenDB() (*sql.DB, error) {
	return migrations.OpenAndMigrateDB(filmsdb.Schema, c.Database.Url, c.Database.AuthToken)
}

func (c Config) NewFetcher(verbose bool) wikitable.HttpFetcher {
	opts := wikitable.HttpFetcherOptions{
		Timeout:          time.Duration(c.Refresh.TimeoutSeconds) * time.Second,
		UserAgent:        c.Refresh.UserAgent,
		CloudflareBypass: c.Refresh.CloudflareBypass,
	}
	if verbose {
		output, err := restyutil.NewFilesystemOutput("<dev_state>/resty/animfilms")
		if err != nil {
			slog.Warn("http exchanges will not be saved", "err", err)
		} else {
			opts.Output = output
		}
	}
	return wikitable.NewHttpFetcher(opts)
}

// Notifier returns nil when email isn't configured.
func (c Config) Notifier() films.Notifier {
	if !c.Email.Configured() {
		return nil
	}
	return films.NewEmailNotifier(c.Email)
}
