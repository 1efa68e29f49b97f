// Package config loads server configuration from a YAML file with
// environment-variable overrides for secrets.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds everything the server needs at startup.
type Config struct {
	Server      Server      `yaml:"server"`
	Database    Database    `yaml:"database"`
	Resolver    Resolver    `yaml:"resolver"`
	Credentials Credentials `yaml:"credentials"`
	RenderProxy RenderProxy `yaml:"render_proxy"`
}

type Server struct {
	Addr      string `yaml:"addr"`
	JWTSecret string `yaml:"jwt_secret"`
}

type Database struct {
	Path string `yaml:"path"`
}

type Resolver struct {
	Timeout     time.Duration `yaml:"-"`
	Concurrency int           `yaml:"concurrency"`
	CacheTTL    time.Duration `yaml:"-"`
}

// UnmarshalYAML parses duration fields from strings like "5s" and keeps
// existing values for keys the file omits.
func (r *Resolver) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Timeout     string `yaml:"timeout"`
		Concurrency int    `yaml:"concurrency"`
		CacheTTL    string `yaml:"cache_ttl"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if raw.Timeout != "" {
		d, err := time.ParseDuration(raw.Timeout)
		if err != nil {
			return fmt.Errorf("resolver timeout: %w", err)
		}
		r.Timeout = d
	}
	if raw.Concurrency != 0 {
		r.Concurrency = raw.Concurrency
	}
	if raw.CacheTTL != "" {
		d, err := time.ParseDuration(raw.CacheTTL)
		if err != nil {
			return fmt.Errorf("resolver cache_ttl: %w", err)
		}
		r.CacheTTL = d
	}
	return nil
}

// Credentials holds per-platform provider API keys. An empty key
// disables that platform's provider tier.
type Credentials struct {
	Instagram string `yaml:"instagram"`
	Twitter   string `yaml:"twitter"`
	YouTube   string `yaml:"youtube"`
	TikTok    string `yaml:"tiktok"`
	LinkedIn  string `yaml:"linkedin"`
}

type RenderProxy struct {
	Endpoint string `yaml:"endpoint"`
	Key      string `yaml:"key"`
}

func defaultConfig() Config {
	return Config{
		Server:   Server{Addr: ":8080"},
		Database: Database{Path: "tracker.db"},
		Resolver: Resolver{
			Timeout:     15 * time.Second,
			Concurrency: 4,
			CacheTTL:    6 * time.Hour,
		},
	}
}

// Load reads the config file at path, falling back to defaults when the
// file does not exist. An empty path skips the file entirely.
// Environment variables override file values so secrets stay out of
// config files.
func Load(path string) (Config, error) {
	cfg := defaultConfig()

	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// Defaults plus environment only.
		case err != nil:
			return Config{}, fmt.Errorf("reading config: %w", err)
		default:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return Config{}, fmt.Errorf("parsing config: %w", err)
			}
		}
	}

	applyEnv(&cfg)

	if cfg.Resolver.Concurrency < 1 {
		return Config{}, fmt.Errorf("resolver concurrency must be positive, got %d", cfg.Resolver.Concurrency)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setIfEnv(&cfg.Server.Addr, "ADDR")
	setIfEnv(&cfg.Server.JWTSecret, "JWT_SECRET")
	setIfEnv(&cfg.Database.Path, "DB_PATH")
	setIfEnv(&cfg.RenderProxy.Endpoint, "RENDER_PROXY_URL")
	setIfEnv(&cfg.RenderProxy.Key, "RENDER_PROXY_KEY")
	setIfEnv(&cfg.Credentials.YouTube, "YOUTUBE_API_KEY")

	// One RapidAPI subscription typically covers all the RapidAPI-hosted
	// providers, so a single key fans out to any platform not already
	// configured individually.
	if shared := os.Getenv("RAPIDAPI_KEY"); shared != "" {
		for _, key := range []*string{
			&cfg.Credentials.Instagram,
			&cfg.Credentials.Twitter,
			&cfg.Credentials.TikTok,
			&cfg.Credentials.LinkedIn,
		} {
			if *key == "" {
				*key = shared
			}
		}
	}
	setIfEnv(&cfg.Credentials.Instagram, "INSTAGRAM_API_KEY")
	setIfEnv(&cfg.Credentials.Twitter, "TWITTER_API_KEY")
	setIfEnv(&cfg.Credentials.TikTok, "TIKTOK_API_KEY")
	setIfEnv(&cfg.Credentials.LinkedIn, "LINKEDIN_API_KEY")
}

func setIfEnv(dst *string, name string) {
	if v := os.Getenv(name); v != "" {
		*dst = v
	}
}
