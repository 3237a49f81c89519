// Package config loads covercraft settings from a YAML or TOML file, a .env
// file and the environment, in that order of increasing precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/xob0t/covercraft/pkg/crop"
)

// Config is the full application configuration.
type Config struct {
	API     APIConfig     `yaml:"api" toml:"api"`
	Paths   PathsConfig   `yaml:"paths" toml:"paths"`
	Cache   CacheConfig   `yaml:"cache" toml:"cache"`
	Output  OutputConfig  `yaml:"output" toml:"output"`
	Server  ServerConfig  `yaml:"server" toml:"server"`
	Storage StorageConfig `yaml:"storage" toml:"storage"`
}

// APIConfig configures the image-synthesis service.
type APIConfig struct {
	BaseURL string        `yaml:"base_url" toml:"base_url"`
	Model   string        `yaml:"model" toml:"model"`
	Key     string        `yaml:"key" toml:"key"`
	Quality string        `yaml:"quality" toml:"quality"`
	Timeout time.Duration `yaml:"timeout" toml:"timeout"`
}

// PathsConfig holds filesystem locations.
type PathsConfig struct {
	Templates string   `yaml:"templates" toml:"templates"`
	Output    string   `yaml:"output" toml:"output"`
	Fonts     []string `yaml:"fonts" toml:"fonts"`
	Project   string   `yaml:"project" toml:"project"`
}

// CacheConfig selects the synthesis cache.
type CacheConfig struct {
	Driver        string        `yaml:"driver" toml:"driver"` // none, file, redis
	Dir           string        `yaml:"dir" toml:"dir"`
	RedisAddr     string        `yaml:"redis_addr" toml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password" toml:"redis_password"`
	RedisDB       int           `yaml:"redis_db" toml:"redis_db"`
	TTL           time.Duration `yaml:"ttl" toml:"ttl"`
}

// OutputConfig controls which artifacts are produced.
type OutputConfig struct {
	Presets   []string `yaml:"presets" toml:"presets"`
	Modes     []string `yaml:"modes" toml:"modes"`
	ShareCard bool     `yaml:"share_card" toml:"share_card"`
	Preview   bool     `yaml:"preview" toml:"preview"`
	Quality   int      `yaml:"quality" toml:"quality"`
	Workers   int      `yaml:"workers" toml:"workers"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr           string `yaml:"addr" toml:"addr"`
	WatchTemplates bool   `yaml:"watch_templates" toml:"watch_templates"`
}

// StorageConfig configures S3 publishing. Empty bucket disables it.
type StorageConfig struct {
	Endpoint  string `yaml:"endpoint" toml:"endpoint"`
	Region    string `yaml:"region" toml:"region"`
	Bucket    string `yaml:"bucket" toml:"bucket"`
	AccessKey string `yaml:"access_key" toml:"access_key"`
	SecretKey string `yaml:"secret_key" toml:"secret_key"`
	PublicURL string `yaml:"public_url" toml:"public_url"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "https://ark.cn-beijing.volces.com/api/v3",
			Model:   "doubao-seedream-4-5-251128",
			Quality: "hd",
			Timeout: 60 * time.Second,
		},
		Paths: PathsConfig{Output: "output"},
		Cache: CacheConfig{Driver: "none", TTL: 7 * 24 * time.Hour},
		Output: OutputConfig{
			Presets:   []string{"wechat-cover"},
			Modes:     []string{"center", "golden_ratio", "smart"},
			ShareCard: true,
			Preview:   true,
			Quality:   95,
			Workers:   1,
		},
		Server: ServerConfig{Addr: ":8080"},
	}
}

// Load builds the configuration. path may be empty for defaults only; its
// extension selects YAML (.yaml, .yml) or TOML (.toml). A .env file in the
// working directory is loaded first when present, and the environment
// overrides both.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	if path != "" {
		if err := cfg.decodeFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) decodeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parse config %s: %w", path, err)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), c); err != nil {
			return fmt.Errorf("parse config %s: %w", path, err)
		}
	default:
		return fmt.Errorf("config %s: unsupported format %q (use .yaml or .toml)", path, ext)
	}
	return nil
}

// applyEnv overrides file values with environment variables.
func (c *Config) applyEnv() {
	c.API.Key = envOrDefault("COVERCRAFT_API_KEY", envOrDefault("DOUBAO_API_KEY", c.API.Key))
	c.API.BaseURL = envOrDefault("COVERCRAFT_API_BASE_URL", c.API.BaseURL)
	c.API.Model = envOrDefault("COVERCRAFT_MODEL", c.API.Model)
	c.Cache.RedisAddr = envOrDefault("COVERCRAFT_REDIS_ADDR", c.Cache.RedisAddr)
	c.Cache.RedisPassword = envOrDefault("COVERCRAFT_REDIS_PASSWORD", c.Cache.RedisPassword)
	c.Paths.Output = envOrDefault("COVERCRAFT_OUTPUT_DIR", c.Paths.Output)
	c.Paths.Templates = envOrDefault("COVERCRAFT_TEMPLATES_DIR", c.Paths.Templates)
	c.Storage.AccessKey = envOrDefault("COVERCRAFT_S3_ACCESS_KEY", c.Storage.AccessKey)
	c.Storage.SecretKey = envOrDefault("COVERCRAFT_S3_SECRET_KEY", c.Storage.SecretKey)
	if v := os.Getenv("COVERCRAFT_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Output.Workers = n
		}
	}
}

// Validate returns the first problem found.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive")
	}
	if c.Paths.Output == "" {
		return fmt.Errorf("paths.output is required")
	}
	switch c.Cache.Driver {
	case "", "none":
	case "file":
		if c.Cache.Dir == "" {
			return fmt.Errorf("cache.dir is required for the file cache")
		}
	case "redis":
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("cache.redis_addr is required for the redis cache")
		}
	default:
		return fmt.Errorf("cache.driver %q is not one of none, file, redis", c.Cache.Driver)
	}
	for _, p := range c.Output.Presets {
		if _, err := crop.ParseTarget(p); err != nil {
			return fmt.Errorf("output.presets: %w", err)
		}
	}
	for _, m := range c.Output.Modes {
		if m == "all" {
			continue
		}
		if _, err := crop.ParseMode(m); err != nil {
			return fmt.Errorf("output.modes: %w", err)
		}
	}
	if c.Output.Quality < 1 || c.Output.Quality > 100 {
		return fmt.Errorf("output.quality must be between 1 and 100")
	}
	if c.Output.Workers < 0 {
		return fmt.Errorf("output.workers must not be negative")
	}
	if c.Storage.Bucket != "" && (c.Storage.AccessKey == "" || c.Storage.SecretKey == "") {
		return fmt.Errorf("storage.bucket is set but credentials are missing")
	}
	return nil
}

// Modes returns the configured crop modes, expanding "all".
func (c *Config) Modes() []crop.Mode {
	var out []crop.Mode
	for _, m := range c.Output.Modes {
		if m == "all" {
			out = append(out, crop.DefaultModes...)
			continue
		}
		out = append(out, crop.Mode(m))
	}
	return out
}

// HasAPIKey reports whether background synthesis can be attempted.
func (c *Config) HasAPIKey() bool { return strings.TrimSpace(c.API.Key) != "" }

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
