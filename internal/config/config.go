package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/zerozero-0-0/portfolio/internal/validation"
)

// CacheTTL is how long upstream data stays fresh.
const CacheTTL = 7 * 24 * time.Hour

// Cache backends understood by storage.Open.
const (
	BackendBolt   = "bolt"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	GitHub  GitHubConfig  `mapstructure:"github"`
	AtCoder AtCoderConfig `mapstructure:"atcoder"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Blog    BlogConfig    `mapstructure:"blog"`
	Log     LogConfig     `mapstructure:"log"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
}

type GitHubConfig struct {
	Username    string        `mapstructure:"username"`
	Token       string        `mapstructure:"token"`
	APIBaseURL  string        `mapstructure:"api_base_url"`
	BatchSize   int           `mapstructure:"batch_size"`
	UserAgent   string        `mapstructure:"user_agent"`
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`
}

type AtCoderConfig struct {
	Username    string        `mapstructure:"username"`
	BaseURL     string        `mapstructure:"base_url"`
	UserAgent   string        `mapstructure:"user_agent"`
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`
}

type CacheConfig struct {
	Backend       string        `mapstructure:"backend"`
	TTL           time.Duration `mapstructure:"ttl"`
	BoltPath      string        `mapstructure:"bolt_path"`
	BoltTimeout   time.Duration `mapstructure:"bolt_timeout"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
}

type BlogConfig struct {
	// ContentDir holds *.md articles; empty means the embedded snapshot.
	ContentDir string `mapstructure:"content_dir"`
	// SiteURL is used for absolute links in the RSS feed.
	SiteURL   string `mapstructure:"site_url"`
	SiteTitle string `mapstructure:"site_title"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

func defaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Server: ServerConfig{
			Addr:            ":8787",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			AllowedOrigins:  []string{"http://localhost:5173"},
		},
		GitHub: GitHubConfig{
			APIBaseURL:  "https://api.github.com",
			BatchSize:   5,
			UserAgent:   "portfolio/1.0 (language usage; github.com/zerozero-0-0/portfolio)",
			HTTPTimeout: 30 * time.Second,
		},
		AtCoder: AtCoderConfig{
			BaseURL:     "https://atcoder.jp",
			UserAgent:   "portfolio/1.0 (rating widget; github.com/zerozero-0-0/portfolio)",
			HTTPTimeout: 30 * time.Second,
		},
		Cache: CacheConfig{
			Backend:     BackendBolt,
			TTL:         CacheTTL,
			BoltPath:    filepath.Join(homeDir, ".portfolio", "cache.db"),
			BoltTimeout: 1 * time.Second,
			RedisAddr:   "localhost:6379",
		},
		Blog: BlogConfig{
			SiteURL:   "http://localhost:5173",
			SiteTitle: "zerozero blog",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// setDefaults registers every leaf key so AutomaticEnv can resolve nested
// keys such as PORTFOLIO_GITHUB_TOKEN.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("server.addr", cfg.Server.Addr)
	v.SetDefault("server.read_timeout", cfg.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", cfg.Server.WriteTimeout)
	v.SetDefault("server.shutdown_timeout", cfg.Server.ShutdownTimeout)
	v.SetDefault("server.allowed_origins", cfg.Server.AllowedOrigins)

	v.SetDefault("github.username", cfg.GitHub.Username)
	v.SetDefault("github.token", cfg.GitHub.Token)
	v.SetDefault("github.api_base_url", cfg.GitHub.APIBaseURL)
	v.SetDefault("github.batch_size", cfg.GitHub.BatchSize)
	v.SetDefault("github.user_agent", cfg.GitHub.UserAgent)
	v.SetDefault("github.http_timeout", cfg.GitHub.HTTPTimeout)

	v.SetDefault("atcoder.username", cfg.AtCoder.Username)
	v.SetDefault("atcoder.base_url", cfg.AtCoder.BaseURL)
	v.SetDefault("atcoder.user_agent", cfg.AtCoder.UserAgent)
	v.SetDefault("atcoder.http_timeout", cfg.AtCoder.HTTPTimeout)

	v.SetDefault("cache.backend", cfg.Cache.Backend)
	v.SetDefault("cache.ttl", cfg.Cache.TTL)
	v.SetDefault("cache.bolt_path", cfg.Cache.BoltPath)
	v.SetDefault("cache.bolt_timeout", cfg.Cache.BoltTimeout)
	v.SetDefault("cache.redis_addr", cfg.Cache.RedisAddr)
	v.SetDefault("cache.redis_password", cfg.Cache.RedisPassword)
	v.SetDefault("cache.redis_db", cfg.Cache.RedisDB)

	v.SetDefault("blog.content_dir", cfg.Blog.ContentDir)
	v.SetDefault("blog.site_url", cfg.Blog.SiteURL)
	v.SetDefault("blog.site_title", cfg.Blog.SiteTitle)

	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.file", cfg.Log.File)
}

// bindLegacyEnv maps the variable names used by the deployment scripts.
func bindLegacyEnv(v *viper.Viper) error {
	bindings := map[string][]string{
		"github.username":        {"PORTFOLIO_GITHUB_USERNAME", "GITHUB_USERNAME"},
		"github.token":           {"PORTFOLIO_GITHUB_TOKEN", "LANG_USAGE_TOKEN"},
		"atcoder.username":       {"PORTFOLIO_ATCODER_USERNAME", "ATCODER_USERNAME"},
		"server.allowed_origins": {"PORTFOLIO_SERVER_ALLOWED_ORIGINS", "ALLOWED_ORIGINS"},
	}
	for key, envs := range bindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return fmt.Errorf("binding env for %s: %w", key, err)
		}
	}
	return nil
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v, defaultConfig())

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		homeDir, _ := os.UserHomeDir()
		configDir := filepath.Join(homeDir, ".config", "portfolio")

		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(configDir)
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("PORTFOLIO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := bindLegacyEnv(v); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	config.Server.AllowedOrigins = splitOrigins(config.Server.AllowedOrigins)
	expandPaths(&config)

	return &config, nil
}

// splitOrigins flattens comma-separated entries, which is how origins arrive
// from a single environment variable.
func splitOrigins(in []string) []string {
	var out []string
	for _, entry := range in {
		for _, part := range strings.Split(entry, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// Validate checks cross-field constraints and normalizes allowed origins.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case BackendBolt:
		if c.Cache.BoltPath == "" {
			return fmt.Errorf("cache.bolt_path is required for the bolt backend")
		}
	case BackendRedis:
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("cache.redis_addr is required for the redis backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}

	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive, got %v", c.Cache.TTL)
	}
	if c.GitHub.BatchSize <= 0 {
		return fmt.Errorf("github.batch_size must be positive, got %d", c.GitHub.BatchSize)
	}

	al, err := validation.NewAllowList(validation.NewOriginValidator(), c.Server.AllowedOrigins)
	if err != nil {
		return err
	}
	c.Server.AllowedOrigins = al.Origins()
	return nil
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path string) string {
	if path == "" {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}

	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	return path
}

func expandPaths(cfg *Config) {
	cfg.Cache.BoltPath = expandPath(cfg.Cache.BoltPath)
	cfg.Blog.ContentDir = expandPath(cfg.Blog.ContentDir)
	cfg.Log.File = expandPath(cfg.Log.File)
}

func Save(config *Config, path string) error {
	v := viper.New()

	// Durations as strings for TOML readability
	v.Set("server", map[string]any{
		"addr":             config.Server.Addr,
		"read_timeout":     config.Server.ReadTimeout.String(),
		"write_timeout":    config.Server.WriteTimeout.String(),
		"shutdown_timeout": config.Server.ShutdownTimeout.String(),
		"allowed_origins":  config.Server.AllowedOrigins,
	})
	v.Set("github", map[string]any{
		"username":     config.GitHub.Username,
		"api_base_url": config.GitHub.APIBaseURL,
		"batch_size":   config.GitHub.BatchSize,
		"user_agent":   config.GitHub.UserAgent,
		"http_timeout": config.GitHub.HTTPTimeout.String(),
	})
	v.Set("atcoder", map[string]any{
		"username":     config.AtCoder.Username,
		"base_url":     config.AtCoder.BaseURL,
		"user_agent":   config.AtCoder.UserAgent,
		"http_timeout": config.AtCoder.HTTPTimeout.String(),
	})
	v.Set("cache", map[string]any{
		"backend":      config.Cache.Backend,
		"ttl":          config.Cache.TTL.String(),
		"bolt_path":    config.Cache.BoltPath,
		"bolt_timeout": config.Cache.BoltTimeout.String(),
		"redis_addr":   config.Cache.RedisAddr,
		"redis_db":     config.Cache.RedisDB,
	})
	v.Set("blog", map[string]any{
		"content_dir": config.Blog.ContentDir,
		"site_url":    config.Blog.SiteURL,
		"site_title":  config.Blog.SiteTitle,
	})
	v.Set("log", map[string]any{
		"level": config.Log.Level,
		"file":  config.Log.File,
	})

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return v.WriteConfigAs(path)
}

func GenerateDefaultConfig(path string) error {
	return Save(defaultConfig(), path)
}
