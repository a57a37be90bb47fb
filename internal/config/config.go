// Package config loads reader settings from defaults, an optional config
// file, a .env file, the environment and command-line flags, in that order
// of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Adda-Baaj/taja-reader/internal/logger"
	"github.com/Adda-Baaj/taja-reader/internal/prefs"
	"github.com/Adda-Baaj/taja-reader/pkg/providers"
)

const envPrefix = "READER"

// Validation errors.
var (
	ErrEmptyBaseURL       = errors.New("api.base_url is required")
	ErrInvalidConnect     = errors.New("http.connect_timeout must be positive")
	ErrInvalidRead        = errors.New("http.read_timeout must be positive")
	ErrInvalidDefaultSort = errors.New("prefs.default_order_by must be one of: newest, oldest, relevance")
)

// Config is the full reader configuration.
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Log     LogConfig     `mapstructure:"log"`
	Prefs   PrefsConfig   `mapstructure:"prefs"`
	Share   ShareConfig   `mapstructure:"share"`
	Network NetworkConfig `mapstructure:"network"`
}

// APIConfig locates the search endpoint. Key is never compiled in.
type APIConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Key     string `mapstructure:"key"`
}

// HTTPConfig holds transport timeouts.
type HTTPConfig struct {
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// PrefsConfig points at the preferences file; an empty path keeps
// preferences in memory.
type PrefsConfig struct {
	Path           string `mapstructure:"path"`
	DefaultTopic   string `mapstructure:"default_topic"`
	DefaultOrderBy string `mapstructure:"default_order_by"`
}

// ShareConfig points at the share targets file; empty disables sharing.
type ShareConfig struct {
	TargetsFile string `mapstructure:"targets_file"`
}

// NetworkConfig controls the reachability check.
type NetworkConfig struct {
	SkipCheck bool `mapstructure:"skip_check"`
}

// LoadOptions selects the optional inputs to Load.
type LoadOptions struct {
	ConfigFile string
	EnvFile    string
	Flags      *pflag.FlagSet
}

// flag name -> config key
var flagKeys = map[string]string{
	"api-url":         "api.base_url",
	"api-key":         "api.key",
	"connect-timeout": "http.connect_timeout",
	"read-timeout":    "http.read_timeout",
	"log-level":       "log.level",
	"log-file":        "log.file",
	"prefs":           "prefs.path",
	"share-targets":   "share.targets_file",
	"skip-net-check":  "network.skip_check",
	"topic":           "prefs.default_topic",
	"order-by":        "prefs.default_order_by",
}

// RegisterFlags declares the command-line flags Load understands.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "path to a YAML config file")
	fs.String("env-file", ".env", "path to a .env file")
	fs.String("api-url", providers.DefaultSearchURL, "search endpoint")
	fs.String("api-key", "", "API key (prefer GUARDIAN_API_KEY)")
	fs.Duration("connect-timeout", 15*time.Second, "connection timeout")
	fs.Duration("read-timeout", 10*time.Second, "read timeout")
	fs.String("log-level", "info", "log level: debug, info, warn, error")
	fs.String("log-file", "taja-reader.log", "log file path")
	fs.String("prefs", defaultPrefsPath(), "preferences database path, empty for in-memory")
	fs.String("share-targets", "", "share targets YAML/JSON file")
	fs.Bool("skip-net-check", false, "assume the network is reachable")
	fs.String("topic", prefs.DefaultTopic, "default search topic")
	fs.String("order-by", prefs.DefaultOrderBy, "default sort order")
}

// Load resolves the configuration.
func Load(opts LoadOptions) (*Config, error) {
	if err := loadEnvFile(opts.EnvFile); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	if path := strings.TrimSpace(opts.ConfigFile); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("api.key", envPrefix+"_API_KEY", "GUARDIAN_API_KEY"); err != nil {
		return nil, fmt.Errorf("bind api key env: %w", err)
	}

	if opts.Flags != nil {
		for name, key := range flagKeys {
			f := opts.Flags.Lookup(name)
			if f == nil || !f.Changed {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.sanitize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", providers.DefaultSearchURL)
	v.SetDefault("api.key", "")
	v.SetDefault("http.connect_timeout", 15*time.Second)
	v.SetDefault("http.read_timeout", 10*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "taja-reader.log")
	v.SetDefault("prefs.path", defaultPrefsPath())
	v.SetDefault("prefs.default_topic", prefs.DefaultTopic)
	v.SetDefault("prefs.default_order_by", prefs.DefaultOrderBy)
	v.SetDefault("share.targets_file", "")
	v.SetDefault("network.skip_check", false)
}

// loadEnvFile reads KEY=VALUE pairs without overriding the real environment.
// A missing file is not an error.
func loadEnvFile(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

func defaultPrefsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return "taja-reader.db"
	}
	return dir + string(os.PathSeparator) + "taja-reader" + string(os.PathSeparator) + "prefs.db"
}

func (c *Config) sanitize() {
	c.API.BaseURL = strings.TrimSpace(c.API.BaseURL)
	c.API.Key = strings.TrimSpace(c.API.Key)
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.File = strings.TrimSpace(c.Log.File)
	c.Prefs.Path = strings.TrimSpace(c.Prefs.Path)
	c.Prefs.DefaultTopic = strings.TrimSpace(c.Prefs.DefaultTopic)
	c.Prefs.DefaultOrderBy = strings.ToLower(strings.TrimSpace(c.Prefs.DefaultOrderBy))
	c.Share.TargetsFile = strings.TrimSpace(c.Share.TargetsFile)
}

// Validate checks the resolved values.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return ErrEmptyBaseURL
	}
	if c.HTTP.ConnectTimeout <= 0 {
		return ErrInvalidConnect
	}
	if c.HTTP.ReadTimeout <= 0 {
		return ErrInvalidRead
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if !prefs.ValidOrderBy(c.Prefs.DefaultOrderBy) {
		return ErrInvalidDefaultSort
	}
	return nil
}

// DefaultPreferences returns the configured fallback preference values.
func (c *Config) DefaultPreferences() prefs.Preferences {
	return prefs.Preferences{Topic: c.Prefs.DefaultTopic, OrderBy: c.Prefs.DefaultOrderBy}
}

// String summarises the config without the API key.
func (c *Config) String() string {
	key := "unset"
	if c.API.Key != "" {
		key = "set"
	}
	return fmt.Sprintf("Config{BaseURL: %s, APIKey: %s, Timeouts: %s/%s, Prefs: %q}",
		c.API.BaseURL, key, c.HTTP.ConnectTimeout, c.HTTP.ReadTimeout, c.Prefs.Path)
}
