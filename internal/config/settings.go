package config

import (
	"errors"
	"os"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	defaultBaseURL        = "http://127.0.0.1:8000/api/v1"
	defaultRequestTimeout = 15
	defaultTopK           = 3
	defaultExcerptLimit   = 150
)

type Config struct {
	API     APIConfig     `toml:"api"`
	Logging LoggingConfig `toml:"logging"`
	Chat    ChatConfig    `toml:"chat"`
	Search  SearchConfig  `toml:"search"`
}

type APIConfig struct {
	BaseURL               string `toml:"base_url"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
}

type LoggingConfig struct {
	Level string `toml:"level"`
}

type ChatConfig struct {
	ShowHandoffs bool `toml:"show_handoffs"`
}

type SearchConfig struct {
	TopK         int `toml:"top_k"`
	ExcerptLimit int `toml:"excerpt_limit"`
}

func Default() Config {
	return Config{
		API: APIConfig{
			BaseURL:               defaultBaseURL,
			RequestTimeoutSeconds: defaultRequestTimeout,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Search: SearchConfig{
			TopK:         defaultTopK,
			ExcerptLimit: defaultExcerptLimit,
		},
	}
}

// Load reads the configuration file, overlaying it on the defaults. A
// missing or empty file yields the defaults.
func Load() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	return loadFromPath(path)
}

func loadFromPath(path string) (Config, error) {
	cfg := Default()
	if err := readTOML(path, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) BaseURL() string {
	url := strings.TrimSpace(c.API.BaseURL)
	if url == "" {
		return defaultBaseURL
	}
	return strings.TrimRight(url, "/")
}

func (c Config) RequestTimeout() time.Duration {
	seconds := c.API.RequestTimeoutSeconds
	if seconds <= 0 {
		seconds = defaultRequestTimeout
	}
	return time.Duration(seconds) * time.Second
}

func (c Config) LogLevel() string {
	level := strings.TrimSpace(c.Logging.Level)
	if level == "" {
		return "info"
	}
	return level
}

func (c Config) TopK() int {
	if c.Search.TopK <= 0 {
		return defaultTopK
	}
	return c.Search.TopK
}

func (c Config) ExcerptLimit() int {
	if c.Search.ExcerptLimit <= 0 {
		return defaultExcerptLimit
	}
	return c.Search.ExcerptLimit
}

// Dump renders the effective configuration as TOML.
func (c Config) Dump() (string, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func readTOML(path string, out any) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	return toml.Unmarshal(data, out)
}
