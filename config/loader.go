package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPaths are tried in order when Load is given no explicit path.
var DefaultPaths = []string{"config.yml", "./config/config.yml"}

// Default returns the configuration used when a field is left unset.
func Default() AppConfig {
	return AppConfig{
		Server: ServerConfig{Port: 16181},
		Cache: CacheConfig{
			Backend: "memory",
			Redis:   RedisConfig{Port: 6379, TimeoutMS: 100, CooldownMS: 30000},
		},
		Query: QueryConfig{
			DefaultRadiusKM:      1.0,
			MaxRadiusKM:          50.0,
			DefaultWindowMinutes: 30,
		},
	}
}

// Load reads the YAML file at path (or the first of DefaultPaths), applies
// .env and environment overrides, and validates the result.
func Load(path string) (*AppConfig, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	data, err := readFirst(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyEnv(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks struct tags on the whole configuration.
func Validate(cfg *AppConfig) error {
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if cfg.Cache.Backend == "redis" && cfg.Cache.Redis.Host == "" {
		return errors.New("invalid config: cache.redis.host is required for the redis backend")
	}
	return nil
}

func readFirst(path string) ([]byte, error) {
	paths := DefaultPaths
	if path != "" {
		paths = []string{path}
	}
	var err error
	for _, p := range paths {
		var data []byte
		data, err = os.ReadFile(p)
		if err == nil {
			return data, nil
		}
	}
	return nil, fmt.Errorf("read config: %w", err)
}

func applyEnv(cfg *AppConfig) {
	if v := os.Getenv("TRANSIT_FEED_PATH"); v != "" {
		if len(cfg.Feeds) == 0 {
			cfg.Feeds = append(cfg.Feeds, FeedConfig{Name: "default"})
		}
		cfg.Feeds[0].Path = v
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		cfg.Cache.Redis.Host = v
		if cfg.Cache.Backend == "" || cfg.Cache.Backend == "memory" {
			cfg.Cache.Backend = "redis"
		}
	}
	cfg.Cache.Redis.Port = getEnvInt("REDIS_PORT", cfg.Cache.Redis.Port)
	cfg.Cache.Redis.DB = getEnvInt("REDIS_DB", cfg.Cache.Redis.DB)
	if v := os.Getenv("REDIS_USERNAME"); v != "" {
		cfg.Cache.Redis.Username = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Cache.Redis.Password = v
	}
	cfg.Server.Port = getEnvInt("PORT", cfg.Server.Port)
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// ErrFeedNotFound is returned by SelectFeed for an unknown name.
var ErrFeedNotFound = errors.New("feed not found")

// SelectFeed chooses a feed by name; an empty name picks the first feed.
func (c *AppConfig) SelectFeed(name string) (FeedConfig, error) {
	if name == "" {
		if len(c.Feeds) == 0 {
			return FeedConfig{}, ErrFeedNotFound
		}
		return c.Feeds[0], nil
	}
	for _, f := range c.Feeds {
		if f.Name == name {
			return f, nil
		}
	}
	return FeedConfig{}, fmt.Errorf("%w: %s", ErrFeedNotFound, name)
}
