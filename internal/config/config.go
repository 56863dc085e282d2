// Package config loads the marker service configuration from defaults, an
// optional YAML file and IMAGE_MARKER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. IMAGE_MARKER_LOG_LEVEL.
const EnvPrefix = "IMAGE_MARKER"

type Config struct {
	Log    LogConfig    `mapstructure:"log"`
	Marker MarkerConfig `mapstructure:"marker"`
	Fetch  FetchConfig  `mapstructure:"fetch"`
	Redis  RedisConfig  `mapstructure:"redis"`
	HTTP   HTTPConfig   `mapstructure:"http"`
	Kafka  KafkaConfig  `mapstructure:"kafka"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text or json
}

type MarkerConfig struct {
	OutputDir     string   `mapstructure:"output_dir"`
	ResourceDirs  []string `mapstructure:"resource_dirs"`
	FontDirs      []string `mapstructure:"font_dirs"`
	Workers       int      `mapstructure:"workers"`
	LegacyMargins bool     `mapstructure:"legacy_margins"`
	MaxPixels     int64    `mapstructure:"max_pixels"`
}

type FetchConfig struct {
	Timeout       time.Duration `mapstructure:"timeout"`
	Retries       int           `mapstructure:"retries"`
	RetryDelay    time.Duration `mapstructure:"retry_delay"`
	MaxBytes      int64         `mapstructure:"max_bytes"`
	Cache         string        `mapstructure:"cache"` // none, memory or redis
	CacheMaxBytes int64         `mapstructure:"cache_max_bytes"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
	Prefix   string        `mapstructure:"prefix"`
}

type HTTPConfig struct {
	Addr         string        `mapstructure:"addr"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type KafkaConfig struct {
	Brokers      []string `mapstructure:"brokers"`
	JobsTopic    string   `mapstructure:"jobs_topic"`
	ResultsTopic string   `mapstructure:"results_topic"`
	GroupID      string   `mapstructure:"group_id"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("marker.output_dir", filepath.Join(os.TempDir(), "image-marker"))
	v.SetDefault("marker.resource_dirs", []string{"./resources"})
	v.SetDefault("marker.font_dirs", []string{"./fonts"})
	v.SetDefault("marker.workers", 4)
	v.SetDefault("marker.legacy_margins", true)
	v.SetDefault("marker.max_pixels", int64(64<<20))

	v.SetDefault("fetch.timeout", 10*time.Second)
	v.SetDefault("fetch.retries", 3)
	v.SetDefault("fetch.retry_delay", 200*time.Millisecond)
	v.SetDefault("fetch.max_bytes", int64(32<<20))
	v.SetDefault("fetch.cache", "memory")
	v.SetDefault("fetch.cache_max_bytes", int64(256<<20))

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", time.Hour)
	v.SetDefault("redis.prefix", "imagemarker:fetch:")

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.mode", "release")
	v.SetDefault("http.read_timeout", 30*time.Second)
	v.SetDefault("http.write_timeout", 60*time.Second)

	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.jobs_topic", "image-marker-jobs")
	v.SetDefault("kafka.results_topic", "image-marker-results")
	v.SetDefault("kafka.group_id", "image-marker-worker")
}

// LoadConfig builds a viper instance. An explicit path must exist; without
// one, ./config/config.yaml is read when present.
func LoadConfig(path string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		return v, nil
	}

	v.AddConfigPath("./config")
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}
	return v, nil
}

// ParseConfig decodes v and validates the result.
func ParseConfig(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	// Lists from the environment arrive as one comma-separated string.
	c.Marker.ResourceDirs = splitList(c.Marker.ResourceDirs)
	c.Marker.FontDirs = splitList(c.Marker.FontDirs)
	c.Kafka.Brokers = splitList(c.Kafka.Brokers)

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Load is LoadConfig followed by ParseConfig.
func Load(path string) (*Config, error) {
	v, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return ParseConfig(v)
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	var errs []error

	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}
	if c.Marker.OutputDir == "" {
		errs = append(errs, errors.New("marker.output_dir is required"))
	}
	if c.Marker.Workers < 1 {
		errs = append(errs, fmt.Errorf("marker.workers must be at least 1, got %d", c.Marker.Workers))
	}
	if c.Marker.MaxPixels < 1 {
		errs = append(errs, fmt.Errorf("marker.max_pixels must be at least 1, got %d", c.Marker.MaxPixels))
	}
	if c.Fetch.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("fetch.timeout must be positive, got %s", c.Fetch.Timeout))
	}
	if c.Fetch.Retries < 1 {
		errs = append(errs, fmt.Errorf("fetch.retries must be at least 1, got %d", c.Fetch.Retries))
	}
	if c.Fetch.MaxBytes <= 0 {
		errs = append(errs, fmt.Errorf("fetch.max_bytes must be positive, got %d", c.Fetch.MaxBytes))
	}
	switch c.Fetch.Cache {
	case "none", "memory":
	case "redis":
		if c.Redis.Addr == "" {
			errs = append(errs, errors.New("redis.addr is required when fetch.cache is redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("fetch.cache must be none, memory or redis, got %q", c.Fetch.Cache))
	}

	return errors.Join(errs...)
}

func splitList(in []string) []string {
	var out []string
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
