// Package config loads lattice.yaml and applies environment and flag overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// DefaultFile is looked up in the working directory when no path is given.
const DefaultFile = "lattice.yaml"

// EnvPrefix marks environment overrides: LATTICE_STORE_REDIS_ADDR sets store.redis.addr.
const EnvPrefix = "LATTICE_"

// Store backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config is the runtime configuration of the lattice binary.
type Config struct {
	Address     string        `yaml:"address"`
	LogLevel    string        `yaml:"log_level"`
	LogJSON     bool          `yaml:"log_json"`
	Metrics     bool          `yaml:"metrics"`
	CheckoutURL string        `yaml:"checkout_url"`
	Cooldown    time.Duration `yaml:"checkout_cooldown"`
	Templates   string        `yaml:"templates"`
	Theme       domain.Theme  `yaml:"theme"`
	Store       StoreConfig   `yaml:"store"`
}

// StoreConfig selects and tunes the page store.
type StoreConfig struct {
	Backend       string      `yaml:"backend"`
	Path          string      `yaml:"path"`
	EncryptionKey string      `yaml:"encryption_key"`
	RetryAttempts int         `yaml:"retry_attempts"`
	Redis         RedisConfig `yaml:"redis"`
}

// RedisConfig holds the Redis connection. TTL 0 keeps pages forever.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl"`
	Lock     bool          `yaml:"lock"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Address:  ":8080",
		LogLevel: "info",
		Store: StoreConfig{
			Backend:       BackendMemory,
			Path:          ".lattice/pages",
			RetryAttempts: 3,
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "lattice:page:",
				Lock:   true,
			},
		},
	}
}

// Load reads path over the defaults. A missing file is not an error when path is
// empty or DefaultFile; an explicitly named file must exist.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != "" && path != DefaultFile
	if path == "" {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
	}
	return cfg, nil
}

// ApplyOverrides sets dotted keys (e.g. "store.redis.ttl") on cfg.
// Values are strings as they come from flags or the environment and are converted
// to the field type.
func (c *Config) ApplyOverrides(overrides map[string]string) error {
	if len(overrides) == 0 {
		return nil
	}
	tree := map[string]any{}
	for key, value := range overrides {
		setPath(tree, strings.Split(strings.ToLower(key), "."), value)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "yaml",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		Result:           c,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(tree); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

func setPath(tree map[string]any, path []string, value string) {
	for _, p := range path[:len(path)-1] {
		next, ok := tree[p].(map[string]any)
		if !ok {
			next = map[string]any{}
			tree[p] = next
		}
		tree = next
	}
	tree[path[len(path)-1]] = value
}

// EnvOverrides collects LATTICE_* variables as dotted keys. Nested keys are resolved
// against the Config layout, so LATTICE_STORE_RETRY_ATTEMPTS maps to store.retry_attempts.
func EnvOverrides(environ []string) map[string]string {
	out := map[string]string{}
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, EnvPrefix) {
			continue
		}
		parts := strings.Split(strings.ToLower(strings.TrimPrefix(name, EnvPrefix)), "_")
		if key, ok := resolveKey(reflect.TypeOf(Config{}), parts); ok {
			out[key] = value
		}
	}
	return out
}

// resolveKey greedily matches underscore-separated words to yaml field names.
func resolveKey(t reflect.Type, parts []string) (string, bool) {
	for n := len(parts); n > 0; n-- {
		name := strings.Join(parts[:n], "_")
		field, ok := fieldByTag(t, name)
		if !ok {
			continue
		}
		if n == len(parts) {
			return name, true
		}
		if field.Type.Kind() != reflect.Struct {
			continue
		}
		if rest, ok := resolveKey(field.Type, parts[n:]); ok {
			return name + "." + rest, true
		}
	}
	return "", false
}

func fieldByTag(t reflect.Type, name string) (reflect.StructField, bool) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if tag == name {
			return f, true
		}
	}
	return reflect.StructField{}, false
}

// Validate checks the fields that cannot be verified by decoding.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case BackendMemory, BackendFile, BackendRedis:
	default:
		return fmt.Errorf("%w: unknown store backend %q (memory, file, redis)", ErrInvalidConfig, c.Store.Backend)
	}
	if c.Store.RetryAttempts < 0 {
		return fmt.Errorf("%w: retry_attempts must not be negative", ErrInvalidConfig)
	}
	if c.Store.Backend == BackendRedis && c.Store.Redis.Addr == "" {
		return fmt.Errorf("%w: store.redis.addr is required", ErrInvalidConfig)
	}
	return nil
}
