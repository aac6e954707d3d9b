// Package config loads CLI configuration with the precedence
// flags > environment > config file > defaults. Flags are applied by the
// command layer as runtime overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces the environment variables, e.g. CLOUDCP_REGION.
const EnvPrefix = "CLOUDCP"

// Config is the resolved configuration for one invocation.
type Config struct {
	S3       S3Config       `mapstructure:"s3"`
	Transfer TransferConfig `mapstructure:"transfer"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// S3Config carries connection settings for the storage backend.
type S3Config struct {
	// Region for the bucket. Empty defers to the SDK's own resolution.
	Region string `mapstructure:"region"`

	// Endpoint overrides the service URL, for S3-compatible stores.
	Endpoint string `mapstructure:"endpoint"`

	// Profile selects a shared credentials profile.
	Profile string `mapstructure:"profile"`

	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`

	// ForcePathStyle uses path-style addressing, required by MinIO and
	// most other non-AWS endpoints.
	ForcePathStyle bool `mapstructure:"force_path_style"`
}

// TransferConfig tunes the transfer engine.
type TransferConfig struct {
	// Parallel worker count. Zero sizes the pool to the host core count.
	Parallel int `mapstructure:"parallel"`

	// MaxRetries per object after the first attempt.
	MaxRetries int `mapstructure:"max_retries"`

	// PageSize for remote listing requests.
	PageSize int `mapstructure:"page_size"`
}

// LoggingConfig controls CLI log output.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

var (
	configMu  sync.RWMutex
	appConfig *Config
)

// Load resolves configuration and caches it for GetConfig. Optional
// runtime overrides (nested maps keyed like the file format) take
// precedence over environment and file values.
func Load(overrides ...map[string]any) (*Config, error) {
	v := viper.New()

	v.SetDefault("s3.region", "")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.profile", "")
	v.SetDefault("s3.access_key_id", "")
	v.SetDefault("s3.secret_access_key", "")
	v.SetDefault("s3.force_path_style", false)
	v.SetDefault("transfer.parallel", 0)
	v.SetDefault("transfer.max_retries", 2)
	v.SetDefault("transfer.page_size", 1000)
	v.SetDefault("logging.level", "info")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName(".cloudcp")
	v.SetConfigType("yaml")
	for _, dir := range configDirs() {
		v.AddConfigPath(dir)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	for _, o := range overrides {
		if err := v.MergeConfigMap(o); err != nil {
			return nil, fmt.Errorf("apply overrides: %w", err)
		}
	}

	cfg := &Config{}
	decode := func(dc *mapstructure.DecoderConfig) {
		dc.ErrorUnused = false
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
	if err := v.Unmarshal(cfg, viper.DecoderConfigOption(decode)); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	configMu.Lock()
	appConfig = cfg
	configMu.Unlock()
	return cfg, nil
}

// GetConfig returns the last loaded configuration, or nil before Load.
func GetConfig() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return appConfig
}

// configDirs lists directories searched for .cloudcp.yaml: the working
// directory first, then the user's home.
func configDirs() []string {
	dirs := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Clean(home))
	}
	return dirs
}
