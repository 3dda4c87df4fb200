// Package config loads client settings from an optional YAML file and
// NOTEPAD_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/and161185/notepad/internal/credstore"
)

// EnvPrefix prefixes environment overrides, e.g. NOTEPAD_API_BASE_URL.
const EnvPrefix = "NOTEPAD"

// API configures the remote notes API.
type API struct {
	BaseURL        string        `mapstructure:"base_url"`
	Timeout        time.Duration `mapstructure:"timeout"`
	RateLimitRPS   float64       `mapstructure:"rate_limit_rps"`
	RateLimitBurst int           `mapstructure:"rate_limit_burst"`
}

// Storage configures the credential file.
type Storage struct {
	TokenFile  string `mapstructure:"token_file"`
	Passphrase string `mapstructure:"passphrase"`
}

// Logger configures logging.
type Logger struct {
	Level string `mapstructure:"level"`
}

// Config is the client configuration.
type Config struct {
	API     API     `mapstructure:"api"`
	Storage Storage `mapstructure:"storage"`
	Logger  Logger  `mapstructure:"logger"`
}

// DefaultFile is the config file used when none is given.
func DefaultFile() string { return filepath.Join(credstore.DefaultDir(), "config.yaml") }

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "http://localhost:5000")
	v.SetDefault("api.timeout", 10*time.Second)
	v.SetDefault("api.rate_limit_rps", 0)
	v.SetDefault("api.rate_limit_burst", 1)
	v.SetDefault("storage.token_file", credstore.DefaultPath())
	v.SetDefault("storage.passphrase", "")
	v.SetDefault("logger.level", "warn")
}

// Load reads configuration. An empty file means DefaultFile, which may be absent;
// an explicitly named file must exist.
func Load(file string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file == "" {
		file = DefaultFile()
		if _, err := os.Stat(file); errors.Is(err, os.ErrNotExist) {
			file = ""
		}
	}
	return InitConfig[Config](v, file)
}

var envRef = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandEnvWithDefaults replaces ${VAR} and ${VAR:-default} with environment values.
func expandEnvWithDefaults(s string) string {
	return envRef.ReplaceAllStringFunc(s, func(match string) string {
		m := envRef.FindStringSubmatch(match)
		if len(m) < 2 {
			return match
		}
		if val := os.Getenv(m[1]); val != "" {
			return val
		}
		if len(m) > 2 {
			return m[2]
		}
		return ""
	})
}

// InitConfig reads configFile (if any) into v, expands ${VAR:-default}
// references in string values and decodes the result into a new C.
func InitConfig[C any](v *viper.Viper, configFile string) (*C, error) {
	if configFile != "" {
		ext := strings.TrimLeft(filepath.Ext(configFile), ".")
		if ext == "" {
			ext = "yaml"
		}
		v.SetConfigFile(configFile)
		v.SetConfigType(ext)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("v.ReadInConfig: %w", err)
		}
	}

	for _, k := range v.AllKeys() {
		s, ok := v.Get(k).(string)
		if !ok || !strings.Contains(s, "${") {
			continue
		}
		v.Set(k, expandEnvWithDefaults(s))
	}

	cfg := new(C)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("v.Unmarshal: %w", err)
	}
	return cfg, nil
}
