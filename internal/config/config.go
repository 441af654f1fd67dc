// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	AppName    = "textdump"
	ConfigType = "yaml"
	EnvPrefix  = "TEXTDUMP"

	// MaxBlobLimit is the largest accepted max_blob_size.
	MaxBlobLimit = 1 << 30

	ExampleConfig = `# textdump configuration

# Input
input: "java.bin"                 # File read when no arguments are given
class_name: "com.whatsapp.TextData" # Expected Java class of the serialized object
strict_class: true                # Reject objects of any other class
max_blob_size: 16777216           # Largest thumbnail or string accepted, in bytes

# Output
format: "text"                    # text, yaml, cbor, bson or dump
bytes_encoding: "base64"          # base64 or hex, for blobs in text output

# Logging
debug: false                      # Enable debug logging on stderr
`
)

// Formats lists the accepted values of the format setting.
var Formats = []string{"text", "yaml", "cbor", "bson", "dump"}

// BytesEncodings lists the accepted values of the bytes_encoding setting.
var BytesEncodings = []string{"base64", "hex"}

// Settings holds all application configuration
type Settings struct {
	// Input
	Input       string `mapstructure:"input"`
	ClassName   string `mapstructure:"class_name"`
	StrictClass bool   `mapstructure:"strict_class"`
	MaxBlobSize int    `mapstructure:"max_blob_size"`

	// Output
	Format        string `mapstructure:"format"`
	BytesEncoding string `mapstructure:"bytes_encoding"`

	// Logging
	Debug bool `mapstructure:"debug"`
}

// Init initializes Viper with defaults, environment and config file.
// Config file search order: current directory, then ~/.config/textdump/.
// A missing config file is not an error and nothing is written to disk.
func Init() error {
	viper.SetDefault("input", "java.bin")
	viper.SetDefault("class_name", "com.whatsapp.TextData")
	viper.SetDefault("strict_class", true)
	viper.SetDefault("max_blob_size", 16<<20)
	viper.SetDefault("format", "text")
	viper.SetDefault("bytes_encoding", "base64")
	viper.SetDefault("debug", false)

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetConfigType(ConfigType)

	// Priority order: current directory first, then XDG config
	viper.AddConfigPath(".")

	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	viper.AddConfigPath(filepath.Join(configDir, AppName))

	// Try .config.yaml first (hidden file), then config.yaml
	viper.SetConfigName(".config")
	if err = viper.ReadInConfig(); err != nil {
		viper.SetConfigName("config")
		err = viper.ReadInConfig()
	}

	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}

	return nil
}

// Get returns the current settings
func Get() (*Settings, error) {
	var s Settings
	if err := viper.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &s, nil
}

// Validate checks that all settings are within acceptable ranges
func (s *Settings) Validate() error {
	var errs []error

	if strings.TrimSpace(s.Input) == "" {
		errs = append(errs, errors.New("input must not be empty"))
	}
	if strings.TrimSpace(s.ClassName) == "" {
		errs = append(errs, errors.New("class_name must not be empty"))
	}
	if s.MaxBlobSize < 1 || s.MaxBlobSize > MaxBlobLimit {
		errs = append(errs, fmt.Errorf("max_blob_size must be between 1 and %d, got %d", MaxBlobLimit, s.MaxBlobSize))
	}
	if !contains(Formats, s.Format) {
		errs = append(errs, fmt.Errorf("format must be one of %s, got %q", strings.Join(Formats, ", "), s.Format))
	}
	if !contains(BytesEncodings, s.BytesEncoding) {
		errs = append(errs, fmt.Errorf("bytes_encoding must be one of %s, got %q", strings.Join(BytesEncodings, ", "), s.BytesEncoding))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
