// Package config loads the application configuration and the device-identity
// document.
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/askehill/covis2/pkg/configutil"
	"github.com/askehill/covis2/pkg/errorsx"
)

type Config struct {
	LanguageCode string `mapstructure:"language_code"`
	Endpoint     string `mapstructure:"endpoint"`
	DeadlineMS   int    `mapstructure:"deadline_ms"`
	LogLevel     string `mapstructure:"log_level"`
	LogFormat    string `mapstructure:"log_format"`

	CredentialsPath  string `mapstructure:"credentials_path"`
	DeviceConfigPath string `mapstructure:"device_config_path"`

	Audio   AudioConfig   `mapstructure:"audio"`
	Display DisplayConfig `mapstructure:"display"`
}

type AudioConfig struct {
	SampleRate int `mapstructure:"sample_rate"`
	BlockSize  int `mapstructure:"block_size"`
	FlushSize  int `mapstructure:"flush_size"`
	IterSize   int `mapstructure:"iter_size"`
}

type DisplayConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Sink selects the renderer: "browser" or "server".
	Sink     string         `mapstructure:"sink"`
	Settings map[string]any `mapstructure:"settings"`
}

// Load reads the optional configuration file at path (any format viper
// understands); an empty path yields pure defaults.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetDefault("language_code", "en-GB")
	v.SetDefault("endpoint", "embeddedassistant.googleapis.com:443")
	v.SetDefault("deadline_ms", 185000)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("credentials_path", "")
	v.SetDefault("device_config_path", "device_config.json")
	v.SetDefault("audio.sample_rate", 16000)
	v.SetDefault("audio.block_size", 6400)
	v.SetDefault("audio.flush_size", 25600)
	v.SetDefault("audio.iter_size", 3200)
	v.SetDefault("display.enabled", false)
	v.SetDefault("display.sink", "browser")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errorsx.Wrapf(err, errorsx.ReasonConfigLoad, "read config")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errorsx.Wrapf(err, errorsx.ReasonConfigLoad, "unmarshal config")
	}
	if cfg.Display.Sink != "browser" && cfg.Display.Sink != "server" {
		return Config{}, errorsx.Wrap(
			fmt.Errorf("unknown display sink %q", cfg.Display.Sink),
			errorsx.ReasonConfigLoad)
	}
	return cfg, nil
}

// DeviceIdentity is the registered device this client presents to the
// assistant.
type DeviceIdentity struct {
	ID      string `mapstructure:"id"`
	ModelID string `mapstructure:"model_id"`
}

// LoadDeviceIdentity reads the device-identity JSON document. A missing or
// incomplete file is an error; the caller treats it as fatal.
func LoadDeviceIdentity(path string) (DeviceIdentity, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return DeviceIdentity{}, errorsx.Wrapf(err, errorsx.ReasonDeviceConfig, "read %s", path)
	}

	var identity DeviceIdentity
	if err := v.Unmarshal(&identity); err != nil {
		return DeviceIdentity{}, errorsx.Wrapf(err, errorsx.ReasonDeviceConfig, "unmarshal %s", path)
	}
	if err := configutil.RequireString(identity.ID, "id"); err != nil {
		return DeviceIdentity{}, errorsx.Wrap(err, errorsx.ReasonDeviceConfig)
	}
	if err := configutil.RequireString(identity.ModelID, "model_id"); err != nil {
		return DeviceIdentity{}, errorsx.Wrap(err, errorsx.ReasonDeviceConfig)
	}
	return identity, nil
}
