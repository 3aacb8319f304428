package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/calloway/weatherline/internal/util"
)

// LauncherOptions configures the environment bootstrap flow.
type LauncherOptions struct {
	EnvDir      string // Environment directory name, relative to the project dir (Default "venv")
	Manifest    string // Dependency manifest file name (Default "requirements.txt")
	Entry       string // Application entry point file name (Default "app.py")
	Toolchain   string // Registered toolchain name (Default "python")
	Interpreter string // Interpreter binary used to create the environment (Default "python3")
	Trace       bool   // Echo each command before executing it (Default true)
}

// ServerOptions configures the hotline HTTP server.
type ServerOptions struct {
	Host            string        // Listen host (Default "0.0.0.0")
	Port            int           // Listen port (Default 3030)
	ReadTimeout     time.Duration // Max duration for reading a full request (Default 10s)
	WriteTimeout    time.Duration // Max duration for writing a response (Default 30s)
	ShutdownTimeout time.Duration // Grace period for in-flight requests on shutdown (Default 10s)
}

// Addr returns the host:port listen address.
func (s ServerOptions) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// WeatherOptions configures the OpenWeather client.
type WeatherOptions struct {
	GeoBaseURL     string        // Geocoding API base URL
	DataBaseURL    string        // Current-weather API base URL
	APIKey         string        // API key; comes from WEATHER_API_KEY, never from files
	RequestTimeout time.Duration // Per-request timeout (Default 10s)
	CacheTTL       time.Duration // How long a reading stays cached; 0 disables caching (Default 5m)
}

// TwilioOptions holds the webhook-validation credentials.
type TwilioOptions struct {
	AuthToken string // Account auth token; comes from TWILIO_AUTH_TOKEN, never from files
}

// Config contains runtime configuration for both the launcher and the
// hotline daemon.
type Config struct {
	Launcher LauncherOptions
	Server   ServerOptions
	Weather  WeatherOptions
	Twilio   TwilioOptions
	LogLvl   util.LogLevel
}

// LauncherOverride mirrors [LauncherOptions] with pointer fields to
// distinguish unset from zero values.
type LauncherOverride struct {
	EnvDir      *string `yaml:"env_dir,omitempty" json:"env_dir,omitempty"`
	Manifest    *string `yaml:"manifest,omitempty" json:"manifest,omitempty"`
	Entry       *string `yaml:"entry,omitempty" json:"entry,omitempty"`
	Toolchain   *string `yaml:"toolchain,omitempty" json:"toolchain,omitempty"`
	Interpreter *string `yaml:"interpreter,omitempty" json:"interpreter,omitempty"`
	Trace       *bool   `yaml:"trace,omitempty" json:"trace,omitempty"`
}

// ServerOverride mirrors [ServerOptions]; timeouts are seconds.
type ServerOverride struct {
	Host            *string  `yaml:"host,omitempty" json:"host,omitempty"`
	Port            *int     `yaml:"port,omitempty" json:"port,omitempty"`
	ReadTimeout     *float64 `yaml:"read_timeout,omitempty" json:"read_timeout,omitempty"`
	WriteTimeout    *float64 `yaml:"write_timeout,omitempty" json:"write_timeout,omitempty"`
	ShutdownTimeout *float64 `yaml:"shutdown_timeout,omitempty" json:"shutdown_timeout,omitempty"`
}

// WeatherOverride mirrors [WeatherOptions]; timeouts and TTLs are seconds.
type WeatherOverride struct {
	GeoBaseURL     *string  `yaml:"geo_base_url,omitempty" json:"geo_base_url,omitempty"`
	DataBaseURL    *string  `yaml:"data_base_url,omitempty" json:"data_base_url,omitempty"`
	RequestTimeout *float64 `yaml:"request_timeout,omitempty" json:"request_timeout,omitempty"`
	CacheTTL       *float64 `yaml:"cache_ttl,omitempty" json:"cache_ttl,omitempty"`
}

// ConfigOverride uses pointer fields to distinguish between unset and zero
// values when loading partial configuration. See [Config] for field
// descriptions. Verbose is the CLI 1..5 scale, not a [util.LogLevel].
type ConfigOverride struct {
	Launcher *LauncherOverride `yaml:"launcher,omitempty" json:"launcher,omitempty"`
	Server   *ServerOverride   `yaml:"server,omitempty" json:"server,omitempty"`
	Weather  *WeatherOverride  `yaml:"weather,omitempty" json:"weather,omitempty"`
	Verbose  *int              `yaml:"verbose,omitempty" json:"verbose,omitempty"`
}

// NewDefaultConfig creates a new Config with all default values.
func NewDefaultConfig() *Config {
	return &Config{
		Launcher: LauncherOptions{
			EnvDir:      DefaultEnvDir,
			Manifest:    DefaultManifest,
			Entry:       DefaultEntry,
			Toolchain:   DefaultToolchain,
			Interpreter: DefaultInterpreter,
			Trace:       DefaultTrace,
		},
		Server: ServerOptions{
			Host:            DefaultHost,
			Port:            DefaultPort,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Weather: WeatherOptions{
			GeoBaseURL:     DefaultGeoBaseURL,
			DataBaseURL:    DefaultDataBaseURL,
			RequestTimeout: DefaultRequestTimeout,
			CacheTTL:       DefaultCacheTTL,
		},
		LogLvl: DefaultLogLvl,
	}
}

// NewConfig creates a Config from defaults with override applied on top.
// A nil override returns plain defaults.
func NewConfig(override *ConfigOverride) *Config {
	cfg := NewDefaultConfig()
	if override != nil {
		cfg.Merge(override)
	}
	return cfg
}

// Merge applies non-nil values from override onto this Config.
// This allows partial configuration updates while preserving existing values.
func (c *Config) Merge(override *ConfigOverride) {
	if o := override.Launcher; o != nil {
		if o.EnvDir != nil {
			c.Launcher.EnvDir = *o.EnvDir
		}
		if o.Manifest != nil {
			c.Launcher.Manifest = *o.Manifest
		}
		if o.Entry != nil {
			c.Launcher.Entry = *o.Entry
		}
		if o.Toolchain != nil {
			c.Launcher.Toolchain = *o.Toolchain
		}
		if o.Interpreter != nil {
			c.Launcher.Interpreter = *o.Interpreter
		}
		if o.Trace != nil {
			c.Launcher.Trace = *o.Trace
		}
	}
	if o := override.Server; o != nil {
		if o.Host != nil {
			c.Server.Host = *o.Host
		}
		if o.Port != nil {
			c.Server.Port = *o.Port
		}
		if o.ReadTimeout != nil {
			c.Server.ReadTimeout = secondsToDuration(*o.ReadTimeout)
		}
		if o.WriteTimeout != nil {
			c.Server.WriteTimeout = secondsToDuration(*o.WriteTimeout)
		}
		if o.ShutdownTimeout != nil {
			c.Server.ShutdownTimeout = secondsToDuration(*o.ShutdownTimeout)
		}
	}
	if o := override.Weather; o != nil {
		if o.GeoBaseURL != nil {
			c.Weather.GeoBaseURL = *o.GeoBaseURL
		}
		if o.DataBaseURL != nil {
			c.Weather.DataBaseURL = *o.DataBaseURL
		}
		if o.RequestTimeout != nil {
			c.Weather.RequestTimeout = secondsToDuration(*o.RequestTimeout)
		}
		if o.CacheTTL != nil {
			c.Weather.CacheTTL = secondsToDuration(*o.CacheTTL)
		}
	}
	if override.Verbose != nil {
		c.LogLvl = VerboseToLevel(*override.Verbose)
	}
}

// VerboseToLevel maps the CLI 1..5 verbosity scale onto a [util.LogLevel],
// clamping out-of-range values.
func VerboseToLevel(verbose int) util.LogLevel {
	if verbose < ErrorVerbose {
		verbose = ErrorVerbose
	}
	if verbose > TraceVerbose {
		verbose = TraceVerbose
	}
	lvls := [5]util.LogLevel{util.ErrorLevel, util.WarnLevel, util.InfoLevel, util.DebugLevel, util.TraceLevel}
	return lvls[verbose-1]
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// ApplyEnv overlays secrets from the process environment. Empty variables
// leave the existing values untouched.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvTwilioAuthToken); v != "" {
		c.Twilio.AuthToken = v
	}
	if v := os.Getenv(EnvWeatherAPIKey); v != "" {
		c.Weather.APIKey = v
	}
}

// LoadDotenv loads environment variables from a dotenv file. A missing file
// is not an error; an empty path means "./.env". Existing variables are
// never overwritten.
func LoadDotenv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load dotenv file: %w", err)
	}
	return nil
}

// LoadConfigOverrideFile loads configuration overrides from a file without merging.
// Supports both YAML (.yaml, .yml) and JSON (.json) formats.
func LoadConfigOverrideFile(path string) (*ConfigOverride, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var override ConfigOverride

	// Determine format by file extension
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown config file extension: %s", path)
	}

	return &override, nil
}

// NewConfigFromFile creates a new Config by merging file overrides with defaults.
// This is a convenience function that combines NewConfig and LoadConfigOverrideFile.
func NewConfigFromFile(path string) (*Config, error) {
	override, err := LoadConfigOverrideFile(path)
	if err != nil {
		return nil, err
	}
	return NewConfig(override), nil
}
