package config

import (
	"time"

	"github.com/calloway/weatherline/internal/util"
)

// CLI verbosity values, 1 (errors only) through 5 (trace). They map onto
// [util.LogLevel] in [NewConfig]; out-of-range values clamp to the ends.
const (
	ErrorVerbose = iota + 1
	WarnVerbose
	InfoVerbose
	DebugVerbose
	TraceVerbose
)

// Default configuration constants. See [Config] for field descriptions.
const (
	DefaultVerbose = InfoVerbose
	DefaultLogLvl  = util.InfoLevel

	// Launcher defaults follow the conventional Python project layout: a
	// venv directory next to a requirements manifest and the entry script.
	DefaultEnvDir      = "venv"
	DefaultManifest    = "requirements.txt"
	DefaultEntry       = "app.py"
	DefaultToolchain   = "python"
	DefaultInterpreter = "python3"
	DefaultTrace       = true

	DefaultHost            = "0.0.0.0"
	DefaultPort            = 3030
	DefaultReadTimeout     = 10 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultShutdownTimeout = 10 * time.Second

	// DefaultGeoBaseURL is plain http; the geocoding endpoint is served on
	// both schemes and the upstream docs use http for it.
	DefaultGeoBaseURL     = "http://api.openweathermap.org"
	DefaultDataBaseURL    = "https://api.openweathermap.org"
	DefaultRequestTimeout = 10 * time.Second
	DefaultCacheTTL       = 5 * time.Minute
)

// Environment variable names for secrets. Secrets are never read from
// config files; they come from the process environment or a .env file.
const (
	EnvTwilioAuthToken = "TWILIO_AUTH_TOKEN"
	EnvWeatherAPIKey   = "WEATHER_API_KEY"
)
