package app

import (
	"net/http"

	"pylon/internal/config"
)

// Overrides are the command-line flags that take precedence over the
// config file and the environment. Empty fields are ignored.
type Overrides struct {
	AppID         string
	RendezvousURL string
	RelayURL      string
	LogLevel      string
	LogFile       string
}

// Config holds runtime wiring options for building the app.
type Config struct {
	File config.File
	HTTP *http.Client // optional; defaults to http.DefaultClient
}

// LoadConfig reads path (or the defaults when path is empty), overlays the
// environment and then o.
func LoadConfig(path string, o Overrides) (config.File, error) {
	f := config.DefaultFile()
	if path != "" {
		var err error
		if f, err = config.Load(path); err != nil {
			return config.File{}, err
		}
	}
	f = config.ApplyEnv(f)

	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&f.Session.AppID, o.AppID)
	set(&f.Session.RendezvousURL, o.RendezvousURL)
	set(&f.Session.RelayURL, o.RelayURL)
	set(&f.Logging.Level, o.LogLevel)
	set(&f.Logging.File, o.LogFile)

	if err := f.Session.Validate(); err != nil {
		return config.File{}, err
	}
	return f, nil
}
