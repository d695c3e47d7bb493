package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	// DefaultAppID distinguishes Pylon's protocol dialect from other
	// clients sharing the same rendezvous infrastructure.
	DefaultAppID = "pylon.dev/file-xfer-v1"

	// DefaultRendezvousURL is the public rendezvous service.
	DefaultRendezvousURL = "https://rendezvous.pylon.dev/v1"

	// DefaultRelayURL is the public transit relay.
	DefaultRelayURL = "tcp:transit.pylon.dev:4001"
)

// Environment overrides, applied by ApplyEnv.
const (
	EnvAppID         = "PYLON_APP_ID"
	EnvRendezvousURL = "PYLON_RENDEZVOUS_URL"
	EnvRelayURL      = "PYLON_RELAY_URL"
	EnvLogLevel      = "PYLON_LOG_LEVEL"
	EnvLogFile       = "PYLON_LOG_FILE"
)

var (
	ErrEmptyAppID       = errors.New("config: app_id must not be empty")
	ErrBadRendezvousURL = errors.New("config: rendezvous_url must be an absolute http(s) URL")
)

// Config is the identity/endpoint bundle used to open a handshake.
type Config struct {
	AppID         string `toml:"app_id"`
	RendezvousURL string `toml:"rendezvous_url"`
	RelayURL      string `toml:"relay_url"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		AppID:         DefaultAppID,
		RendezvousURL: DefaultRendezvousURL,
		RelayURL:      DefaultRelayURL,
	}
}

// WithDefaults returns c with every empty field replaced by its default.
func (c Config) WithDefaults() Config {
	d := Default()
	if c.AppID == "" {
		c.AppID = d.AppID
	}
	if c.RendezvousURL == "" {
		c.RendezvousURL = d.RendezvousURL
	}
	if c.RelayURL == "" {
		c.RelayURL = d.RelayURL
	}
	return c
}

// Validate checks the fields that are used before any transfer starts.
// The relay URL is deliberately not checked here: a bad relay address is
// reported when a transfer resolves it.
func (c Config) Validate() error {
	if strings.TrimSpace(c.AppID) == "" {
		return ErrEmptyAppID
	}
	u, err := url.Parse(c.RendezvousURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrBadRendezvousURL, c.RendezvousURL)
	}
	return nil
}

// Logging configures the log backend of the CLI.
type Logging struct {
	File    string `toml:"file"`
	Level   string `toml:"level"`
	Disable bool   `toml:"disable"`
}

// File is the TOML document read by the CLI.
//
//	[session]
//	app_id = "pylon.dev/file-xfer-v1"
//	rendezvous_url = "https://rendezvous.pylon.dev/v1"
//	relay_url = "tcp:transit.pylon.dev:4001"
//
//	[logging]
//	level = "INFO"
type File struct {
	Session Config  `toml:"session"`
	Logging Logging `toml:"logging"`
}

// DefaultFile returns the document used when no file is given.
func DefaultFile() File {
	return File{
		Session: Default(),
		Logging: Logging{Level: "NOTICE"},
	}
}

// Load reads path, fills defaults and validates the result.
func Load(path string) (File, error) {
	var f File
	md, err := toml.DecodeFile(path, &f)
	if err != nil {
		return File{}, fmt.Errorf("failed to load config file (%s): %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return File{}, fmt.Errorf("config parse failed (%s): unknown keys %v", path, undecoded)
	}
	f.Session = f.Session.WithDefaults()
	if f.Logging.Level == "" {
		f.Logging.Level = DefaultFile().Logging.Level
	}
	if err := f.Session.Validate(); err != nil {
		return File{}, err
	}
	return f, nil
}

// ApplyEnv overlays the PYLON_* environment variables onto f.
func ApplyEnv(f File) File {
	return applyEnv(f, os.Getenv)
}

func applyEnv(f File, getenv func(string) string) File {
	if v := strings.TrimSpace(getenv(EnvAppID)); v != "" {
		f.Session.AppID = v
	}
	if v := strings.TrimSpace(getenv(EnvRendezvousURL)); v != "" {
		f.Session.RendezvousURL = v
	}
	if v := strings.TrimSpace(getenv(EnvRelayURL)); v != "" {
		f.Session.RelayURL = v
	}
	if v := strings.TrimSpace(getenv(EnvLogLevel)); v != "" {
		f.Logging.Level = v
	}
	if v := strings.TrimSpace(getenv(EnvLogFile)); v != "" {
		f.Logging.File = v
	}
	return f
}
