package app

import (
	"net/http"

	"pylon/internal/config"
	"pylon/internal/log"
	"pylon/internal/rendezvous"
	"pylon/internal/services/session"
	"pylon/internal/wormhole"
)

// Wire bundles the log backend and the clients sessions are built from.
type Wire struct {
	Config     config.Config
	Log        *log.Backend
	Rendezvous *rendezvous.Client
	Connector  *wormhole.Connector
	HTTP       *http.Client
}

// NewWire constructs the dependency graph from cfg.
func NewWire(cfg Config) (*Wire, error) {
	backend, err := log.New(cfg.File.Logging.File, cfg.File.Logging.Level, cfg.File.Logging.Disable)
	if err != nil {
		return nil, err
	}

	httpClient := cfg.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	sc := cfg.File.Session.WithDefaults()
	rc := rendezvous.NewClient(sc.RendezvousURL, sc.AppID, httpClient)
	conn := wormhole.NewConnector(rc, sc.AppID, wormhole.WithLogger(backend.GetLogger("wormhole")))

	return &Wire{
		Config:     sc,
		Log:        backend,
		Rendezvous: rc,
		Connector:  conn,
		HTTP:       httpClient,
	}, nil
}

// NewSession returns an Idle session using the shared connector.
func (w *Wire) NewSession(opts ...session.Option) *session.Session {
	base := []session.Option{
		session.WithConnector(w.Connector),
		session.WithLogger(w.Log.GetLogger("session")),
	}
	return session.New(w.Config, append(base, opts...)...)
}

// Close releases the log backend.
func (w *Wire) Close() error {
	return w.Log.Close()
}
