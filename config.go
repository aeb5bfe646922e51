package shellauth

import "errors"

// Config groups the tunables of the session core. Zero values are filled by
// the builder's defaults; a fully custom Config must pass [Config.Validate].
type Config struct {
	Storage StorageConfig
	Routes  RouteConfig
	Events  EventConfig
}

// StorageConfig controls session persistence.
type StorageConfig struct {
	// Key is the persistence key the serialized session lives under.
	Key string
}

// RouteConfig names the three routes the core needs to know about. The
// guard redirects to LoginPath and HomePath; the facade navigates between
// all three.
type RouteConfig struct {
	LoginPath    string
	RegisterPath string
	HomePath     string
}

// EventConfig controls the asynchronous event dispatcher.
type EventConfig struct {
	Enabled    bool
	BufferSize int
	// DropIfFull drops events instead of blocking the auth path when the
	// buffer is saturated.
	DropIfFull bool
}

func defaultConfig() Config {
	return Config{
		Storage: StorageConfig{Key: "user"},
		Routes: RouteConfig{
			LoginPath:    "/login",
			RegisterPath: "/register",
			HomePath:     "/",
		},
		Events: EventConfig{
			Enabled:    true,
			BufferSize: 64,
			DropIfFull: true,
		},
	}
}

// Validate checks the configuration for values the core cannot operate with.
func (c Config) Validate() error {
	if c.Storage.Key == "" {
		return errors.New("storage key must not be empty")
	}
	if c.Routes.LoginPath == "" || c.Routes.RegisterPath == "" || c.Routes.HomePath == "" {
		return errors.New("login, register, and home routes must all be set")
	}
	if c.Routes.LoginPath == c.Routes.HomePath || c.Routes.RegisterPath == c.Routes.HomePath {
		return errors.New("home route must differ from the login and register routes")
	}
	if c.Events.Enabled && c.Events.BufferSize < 0 {
		return errors.New("event buffer size must not be negative")
	}
	return nil
}
