package shellauth

import (
	"github.com/articleartisan/shellauth/internal/event"
	"github.com/articleartisan/shellauth/storage"
)

// Builder assembles a [Store]. One builder builds one store; the session is
// owned by whoever holds the returned pointer, there is no package-level
// singleton.
type Builder struct {
	config Config

	authenticator Authenticator
	kv            storage.KV
	sink          EventSink

	built bool
}

// New returns a Builder preloaded with the default configuration.
func New() *Builder {
	return &Builder{config: defaultConfig()}
}

// WithConfig replaces the entire configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithAuthenticator sets the remote credential backend. Required.
func (b *Builder) WithAuthenticator(a Authenticator) *Builder {
	b.authenticator = a
	return b
}

// WithStorage sets the persistence backend. Required.
func (b *Builder) WithStorage(kv storage.KV) *Builder {
	b.kv = kv
	return b
}

// WithEventSink sets the sink receiving session events. Ignored when
// events are disabled in the configuration.
func (b *Builder) WithEventSink(sink EventSink) *Builder {
	b.sink = sink
	return b
}

// WithEventsEnabled toggles event dispatch without replacing the whole
// configuration.
func (b *Builder) WithEventsEnabled(enabled bool) *Builder {
	b.config.Events.Enabled = enabled
	return b
}

// Build validates the configuration and wiring and returns the session
// store. The builder cannot be reused afterwards.
func (b *Builder) Build() (*Store, error) {
	if b.built {
		return nil, ErrBuilderUsed
	}

	if err := b.config.Validate(); err != nil {
		return nil, err
	}
	if b.authenticator == nil {
		return nil, ErrAuthenticatorRequired
	}
	if b.kv == nil {
		return nil, ErrStorageRequired
	}

	dispatcher := event.NewDispatcher(event.Config{
		Enabled:    b.config.Events.Enabled,
		BufferSize: b.config.Events.BufferSize,
		DropIfFull: b.config.Events.DropIfFull,
	}, b.sink)

	b.built = true

	return &Store{
		cfg:    b.config,
		auth:   b.authenticator,
		kv:     b.kv,
		events: dispatcher,
	}, nil
}
