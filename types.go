package shellauth

import (
	"context"
	"io"

	"github.com/articleartisan/shellauth/internal/event"
)

// UserRecord is the identity carried by an authenticated session. It is
// immutable once received from the authenticator: the store copies it on
// the way in and on the way out.
type UserRecord struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
}

// Valid reports whether the record can back a session. A persisted record
// that fails this check is discarded during hydration and treated as
// "no session".
func (u UserRecord) Valid() bool {
	return u.ID != "" && u.Username != ""
}

// AuthPayload is the data half of a successful [AuthResponse]. Token and
// ExpiresIn are passed through to the host bridge; the session core reads
// only User.
type AuthPayload struct {
	User      UserRecord `json:"user"`
	Token     string     `json:"token"`
	ExpiresIn int        `json:"expiresIn"`
}

// AuthResponse is the envelope every [Authenticator] call resolves to.
// Success=false with a Message or Error string is a credential failure;
// a returned Go error is a transport failure. The store maps both to the
// same false-return contract.
type AuthResponse struct {
	Success bool         `json:"success"`
	Data    *AuthPayload `json:"data"`
	Message string       `json:"message"`
	Error   string       `json:"error,omitempty"`
}

// RegisterRequest carries the registration form fields. The store forwards
// all four verbatim; confirm-password matching is the authenticator's
// concern (the reference mock adapter enforces it).
type RegisterRequest struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
}

// Authenticator is the typed boundary to the remote credential backend.
// Implementations may block on network I/O; the store guarantees the
// loading flag brackets every call.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*AuthResponse, error)
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	Logout(ctx context.Context) error
}

// Navigator performs view transitions for the shell's router.
type Navigator interface {
	Navigate(path string)
}

// NotificationKind classifies user-visible notifications.
type NotificationKind uint8

const (
	// NotifySuccess marks a confirmation message.
	NotifySuccess NotificationKind = iota
	// NotifyError marks a failure message.
	NotifyError
	// NotifyWarning marks a non-fatal warning.
	NotifyWarning
	// NotifyInfo marks a neutral status message.
	NotifyInfo
)

// String returns the lowercase kind name.
func (k NotificationKind) String() string {
	switch k {
	case NotifySuccess:
		return "success"
	case NotifyError:
		return "error"
	case NotifyWarning:
		return "warning"
	case NotifyInfo:
		return "info"
	default:
		return "unknown"
	}
}

// Notification is a fire-and-forget user-visible message emitted by the
// [Facade].
type Notification struct {
	Kind NotificationKind
	Text string
}

// Notifier receives notifications. Implementations must not block; the
// facade calls it inline on the UI path.
type Notifier interface {
	Notify(n Notification)
}

// Event is a structured session event emitted by the [Store].
type Event = event.Event

// EventSink receives [Event] values from the store's dispatcher.
type EventSink = event.Sink

// EventPriority orders events for downstream consumers.
type EventPriority = event.Priority

const (
	// PriorityLow marks diagnostic chatter.
	PriorityLow = event.PriorityLow
	// PriorityNormal marks routine session transitions.
	PriorityNormal = event.PriorityNormal
	// PriorityHigh marks failures worth surfacing.
	PriorityHigh = event.PriorityHigh
	// PriorityCritical marks state divergence that needs operator attention.
	PriorityCritical = event.PriorityCritical
)

// NoOpSink is an [EventSink] that silently discards all events.
type NoOpSink = event.NoOpSink

// ChannelSink is a buffered channel-based [EventSink].
type ChannelSink = event.ChannelSink

// JSONWriterSink is an [EventSink] that writes JSON-encoded events to an
// [io.Writer].
type JSONWriterSink = event.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return event.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return event.NewJSONWriterSink(w)
}
