// Package event provides the session core's asynchronous event model:
// the canonical [Event] struct, the [Sink] consumer interface with three
// stock implementations, and the buffered [Dispatcher] that decouples
// event delivery from the authentication path.
//
// # What this package must NOT do
//
//   - Import the shellauth root package (no upward imports).
//   - Block the authentication path: when DropIfFull is set, saturation
//     drops events and increments a counter instead of stalling Emit.
package event
