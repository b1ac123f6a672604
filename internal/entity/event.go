// Structure of the event stream models in Chime.

package entity

// Event is one payload fanned out to connected clients.
// Only the "type" field carries structural meaning, everything else is
// forwarded as-is.
type Event map[string]interface{}

// Known event discriminants.
const (
	EventWelcome  = "welcome"
	EventNewTimer = "new timer"
)

// Type returns the event discriminant, or "" when absent.
func (e Event) Type() string {
	t, _ := e["type"].(string)
	return t
}

// Connection is one open event stream to a single client.
// Owned by the stream handler that created it, referenced by the
// registry while the stream is open.
type Connection struct {
	// Unique Connection ID
	ID string
	// Events queued for delivery to this client
	Channel chan Event
}
