// Package transport connects live components to browsers over WebSocket.
// Clients send JSON events; the server answers each with a JSON frame
// carrying the re-rendered markup or an error.
package transport

// Frame types sent to the client.
const (
	FrameRender = "render"
	FrameError  = "error"
)

// Event is a client interaction.
type Event struct {
	// Ref correlates the reply frame with this event.
	Ref string `json:"ref,omitempty"`

	Event   string         `json:"event"`
	Payload map[string]any `json:"payload,omitempty"`
}

// Frame is a server message.
type Frame struct {
	Ref  string `json:"ref,omitempty"`
	Type string `json:"type"`

	// HTML is the full component markup for render frames.
	HTML string `json:"html,omitempty"`

	// Error describes a rejected event for error frames.
	Error string `json:"error,omitempty"`
}
