// Package core defines the lifecycle shared by live components: mount with
// connection parameters, react to client events, render markup.
package core

import (
	"context"
	"errors"
	"io"
	"strconv"
)

// Event handling errors.
var (
	ErrUnknownEvent   = errors.New("unknown event")
	ErrInvalidPayload = errors.New("invalid event payload")
)

// Component is a stateful server-side view driven by client events.
type Component interface {
	// Name returns the unique identifier for this component type.
	Name() string

	// Mount is called once per connection before the first render.
	Mount(ctx context.Context, params Params) error

	// HandleEvent processes a client interaction. Unrecognized events
	// return ErrUnknownEvent.
	HandleEvent(ctx context.Context, event string, payload map[string]any) error

	// Render returns the current markup of the component.
	Render(ctx context.Context) Renderer
}

// Unmounter is implemented by components that release their state when the
// client closes the connection normally.
type Unmounter interface {
	Unmount(ctx context.Context) error
}

// Renderer is the interface for rendering HTML content.
type Renderer interface {
	Render(ctx context.Context, w io.Writer) error
}

// RendererFunc is an adapter to allow ordinary functions to be used as Renderers.
type RendererFunc func(ctx context.Context, w io.Writer) error

func (f RendererFunc) Render(ctx context.Context, w io.Writer) error {
	return f(ctx, w)
}

// Params contains URL parameters and query strings from the connection.
type Params map[string]string

// Get returns a parameter value or empty string if not found.
func (p Params) Get(key string) string {
	return p[key]
}

// GetDefault returns a parameter value or the default if not found.
func (p Params) GetDefault(key, defaultValue string) string {
	if v, ok := p[key]; ok {
		return v
	}
	return defaultValue
}

// PayloadInt reads an integer from an event payload. JSON numbers arrive
// as float64 and form values as strings; both are accepted.
func PayloadInt(payload map[string]any, key string) (int, error) {
	switch v := payload[key].(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v != float64(int(v)) {
			return 0, ErrInvalidPayload
		}
		return int(v), nil
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, ErrInvalidPayload
		}
		return n, nil
	default:
		return 0, ErrInvalidPayload
	}
}
