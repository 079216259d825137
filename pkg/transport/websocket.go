package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/gabrielmiguelok/tabkit/pkg/core"
	"github.com/gabrielmiguelok/tabkit/pkg/logging"
	"github.com/gabrielmiguelok/tabkit/pkg/metrics"
)

// Handler errors.
var (
	ErrOriginNotAllowed = errors.New("origin not allowed")
	ErrInvalidEvent     = errors.New("malformed event")
)

// Config configures the WebSocket handler.
type Config struct {
	// AllowedOrigins lists origins permitted besides the request host.
	// "*" allows any origin.
	AllowedOrigins []string

	// InsecureDevMode disables origin validation (ONLY for development).
	InsecureDevMode bool

	// MaxMessageSize caps a single client event in bytes.
	MaxMessageSize int64

	// ReadTimeout closes connections idle for longer.
	ReadTimeout time.Duration

	// WriteTimeout bounds a single frame write.
	WriteTimeout time.Duration

	// Metrics records sessions, events and render times when set.
	Metrics *metrics.Metrics
}

// DefaultConfig returns secure default configuration.
func DefaultConfig() Config {
	return Config{
		MaxMessageSize: 64 * 1024,
		ReadTimeout:    5 * time.Minute,
		WriteTimeout:   10 * time.Second,
	}
}

// Handler upgrades requests and runs one component per connection. Events
// of a connection are handled one at a time, so components need no locking.
type Handler struct {
	factory func() core.Component
	config  Config
	logger  logging.Logger
}

// NewHandler creates a handler mounting a fresh component from factory
// for every connection.
func NewHandler(factory func() core.Component, config Config, logger logging.Logger) *Handler {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	return &Handler{factory: factory, config: config, logger: logger}
}

// isOriginAllowed checks if the origin is allowed for WebSocket connections.
func (h *Handler) isOriginAllowed(origin, requestHost string) bool {
	if h.config.InsecureDevMode || origin == "" {
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if originURL.Host == requestHost {
		return true
	}

	for _, allowed := range h.config.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
		if allowedURL, err := url.Parse(allowed); err == nil && allowedURL.Host != "" && allowedURL.Host == originURL.Host {
			return true
		}
	}
	return false
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log, ok := logging.FromContext(r.Context())
	if !ok {
		log = h.logger
	}

	origin := r.Header.Get("Origin")
	if !h.isOriginAllowed(origin, r.Host) {
		log.Warn("websocket origin rejected", logging.String("origin", origin))
		http.Error(w, ErrOriginNotAllowed.Error(), http.StatusForbidden)
		return
	}

	// Origin was checked above; the library's same-host check would reject
	// explicitly allowed cross-origin clients.
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		log.Warn("websocket accept failed", logging.Err(err))
		return
	}
	defer conn.CloseNow()

	if h.config.MaxMessageSize > 0 {
		conn.SetReadLimit(h.config.MaxMessageSize)
	}

	params := core.Params{}
	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}

	ctx := r.Context()
	err = h.serve(ctx, conn, params, log)
	switch {
	case err == nil, websocket.CloseStatus(err) == websocket.StatusNormalClosure,
		websocket.CloseStatus(err) == websocket.StatusGoingAway:
		conn.Close(websocket.StatusNormalClosure, "")
	default:
		log.Warn("websocket session ended", logging.Err(err))
		conn.Close(websocket.StatusInternalError, "session error")
	}
}

func (h *Handler) serve(ctx context.Context, conn *websocket.Conn, params core.Params, log logging.Logger) error {
	comp := h.factory()
	if err := comp.Mount(ctx, params); err != nil {
		return fmt.Errorf("mount %s: %w", comp.Name(), err)
	}
	log = log.With(logging.String("component", comp.Name()))
	log.Info("live session connected")
	h.config.Metrics.SessionOpened()
	defer h.config.Metrics.SessionClosed()

	if err := h.write(ctx, conn, h.render(ctx, comp, "")); err != nil {
		return err
	}

	for {
		ev, err := h.read(ctx, conn)
		if errors.Is(err, ErrInvalidEvent) {
			if err := h.write(ctx, conn, Frame{Type: FrameError, Error: err.Error()}); err != nil {
				return err
			}
			continue
		}
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				h.unmount(ctx, comp, log)
			}
			return err
		}

		if err := h.write(ctx, conn, h.handle(ctx, comp, ev, log)); err != nil {
			return err
		}
	}
}

func (h *Handler) unmount(ctx context.Context, comp core.Component, log logging.Logger) {
	u, ok := comp.(core.Unmounter)
	if !ok {
		return
	}
	if err := u.Unmount(ctx); err != nil {
		log.Warn("unmount failed", logging.Err(err))
	}
}

func (h *Handler) read(ctx context.Context, conn *websocket.Conn) (Event, error) {
	if h.config.ReadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.config.ReadTimeout)
		defer cancel()
	}

	_, data, err := conn.Read(ctx)
	if err != nil {
		return Event{}, err
	}

	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil || ev.Event == "" {
		return Event{}, ErrInvalidEvent
	}
	return ev, nil
}

func (h *Handler) handle(ctx context.Context, comp core.Component, ev Event, log logging.Logger) Frame {
	err := comp.HandleEvent(ctx, ev.Event, ev.Payload)
	label := ev.Event
	if errors.Is(err, core.ErrUnknownEvent) {
		label = "unknown"
	}
	h.config.Metrics.EventHandled(label, err)
	if err != nil {
		log.Debug("event rejected", logging.String("event", ev.Event), logging.Any("payload", ev.Payload), logging.Err(err))
		return Frame{Ref: ev.Ref, Type: FrameError, Error: err.Error()}
	}
	return h.render(ctx, comp, ev.Ref)
}

func (h *Handler) render(ctx context.Context, comp core.Component, ref string) Frame {
	var buf bytes.Buffer
	start := time.Now()
	err := comp.Render(ctx).Render(ctx, &buf)
	h.config.Metrics.ObserveRender(time.Since(start))
	if err != nil {
		return Frame{Ref: ref, Type: FrameError, Error: err.Error()}
	}
	return Frame{Ref: ref, Type: FrameRender, HTML: buf.String()}
}

func (h *Handler) write(ctx context.Context, conn *websocket.Conn, frame Frame) error {
	if h.config.WriteTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.config.WriteTimeout)
		defer cancel()
	}
	return wsjson.Write(ctx, conn, frame)
}
