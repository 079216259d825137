// Package live keeps a tabbed panel in sync with the browser. The active
// pane survives reloads because each session's Config is persisted.
package live

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"

	"github.com/gabrielmiguelok/tabkit/pkg/core"
	"github.com/gabrielmiguelok/tabkit/pkg/logging"
	"github.com/gabrielmiguelok/tabkit/pkg/state"
	"github.com/gabrielmiguelok/tabkit/pkg/tabbable"
)

// Events understood by TabsView.
const (
	EventSelect = "select"
	EventNext   = "next"
	EventPrev   = "prev"
)

// ContainerID is the id of the element wrapping the rendered panel.
const ContainerID = "tabkit-live"

// TabsView is a live component around one tabbed panel.
type TabsView struct {
	panel    *tabbable.Panel
	sessions *state.Sessions
	initial  tabbable.Config
	logger   logging.Logger

	sessionID string
	cfg       tabbable.Config
}

// NewTabsView creates a view that starts new sessions from initial.
func NewTabsView(panel *tabbable.Panel, sessions *state.Sessions, initial tabbable.Config, logger logging.Logger) *TabsView {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	return &TabsView{
		panel:    panel,
		sessions: sessions,
		initial:  initial,
		logger:   logger,
	}
}

// Name implements core.Component.
func (v *TabsView) Name() string {
	return "tabs"
}

// SessionID returns the session bound by Mount.
func (v *TabsView) SessionID() string {
	return v.sessionID
}

// Config returns the current configuration.
func (v *TabsView) Config() tabbable.Config {
	return v.cfg
}

// Mount resumes the session named by the "session" parameter, or starts a
// new one from the initial configuration when it is absent or expired.
func (v *TabsView) Mount(ctx context.Context, params core.Params) error {
	if id := params.Get("session"); id != "" {
		cfg, err := v.sessions.Load(ctx, id)
		switch {
		case err == nil:
			v.sessionID, v.cfg = id, cfg
			v.logger.Debug("session resumed", logging.String("session", id))
			return nil
		case !errors.Is(err, state.ErrKeyNotFound):
			return fmt.Errorf("load session: %w", err)
		}
	}

	cfg := v.initial.Clone()
	id, err := v.sessions.Create(ctx, cfg)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	v.sessionID, v.cfg = id, cfg
	v.logger.Debug("session created", logging.String("session", id))
	return nil
}

// HandleEvent changes the active pane and persists the result.
//
//	select {"index": n}  activates pane n
//	next, prev           move one pane, wrapping at either end
func (v *TabsView) HandleEvent(ctx context.Context, event string, payload map[string]any) error {
	n := len(v.cfg.Items)
	active := v.cfg.Active

	switch event {
	case EventSelect:
		index, err := core.PayloadInt(payload, "index")
		if err != nil {
			return err
		}
		if index < 0 || index >= n {
			return fmt.Errorf("%w: index %d out of range", core.ErrInvalidPayload, index)
		}
		active = index
	case EventNext, EventPrev:
		if n == 0 {
			return nil
		}
		step := 1
		if event == EventPrev {
			step = -1
		}
		if active < 0 || active >= n {
			active = 0
		} else {
			active = (active + step + n) % n
		}
	default:
		return fmt.Errorf("%w: %q", core.ErrUnknownEvent, event)
	}

	next := v.cfg.WithActive(active)
	if err := v.sessions.Save(ctx, v.sessionID, next); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	v.cfg = next
	return nil
}

// Unmount deletes the session. The client closes normally only when it is
// done with the panel; page reloads close with going-away and keep it.
func (v *TabsView) Unmount(ctx context.Context) error {
	if v.sessionID == "" {
		return nil
	}
	if err := v.sessions.Delete(ctx, v.sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	v.logger.Debug("session deleted", logging.String("session", v.sessionID))
	return nil
}

// Render implements core.Component. The panel is wrapped in a container
// carrying the session id so the client can reconnect to it.
func (v *TabsView) Render(ctx context.Context) core.Renderer {
	cfg := v.cfg
	sessionID := v.sessionID
	return core.RendererFunc(func(ctx context.Context, w io.Writer) error {
		markup, err := v.panel.Render(cfg)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "<div id='%s' data-session='%s'>%s</div>",
			ContainerID, html.EscapeString(sessionID), markup)
		return err
	})
}
