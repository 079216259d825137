// Package tabbable renders Bootstrap tab and pill widgets: a navigation
// header and the content panes it toggles, tied together by generated ids
// and data attributes.
//
// A widget is described by an immutable Config, usually assembled with a
// Builder, and rendered by a Panel:
//
//	cfg := tabbable.NewBuilder().
//		Pills(
//			tabbable.Item{Title: "Profile", Content: profileHTML},
//			tabbable.Item{Title: "Settings", Content: settingsHTML},
//		).
//		Active(1).
//		WithFade().
//		Build()
//
//	markup, err := tabbable.NewPanel().Render(cfg)
package tabbable

import (
	"errors"
	"fmt"
	"maps"

	"github.com/gabrielmiguelok/tabkit/pkg/nav"
)

// Styles accepted in Config.Style. The empty style renders as StyleTab.
const (
	StyleTab  = nav.Tab
	StylePill = nav.Pill
)

// ErrMissingField is matched by every MissingFieldError.
var ErrMissingField = errors.New("missing required field")

// MissingFieldError reports an item lacking a required field. Panel
// reports items without a title; loaders of panel files also report items
// without a content key.
type MissingFieldError struct {
	Index int
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("tab item %d: %s: %s", e.Index, ErrMissingField, e.Field)
}

func (e *MissingFieldError) Unwrap() error {
	return ErrMissingField
}

// Item is one tab: a header label and the pane it opens.
type Item struct {
	// Title labels the nav link and, without ContentID, seeds the pane id.
	Title string `msgpack:"title" mapstructure:"title" json:"title"`

	// Content is raw markup placed inside the pane. It is not escaped and
	// may be empty, for panes that client script fills from a data-action URL.
	Content string `msgpack:"content" mapstructure:"content" json:"content"`

	// ContentID overrides the slugified title as the pane id and is
	// echoed on the link as data-tab-content-id.
	ContentID string `msgpack:"content_id,omitempty" mapstructure:"content_id" json:"content_id,omitempty"`

	// Attributes are extra attributes for the pane container. Generated
	// id and class values replace same-named entries.
	Attributes map[string]string `msgpack:"attributes,omitempty" mapstructure:"attributes" json:"attributes,omitempty"`

	// Data are extra attributes for the nav link. They replace generated
	// link attributes of the same name. A data-action (or action) entry is
	// resolved as a URL and formatted with the parent id when one is set.
	Data map[string]string `msgpack:"data,omitempty" mapstructure:"data" json:"data,omitempty"`
}

func (it Item) clone() Item {
	it.Attributes = maps.Clone(it.Attributes)
	it.Data = maps.Clone(it.Data)
	return it
}

func (it Item) validate(index int) error {
	if it.Title == "" {
		return &MissingFieldError{Index: index, Field: "title"}
	}
	return nil
}

// Config is the complete description of one widget. Treat it as a value:
// Panel never modifies it, and Builder hands out independent copies.
type Config struct {
	Items []Item `msgpack:"items"`

	// Active is the index of the initially visible pane. Out-of-range
	// values leave every pane hidden.
	Active int `msgpack:"active"`

	Style nav.Style `msgpack:"style"`

	// Fade adds the fade transition classes to panes.
	Fade bool `msgpack:"fade"`

	// ParentID namespaces the widget. It is emitted in a hidden input and
	// substituted into action URLs.
	ParentID string `msgpack:"parent_id,omitempty"`
}

// Clone returns a deep copy of c.
func (c Config) Clone() Config {
	items := make([]Item, len(c.Items))
	for i, it := range c.Items {
		items[i] = it.clone()
	}
	c.Items = items
	return c
}

// WithActive returns a copy of c with a different active index.
func (c Config) WithActive(index int) Config {
	c = c.Clone()
	c.Active = index
	return c
}

func (c Config) style() nav.Style {
	if c.Style == "" {
		return StyleTab
	}
	return c.Style
}

// Validate checks that every item carries a title and content.
func (c Config) Validate() error {
	for i, it := range c.Items {
		if err := it.validate(i); err != nil {
			return err
		}
	}
	return nil
}
