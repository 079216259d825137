package tabbable

import "github.com/gabrielmiguelok/tabkit/pkg/nav"

// Builder assembles a Config through chained calls. Setters never validate;
// problems surface when the built Config is rendered. A Builder is not safe
// for concurrent use.
type Builder struct {
	cfg Config
}

// NewBuilder returns a builder for a tab-style widget with no items.
func NewBuilder() *Builder {
	return &Builder{cfg: Config{Style: StyleTab}}
}

// Tabs switches to tab markup and replaces the items.
func (b *Builder) Tabs(items ...Item) *Builder {
	return b.as(StyleTab, items)
}

// Pills switches to pill markup and replaces the items.
func (b *Builder) Pills(items ...Item) *Builder {
	return b.as(StylePill, items)
}

func (b *Builder) as(style nav.Style, items []Item) *Builder {
	b.cfg.Style = style
	return b.WithContents(items...)
}

// WithContents replaces the items without touching the style.
func (b *Builder) WithContents(items ...Item) *Builder {
	b.cfg.Items = append([]Item(nil), items...)
	return b
}

// Active sets the index of the initially visible pane.
func (b *Builder) Active(index int) *Builder {
	b.cfg.Active = index
	return b
}

// WithFade enables fade transitions.
func (b *Builder) WithFade() *Builder {
	b.cfg.Fade = true
	return b
}

// WithParentID sets the namespacing parent id.
func (b *Builder) WithParentID(id string) *Builder {
	b.cfg.ParentID = id
	return b
}

// Build returns a snapshot of the configuration. Later builder calls do
// not affect it.
func (b *Builder) Build() Config {
	return b.cfg.Clone()
}
