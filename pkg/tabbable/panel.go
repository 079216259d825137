package tabbable

import (
	"fmt"
	"html"
	"io"
	"maps"

	"github.com/gabrielmiguelok/tabkit/pkg/attrs"
	"github.com/gabrielmiguelok/tabkit/pkg/logging"
	"github.com/gabrielmiguelok/tabkit/pkg/nav"
	"github.com/gabrielmiguelok/tabkit/pkg/pool"
	"github.com/gabrielmiguelok/tabkit/pkg/slug"
	"github.com/gabrielmiguelok/tabkit/pkg/urlfmt"
)

// Link attribute names rewritten as action URLs.
var actionKeys = []string{"data-action", "action"}

// Panel renders Configs. It holds only collaborators and is safe for
// concurrent use as long as they are.
type Panel struct {
	nav    nav.Renderer
	attrs  attrs.Serializer
	slug   slug.Func
	urls   *urlfmt.Formatter
	logger logging.Logger
}

// Option configures a Panel.
type Option func(*Panel)

// WithNavRenderer sets the header renderer.
func WithNavRenderer(r nav.Renderer) Option {
	return func(p *Panel) {
		p.nav = r
	}
}

// WithSerializer sets the attribute serializer used for panes. It is also
// handed to the default nav renderer.
func WithSerializer(s attrs.Serializer) Option {
	return func(p *Panel) {
		p.attrs = s
	}
}

// WithSlugger sets the function deriving pane ids from titles.
func WithSlugger(fn slug.Func) Option {
	return func(p *Panel) {
		p.slug = fn
	}
}

// WithURLFormatter sets the formatter for action links.
func WithURLFormatter(f *urlfmt.Formatter) Option {
	return func(p *Panel) {
		p.urls = f
	}
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(p *Panel) {
		p.logger = l
	}
}

// NewPanel creates a panel with Bootstrap defaults for every collaborator
// not set by opts.
func NewPanel(opts ...Option) *Panel {
	p := &Panel{
		attrs:  attrs.Default,
		slug:   slug.Make,
		logger: logging.NopLogger{},
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.nav == nil {
		p.nav = nav.Bootstrap{Serializer: p.attrs}
	}
	return p
}

// NavOptions returns the header options for a style. The header is always
// a tablist and never auto-routed.
func (p *Panel) NavOptions(style nav.Style) nav.Options {
	return nav.Options{
		Style:      style,
		Attributes: attrs.New("role", "tablist"),
		AutoRoute:  false,
	}
}

// PaneID returns the element id of the pane for it. Nav anchors point at
// the same id.
func (p *Panel) PaneID(it Item) string {
	if it.ContentID != "" {
		return it.ContentID
	}
	return p.slug(it.Title)
}

// NavLinks derives the header link descriptors, index-aligned with cfg.Items.
func (p *Panel) NavLinks(cfg Config) ([]nav.Link, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	style := cfg.style()
	links := make([]nav.Link, 0, len(cfg.Items))
	for i, it := range cfg.Items {
		links = append(links, nav.Link{
			URL:        "#" + p.PaneID(it),
			Title:      it.Title,
			Attributes: p.linkAttributes(it, style, cfg.ParentID),
			Active:     i == cfg.Active,
			ParentID:   cfg.ParentID,
		})
	}
	return links, nil
}

func (p *Panel) linkAttributes(it Item, style nav.Style, parentID string) attrs.List {
	l := attrs.New("role", "tab", "data-toggle", string(style))
	if it.ContentID != "" {
		l.Set("data-tab-content-id", it.ContentID)
	}
	if len(it.Data) == 0 {
		return l
	}

	// it.Data belongs to the caller's Config; rewrite a copy.
	data := it.Data
	cloned := false
	if parentID != "" {
		for _, key := range actionKeys {
			action, ok := it.Data[key]
			if !ok {
				continue
			}
			if !cloned {
				data = maps.Clone(it.Data)
				cloned = true
			}
			data[key] = p.urls.Action(action, parentID)
		}
	}
	l.Merge(data)
	return l
}

// Pane is one rendered content block before serialization.
type Pane struct {
	ID         string
	Attributes attrs.List
	Content    string
}

// Panes derives the content panes, index-aligned with cfg.Items.
func (p *Panel) Panes(cfg Config) ([]Pane, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	panes := make([]Pane, 0, len(cfg.Items))
	for i, it := range cfg.Items {
		id := p.PaneID(it)

		l := attrs.FromMap(it.Attributes)
		l.Set("class", paneClass(cfg.Fade, i == cfg.Active))
		l.Set("id", id)

		panes = append(panes, Pane{ID: id, Attributes: l, Content: it.Content})
	}
	return panes, nil
}

func paneClass(fade, active bool) string {
	class := "tab-pane"
	if fade {
		class += " fade"
	}
	if active {
		if fade {
			class += " in active"
		} else {
			class += " active"
		}
	}
	return class
}

// Render returns the header followed by the content block. On error
// nothing is returned.
func (p *Panel) Render(cfg Config) (string, error) {
	buf := pool.GetBuffer()
	defer pool.PutBuffer(buf)

	if err := p.RenderTo(buf, cfg); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderTo writes the widget to w. The markup is assembled completely
// before the first write, so a failed render writes nothing.
func (p *Panel) RenderTo(w io.Writer, cfg Config) error {
	links, err := p.NavLinks(cfg)
	if err != nil {
		return err
	}

	style := cfg.style()
	header, err := p.nav.Render(p.NavOptions(style), links)
	if err != nil {
		return fmt.Errorf("render navigation: %w", err)
	}

	panes, err := p.Panes(cfg)
	if err != nil {
		return err
	}

	buf := pool.GetBuffer()
	defer pool.PutBuffer(buf)

	buf.WriteString(header)
	buf.WriteString("<div class='tab-content'>")
	buf.WriteString("<input type='hidden' id='tab-parent_id' value='")
	buf.WriteString(html.EscapeString(cfg.ParentID))
	buf.WriteString("'>")
	for i, pane := range panes {
		serialized, err := p.attrs.Serialize(pane.Attributes)
		if err != nil {
			return fmt.Errorf("render pane %d: %w", i, err)
		}
		buf.WriteString("<div ")
		buf.WriteString(serialized)
		buf.WriteString(">")
		buf.WriteString(pane.Content)
		buf.WriteString("</div>")
	}
	buf.WriteString("</div>")

	p.logger.Debug("tabbed panel rendered",
		logging.Int("items", len(cfg.Items)),
		logging.String("style", string(style)),
		logging.Int("active", cfg.Active),
		logging.Bool("fade", cfg.Fade),
	)

	_, err = w.Write(buf.Bytes())
	return err
}

var defaultPanel = NewPanel()

// Render renders cfg with a default Panel.
func Render(cfg Config) (string, error) {
	return defaultPanel.Render(cfg)
}
