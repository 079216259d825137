// Package nav renders Bootstrap navigation headers from link descriptors.
package nav

import (
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/gabrielmiguelok/tabkit/pkg/attrs"
)

// ErrUnknownStyle is returned when a header is rendered with an unsupported style.
var ErrUnknownStyle = errors.New("unknown navigation style")

// Style selects tab or pill markup. Its value is also the data-toggle
// token understood by the client-side tab plugin.
type Style string

const (
	Tab  Style = "tab"
	Pill Style = "pill"
)

// Class returns the CSS class of the nav list for the style.
func (s Style) Class() (string, error) {
	switch s {
	case Tab:
		return "nav-tabs", nil
	case Pill:
		return "nav-pills", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStyle, string(s))
	}
}

// Link describes one entry of the header.
type Link struct {
	// URL is the href of the anchor.
	URL string

	// Title is the visible label. It is escaped on output.
	Title string

	// Attributes are placed on the anchor after href.
	Attributes attrs.List

	// Active marks the entry as selected.
	Active bool

	// Disabled greys the entry out.
	Disabled bool

	// ParentID namespaces the link when several headers share a page.
	// The Bootstrap renderer does not emit it; custom renderers may.
	ParentID string
}

// Options configures a header render.
type Options struct {
	Style Style

	// Attributes are placed on the <ul> after its class.
	Attributes attrs.List

	// AutoRoute marks links whose URL equals CurrentURL as active, in
	// addition to links flagged Active.
	AutoRoute  bool
	CurrentURL string

	Justified bool
	Stacked   bool
}

// Renderer turns link descriptors into header markup. Implementations must
// not retain or modify links.
type Renderer interface {
	Render(opts Options, links []Link) (string, error)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(opts Options, links []Link) (string, error)

// Render implements Renderer.
func (f RendererFunc) Render(opts Options, links []Link) (string, error) {
	return f(opts, links)
}

// Bootstrap renders `<ul class='nav nav-tabs'>` style headers.
type Bootstrap struct {
	// Serializer formats attribute lists. Nil means attrs.Default.
	Serializer attrs.Serializer
}

// Render implements Renderer.
func (b Bootstrap) Render(opts Options, links []Link) (string, error) {
	ser := b.Serializer
	if ser == nil {
		ser = attrs.Default
	}

	styleClass, err := opts.Style.Class()
	if err != nil {
		return "", err
	}

	root := attrs.New("class", "nav")
	root.AddClass(styleClass)
	if opts.Justified {
		root.AddClass("nav-justified")
	}
	if opts.Stacked {
		root.AddClass("nav-stacked")
	}
	root.Extend(opts.Attributes)

	rootAttrs, err := ser.Serialize(root)
	if err != nil {
		return "", fmt.Errorf("nav root: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("<ul ")
	sb.WriteString(rootAttrs)
	sb.WriteString(">")

	for i, link := range links {
		item, err := b.renderLink(ser, opts, link)
		if err != nil {
			return "", fmt.Errorf("nav link %d: %w", i, err)
		}
		sb.WriteString(item)
	}

	sb.WriteString("</ul>")
	return sb.String(), nil
}

func (b Bootstrap) renderLink(ser attrs.Serializer, opts Options, link Link) (string, error) {
	var li attrs.List
	if link.Active || (opts.AutoRoute && opts.CurrentURL != "" && link.URL == opts.CurrentURL) {
		li.AddClass("active")
	}
	if link.Disabled {
		li.AddClass("disabled")
	}

	a := attrs.New("href", link.URL)
	a.Extend(link.Attributes)
	anchorAttrs, err := ser.Serialize(a)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	if li.Len() > 0 {
		liAttrs, err := ser.Serialize(li)
		if err != nil {
			return "", err
		}
		sb.WriteString("<li ")
		sb.WriteString(liAttrs)
		sb.WriteString(">")
	} else {
		sb.WriteString("<li>")
	}
	sb.WriteString("<a ")
	sb.WriteString(anchorAttrs)
	sb.WriteString(">")
	sb.WriteString(html.EscapeString(link.Title))
	sb.WriteString("</a></li>")
	return sb.String(), nil
}
