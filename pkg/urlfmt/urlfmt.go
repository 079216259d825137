// Package urlfmt builds absolute action URLs from relative paths.
package urlfmt

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Placeholder marks where a parent id is substituted in an action path.
const Placeholder = "%s"

// ErrInvalidBase is returned when the base URL cannot be used for joining.
var ErrInvalidBase = errors.New("invalid base url")

// Formatter resolves paths against a base URL. The zero value produces
// root-relative paths.
type Formatter struct {
	base string
}

// New returns a Formatter rooted at base. An empty base yields
// root-relative URLs.
func New(base string) (*Formatter, error) {
	if base == "" {
		return &Formatter{}, nil
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBase, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q must be absolute", ErrInvalidBase, base)
	}
	u.RawQuery = ""
	u.Fragment = ""
	return &Formatter{base: strings.TrimRight(u.String(), "/")}, nil
}

// URL returns path resolved against the base. Paths that already carry a
// scheme are returned unchanged.
func (f *Formatter) URL(path string) string {
	if isAbsolute(path) {
		return path
	}
	var base string
	if f != nil {
		base = f.base
	}
	return base + "/" + strings.TrimLeft(path, "/")
}

// Action resolves action and substitutes every Placeholder with the
// path-escaped parent id.
func (f *Formatter) Action(action, parentID string) string {
	return strings.ReplaceAll(f.URL(action), Placeholder, url.PathEscape(parentID))
}

func isAbsolute(path string) bool {
	u, err := url.Parse(path)
	return err == nil && u.Scheme != ""
}
