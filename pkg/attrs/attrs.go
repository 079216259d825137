// Package attrs builds ordered HTML attribute lists and serializes them
// into the attribute section of a start tag.
package attrs

import (
	"errors"
	"fmt"
	"html"
	"regexp"
	"sort"
	"strings"
)

// ErrInvalidName is returned when an attribute name cannot appear in a start tag.
var ErrInvalidName = errors.New("invalid attribute name")

var namePattern = regexp.MustCompile(`^[A-Za-z_:][-A-Za-z0-9_:.]*$`)

// Attr is a single name/value pair.
type Attr struct {
	Key   string
	Value string
}

// List is an insertion-ordered set of attributes. Setting an existing key
// replaces its value in place, so the last write wins without reordering.
// The zero value is an empty list ready to use.
type List struct {
	items []Attr
}

// New creates a list from alternating key/value arguments.
// A trailing key without a value is ignored.
func New(pairs ...string) List {
	var l List
	for i := 0; i+1 < len(pairs); i += 2 {
		l.Set(pairs[i], pairs[i+1])
	}
	return l
}

// FromMap creates a list from a map, in sorted key order.
func FromMap(m map[string]string) List {
	var l List
	l.Merge(m)
	return l
}

// Set assigns a value to key.
func (l *List) Set(key, value string) {
	for i := range l.items {
		if l.items[i].Key == key {
			l.items[i].Value = value
			return
		}
	}
	l.items = append(l.items, Attr{Key: key, Value: value})
}

// Get returns the value stored under key.
func (l List) Get(key string) (string, bool) {
	for _, a := range l.items {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// Merge sets every entry of m, visiting keys in sorted order so the
// resulting list is deterministic.
func (l *List) Merge(m map[string]string) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		l.Set(k, m[k])
	}
}

// Extend sets every attribute of other, in its order.
func (l *List) Extend(other List) {
	for _, a := range other.items {
		l.Set(a.Key, a.Value)
	}
}

// AddClass appends class tokens to the class attribute. Each argument may
// hold several space-separated tokens; tokens already present are skipped.
func (l *List) AddClass(classes ...string) {
	current, _ := l.Get("class")
	tokens := strings.Fields(current)
	seen := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		seen[t] = true
	}
	for _, c := range classes {
		for _, t := range strings.Fields(c) {
			if !seen[t] {
				seen[t] = true
				tokens = append(tokens, t)
			}
		}
	}
	if len(tokens) == 0 {
		return
	}
	l.Set("class", strings.Join(tokens, " "))
}

// HasClass reports whether the class attribute carries token.
func (l List) HasClass(token string) bool {
	current, _ := l.Get("class")
	for _, t := range strings.Fields(current) {
		if t == token {
			return true
		}
	}
	return false
}

// Len returns the number of attributes.
func (l List) Len() int {
	return len(l.items)
}

// All returns a copy of the attributes in order.
func (l List) All() []Attr {
	out := make([]Attr, len(l.items))
	copy(out, l.items)
	return out
}

// Clone returns an independent copy of the list.
func (l List) Clone() List {
	return List{items: l.All()}
}

// Serializer turns an attribute list into the attribute section of a start
// tag. Extra classes are merged into the class attribute before output.
type Serializer interface {
	Serialize(l List, classes ...string) (string, error)
}

// HTML is the default Serializer. Values are escaped and wrapped in single
// quotes; attributes are separated by one space with no leading space.
type HTML struct{}

// Serialize implements Serializer.
func (HTML) Serialize(l List, classes ...string) (string, error) {
	if len(classes) > 0 {
		l = l.Clone()
		l.AddClass(classes...)
	}

	var sb strings.Builder
	for i, a := range l.items {
		if !namePattern.MatchString(a.Key) {
			return "", fmt.Errorf("%w: %q", ErrInvalidName, a.Key)
		}
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(a.Key)
		sb.WriteString("='")
		sb.WriteString(html.EscapeString(a.Value))
		sb.WriteByte('\'')
	}
	return sb.String(), nil
}

// Default is the serializer used when none is configured.
var Default Serializer = HTML{}
