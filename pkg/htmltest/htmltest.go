// Package htmltest provides assertion helpers for tests that inspect
// rendered markup. Fragments are parsed with golang.org/x/net/html so
// assertions work on elements and attributes rather than on substrings.
package htmltest

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Assert provides assertion helpers for tests.
type Assert struct {
	t testing.TB
}

// NewAssert creates a new Assert instance.
func NewAssert(t testing.TB) *Assert {
	return &Assert{t: t}
}

// True asserts that a condition is true.
func (a *Assert) True(condition bool, msgAndArgs ...any) {
	a.t.Helper()
	if !condition {
		a.fail("Expected true but got false", msgAndArgs...)
	}
}

// Equal asserts that two values are equal.
func (a *Assert) Equal(expected, actual any, msgAndArgs ...any) {
	a.t.Helper()
	if !reflect.DeepEqual(expected, actual) {
		a.fail(fmt.Sprintf("Expected %v (%T) but got %v (%T)", expected, expected, actual, actual), msgAndArgs...)
	}
}

// NoError asserts that an error is nil.
func (a *Assert) NoError(err error, msgAndArgs ...any) {
	a.t.Helper()
	if err != nil {
		a.fail(fmt.Sprintf("Expected no error but got: %v", err), msgAndArgs...)
	}
}

// ErrorIs asserts that err matches target.
func (a *Assert) ErrorIs(err, target error, msgAndArgs ...any) {
	a.t.Helper()
	if !errors.Is(err, target) {
		a.fail(fmt.Sprintf("Expected error matching %v but got %v", target, err), msgAndArgs...)
	}
}

// Contains asserts that a string contains a substring.
func (a *Assert) Contains(str, substring string, msgAndArgs ...any) {
	a.t.Helper()
	if !strings.Contains(str, substring) {
		a.fail(fmt.Sprintf("Expected %q to contain %q", str, substring), msgAndArgs...)
	}
}

func (a *Assert) fail(message string, msgAndArgs ...any) {
	a.t.Helper()
	if len(msgAndArgs) > 0 {
		message = fmt.Sprintf("%s: %s", message, fmt.Sprint(msgAndArgs...))
	}
	a.t.Error(message)
}

// Doc is a parsed markup fragment.
type Doc struct {
	root *html.Node
}

// Parse parses markup as body content. It fails the test on parse errors.
func Parse(t testing.TB, markup string) *Doc {
	t.Helper()
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(markup), body)
	if err != nil {
		t.Fatalf("parse markup: %v", err)
	}
	root := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return &Doc{root: root}
}

// All returns every element with the given tag, in document order.
func (d *Doc) All(tag string) []*html.Node {
	var out []*html.Node
	walk(d.root, func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == tag {
			out = append(out, n)
		}
	})
	return out
}

// ByID returns the first element with the given id, or nil.
func (d *Doc) ByID(id string) *html.Node {
	var found *html.Node
	walk(d.root, func(n *html.Node) {
		if found == nil && n.Type == html.ElementNode {
			if v, ok := Attr(n, "id"); ok && v == id {
				found = n
			}
		}
	})
	return found
}

// WithClass returns every element carrying the class token.
func (d *Doc) WithClass(token string) []*html.Node {
	var out []*html.Node
	walk(d.root, func(n *html.Node) {
		if n.Type == html.ElementNode && HasClass(n, token) {
			out = append(out, n)
		}
	})
	return out
}

// Attr returns an attribute value of n.
func Attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// Classes returns the class tokens of n.
func Classes(n *html.Node) []string {
	v, _ := Attr(n, "class")
	return strings.Fields(v)
}

// HasClass reports whether n carries the class token.
func HasClass(n *html.Node, token string) bool {
	for _, c := range Classes(n) {
		if c == token {
			return true
		}
	}
	return false
}

// Text returns the concatenated text content of n.
func Text(n *html.Node) string {
	var sb strings.Builder
	walk(n, func(c *html.Node) {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	})
	return sb.String()
}

// Inner renders the children of n back to markup.
func Inner(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&sb, c)
	}
	return sb.String()
}

func walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

// HTMLAssert provides markup assertions over a parsed fragment.
type HTMLAssert struct {
	*Assert
	Doc *Doc
}

// NewHTMLAssert parses markup and returns an assertion helper for it.
func NewHTMLAssert(t testing.TB, markup string) *HTMLAssert {
	t.Helper()
	return &HTMLAssert{
		Assert: NewAssert(t),
		Doc:    Parse(t, markup),
	}
}

// HasID asserts that an element with the id exists and returns it.
func (ha *HTMLAssert) HasID(id string) *html.Node {
	ha.t.Helper()
	n := ha.Doc.ByID(id)
	if n == nil {
		ha.fail(fmt.Sprintf("Element #%s not found", id))
	}
	return n
}

// HasClasses asserts that the element with the id carries every class token.
func (ha *HTMLAssert) HasClasses(id string, tokens ...string) {
	ha.t.Helper()
	n := ha.HasID(id)
	if n == nil {
		return
	}
	for _, tok := range tokens {
		if !HasClass(n, tok) {
			ha.fail(fmt.Sprintf("Element #%s: expected class %q in %v", id, tok, Classes(n)))
		}
	}
}

// LacksClass asserts that the element with the id does not carry token.
func (ha *HTMLAssert) LacksClass(id, token string) {
	ha.t.Helper()
	n := ha.HasID(id)
	if n != nil && HasClass(n, token) {
		ha.fail(fmt.Sprintf("Element #%s: unexpected class %q", id, token))
	}
}

// Count asserts the number of elements with the tag.
func (ha *HTMLAssert) Count(tag string, want int) {
	ha.t.Helper()
	if got := len(ha.Doc.All(tag)); got != want {
		ha.fail(fmt.Sprintf("Expected %d <%s> elements, got %d", want, tag, got))
	}
}
