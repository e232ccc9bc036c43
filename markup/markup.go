// Package markup provides a small typed traversal API over a parsed HTML
// document. Callers match nodes with predicates and never touch the
// underlying parser types.
package markup

import (
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// Document is a parsed HTML page
type Document struct {
	root *html.Node
}

// Node is an element in a Document. The zero Node is invalid.
type Node struct {
	n *html.Node
}

// Predicate reports whether a node matches
type Predicate func(Node) bool

// Parse builds a document tree from raw HTML
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}
	return &Document{root: root}, nil
}

// Root returns the document node
func (d *Document) Root() Node {
	return Node{n: d.root}
}

// FindByID returns the single element whose id attribute equals id.
// It reports false when there is no such element or more than one.
func (d *Document) FindByID(id string) (Node, bool) {
	if strings.ContainsAny(id, `'"`) {
		return Node{}, false
	}
	els, err := htmlquery.QueryAll(d.root, fmt.Sprintf("//*[@id='%s']", id))
	if err != nil || len(els) != 1 {
		return Node{}, false
	}
	return Node{n: els[0]}, true
}

// Valid reports whether the node refers to an element
func (n Node) Valid() bool {
	return n.n != nil
}

// Tag returns the element name, or "" for non-element nodes
func (n Node) Tag() string {
	if n.n == nil || n.n.Type != html.ElementNode {
		return ""
	}
	return n.n.Data
}

// Attr returns the value of the named attribute and whether it is present
func (n Node) Attr(name string) (string, bool) {
	if n.n == nil {
		return "", false
	}
	for _, a := range n.n.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// Text returns all text within the node concatenated and trimmed
func (n Node) Text() string {
	if n.n == nil {
		return ""
	}
	return strings.TrimSpace(htmlquery.InnerText(n.n))
}

// FindFirst returns the first descendant element, in document order, matching p
func (n Node) FindFirst(p Predicate) (Node, bool) {
	var found Node
	n.walk(func(c Node) bool {
		if p(c) {
			found = c
			return false
		}
		return true
	})
	return found, found.Valid()
}

// FindAll returns every descendant element matching p, in document order
func (n Node) FindAll(p Predicate) []Node {
	var found []Node
	n.walk(func(c Node) bool {
		if p(c) {
			found = append(found, c)
		}
		return true
	})
	return found
}

// walk visits descendant elements depth-first until visit returns false
func (n Node) walk(visit func(Node) bool) {
	if n.n == nil {
		return
	}
	var rec func(*html.Node) bool
	rec = func(parent *html.Node) bool {
		for c := parent.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && !visit(Node{n: c}) {
				return false
			}
			if !rec(c) {
				return false
			}
		}
		return true
	}
	rec(n.n)
}

// HasTag matches elements with the given name
func HasTag(name string) Predicate {
	return func(n Node) bool {
		return n.Tag() == name
	}
}

// HasClass matches elements whose class list contains name
func HasClass(name string) Predicate {
	sel, err := Selector("." + name)
	if err != nil {
		return func(Node) bool { return false }
	}
	return sel
}

// Selector compiles a CSS selector into a predicate
func Selector(css string) (Predicate, error) {
	sel, err := cascadia.Compile(css)
	if err != nil {
		return nil, fmt.Errorf("invalid selector %q: %w", css, err)
	}
	return func(n Node) bool {
		return n.n != nil && sel.Match(n.n)
	}, nil
}
