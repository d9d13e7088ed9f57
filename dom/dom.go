// Package dom is the read-only tree the extraction passes walk. The passes only
// rely on the Node interface; the goquery/cascadia backend lives in this file.
package dom

import (
	"bytes"
	"io"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// Node is one element or text node of a parsed HTML document.
type Node interface {
	Tag() string // lower-case element name, "#text" for text nodes
	IsText() bool
	Text() string // text content with whitespace runs collapsed and trimmed
	Attr(name string) (string, bool)
	HasClass(class string) bool
	Is(selector string) bool

	Contents() []Node     // child elements and text nodes, comments skipped
	NextSiblings() []Node // following elements and text nodes
	Parent() (Node, bool)
	Closest(selector string) (Node, bool) // self or nearest matching ancestor

	Find(selector string) []Node // matching descendants in document order
	First(selector string) (Node, bool)
	Same(other Node) bool
}

// Parse reads a whole HTML document and returns its root.
func Parse(body []byte) (Node, error) {
	return FromReader(bytes.NewReader(body))
}

func FromReader(r io.Reader) (Node, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}
	return selNode{sel: doc.Selection}, nil
}

// Normalize collapses whitespace runs (NBSP included) to single spaces.
func Normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

type selNode struct {
	sel *goquery.Selection // always exactly one node
}

func wrap(n *html.Node) Node {
	return selNode{sel: goquery.NewDocumentFromNode(n).Selection}
}

func wrapAll(s *goquery.Selection) []Node {
	out := make([]Node, 0, s.Length())
	s.Each(func(_ int, one *goquery.Selection) {
		out = append(out, selNode{sel: one})
	})
	return out
}

func (s selNode) node() *html.Node {
	return s.sel.Get(0)
}

func (s selNode) Tag() string {
	return goquery.NodeName(s.sel)
}

func (s selNode) IsText() bool {
	return s.node().Type == html.TextNode
}

func (s selNode) Text() string {
	return Normalize(s.sel.Text())
}

func (s selNode) Attr(name string) (string, bool) {
	return s.sel.Attr(name)
}

func (s selNode) HasClass(class string) bool {
	return s.sel.HasClass(class)
}

func (s selNode) Is(selector string) bool {
	return s.sel.IsMatcher(compile(selector))
}

func (s selNode) Contents() []Node {
	var out []Node
	for c := s.node().FirstChild; c != nil; c = c.NextSibling {
		if kept(c) {
			out = append(out, wrap(c))
		}
	}
	return out
}

func (s selNode) NextSiblings() []Node {
	var out []Node
	for c := s.node().NextSibling; c != nil; c = c.NextSibling {
		if kept(c) {
			out = append(out, wrap(c))
		}
	}
	return out
}

func (s selNode) Parent() (Node, bool) {
	p := s.sel.Parent()
	if p.Length() == 0 {
		return nil, false
	}
	return selNode{sel: p}, true
}

func (s selNode) Closest(selector string) (Node, bool) {
	c := s.sel.ClosestMatcher(compile(selector))
	if c.Length() == 0 {
		return nil, false
	}
	return selNode{sel: c}, true
}

func (s selNode) Find(selector string) []Node {
	return wrapAll(s.sel.FindMatcher(compile(selector)))
}

func (s selNode) First(selector string) (Node, bool) {
	f := s.sel.FindMatcher(compile(selector)).First()
	if f.Length() == 0 {
		return nil, false
	}
	return selNode{sel: f}, true
}

func (s selNode) Same(other Node) bool {
	o, ok := other.(selNode)
	return ok && o.node() == s.node()
}

func kept(n *html.Node) bool {
	return n.Type == html.ElementNode || n.Type == html.TextNode
}

var matchers sync.Map // selector -> goquery.Matcher

func compile(selector string) goquery.Matcher {
	if m, ok := matchers.Load(selector); ok {
		return m.(goquery.Matcher)
	}
	var m goquery.Matcher = invalidMatcher{}
	if sel, err := cascadia.Compile(selector); err == nil {
		m = sel
	}
	matchers.Store(selector, m)
	return m
}

// invalidMatcher matches nothing, like goquery does for a bad selector.
type invalidMatcher struct{}

func (invalidMatcher) Match(*html.Node) bool { return false }
func (invalidMatcher) MatchAll(*html.Node) []*html.Node { return nil }
func (invalidMatcher) Filter([]*html.Node) []*html.Node { return nil }
