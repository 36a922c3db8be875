// Package html renders vdom trees to HTML text.
package html

import (
	"fmt"
	"html"
	"io"
	"sort"
	"strings"

	"github.com/recera/vex/pkg/vdom"
)

// voidElements are HTML elements that cannot have children
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// booleanAttributes are HTML attributes that are boolean flags
var booleanAttributes = map[string]bool{
	"checked":   true,
	"disabled":  true,
	"readonly":  true,
	"required":  true,
	"selected":  true,
	"defer":     true,
	"async":     true,
	"multiple":  true,
	"autofocus": true,
	"hidden":    true,
}

// HTMLApplier renders VNodes to HTML
type HTMLApplier struct {
	w   io.Writer
	err error
}

// NewHTMLApplier creates a new HTML applier
func NewHTMLApplier(w io.Writer) *HTMLApplier {
	return &HTMLApplier{w: w}
}

// Apply renders a VNode tree to HTML
func (a *HTMLApplier) Apply(node *vdom.VNode) error {
	if node == nil {
		return nil
	}

	a.renderNode(node, false)
	return a.err
}

// write helper that tracks errors
func (a *HTMLApplier) write(s string) {
	if a.err != nil {
		return
	}
	_, a.err = io.WriteString(a.w, s)
}

// renderNode renders a single VNode; raw disables escaping inside script/style
func (a *HTMLApplier) renderNode(node *vdom.VNode, raw bool) {
	if node == nil || a.err != nil {
		return
	}

	switch node.Kind {
	case vdom.KindText:
		if raw {
			a.write(node.Text)
		} else {
			a.write(html.EscapeString(node.Text))
		}

	case vdom.KindElement:
		a.renderElement(node)

	case vdom.KindFragment:
		for i := range node.Kids {
			a.renderNode(&node.Kids[i], raw)
		}

	default:
		a.err = fmt.Errorf("html: unknown node kind %d", node.Kind)
	}
}

// renderElement renders an element node
func (a *HTMLApplier) renderElement(node *vdom.VNode) {
	a.write("<")
	a.write(node.Tag)

	// Sorted so output does not depend on map iteration order
	keys := make([]string, 0, len(node.Props))
	for key := range node.Props {
		if key == "key" || key == "ref" {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := node.Props[key]
		valueStr := fmt.Sprint(value)

		if booleanAttributes[key] {
			if valueStr == "true" {
				a.write(" ")
				a.write(key)
			}
			continue
		}

		// prevent javascript: URLs in href/src attributes
		if (key == "href" || key == "src") && strings.HasPrefix(strings.ToLower(valueStr), "javascript:") {
			valueStr = "#"
		}

		a.write(" ")
		a.write(key)
		a.write(`="`)
		a.write(html.EscapeString(valueStr))
		a.write(`"`)
	}

	a.write(">")

	// Void elements don't have closing tags or children
	if voidElements[node.Tag] {
		return
	}

	raw := node.Tag == "script" || node.Tag == "style"
	for i := range node.Kids {
		a.renderNode(&node.Kids[i], raw)
	}

	a.write("</")
	a.write(node.Tag)
	a.write(">")
}

// RenderToString is a convenience function to render a VNode to a string
func RenderToString(node *vdom.VNode) (string, error) {
	var buf strings.Builder
	if err := NewHTMLApplier(&buf).Apply(node); err != nil {
		return "", err
	}
	return buf.String(), nil
}
