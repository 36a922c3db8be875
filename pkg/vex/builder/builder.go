// Package builder holds the mutable element-under-construction that code
// generated from @vex blocks appends to. Each builder collects attributes and
// children in call order and is frozen into a vdom.VNode by Build.
package builder

import (
	"fmt"

	"github.com/recera/vex/pkg/vdom"
)

// Node is the node type produced by generated code
type Node = vdom.VNode

// ComponentFunc renders a component from its attributes and children
type ComponentFunc func(props vdom.Props, children []*vdom.VNode) *vdom.VNode

// ElementBuilder is an element, fragment or component whose attributes and
// children are still being collected
type ElementBuilder struct {
	tag       string
	props     vdom.Props
	kids      []*vdom.VNode
	component ComponentFunc
	fragment  bool
	built     bool
}

// Element starts a new element with the given tag name
func Element(tag string) *ElementBuilder {
	return &ElementBuilder{
		tag:   tag,
		props: make(vdom.Props),
	}
}

// Component starts a component invocation; Build calls fn with the collected
// attributes and children
func Component(fn ComponentFunc) *ElementBuilder {
	if fn == nil {
		panic("builder: nil component")
	}
	return &ElementBuilder{
		props:     make(vdom.Props),
		component: fn,
	}
}

// Fragment starts a parentless list of siblings. It is the root sink of every
// generated block.
func Fragment() *ElementBuilder {
	return &ElementBuilder{fragment: true}
}

// Text creates a text node
func Text(s string) *vdom.VNode {
	return vdom.NewText(s)
}

// Is reports whether v holds a value of type T
func Is[T any](v any) bool {
	_, ok := v.(T)
	return ok
}

// Attr sets an attribute. A later call with the same key replaces the value.
func (b *ElementBuilder) Attr(key string, value string) *ElementBuilder {
	b.mustBeOpen("Attr")
	if b.fragment {
		panic(fmt.Sprintf("builder: attribute %q set on fragment", key))
	}
	b.props[key] = value
	return b
}

// Spread copies every entry of props onto the element
func (b *ElementBuilder) Spread(props vdom.Props) *ElementBuilder {
	b.mustBeOpen("Spread")
	if b.fragment && len(props) > 0 {
		panic("builder: attributes spread on fragment")
	}
	for k, v := range props {
		b.props[k] = v
	}
	return b
}

// Append adds a child after every child appended before it. Nil children
// are ignored.
func (b *ElementBuilder) Append(child *vdom.VNode) *ElementBuilder {
	b.mustBeOpen("Append")
	if child != nil {
		b.kids = append(b.kids, child)
	}
	return b
}

// Len returns the number of children appended so far
func (b *ElementBuilder) Len() int {
	return len(b.kids)
}

// Build freezes the builder into an immutable node. A builder can only be
// built once.
func (b *ElementBuilder) Build() *vdom.VNode {
	b.mustBeOpen("Build")
	b.built = true

	switch {
	case b.fragment:
		return vdom.NewFragment(b.kids...)
	case b.component != nil:
		return b.component(b.props, b.kids)
	default:
		return vdom.NewElement(b.tag, b.props, b.kids...)
	}
}

func (b *ElementBuilder) mustBeOpen(op string) {
	if b.built {
		panic(fmt.Sprintf("builder: %s after Build", op))
	}
}
