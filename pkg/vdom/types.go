// Package vdom is the document model targeted by generated VEX code: an
// immutable tree of element, text and fragment nodes.
package vdom

// VKind represents the type of virtual node
type VKind uint8

const (
	// KindElement represents a DOM element node
	KindElement VKind = iota
	// KindText represents a text node
	KindText
	// KindFragment represents a list of siblings without a parent element
	KindFragment
)

// String returns the kind name
func (k VKind) String() string {
	switch k {
	case KindElement:
		return "element"
	case KindText:
		return "text"
	case KindFragment:
		return "fragment"
	}
	return "unknown"
}

// Props represents the attributes of a VNode
type Props map[string]any

// VNode represents a virtual DOM node.
// It is immutable once built; builders in pkg/vex/builder produce it.
type VNode struct {
	// Kind determines the type of this node
	Kind VKind

	// Tag is the element tag name (e.g., "div", "span")
	// Only used when Kind == KindElement
	Tag string

	// Props contains all attributes for this node
	Props Props

	// Kids contains child nodes in append order
	// For KindText, this is nil
	Kids []VNode

	// Key is used for list reconciliation
	// Empty string means no key
	Key string

	// Text content (only used when Kind == KindText)
	Text string
}

// NewElement creates a new element VNode
func NewElement(tag string, props Props, children ...*VNode) *VNode {
	var key string
	if k, ok := props["key"].(string); ok {
		key = k
	}

	return &VNode{
		Kind:  KindElement,
		Tag:   tag,
		Props: props,
		Kids:  flatten(children),
		Key:   key,
	}
}

// NewText creates a new text VNode
func NewText(text string) *VNode {
	return &VNode{
		Kind: KindText,
		Text: text,
	}
}

// NewFragment creates a new fragment VNode
func NewFragment(children ...*VNode) *VNode {
	return &VNode{
		Kind: KindFragment,
		Kids: flatten(children),
	}
}

// flatten converts child pointers to values, dropping nils
func flatten(children []*VNode) []VNode {
	kids := make([]VNode, 0, len(children))
	for _, child := range children {
		if child != nil {
			kids = append(kids, *child)
		}
	}
	return kids
}

// IsElement returns true if this is an element node
func (v VNode) IsElement() bool {
	return v.Kind == KindElement
}

// IsText returns true if this is a text node
func (v VNode) IsText() bool {
	return v.Kind == KindText
}

// IsFragment returns true if this is a fragment node
func (v VNode) IsFragment() bool {
	return v.Kind == KindFragment
}

// Attr returns the attribute value for key and whether it was set
func (v VNode) Attr(key string) (any, bool) {
	if v.Props == nil {
		return nil, false
	}
	val, ok := v.Props[key]
	return val, ok
}

// GetKey returns the key of this node, handling the Props map safely
func (v VNode) GetKey() string {
	if v.Props != nil {
		if key, ok := v.Props["key"].(string); ok {
			return key
		}
	}
	return v.Key
}
