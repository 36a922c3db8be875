package builder

// Typed setters for hand-written components. Generated code only calls Attr.

// === Global Attributes ===

// ID sets the id attribute
func (b *ElementBuilder) ID(id string) *ElementBuilder {
	return b.Attr("id", id)
}

// Class sets the class attribute
func (b *ElementBuilder) Class(class string) *ElementBuilder {
	return b.Attr("class", class)
}

// Key sets the reconciliation key
func (b *ElementBuilder) Key(key string) *ElementBuilder {
	return b.Attr("key", key)
}

// Data sets a data attribute
func (b *ElementBuilder) Data(key, value string) *ElementBuilder {
	return b.Attr("data-"+key, value)
}

// === Form Attributes ===

// Disabled sets the disabled attribute
func (b *ElementBuilder) Disabled(disabled bool) *ElementBuilder {
	return b.flag("disabled", disabled)
}

// Checked sets the checked attribute
func (b *ElementBuilder) Checked(checked bool) *ElementBuilder {
	return b.flag("checked", checked)
}

// Type sets the type attribute
func (b *ElementBuilder) Type(t string) *ElementBuilder {
	return b.Attr("type", t)
}

// Value sets the value attribute
func (b *ElementBuilder) Value(value string) *ElementBuilder {
	return b.Attr("value", value)
}

// === Link & Media Attributes ===

// Href sets the href attribute
func (b *ElementBuilder) Href(href string) *ElementBuilder {
	return b.Attr("href", href)
}

// Src sets the src attribute
func (b *ElementBuilder) Src(src string) *ElementBuilder {
	return b.Attr("src", src)
}

// Alt sets the alt attribute
func (b *ElementBuilder) Alt(alt string) *ElementBuilder {
	return b.Attr("alt", alt)
}

// === Children ===

// Children appends each child in order
func (b *ElementBuilder) Children(children ...*Node) *ElementBuilder {
	for _, child := range children {
		b.Append(child)
	}
	return b
}

// flag sets a boolean attribute only when on is true
func (b *ElementBuilder) flag(key string, on bool) *ElementBuilder {
	if on {
		b.Attr(key, "true")
	}
	return b
}
