package builder

import (
	"testing"

	"github.com/recera/vex/pkg/vdom"
)

func TestElementBuilder_AppendOrder(t *testing.T) {
	b := Element("ul")
	b.Append(Text("a"))
	b.Append(nil)
	b.Append(Element("li").Build())
	b.Append(Text("c"))

	node := b.Build()
	if node.Kind != vdom.KindElement || node.Tag != "ul" {
		t.Fatalf("Build() = %v %q, want element ul", node.Kind, node.Tag)
	}
	if len(node.Kids) != 3 {
		t.Fatalf("len(Kids) = %d, want 3", len(node.Kids))
	}
	if node.Kids[0].Text != "a" || node.Kids[1].Tag != "li" || node.Kids[2].Text != "c" {
		t.Errorf("children out of order: %+v", node.Kids)
	}
}

func TestElementBuilder_Attributes(t *testing.T) {
	node := Element("input").
		Attr("type", "checkbox").
		Attr("data-length", "3").
		Spread(vdom.Props{"name": "agree", "type": "radio"}).
		Key("k1").
		Build()

	tests := []struct {
		key  string
		want any
	}{
		{"type", "radio"},
		{"data-length", "3"},
		{"name", "agree"},
		{"key", "k1"},
	}
	for _, tt := range tests {
		got, ok := node.Attr(tt.key)
		if !ok || got != tt.want {
			t.Errorf("Attr(%q) = %v, %v, want %v", tt.key, got, ok, tt.want)
		}
	}
	if node.GetKey() != "k1" || node.Key != "k1" {
		t.Errorf("key = %q/%q, want k1", node.GetKey(), node.Key)
	}
}

func TestComponent(t *testing.T) {
	var gotProps vdom.Props
	var gotKids int
	card := func(props vdom.Props, children []*vdom.VNode) *vdom.VNode {
		gotProps = props
		gotKids = len(children)
		return Element("section").Class("card").Children(children...).Build()
	}

	node := Component(card).Attr("title", "Hi").Append(Text("body")).Build()
	if node.Tag != "section" {
		t.Fatalf("component rendered %q, want section", node.Tag)
	}
	if gotProps["title"] != "Hi" || gotKids != 1 {
		t.Errorf("component got props=%v kids=%d", gotProps, gotKids)
	}
}

func TestFragment(t *testing.T) {
	f := Fragment()
	if f.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", f.Len())
	}
	node := f.Append(Text("x")).Append(Text("y")).Build()
	if node.Kind != vdom.KindFragment || len(node.Kids) != 2 {
		t.Errorf("Fragment Build() = %v with %d kids", node.Kind, len(node.Kids))
	}
}

func TestBuildTwicePanics(t *testing.T) {
	b := Element("p")
	b.Build()

	defer func() {
		if recover() == nil {
			t.Error("Append after Build did not panic")
		}
	}()
	b.Append(Text("late"))
}

func TestIs(t *testing.T) {
	var v any = 3
	if !Is[int](v) {
		t.Error("Is[int](3) = false")
	}
	if Is[string](v) {
		t.Error("Is[string](3) = true")
	}
	var nilv any
	if Is[int](nilv) {
		t.Error("Is[int](nil) = true")
	}
}

func TestFlagAttributes(t *testing.T) {
	node := Element("button").Disabled(true).Checked(false).Build()
	if _, ok := node.Attr("disabled"); !ok {
		t.Error("disabled not set")
	}
	if _, ok := node.Attr("checked"); ok {
		t.Error("checked set for false")
	}
}
