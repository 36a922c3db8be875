package template

import (
	"go/format"
	"strings"
	"testing"
)

func mustParse(t *testing.T, source string) *Block {
	t.Helper()
	block, err := ParseString("test.vex", source)
	if err != nil {
		t.Fatalf("Parse(%q) error = %v", source, err)
	}
	return block
}

func TestGenerator_Expr(t *testing.T) {
	gen := NewGenerator(DefaultOptions())
	got := gen.Expr(&Input{Body: mustParse(t, `h1 { + "Hello world" }`)})

	want := `func() *builder.Node {
	_vex0 := builder.Fragment()
	{
		_vex1 := builder.Element("h1")
		_vex1.Append(builder.Text(fmt.Sprint("Hello world")))
		_vex0.Append(_vex1.Build())
	}
	return _vex0.Build()
}()`
	if got != want {
		t.Errorf("Expr() =\n%s\nwant\n%s", got, want)
	}
	if !gen.UsedStringer() {
		t.Error("UsedStringer() = false, want true")
	}
}

func TestGenerator_Block(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			name:   "void element",
			source: `br`,
			want:   "_vex0.Append(builder.Element(\"br\").Build())\n",
		},
		{
			name:   "nested elements",
			source: `ul { li { br } }`,
			want: `{
	_vex1 := builder.Element("ul")
	{
		_vex2 := builder.Element("li")
		_vex2.Append(builder.Element("br").Build())
		_vex1.Append(_vex2.Build())
	}
	_vex0.Append(_vex1.Build())
}
`,
		},
		{
			name:   "component with attributes and spread",
			source: `Card(title = t, props...) { + "x" }`,
			want: `{
	_vex1 := builder.Component(Card)
	_vex1.Attr("title", fmt.Sprint(t))
	_vex1.Spread(props)
	_vex1.Append(builder.Text(fmt.Sprint("x")))
	_vex0.Append(_vex1.Build())
}
`,
		},
		{
			name:   "loops",
			source: `for x in xs { br } for k, v in m { br } for _ in xs { br } for i := 0; i < 2; i++ { br } for { br }`,
			want: `for _, x := range xs {
	_vex0.Append(builder.Element("br").Build())
}
for k, v := range m {
	_vex0.Append(builder.Element("br").Build())
}
for range xs {
	_vex0.Append(builder.Element("br").Build())
}
for i := 0; i < 2; i++ {
	_vex0.Append(builder.Element("br").Build())
}
for {
	_vex0.Append(builder.Element("br").Build())
}
`,
		},
		{
			name:   "conditional chain",
			source: `if a { br } else if b { hr } else { + c }`,
			want: `if a {
	_vex0.Append(builder.Element("br").Build())
} else if b {
	_vex0.Append(builder.Element("hr").Build())
} else {
	_vex0.Append(builder.Text(fmt.Sprint(c)))
}
`,
		},
		{
			name:   "type match",
			source: `match l := v.(type) { First if l > 3 => + l, Second => br, _ => + "x" }`,
			want: `{
	_vexm1 := v
	_ = _vexm1
	if l, _vexok := _vexm1.(First); _vexok && (l > 3) {
		_ = l
		_vex0.Append(builder.Text(fmt.Sprint(l)))
	} else if l, _vexok := _vexm1.(Second); _vexok {
		_ = l
		_vex0.Append(builder.Element("br").Build())
	} else {
		l := _vexm1
		_ = l
		_vex0.Append(builder.Text(fmt.Sprint("x")))
	}
}
`,
		},
		{
			name:   "type match alternatives",
			source: `match v.(type) { int | nil => br }`,
			want: `{
	_vexm1 := v
	_ = _vexm1
	if builder.Is[int](_vexm1) || _vexm1 == nil {
		_vex0.Append(builder.Element("br").Build())
	}
}
`,
		},
		{
			name:   "value match",
			source: `match n { 1 | 2 if ok => br, _ if n > 5 => hr }`,
			want: `{
	_vexm1 := n
	_ = _vexm1
	if (_vexm1 == (1) || _vexm1 == (2)) && (ok) {
		_vex0.Append(builder.Element("br").Build())
	} else if (n > 5) {
		_vex0.Append(builder.Element("hr").Build())
	}
}
`,
		},
		{
			name:   "value match binding",
			source: `match n := f() { 1 => br }`,
			want: `{
	n := f()
	_ = n
	if n == (1) {
		_vex0.Append(builder.Element("br").Build())
	}
}
`,
		},
		{
			name:   "empty match still evaluates the scrutinee",
			source: `match f() {}`,
			want: `{
	_vexm1 := f()
	_ = _vexm1
}
`,
		},
		{
			name:   "nested match depth",
			source: `match a { _ => match b { _ => br } }`,
			want: `{
	_vexm1 := a
	_ = _vexm1
	if true {
		{
			_vexm2 := b
			_ = _vexm2
			if true {
				_vex0.Append(builder.Element("br").Build())
			}
		}
	}
}
`,
		},
		{
			name:   "passthrough",
			source: "x := 1\n+ x",
			want:   "x := 1\n_vex0.Append(builder.Text(fmt.Sprint(x)))\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := NewGenerator(DefaultOptions())
			got := gen.Block(mustParse(t, tt.source), "_vex0")
			if got != tt.want {
				t.Errorf("Block() =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestGenerator_Options(t *testing.T) {
	t.Run("raw stringer", func(t *testing.T) {
		gen := NewGenerator(Options{})
		got := gen.Block(mustParse(t, `+ s`), "_vex0")
		if want := "_vex0.Append(builder.Text(s))\n"; got != want {
			t.Errorf("Block() = %q, want %q", got, want)
		}
		if gen.UsedStringer() {
			t.Error("UsedStringer() = true with an empty stringer")
		}
	})

	t.Run("builder directive", func(t *testing.T) {
		in := &Input{
			Directives: []Directive{{Name: "builder", Arg: "b"}},
			Body:       mustParse(t, `br`),
		}
		got := NewGenerator(DefaultOptions()).Expr(in)
		want := "func() *b.Node {\n\t_vex0 := b.Fragment()\n\t_vex0.Append(b.Element(\"br\").Build())\n\treturn _vex0.Build()\n}()"
		if got != want {
			t.Errorf("Expr() =\n%s\nwant\n%s", got, want)
		}
	})

	t.Run("line directives", func(t *testing.T) {
		opts := DefaultOptions()
		opts.LineDirectives = true
		got := NewGenerator(opts).Block(mustParse(t, `+ x`), "_vex0")
		if want := "_vex0.Append(builder.Text(fmt.Sprint(/*line test.vex:1:3*/x)))\n"; got != want {
			t.Errorf("Block() = %q, want %q", got, want)
		}
	})
}

// TestGenerator_ValidGo checks that generated code is syntactically valid Go
// for a range of inputs
func TestGenerator_ValidGo(t *testing.T) {
	sources := []string{
		`h1 { + "Hello world" }`,
		`br; hr`,
		`ul { for datum in data { field := datum.Field; if datum.Display { li(data-length = len(field)) { + field } } } }`,
		`match l := datum.Label.(type) { First if l > 3 => { h2 { + l } } Second => { h3 { + l } } _ => + "unmatched" }`,
		`match n { 1 | 2 => + "small", _ => + "other" }`,
		`match x {}`,
		`for i, v in items { li(key = i) { + v } }`,
		`for {}`,
		`input(type = "checkbox", checked = on, attrs...);`,
		`ui.Card(title = "t") { p { + "body" } }`,
		`if n := len(xs); n > 0 { + n } else { + "none" }`,
		`match := 3; + match`,
	}

	for _, source := range sources {
		for _, opts := range []Options{DefaultOptions(), {LineDirectives: true, Stringer: "fmt.Sprint"}} {
			code := NewGenerator(opts).Expr(&Input{Body: mustParse(t, source)})
			file := "package p\n\nvar _ = " + code + "\n"
			if _, err := format.Source([]byte(file)); err != nil {
				t.Errorf("generated code for %q does not parse: %v\n%s", source, err, file)
			}
		}
	}
}

type bogusStmt struct{}

func (bogusStmt) stmt() {}

func TestGenerator_UnknownStatement(t *testing.T) {
	defer func() {
		r := recover()
		msg, _ := r.(string)
		if !strings.Contains(msg, "internal compiler error") {
			t.Errorf("expected internal compiler error panic, got %v", r)
		}
	}()
	NewGenerator(DefaultOptions()).Block(&Block{Stmts: []Stmt{bogusStmt{}}}, "_vex0")
}
