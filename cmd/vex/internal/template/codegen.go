package template

import (
	"fmt"
	"strings"
)

// Options control the shape of generated code
type Options struct {
	// BuilderPkg is the identifier the builder package is imported as
	BuilderPkg string
	// Stringer converts text and attribute values to strings. Empty means
	// values are used as-is and must already be strings.
	Stringer string
	// LineDirectives maps user expressions back to the .vex source
	LineDirectives bool
}

// DefaultOptions returns the options used when none are configured
func DefaultOptions() Options {
	return Options{
		BuilderPkg: "builder",
		Stringer:   "fmt.Sprint",
	}
}

// Generator lowers parsed blocks to Go source. Every element opens a Go
// block holding its builder, so host statements in one element body never
// leak into a sibling.
type Generator struct {
	opts         Options
	buf          strings.Builder
	indent       int
	depth        int // element nesting, names the current sink
	matchDepth   int
	usedStringer bool
}

// NewGenerator creates a generator, filling empty options with defaults
func NewGenerator(opts Options) *Generator {
	if opts.BuilderPkg == "" {
		opts.BuilderPkg = DefaultOptions().BuilderPkg
	}
	return &Generator{opts: opts}
}

// UsedStringer reports whether any generated code calls the stringer
func (g *Generator) UsedStringer() bool {
	return g.usedStringer
}

// Expr generates a function literal call evaluating to the fragment built
// by one invocation
func (g *Generator) Expr(in *Input) string {
	for _, d := range in.Directives {
		if d.Name == "builder" {
			g.opts.BuilderPkg = d.Arg
		}
	}

	g.buf.Reset()
	g.indent = 0
	g.depth = 0
	g.matchDepth = 0

	g.printf("func() *%s.Node {", g.opts.BuilderPkg)
	g.indent++
	root := sinkName(0)
	g.printf("%s := %s.Fragment()", root, g.opts.BuilderPkg)
	g.block(in.Body, root)
	g.printf("return %s.Build()", root)
	g.indent--
	g.buf.WriteString("}()")
	return g.buf.String()
}

// Block generates the statements of b appending into sink
func (g *Generator) Block(b *Block, sink string) string {
	g.buf.Reset()
	g.block(b, sink)
	return g.buf.String()
}

func (g *Generator) block(b *Block, sink string) {
	if b == nil {
		return
	}
	for _, s := range b.Stmts {
		g.stmt(s, sink)
	}
}

func (g *Generator) stmt(s Stmt, sink string) {
	switch s := s.(type) {
	case *ElementStmt:
		g.element(s, sink)
	case *TextStmt:
		g.printf("%s.Append(%s.Text(%s))", sink, g.opts.BuilderPkg, g.stringify(s.Value))
	case *ForStmt:
		g.forStmt(s, sink)
	case *IfStmt:
		g.ifStmt(s, sink)
	case *MatchStmt:
		g.match(s, sink)
	case *PassthroughStmt:
		g.printf("%s", g.src(s.Code))
	default:
		internalError("unknown statement %T", s)
	}
}

func (g *Generator) element(el *ElementStmt, sink string) {
	ctor := fmt.Sprintf("%s.Element(%q)", g.opts.BuilderPkg, el.Tag)
	if el.Component {
		ctor = fmt.Sprintf("%s.Component(%s)", g.opts.BuilderPkg, el.Tag)
	}

	if len(el.Attrs) == 0 && el.Body == nil {
		g.printf("%s.Append(%s.Build())", sink, ctor)
		return
	}

	g.depth++
	self := sinkName(g.depth)
	g.printf("{")
	g.indent++
	g.printf("%s := %s", self, ctor)
	for _, a := range el.Attrs {
		if a.Spread {
			g.printf("%s.Spread(%s)", self, g.src(a.Value))
			continue
		}
		g.printf("%s.Attr(%q, %s)", self, a.Name, g.stringify(a.Value))
	}
	g.block(el.Body, self)
	g.printf("%s.Append(%s.Build())", sink, self)
	g.indent--
	g.printf("}")
	g.depth--
}

func (g *Generator) forStmt(s *ForStmt, sink string) {
	switch {
	case s.Native && s.Header.IsZero():
		g.printf("for {")
	case s.Native:
		g.printf("for %s {", g.src(s.Header))
	case s.Pattern.Text == "_":
		g.printf("for range %s {", g.src(s.Iter))
	case s.Keyed:
		g.printf("for %s := range %s {", s.Pattern.Text, g.src(s.Iter))
	default:
		g.printf("for _, %s := range %s {", s.Pattern.Text, g.src(s.Iter))
	}
	g.nested(s.Body, sink)
	g.printf("}")
}

func (g *Generator) ifStmt(s *IfStmt, sink string) {
	for i, arm := range s.Arms {
		if i == 0 {
			g.printf("if %s {", g.src(arm.Guard))
		} else {
			g.printf("} else if %s {", g.src(arm.Guard))
		}
		g.nested(arm.Body, sink)
	}
	if s.Else != nil {
		g.printf("} else {")
		g.nested(s.Else, sink)
	}
	g.printf("}")
}

// match lowers a match to an ordered if / else if chain over a single
// evaluation of the scrutinee
func (g *Generator) match(m *MatchStmt, sink string) {
	g.matchDepth++
	defer func() { g.matchDepth-- }()

	v := fmt.Sprintf("_vexm%d", g.matchDepth)
	if m.Binding != "" && !m.TypeMatch {
		v = m.Binding
	}

	g.printf("{")
	g.indent++
	g.printf("%s := %s", v, g.src(m.Scrutinee))
	g.printf("_ = %s", v)

	for i, arm := range m.Arms {
		last := i == len(m.Arms)-1
		if arm.Wildcard && arm.Guard == nil && last && i > 0 {
			g.printf("} else {")
			g.bindWildcard(m, v)
			g.nested(arm.Body, sink)
			continue
		}

		init, cond, bound := g.armHead(m, v, arm)
		head := cond
		if init != "" {
			head = init + "; " + cond
		}
		if i == 0 {
			g.printf("if %s {", head)
		} else {
			g.printf("} else if %s {", head)
		}
		if bound {
			g.indent++
			g.printf("_ = %s", m.Binding)
			g.indent--
		}
		g.nested(arm.Body, sink)
	}
	if len(m.Arms) > 0 {
		g.printf("}")
	}

	g.indent--
	g.printf("}")
}

// bindWildcard declares the binding of a type match inside an else arm
func (g *Generator) bindWildcard(m *MatchStmt, v string) {
	if !m.TypeMatch || m.Binding == "" {
		return
	}
	g.indent++
	g.printf("%s := %s", m.Binding, v)
	g.printf("_ = %s", m.Binding)
	g.indent--
}

// armHead builds the optional init statement and the condition of one arm.
// bound reports whether the arm declares the match binding.
func (g *Generator) armHead(m *MatchStmt, v string, arm MatchArm) (init, cond string, bound bool) {
	binding := m.TypeMatch && m.Binding != ""

	switch {
	case arm.Wildcard:
		cond = "true"
	case !m.TypeMatch:
		alts := make([]string, len(arm.Patterns))
		for i, p := range arm.Patterns {
			alts[i] = fmt.Sprintf("%s == (%s)", v, g.src(p))
		}
		cond = strings.Join(alts, " || ")
	case len(arm.Patterns) == 1 && arm.Patterns[0].Text != "nil":
		name := "_"
		if binding {
			name = m.Binding
		}
		init = fmt.Sprintf("%s, _vexok := %s.(%s)", name, v, g.src(arm.Patterns[0]))
		cond = "_vexok"
		binding = false
		bound = m.Binding != ""
	default:
		alts := make([]string, len(arm.Patterns))
		for i, p := range arm.Patterns {
			if p.Text == "nil" {
				alts[i] = v + " == nil"
				continue
			}
			alts[i] = fmt.Sprintf("%s.Is[%s](%s)", g.opts.BuilderPkg, g.src(p), v)
		}
		cond = strings.Join(alts, " || ")
	}

	if binding {
		init = fmt.Sprintf("%s := %s", m.Binding, v)
		bound = true
	}

	if arm.Guard != nil {
		guard := "(" + g.src(*arm.Guard) + ")"
		switch {
		case cond == "true":
			cond = guard
		case len(arm.Patterns) > 1:
			cond = "(" + cond + ") && " + guard
		default:
			cond = cond + " && " + guard
		}
	}
	return init, cond, bound
}

// nested generates b one indentation level deeper
func (g *Generator) nested(b *Block, sink string) {
	g.indent++
	g.block(b, sink)
	g.indent--
}

// stringify converts a value expression with the configured stringer
func (g *Generator) stringify(e Expr) string {
	if g.opts.Stringer == "" {
		return g.src(e)
	}
	g.usedStringer = true
	return fmt.Sprintf("%s(%s)", g.opts.Stringer, g.src(e))
}

// src returns the verbatim text of e, prefixed by a line directive when
// enabled
func (g *Generator) src(e Expr) string {
	if !g.opts.LineDirectives || e.Pos.Filename == "" || !e.Pos.IsValid() {
		return e.Text
	}
	return fmt.Sprintf("/*line %s:%d:%d*/%s", e.Pos.Filename, e.Pos.Line, e.Pos.Column, e.Text)
}

func (g *Generator) printf(format string, args ...any) {
	g.buf.WriteString(strings.Repeat("\t", g.indent))
	fmt.Fprintf(&g.buf, format, args...)
	g.buf.WriteByte('\n')
}

func sinkName(depth int) string {
	return fmt.Sprintf("_vex%d", depth)
}
