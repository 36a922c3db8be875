package template

import (
	"go/token"
	"unicode"
	"unicode/utf8"
)

// vexParser is a recursive descent parser over the token range [pos, end) of
// a stream. Nested groups get their own vexParser over the group's interior.
type vexParser struct {
	ts  *TokenStream
	pos int
	end int
}

// Parse parses an entire token stream as one block body
func Parse(ts *TokenStream) (*Block, error) {
	p := &vexParser{ts: ts, end: ts.Len()}
	if err := p.rejectSigils(p.pos); err != nil {
		return nil, err
	}
	return p.parseBody()
}

// ParseString tokenizes and parses src as one block body
func ParseString(filename, src string) (*Block, error) {
	ts, err := Tokenize(filename, []byte(src))
	if err != nil {
		return nil, err
	}
	return Parse(ts)
}

// ParseInput parses tokens [lo, hi) as the body of one @vex invocation,
// directives first
func ParseInput(ts *TokenStream, lo, hi int) (*Input, error) {
	p := &vexParser{ts: ts, pos: lo, end: hi}
	in := &Input{}
	for p.pos < p.end {
		if p.peek().Tok == token.SEMICOLON {
			p.pos++
			continue
		}
		if !p.peek().isAt() {
			break
		}
		d, err := p.parseDirective()
		if err != nil {
			return nil, err
		}
		in.Directives = append(in.Directives, d)
	}

	if err := p.rejectSigils(p.pos); err != nil {
		return nil, err
	}
	body, err := p.parseBody()
	if err != nil {
		return nil, err
	}
	in.Body = body
	return in, nil
}

// parseDirective parses `@debug` or `@builder name`
func (p *vexParser) parseDirective() (Directive, error) {
	at := p.pos
	name := p.tok(at + 1)
	if name.Tok != token.IDENT {
		return Directive{}, p.errorf(at+1, "expected directive name after '@'")
	}

	d := Directive{Name: name.Lit, Pos: p.ts.Position(at)}
	i := at + 2
	switch name.Lit {
	case "debug":
	case "builder":
		if p.tok(i).Tok != token.IDENT {
			return Directive{}, p.errorf(i, "@builder expects a package identifier")
		}
		d.Arg = p.tok(i).Lit
		i++
	default:
		return Directive{}, p.errorf(at+1, "unknown directive @%s", name.Lit)
	}

	if i < p.end && p.tok(i).Tok != token.SEMICOLON {
		return Directive{}, p.errorf(i, "expected ';' after directive @%s", name.Lit)
	}
	p.consumeTo(i)
	return d, nil
}

// rejectSigils reports any '@' left in the range; directives are only
// allowed before the first statement
func (p *vexParser) rejectSigils(from int) error {
	for i := from; i < p.end; i++ {
		if !p.tok(i).isAt() {
			continue
		}
		if next := p.tok(i + 1); next.Tok == token.IDENT && (next.Lit == "debug" || next.Lit == "builder") {
			return p.errorf(i, "directive @%s must precede all statements", next.Lit)
		}
		return p.errorf(i, "unexpected '@'")
	}
	return nil
}

// parseBody parses statements until the end of the range
func (p *vexParser) parseBody() (*Block, error) {
	block := &Block{Pos: p.ts.Position(p.pos)}
	for p.pos < p.end {
		if p.peek().Tok == token.SEMICOLON {
			p.pos++
			continue
		}
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		block.Stmts = append(block.Stmts, stmt)
	}
	return block, nil
}

// parseStmt dispatches on the shape of the next statement
func (p *vexParser) parseStmt() (Stmt, error) {
	t := p.peek()
	switch {
	case t.Tok == token.ADD:
		return p.parseText()
	case t.Tok == token.FOR:
		return p.parseFor()
	case t.Tok == token.IF:
		return p.parseIf()
	case t.Tok == token.IDENT:
		if t.Lit == "match" && p.isMatch() {
			return p.parseMatch()
		}
		if p.isElement() {
			return p.parseElement()
		}
	}
	return p.parsePassthrough()
}

// parseText parses `+ expr;`
func (p *vexParser) parseText() (Stmt, error) {
	start := p.pos
	j := p.scanTok(start+1, p.end, token.SEMICOLON)
	if j == start+1 {
		return nil, p.errorf(start, "expected expression after '+'")
	}

	s := &TextStmt{Value: p.expr(start+1, j), Pos: p.ts.Position(start)}
	p.consumeTo(j)
	return s, nil
}

// isElement reports whether the identifier at pos starts an element: a
// name (optionally qualified) followed by a body, a terminator, or an
// attribute list
func (p *vexParser) isElement() bool {
	i := p.pos + 1
	if p.tok(i).Tok == token.PERIOD && p.tok(i+1).Tok == token.IDENT {
		i += 2
	}

	switch next := p.tok(i); next.Tok {
	case token.EOF, token.SEMICOLON, token.LBRACE:
		return true
	case token.LPAREN:
		k := p.ts.Match(i)
		switch p.tok(k + 1).Tok {
		case token.LBRACE:
			return true
		case token.EOF, token.SEMICOLON:
			// f(x); is a call, li(class = x); is a void element
			return p.attrOnly(i+1, k)
		}
	}
	return false
}

// attrOnly reports whether the group [lo, hi) cannot be call arguments:
// some entry has the `name =` shape, entries are separated by ';', or a
// spread is followed by another entry
func (p *vexParser) attrOnly(lo, hi int) bool {
	for i := lo; i < hi; {
		j := p.scanTok(i, hi, token.COMMA, token.SEMICOLON)
		if p.looksLikeAttr(i, j) {
			return true
		}
		if j < hi && p.tok(j).Tok == token.SEMICOLON {
			return true
		}
		if j > i && p.tok(j-1).Tok == token.ELLIPSIS && j+1 < hi {
			return true
		}
		i = j + 1
	}
	return false
}

// looksLikeAttr reports whether [lo, hi) starts with `name =` or
// `name-part =`
func (p *vexParser) looksLikeAttr(lo, hi int) bool {
	if lo >= hi || !isNameTok(p.tok(lo)) {
		return false
	}
	i := lo + 1
	for i+1 < hi && p.tok(i).Tok == token.SUB && isNamePart(p.tok(i+1)) {
		i += 2
	}
	return i < hi && p.tok(i).Tok == token.ASSIGN
}

// isMatch tells `match x { ... }` apart from an element named match and
// from statements using an identifier named match
func (p *vexParser) isMatch() bool {
	next := p.tok(p.pos + 1)
	switch next.Tok {
	case token.EOF, token.SEMICOLON, token.LBRACE, token.DEFINE, token.ASSIGN, token.COMMA,
		token.PERIOD, token.LBRACK, token.INC, token.DEC, token.ARROW, token.COLON:
		return false
	case token.LPAREN:
		return p.tok(p.ts.Match(p.pos+1)+1).Tok == token.LBRACE
	}
	return next.Tok < token.ADD_ASSIGN || next.Tok > token.AND_NOT_ASSIGN
}

// parseElement parses `tag(attrs) { body }`, `tag { body }` or `tag;`
func (p *vexParser) parseElement() (Stmt, error) {
	start := p.pos
	el := &ElementStmt{Pos: p.ts.Position(start)}

	el.Tag = p.tok(p.pos).Lit
	p.pos++
	qualified := false
	if p.tok(p.pos).Tok == token.PERIOD && p.tok(p.pos+1).Tok == token.IDENT {
		el.Tag += "." + p.tok(p.pos+1).Lit
		p.pos += 2
		qualified = true
	}
	first, _ := utf8.DecodeRuneInString(el.Tag)
	el.Component = qualified || unicode.IsUpper(first)

	if p.tok(p.pos).Tok == token.LPAREN {
		k := p.ts.Match(p.pos)
		attrs, err := p.parseAttrs(p.pos+1, k)
		if err != nil {
			return nil, err
		}
		el.Attrs = attrs
		p.pos = k + 1
	}

	switch t := p.tok(p.pos); t.Tok {
	case token.LBRACE:
		k := p.ts.Match(p.pos)
		body, err := p.sub(p.pos+1, k).parseBody()
		if err != nil {
			return nil, err
		}
		el.Body = body
		p.pos = k + 1
	case token.SEMICOLON, token.EOF:
		p.consumeTo(p.pos)
	default:
		return nil, p.errorf(p.pos, "expected '{' or ';' after element %s", el.Tag)
	}
	return el, nil
}

// parseAttrs parses a comma or terminator separated attribute list
func (p *vexParser) parseAttrs(lo, hi int) ([]Attr, error) {
	var attrs []Attr
	seen := make(map[string]bool)
	for i := lo; i < hi; {
		j := p.scanTok(i, hi, token.COMMA, token.SEMICOLON)
		if j > i {
			attr, err := p.parseAttr(i, j)
			if err != nil {
				return nil, err
			}
			if !attr.Spread {
				if seen[attr.Name] {
					return nil, p.errorf(i, "duplicate attribute %q", attr.Name)
				}
				seen[attr.Name] = true
			}
			attrs = append(attrs, attr)
		}
		i = j + 1
	}
	return attrs, nil
}

// parseAttr parses `name = expr`, `name`, or `expr...`
func (p *vexParser) parseAttr(lo, hi int) (Attr, error) {
	pos := p.ts.Position(lo)

	if p.tok(hi-1).Tok == token.ELLIPSIS {
		if hi-1 == lo {
			return Attr{}, p.errorf(lo, "expected expression before '...'")
		}
		return Attr{Spread: true, Value: p.expr(lo, hi-1), Pos: pos}, nil
	}

	first := p.tok(lo)
	if !isNameTok(first) {
		return Attr{}, p.errorf(lo, "malformed attribute key")
	}
	name := first.Lit
	plain := first.Tok == token.IDENT
	i := lo + 1
	for i < hi && p.tok(i).Tok == token.SUB {
		if i+1 >= hi || !isNamePart(p.tok(i+1)) {
			return Attr{}, p.errorf(i, "malformed attribute key %q", name+"-")
		}
		name += "-" + p.tok(i+1).Lit
		plain = false
		i += 2
	}

	if i == hi {
		if !plain {
			return Attr{}, p.errorf(lo, "attribute %q needs a value", name)
		}
		return Attr{Name: name, Value: Expr{Text: name, Pos: pos}, Pos: pos}, nil
	}
	if p.tok(i).Tok != token.ASSIGN {
		return Attr{}, p.errorf(i, "expected '=' after attribute name %q", name)
	}
	if i+1 == hi {
		return Attr{}, p.errorf(i, "missing value for attribute %q", name)
	}
	return Attr{Name: name, Value: p.expr(i+1, hi), Pos: pos}, nil
}

// parseFor parses a DSL loop `for pattern in expr { }` or a native Go loop
func (p *vexParser) parseFor() (Stmt, error) {
	start := p.pos
	b, err := p.findBody(start+1, true)
	if err != nil {
		return nil, err
	}

	s := &ForStmt{Pos: p.ts.Position(start)}
	lo := start + 1
	native := p.scanTok(lo, b, token.RANGE, token.DEFINE, token.ASSIGN, token.SEMICOLON) < b
	in := b
	if !native {
		in = p.scan(lo, b, func(t Token) bool { return t.Tok == token.IDENT && t.Lit == "in" })
	}

	if in < b {
		if in == lo {
			return nil, p.errorf(in, "missing loop pattern before 'in'")
		}
		if in+1 == b {
			return nil, p.errorf(in, "missing iterable after 'in'")
		}
		s.Pattern = p.expr(lo, in)
		s.Keyed = p.scanTok(lo, in, token.COMMA) < in
		s.Iter = p.expr(in+1, b)
	} else {
		s.Native = true
		s.Header = p.expr(lo, b)
	}

	k := p.ts.Match(b)
	body, err := p.sub(b+1, k).parseBody()
	if err != nil {
		return nil, err
	}
	s.Body = body
	p.pos = k + 1
	return s, nil
}

// parseIf parses an if / else if / else chain
func (p *vexParser) parseIf() (Stmt, error) {
	s := &IfStmt{Pos: p.ts.Position(p.pos)}
	p.pos++

	for {
		b, err := p.findBody(p.pos, true)
		if err != nil {
			return nil, err
		}
		if b == p.pos {
			return nil, p.errorf(b, "expected condition after 'if'")
		}
		guard := p.expr(p.pos, b)

		k := p.ts.Match(b)
		body, err := p.sub(b+1, k).parseBody()
		if err != nil {
			return nil, err
		}
		s.Arms = append(s.Arms, CondArm{Guard: guard, Body: body})
		p.pos = k + 1

		i := p.pos
		if p.tok(i).isAutoSemi() && p.tok(i+1).Tok == token.ELSE {
			i++
		}
		if p.tok(i).Tok != token.ELSE {
			return s, nil
		}
		p.pos = i + 1

		switch p.tok(p.pos).Tok {
		case token.IF:
			p.pos++
			continue
		case token.LBRACE:
			k := p.ts.Match(p.pos)
			body, err := p.sub(p.pos+1, k).parseBody()
			if err != nil {
				return nil, err
			}
			s.Else = body
			p.pos = k + 1
			return s, nil
		}
		return nil, p.errorf(p.pos, "expected 'if' or '{' after 'else'")
	}
}

// parseMatch parses `match [v :=] scrutinee[.(type)] { arms }`
func (p *vexParser) parseMatch() (Stmt, error) {
	start := p.pos
	b, err := p.findBody(start+1, false)
	if err != nil {
		return nil, err
	}

	s := &MatchStmt{Pos: p.ts.Position(start)}
	lo, hi := start+1, b
	if p.tok(lo).Tok == token.IDENT && p.tok(lo+1).Tok == token.DEFINE {
		if name := p.tok(lo).Lit; name != "_" {
			s.Binding = name
		}
		lo += 2
	}
	if hi-lo >= 4 && p.tok(hi-1).Tok == token.RPAREN && p.tok(hi-2).Tok == token.TYPE &&
		p.tok(hi-3).Tok == token.LPAREN && p.tok(hi-4).Tok == token.PERIOD {
		s.TypeMatch = true
		hi -= 4
	}
	if lo >= hi {
		return nil, p.errorf(start, "expected scrutinee after 'match'")
	}
	s.Scrutinee = p.expr(lo, hi)

	k := p.ts.Match(b)
	for i := b + 1; i < k; {
		if t := p.tok(i); t.Tok == token.COMMA || t.Tok == token.SEMICOLON {
			i++
			continue
		}
		arm, next, err := p.parseArm(i, k)
		if err != nil {
			return nil, err
		}
		s.Arms = append(s.Arms, arm)
		i = next
	}
	p.pos = k + 1
	return s, nil
}

// parseArm parses `pattern ('|' pattern)* (if guard)? => body` starting at
// lo and returns the index just past the arm
func (p *vexParser) parseArm(lo, hi int) (MatchArm, int, error) {
	arm := MatchArm{Pos: p.ts.Position(lo)}

	// the arrow must come before the separator ending this arm
	sep := p.scanTok(lo, hi, token.COMMA, token.SEMICOLON)
	arrow := p.scanAt(lo, sep, func(i int) bool {
		return p.tok(i).Tok == token.ASSIGN && p.tok(i+1).Tok == token.GTR &&
			p.tok(i+1).Offset == p.tok(i).End
	})
	if arrow == sep {
		if sep < hi {
			return arm, 0, p.errorf(sep, "expected '=>' in match arm")
		}
		return arm, 0, p.errorf(lo, "expected '=>' in match arm")
	}

	patEnd := p.scanTok(lo, arrow, token.IF)
	if patEnd == lo {
		return arm, 0, p.errorf(lo, "expected pattern before %s", p.tok(lo))
	}
	for i := lo; i < patEnd; {
		j := p.scanTok(i, patEnd, token.OR)
		if j == i {
			return arm, 0, p.errorf(i, "empty pattern alternative")
		}
		pat := p.expr(i, j)
		if pat.Text == "_" {
			arm.Wildcard = true
		}
		arm.Patterns = append(arm.Patterns, pat)
		if j == patEnd-1 {
			return arm, 0, p.errorf(j, "empty pattern alternative")
		}
		i = j + 1
	}

	if patEnd < arrow {
		if patEnd+1 == arrow {
			return arm, 0, p.errorf(patEnd, "expected guard expression after 'if'")
		}
		guard := p.expr(patEnd+1, arrow)
		arm.Guard = &guard
	}

	bi := arrow + 2
	if bi >= hi {
		return arm, 0, p.errorf(bi, "expected arm body after '=>'")
	}
	// a braced body ends the arm at its closing brace
	if p.tok(bi).Tok == token.LBRACE {
		k := p.ts.Match(bi)
		body, err := p.sub(bi+1, k).parseBody()
		if err != nil {
			return arm, 0, err
		}
		arm.Body = body
		return arm, k + 1, nil
	}

	// a single statement is normalised into a one-statement block
	e := p.scanTok(bi, hi, token.COMMA, token.SEMICOLON)
	if e == bi {
		return arm, 0, p.errorf(bi, "expected arm body after '=>'")
	}
	body, err := p.sub(bi, e).parseBody()
	if err != nil {
		return arm, 0, err
	}
	if len(body.Stmts) != 1 {
		return arm, 0, p.errorf(bi, "expected a single statement or a '{' block after '=>'")
	}
	arm.Body = body
	return arm, e, nil
}

// parsePassthrough consumes one host statement verbatim
func (p *vexParser) parsePassthrough() (Stmt, error) {
	j := p.scanTok(p.pos, p.end, token.SEMICOLON)
	s := &PassthroughStmt{Code: p.expr(p.pos, j)}
	p.consumeTo(j)
	return s, nil
}

// findBody locates the brace group that opens a for/if/match body. A brace
// group directly followed by another group or a selector is a composite
// literal in the header. Explicit semicolons are part of Go init clauses.
func (p *vexParser) findBody(from int, allowSemi bool) (int, error) {
	for i := from; i < p.end; i++ {
		t := p.tok(i)
		switch t.Tok {
		case token.SEMICOLON:
			if !allowSemi || t.isAutoSemi() {
				return -1, p.errorf(i, "expected '{' before %s", t)
			}
		case token.LBRACE:
			k := p.ts.Match(i)
			switch p.tok(k + 1).Tok {
			case token.LBRACE, token.PERIOD, token.LBRACK, token.LPAREN:
				i = k
				continue
			}
			return i, nil
		case token.LPAREN, token.LBRACK:
			i = p.ts.Match(i)
		}
	}
	return -1, p.errorf(p.end, "expected '{'")
}

// scanAt returns the first index in [from, to) at the top nesting level for
// which stop holds, or to
func (p *vexParser) scanAt(from, to int, stop func(i int) bool) int {
	for i := from; i < to; i++ {
		if stop(i) {
			return i
		}
		switch p.tok(i).Tok {
		case token.LPAREN, token.LBRACK, token.LBRACE:
			i = p.ts.Match(i)
		}
	}
	return to
}

func (p *vexParser) scan(from, to int, stop func(Token) bool) int {
	return p.scanAt(from, to, func(i int) bool { return stop(p.tok(i)) })
}

func (p *vexParser) scanTok(from, to int, toks ...token.Token) int {
	return p.scan(from, to, func(t Token) bool {
		for _, tok := range toks {
			if t.Tok == tok {
				return true
			}
		}
		return false
	})
}

// Helper methods

func (p *vexParser) sub(lo, hi int) *vexParser {
	return &vexParser{ts: p.ts, pos: lo, end: hi}
}

func (p *vexParser) peek() Token {
	return p.tok(p.pos)
}

// tok returns token i, or an EOF token located at the end of the range
func (p *vexParser) tok(i int) Token {
	if i >= p.end {
		end := p.ts.At(p.end)
		return Token{Tok: token.EOF, Offset: end.Offset, End: end.Offset}
	}
	return p.ts.At(i)
}

// consumeTo moves past the terminator at j, if any
func (p *vexParser) consumeTo(j int) {
	p.pos = j
	if j < p.end {
		p.pos++
	}
}

func (p *vexParser) expr(lo, hi int) Expr {
	return Expr{Text: p.ts.text(lo, hi), Pos: p.ts.Position(lo)}
}

func (p *vexParser) errorf(i int, format string, args ...any) *SyntaxError {
	err := p.ts.errorf(i, format, args...)
	err.Got = p.tok(i).String()
	return err
}

func isNameTok(t Token) bool {
	return t.Tok == token.IDENT || t.Tok.IsKeyword()
}

func isNamePart(t Token) bool {
	return isNameTok(t) || t.Tok == token.INT
}
