package template

import "go/token"

// AST node types for @vex blocks

// Expr is a verbatim slice of host source: an expression, pattern or
// statement. Its contents are never interpreted.
type Expr struct {
	Text string
	Pos  token.Position
}

// IsZero reports whether the expression is empty
func (e Expr) IsZero() bool {
	return e.Text == ""
}

// Input is one @vex invocation: its directives and its body
type Input struct {
	Directives []Directive
	Body       *Block
}

// Directive is an @name option at the start of an invocation
type Directive struct {
	Name string // "debug" or "builder"
	Arg  string
	Pos  token.Position
}

// Block is one lexical scope. Statement order is execution order.
type Block struct {
	Stmts []Stmt
	Pos   token.Position
}

// Stmt is one of the statement kinds below
type Stmt interface {
	stmt()
}

// ElementStmt is a tag with attributes and children. Body is nil for a
// void element written as `br;`.
type ElementStmt struct {
	Tag       string
	Component bool
	Attrs     []Attr
	Body      *Block
	Pos       token.Position
}

// Attr is one attribute assignment, or a spread of a props map when Spread
// is set
type Attr struct {
	Name   string
	Value  Expr
	Spread bool
	Pos    token.Position
}

// TextStmt appends the stringified value of Value as a text node
type TextStmt struct {
	Value Expr
	Pos   token.Position
}

// ForStmt repeats Body per iteration. Native loops keep their Go header
// verbatim; otherwise Pattern binds the elements of Iter.
type ForStmt struct {
	Native  bool
	Header  Expr
	Pattern Expr
	Keyed   bool // Pattern names both key and value
	Iter    Expr
	Body    *Block
	Pos     token.Position
}

// IfStmt is an if / else if / else chain
type IfStmt struct {
	Arms []CondArm
	Else *Block
	Pos  token.Position
}

// CondArm is one guarded branch of an IfStmt
type CondArm struct {
	Guard Expr
	Body  *Block
}

// MatchStmt selects the first arm whose pattern matches and whose guard
// holds. TypeMatch arms test dynamic types of an interface scrutinee.
type MatchStmt struct {
	Scrutinee Expr
	Binding   string
	TypeMatch bool
	Arms      []MatchArm
	Pos       token.Position
}

// MatchArm is one arm of a MatchStmt
type MatchArm struct {
	Patterns []Expr // alternatives
	Wildcard bool
	Guard    *Expr
	Body     *Block
	Pos      token.Position
}

// PassthroughStmt is a host statement emitted unchanged
type PassthroughStmt struct {
	Code Expr
}

func (*ElementStmt) stmt()     {}
func (*TextStmt) stmt()        {}
func (*ForStmt) stmt()         {}
func (*IfStmt) stmt()          {}
func (*MatchStmt) stmt()       {}
func (*PassthroughStmt) stmt() {}
