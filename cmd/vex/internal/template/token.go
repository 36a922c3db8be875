package template

import (
	"bytes"
	"fmt"
	"go/scanner"
	"go/token"
)

// Token is one lexical token of the host language
type Token struct {
	Tok    token.Token
	Lit    string
	Offset int // byte offset of the first character
	End    int // byte offset just past the last character
}

// String describes the token for diagnostics
func (t Token) String() string {
	switch t.Tok {
	case token.EOF:
		return "end of block"
	case token.SEMICOLON:
		if t.Lit == "\n" {
			return "newline"
		}
		return "';'"
	case token.IDENT:
		return fmt.Sprintf("identifier %s", t.Lit)
	case token.INT, token.FLOAT, token.IMAG, token.CHAR, token.STRING:
		return fmt.Sprintf("literal %s", t.Lit)
	case token.ILLEGAL:
		return fmt.Sprintf("'%s'", t.Lit)
	}
	return fmt.Sprintf("'%s'", t.Tok)
}

// isAt reports whether the token is the '@' sigil
func (t Token) isAt() bool {
	return t.Tok == token.ILLEGAL && t.Lit == "@"
}

// isAutoSemi reports whether the token is a semicolon inserted at a newline
func (t Token) isAutoSemi() bool {
	return t.Tok == token.SEMICOLON && t.Lit != ";"
}

// TokenStream is an immutable tokenized source with the position of the
// matching delimiter for every (, [ and {.
type TokenStream struct {
	file  *token.File
	src   []byte
	toks  []Token
	match []int
}

// Tokenize scans src with the Go scanner. The '@' sigil is kept as an
// ILLEGAL token; every other scan error and any unbalanced delimiter is
// returned as a *SyntaxError.
func Tokenize(filename string, src []byte) (*TokenStream, error) {
	fset := token.NewFileSet()
	file := fset.AddFile(filename, -1, len(src))

	var scanErr *SyntaxError
	handler := func(pos token.Position, msg string) {
		if pos.Offset < len(src) && src[pos.Offset] == '@' {
			return
		}
		if scanErr == nil {
			scanErr = &SyntaxError{Pos: pos, Msg: msg}
		}
	}

	var s scanner.Scanner
	s.Init(file, src, handler, 0)

	ts := &TokenStream{file: file, src: src}
	for {
		pos, tok, lit := s.Scan()
		if tok == token.EOF {
			break
		}
		off := file.Offset(pos)
		ts.toks = append(ts.toks, Token{
			Tok:    tok,
			Lit:    lit,
			Offset: off,
			End:    tokenEnd(src, off, tok, lit),
		})
	}
	if scanErr != nil {
		return nil, scanErr
	}

	if err := ts.matchDelimiters(); err != nil {
		return nil, err
	}
	return ts, nil
}

// tokenEnd computes the end offset of a token in src
func tokenEnd(src []byte, off int, tok token.Token, lit string) int {
	switch {
	case tok == token.SEMICOLON && lit != ";":
		return off
	case tok == token.STRING && len(lit) > 0 && lit[0] == '`':
		// raw strings have carriage returns stripped from lit
		if i := bytes.IndexByte(src[off+1:], '`'); i >= 0 {
			return off + i + 2
		}
		return len(src)
	case lit != "":
		return off + len(lit)
	}
	return off + len(tok.String())
}

func (ts *TokenStream) matchDelimiters() error {
	ts.match = make([]int, len(ts.toks))
	var stack []int
	for i, t := range ts.toks {
		ts.match[i] = -1
		switch t.Tok {
		case token.LPAREN, token.LBRACK, token.LBRACE:
			stack = append(stack, i)
		case token.RPAREN, token.RBRACK, token.RBRACE:
			if len(stack) == 0 {
				return ts.errorf(i, "unexpected %s", t)
			}
			open := stack[len(stack)-1]
			if closing(ts.toks[open].Tok) != t.Tok {
				return ts.errorf(i, "unexpected %s, expected '%s' to close %s at %s",
					t, closing(ts.toks[open].Tok), ts.toks[open], ts.Position(open))
			}
			stack = stack[:len(stack)-1]
			ts.match[open] = i
			ts.match[i] = open
		}
	}
	if len(stack) > 0 {
		open := stack[len(stack)-1]
		return ts.errorf(open, "unterminated %s", ts.toks[open])
	}
	return nil
}

func closing(open token.Token) token.Token {
	switch open {
	case token.LPAREN:
		return token.RPAREN
	case token.LBRACK:
		return token.RBRACK
	}
	return token.RBRACE
}

// Len returns the number of tokens
func (ts *TokenStream) Len() int {
	return len(ts.toks)
}

// At returns the i-th token, or an EOF token past the end
func (ts *TokenStream) At(i int) Token {
	if i < 0 || i >= len(ts.toks) {
		return Token{Tok: token.EOF, Offset: len(ts.src), End: len(ts.src)}
	}
	return ts.toks[i]
}

// Match returns the index of the delimiter matching token i, or -1
func (ts *TokenStream) Match(i int) int {
	if i < 0 || i >= len(ts.match) {
		return -1
	}
	return ts.match[i]
}

// Position resolves the source position of token i
func (ts *TokenStream) Position(i int) token.Position {
	return ts.file.Position(ts.file.Pos(ts.At(i).Offset))
}

// Source returns the underlying source bytes
func (ts *TokenStream) Source() []byte {
	return ts.src
}

// Filename returns the name the stream was tokenized under
func (ts *TokenStream) Filename() string {
	return ts.file.Name()
}

// text returns the verbatim source of tokens [lo, hi)
func (ts *TokenStream) text(lo, hi int) string {
	if lo >= hi {
		return ""
	}
	return string(ts.src[ts.toks[lo].Offset:ts.toks[hi-1].End])
}

func (ts *TokenStream) errorf(i int, format string, args ...any) *SyntaxError {
	return &SyntaxError{
		Pos: ts.Position(i),
		Msg: fmt.Sprintf(format, args...),
		Got: ts.At(i).String(),
	}
}
