package template

import (
	"bytes"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"log/slog"
	"path"
	"strconv"

	"github.com/pkg/errors"
	"golang.org/x/tools/go/ast/astutil"
)

// Header marks every generated file
const Header = "// Code generated by vex. DO NOT EDIT.\n\n"

// DefaultBuilderImport is the import path of the runtime builder package
const DefaultBuilderImport = "github.com/recera/vex/pkg/vex/builder"

// Invocation is one parsed @vex block and the byte range it occupies in
// its file
type Invocation struct {
	Input *Input
	Start int // offset of '@'
	End   int // offset just past the closing brace
}

// ParseBlocks finds and parses every @vex block of a host source file
func ParseBlocks(filename string, src []byte) ([]Invocation, error) {
	ts, err := Tokenize(filename, src)
	if err != nil {
		return nil, err
	}

	var blocks []Invocation
	for i := 0; i < ts.Len(); i++ {
		at := ts.At(i)
		if !at.isAt() {
			continue
		}
		name, open := ts.At(i+1), ts.At(i+2)
		if name.Tok != token.IDENT || name.Lit != "vex" || name.Offset != at.End {
			return nil, ts.errorf(i, "unexpected '@' outside a vex block")
		}
		if open.Tok != token.LBRACE {
			return nil, ts.errorf(i+2, "expected '{' after @vex")
		}

		closeIdx := ts.Match(i + 2)
		in, err := ParseInput(ts, i+3, closeIdx)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, Invocation{
			Input: in,
			Start: at.Offset,
			End:   ts.At(closeIdx).End,
		})
		i = closeIdx
	}
	return blocks, nil
}

// Expander rewrites .vex host files into plain Go
type Expander struct {
	Options Options
	// BuilderImport is added to the imports when a file uses the builder
	BuilderImport string
	// StringerImport is added when generated code calls Options.Stringer
	StringerImport string
	Logger         *slog.Logger
}

// NewExpander creates an expander with the default builder and stringer
func NewExpander(opts Options) *Expander {
	return &Expander{
		Options:        opts,
		BuilderImport:  DefaultBuilderImport,
		StringerImport: "fmt",
		Logger:         slog.Default(),
	}
}

// Expand replaces every @vex block of src with generated Go, adds the imports
// the generated code needs and formats the result
func (e *Expander) Expand(filename string, src []byte) ([]byte, error) {
	blocks, err := ParseBlocks(filename, src)
	if err != nil {
		return nil, err
	}

	opts := e.Options
	if opts.BuilderPkg == "" {
		opts.BuilderPkg = DefaultOptions().BuilderPkg
	}
	// blocks naming their own builder with @builder import it themselves
	needsBuilder := false
	for _, b := range blocks {
		if !hasDirective(b.Input, "builder") {
			needsBuilder = true
		}
	}
	builderImported := false
	if needsBuilder {
		alias, ok, err := importName(filename, src, e.BuilderImport)
		if err != nil {
			return nil, err
		}
		if ok {
			opts.BuilderPkg = alias
			builderImported = true
		}
	}

	var out bytes.Buffer
	usedStringer := false
	prev := 0
	for _, b := range blocks {
		gen := NewGenerator(opts)
		code := gen.Expr(b.Input)
		usedStringer = usedStringer || gen.UsedStringer()

		if hasDirective(b.Input, "debug") {
			e.logger().Info("generated vex block",
				"file", filename,
				"offset", b.Start,
				"code", code)
		}

		out.Write(src[prev:b.Start])
		out.WriteString(code)
		prev = b.End
	}
	out.Write(src[prev:])

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filename, out.Bytes(), parser.ParseComments)
	if err != nil {
		return nil, errors.Wrapf(err, "expanded %s does not parse", filename)
	}

	if needsBuilder && !builderImported {
		pkg := opts.BuilderPkg
		if pkg == path.Base(e.BuilderImport) {
			astutil.AddImport(fset, file, e.BuilderImport)
		} else {
			astutil.AddNamedImport(fset, file, pkg, e.BuilderImport)
		}
	}
	if usedStringer && e.StringerImport != "" {
		astutil.AddImport(fset, file, e.StringerImport)
	}

	var formatted bytes.Buffer
	formatted.WriteString(Header)
	if err := format.Node(&formatted, fset, file); err != nil {
		return nil, errors.Wrapf(err, "formatting %s", filename)
	}
	return formatted.Bytes(), nil
}

func (e *Expander) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}

// Expand expands src with default options
func Expand(filename string, src []byte) ([]byte, error) {
	return NewExpander(DefaultOptions()).Expand(filename, src)
}

// importName returns the local name under which src imports importPath.
// Only the import section is parsed, so the @vex blocks after it are never
// reached.
func importName(filename string, src []byte, importPath string) (string, bool, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filename, src, parser.ImportsOnly)
	if err != nil {
		return "", false, errors.Wrapf(err, "reading imports of %s", filename)
	}

	for _, spec := range file.Imports {
		p, err := strconv.Unquote(spec.Path.Value)
		if err != nil || p != importPath {
			continue
		}
		name := path.Base(p)
		if spec.Name != nil {
			name = spec.Name.Name
		}
		if name == "_" || name == "." {
			return "", false, importError(fset, spec, importPath)
		}
		return name, true, nil
	}
	return "", false, nil
}

func importError(fset *token.FileSet, spec *ast.ImportSpec, importPath string) error {
	return &SyntaxError{
		Pos: fset.Position(spec.Pos()),
		Msg: "builder package " + strconv.Quote(importPath) + " must be imported by name",
	}
}

func hasDirective(in *Input, name string) bool {
	for _, d := range in.Directives {
		if d.Name == name {
			return true
		}
	}
	return false
}
