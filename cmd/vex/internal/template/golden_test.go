package template

import (
	"go/scanner"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/kylelemons/godebug/pretty"
	"github.com/spf13/afero"
	"golang.org/x/tools/txtar"
)

// magicError marks an OUTPUT section that expects generation to fail
const magicError = "# err: "

// TestGolden expands the .vex file of every testdata/*.txtar archive and
// compares the result with its OUTPUT section token by token, so layout and
// comments do not matter.
func TestGolden(t *testing.T) {
	dir := "testdata"
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("could not read through tests directory: %+v", err)
	}
	sorted := []string{}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".txtar") {
			sorted = append(sorted, e.Name())
		}
	}
	sort.Strings(sorted)
	if len(sorted) == 0 {
		t.Fatal("no golden tests found")
	}

	for index, name := range sorted {
		path := filepath.Join(dir, name)
		t.Run(name, func(t *testing.T) {
			archive, err := txtar.ParseFile(path)
			if err != nil {
				t.Fatalf("test #%d: err parsing txtar(%s): %+v", index, path, err)
			}

			fs := afero.NewMemMapFs()
			var input string
			var expected []byte
			found := false
			for _, file := range archive.Files {
				if file.Name == "OUTPUT" {
					expected = file.Data
					found = true
					continue
				}
				if err := afero.WriteFile(fs, file.Name, file.Data, 0644); err != nil {
					t.Fatalf("err writing file(%s): %+v", file.Name, err)
				}
				if strings.HasSuffix(file.Name, ".vex") && input == "" {
					input = file.Name
				}
			}
			if !found || input == "" {
				t.Fatalf("test #%d: archive needs a .vex file and an OUTPUT section", index)
			}

			proc := NewProcessor(fs, NewExpander(DefaultOptions()))
			res, err := proc.ProcessFile(input)

			expstr := strings.TrimSpace(string(expected))
			if strings.HasPrefix(expstr, magicError) {
				want := strings.TrimPrefix(expstr, magicError)
				if err == nil {
					t.Fatalf("test #%d: expected error %q, got none", index, want)
				}
				if !strings.Contains(err.Error(), want) {
					t.Errorf("test #%d: error = %q, want it to contain %q", index, err.Error(), want)
				}
				return
			}
			if err != nil {
				t.Fatalf("test #%d: ProcessFile() error = %+v", index, err)
			}

			actual, err := afero.ReadFile(fs, res.Output)
			if err != nil {
				t.Fatalf("test #%d: output not written: %+v", index, err)
			}
			if !strings.HasPrefix(string(actual), Header) {
				t.Errorf("test #%d: output is missing the generated code header", index)
			}
			compareTokens(t, actual, expected)
		})
	}
}

// compareTokens fails the test when got and want differ in anything but
// whitespace, comments and semicolons
func compareTokens(t *testing.T, got, want []byte) {
	t.Helper()
	gotToks, err := goTokens(got)
	if err != nil {
		t.Fatalf("generated code does not scan: %v\n%s", err, got)
	}
	wantToks, err := goTokens(want)
	if err != nil {
		t.Fatalf("expected code does not scan: %v", err)
	}
	if diff := pretty.Compare(wantToks, gotToks); diff != "" {
		t.Errorf("generated code differs (-want +got):\n%s\ngenerated:\n%s", diff, got)
	}
}

func goTokens(src []byte) ([]string, error) {
	fset := token.NewFileSet()
	file := fset.AddFile("", -1, len(src))

	var errs scanner.ErrorList
	var s scanner.Scanner
	s.Init(file, src, func(pos token.Position, msg string) { errs.Add(pos, msg) }, 0)

	var toks []string
	for {
		_, tok, lit := s.Scan()
		if tok == token.EOF {
			break
		}
		if tok == token.SEMICOLON {
			continue
		}
		if lit == "" {
			lit = tok.String()
		}
		toks = append(toks, lit)
	}
	return toks, errs.Err()
}
