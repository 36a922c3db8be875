package ui

import (
	"strings"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/recera/vex/cmd/vex/internal/template"
)

func TestRenderError_SyntaxError(t *testing.T) {
	fs := afero.NewMemMapFs()
	src := "package bad\n\nvar X = @vex {\n\tdiv(a = 1, a = 2) {}\n}\n"
	if err := afero.WriteFile(fs, "bad.vex", []byte(src), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := template.Expand("bad.vex", []byte(src))
	if err == nil {
		t.Fatal("expected a syntax error")
	}

	out := RenderError(fs, err)
	for _, want := range []string{
		"bad.vex:4:13:",
		`duplicate attribute "a"`,
		"   4 | ",
		"\tdiv(a = 1, a = 2) {}",
		"\t           ",
		"^",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderError() missing %q in:\n%s", want, out)
		}
	}
}

func TestRenderError_Batch(t *testing.T) {
	var merr *multierror.Error
	merr = multierror.Append(merr, errors.New("first failure"))
	merr = multierror.Append(merr, &template.SyntaxError{Msg: "second failure"})

	out := RenderError(afero.NewMemMapFs(), merr)
	if !strings.Contains(out, "first failure") || !strings.Contains(out, "second failure") {
		t.Errorf("RenderError() = %q", out)
	}
	if strings.Count(out, "\n") != 1 {
		t.Errorf("expected one line per error, got %q", out)
	}
}

func TestRenderError_MissingSource(t *testing.T) {
	_, err := template.Expand("gone.vex", []byte("package p\nvar X = @vex { + }"))
	out := RenderError(afero.NewMemMapFs(), err)
	if !strings.Contains(out, "expected expression after '+'") {
		t.Errorf("RenderError() = %q", out)
	}
	if strings.Contains(out, "|") {
		t.Errorf("no source line should be shown for a missing file: %q", out)
	}
}

func TestCaretPadding(t *testing.T) {
	if got := caretPadding("\t\tab", 4); got != "\t\t " {
		t.Errorf("caretPadding() = %q", got)
	}
	if got := caretPadding("x", 1); got != "" {
		t.Errorf("caretPadding() = %q", got)
	}
}

func TestRenderError_Nil(t *testing.T) {
	if RenderError(nil, nil) != "" {
		t.Error("RenderError(nil) should be empty")
	}
}
