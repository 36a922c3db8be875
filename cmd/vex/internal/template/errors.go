package template

import (
	"fmt"
	"go/token"

	"github.com/pkg/errors"
)

// SyntaxError reports a malformed @vex block. Parsing stops at the first one.
type SyntaxError struct {
	Pos token.Position // Position of the offending token
	Msg string         // Human-readable error message
	Got string         // Description of the offending token (optional)
}

// Error returns a formatted error message with position information
func (e *SyntaxError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
	}
	return e.Msg
}

// AsSyntaxError extracts a *SyntaxError from a possibly wrapped error
func AsSyntaxError(err error) (*SyntaxError, bool) {
	var se *SyntaxError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// internalError is raised for generator invariant violations. It is a
// compiler defect and never a user diagnostic.
func internalError(format string, args ...any) {
	panic(fmt.Sprintf("vex: internal compiler error: "+format, args...))
}
