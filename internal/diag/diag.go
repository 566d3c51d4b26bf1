// Package diag is the compiler's single fatal channel (spec.md §4.6,
// §9). Every lexical, syntactic, and semantic violation is reported by
// panicking with an *Error. internal/parser.Parse recovers these at
// its own top-level entry point and returns them as a normal Go error;
// the few System diagnostics raised outside a parse (missing
// JASMIN_JAR, file I/O failures) are recovered one level up, at
// cmd/alanc's command action. This keeps every scanner/parser/codegen
// routine free of "if err != nil" plumbing for a class of error that
// never recovers, per spec.md §9's note that result-returning parse
// routines aren't worth it here.
package diag

import (
	"fmt"

	"tlog.app/go/loc"
	"tlog.app/go/tlog"

	"github.com/alan-2022/alanc/internal/token"
)

// Kind classifies a diagnostic for callers that want to distinguish
// lexical/syntactic/semantic/system errors (spec.md §7's taxonomy)
// without parsing the message text.
type Kind int

const (
	Lexical Kind = iota
	Syntactic
	Semantic
	System
)

// Error is a fatal diagnostic with source position. Pos is the zero
// value for System errors, which have no source location.
type Error struct {
	Kind    Kind
	Pos     token.Pos
	HasPos  bool
	Message string
}

func (e *Error) Error() string {
	if !e.HasPos {
		return e.Message
	}

	return fmt.Sprintf("%s: %s", e.Pos, e.Message)
}

// Fatalf panics with a positioned diagnostic. It is called from the
// scanner and parser, which always know where the offending lexeme or
// token starts. The raising site is logged under the "diag" verbosity
// topic (tlog.V("diag")), gated the same way as the rest of the
// codebase's debug-only tracing, never folded into Error.Message or
// shown to the user by default.
func Fatalf(kind Kind, pos token.Pos, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	tlog.V("diag").Printw("diagnostic raised", "kind", kind, "pos", pos, "msg", msg, "from", loc.Caller(1))

	panic(&Error{
		Kind:    kind,
		Pos:     pos,
		HasPos:  true,
		Message: msg,
	})
}

// FatalSystem panics with a positionless system diagnostic (cannot open
// source, cannot write output, assembler invocation failure, missing
// JASMIN_JAR).
func FatalSystem(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	tlog.V("diag").Printw("diagnostic raised", "kind", System, "msg", msg, "from", loc.Caller(1))

	panic(&Error{
		Kind:    System,
		Message: msg,
	})
}

// Recover is deferred by the boundary functions (parser.Parse, and
// cmd/alanc's command action for System diagnostics) that convert a
// diag panic back into a returned error. Panics that are
// not *Error are re-panicked: diag only owns the compiler's own fatal
// channel, not genuine programming errors (index out of range, nil
// pointer, etc.).
func Recover(errp *error) {
	r := recover()
	if r == nil {
		return
	}

	e, ok := r.(*Error)
	if !ok {
		panic(r)
	}

	*errp = e
}
