package report

import (
	"fmt"
)

// TextSpan represents a range or "span" of source text.  Text spans are
// inclusive on both sides.  Lines are one-indexed (matching the line numbers
// reported in parse errors) and columns are zero-indexed.
type TextSpan struct {
	// The line and column beginning the text span.
	StartLine, StartCol int

	// The line and column ending the text span.
	EndLine, EndCol int
}

// -----------------------------------------------------------------------------

// ParseError is an error produced while lexing or parsing: grammar mismatches,
// name resolution failures and unreadable import targets.
type ParseError struct {
	// The error message.  This always names the offending token or identifier
	// when there is one.
	Message string

	// The source line on which the error occurred.
	Line int

	// Err is the underlying failure (eg. an I/O error during import
	// resolution) if there is one.
	Err error
}

func (pe *ParseError) Error() string {
	return fmt.Sprintf("%s on line %d", pe.Message, pe.Line)
}

func (pe *ParseError) Unwrap() error {
	return pe.Err
}

// Raise creates a new parse error on the given line.
func Raise(line int, msg string, args ...interface{}) *ParseError {
	return &ParseError{Message: fmt.Sprintf(msg, args...), Line: line}
}

// GenError is an error produced during code generation: it indicates that the
// tree contains a construct which cannot be lowered (yet).
type GenError struct {
	Message string
}

func (ge *GenError) Error() string {
	return ge.Message
}

// Unsupported creates a new generation error.
func Unsupported(msg string, args ...interface{}) *GenError {
	return &GenError{Message: fmt.Sprintf(msg, args...)}
}

// -----------------------------------------------------------------------------

// InternalError is the value an internal compiler error panics with.
type InternalError struct {
	Message string
}

func (ie *InternalError) Error() string {
	return "internal compiler error: " + ie.Message
}

// ReportICE reports an internal compiler error.  These are errors that
// specifically result from a bug or an unexpected condition inside the
// compiler: they are never caused by user input.  Since the compiler is also
// used as a library, ICEs panic rather than exiting the process; the command
// line driver recovers them with CatchICE.
func ReportICE(message string, args ...interface{}) {
	panic(&InternalError{Message: fmt.Sprintf(message, args...)})
}

// CatchICE recovers an internal compiler error raised by ReportICE, displays
// it and stores it in the given error pointer.  Any other panic value is
// re-raised.
// NB: This function must ALWAYS be deferred.
func CatchICE(errp *error) {
	if x := recover(); x != nil {
		if ice, ok := x.(*InternalError); ok {
			displayICE(ice.Message)
			*errp = ice
			return
		}

		panic(x)
	}
}
