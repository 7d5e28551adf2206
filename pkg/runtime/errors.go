package runtime

import (
	"errors"
	"fmt"

	"oak/toolchain-go/pkg/ast"
)

// ErrorKind classifies failures raised by either engine.
type ErrorKind int

const (
	ExpectedLiteral ErrorKind = iota
	ExpectedBoolean
	InvalidOperandTypes
	DivisionByZero
	UndefinedVariable
	DuplicateDeclaration
	InvalidForClause
	IndexOutOfBounds
	TypeMismatchOnReturn
	UnsupportedOperator
	UnknownBuiltin
	AbstractMethodCalled
	ArityMismatch
	NotInvocable
	InvalidDeclaration
	InvalidControlTransfer
)

func (k ErrorKind) String() string {
	switch k {
	case ExpectedLiteral:
		return "ExpectedLiteral"
	case ExpectedBoolean:
		return "ExpectedBoolean"
	case InvalidOperandTypes:
		return "InvalidOperandTypes"
	case DivisionByZero:
		return "DivisionByZero"
	case UndefinedVariable:
		return "UndefinedVariable"
	case DuplicateDeclaration:
		return "DuplicateDeclaration"
	case InvalidForClause:
		return "InvalidForClause"
	case IndexOutOfBounds:
		return "IndexOutOfBounds"
	case TypeMismatchOnReturn:
		return "TypeMismatchOnReturn"
	case UnsupportedOperator:
		return "UnsupportedOperator"
	case UnknownBuiltin:
		return "UnknownBuiltin"
	case AbstractMethodCalled:
		return "AbstractMethodCalled"
	case ArityMismatch:
		return "ArityMismatch"
	case NotInvocable:
		return "NotInvocable"
	case InvalidDeclaration:
		return "InvalidDeclaration"
	case InvalidControlTransfer:
		return "InvalidControlTransfer"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Error is a located failure. Engines report one per failing top-level
// statement.
type Error struct {
	Kind     ErrorKind
	Message  string
	Location ast.Span
}

func (e *Error) Error() string {
	if e.Location.Start.Line == 0 {
		return e.Message
	}
	return fmt.Sprintf("%d:%d: %s", e.Location.Start.Line, e.Location.Start.Column, e.Message)
}

// Errorf builds a located error of the given kind.
func Errorf(kind ErrorKind, loc ast.Span, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Location: loc}
}

// Warning is a non-fatal diagnostic. Operations that return a Warning also
// return a usable result.
type Warning struct {
	Kind     ErrorKind
	Message  string
	Location ast.Span
}

func (w *Warning) Error() string {
	if w.Location.Start.Line == 0 {
		return "warning: " + w.Message
	}
	return fmt.Sprintf("%d:%d: warning: %s", w.Location.Start.Line, w.Location.Start.Column, w.Message)
}

// AsWarning reports whether err is a non-fatal Warning.
func AsWarning(err error) (*Warning, bool) {
	var w *Warning
	if errors.As(err, &w) {
		return w, true
	}
	return nil, false
}

// KindOf extracts the error kind, falling back to ok=false for foreign errors.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// At attaches loc to err when err is a located error without a position yet.
func At(err error, loc ast.Span) error {
	var e *Error
	if errors.As(err, &e) && e.Location == (ast.Span{}) {
		e.Location = loc
	}
	return err
}
