package indicators

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed calculation.
type ErrorKind int

const (
	// InvalidInput is a candle-contract violation: a required field is
	// missing or the required fields differ in length.
	InvalidInput ErrorKind = iota + 1
	// InvalidParameters is a parameter-contract violation or a decode failure.
	InvalidParameters
	// CalculationError means an internal check failed after validation.
	CalculationError
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidInput:
		return "invalid input"
	case InvalidParameters:
		return "invalid parameters"
	case CalculationError:
		return "calculation error"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Sentinels for errors.Is matching on the kind only.
var (
	ErrInvalidInput      = &Error{Kind: InvalidInput}
	ErrInvalidParameters = &Error{Kind: InvalidParameters}
	ErrCalculation       = &Error{Kind: CalculationError}
)

// Error is returned by every Calculate. Error() is the bare message, which
// callers may compare literally.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func invalidInput(format string, args ...any) error {
	return &Error{Kind: InvalidInput, Msg: fmt.Sprintf(format, args...)}
}

func invalidParams(format string, args ...any) error {
	return &Error{Kind: InvalidParameters, Msg: fmt.Sprintf(format, args...)}
}

func calcError(err error, format string, args ...any) error {
	return &Error{Kind: CalculationError, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of err, or 0 when err is not an *Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
