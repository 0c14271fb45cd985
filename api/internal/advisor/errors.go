package advisor

import (
	"errors"
	"fmt"
)

type Kind int

const (
	// KindValidation: the request failed shape/type checks.
	KindValidation Kind = iota + 1
	// KindNotReady: the AI client never initialized.
	KindNotReady
	// KindGeneration: the model call failed or returned unparsable output.
	KindGeneration
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotReady:
		return "not_ready"
	case KindGeneration:
		return "generation"
	default:
		return "unknown"
	}
}

const (
	msgNotReady   = "AI belum siap."
	msgGeneration = "Gagal memproses AI"
)

// Error is the closed set of failures a calculation can surface.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

func ValidationError(cause error) *Error {
	msg := "invalid request"
	if cause != nil {
		msg = cause.Error()
	}
	return &Error{Kind: KindValidation, Message: msg, Err: cause}
}

func notReadyError(cause error) *Error {
	return &Error{Kind: KindNotReady, Message: msgNotReady, Err: cause}
}

func generationError(cause error) *Error {
	return &Error{
		Kind:    KindGeneration,
		Message: fmt.Sprintf("%s: %v", msgGeneration, cause),
		Err:     cause,
	}
}

// KindOf reports the taxonomy kind of err, or 0 for errors outside it.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
