package analysis

import (
	"errors"
	"fmt"
)

var (
	ErrForbidden = errors.New("analysis belongs to another user")
	ErrNotFound  = errors.New("analysis not found")
)

type ValidationKind string

const (
	EmptyFile       ValidationKind = "EMPTY_FILE"
	TooLarge        ValidationKind = "TOO_LARGE"
	UnknownType     ValidationKind = "UNKNOWN_TYPE"
	UnsupportedType ValidationKind = "UNSUPPORTED_TYPE"
)

type ValidationError struct {
	Kind    ValidationKind
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func invalid(kind ValidationKind, format string, args ...any) error {
	return &ValidationError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
