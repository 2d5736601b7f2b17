package domain

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindEmailTaken
	KindInvalidCredentials
	KindInvalidToken
	KindForbidden
	KindNotFound
	KindStoreUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindEmailTaken:
		return "email taken"
	case KindInvalidCredentials:
		return "invalid credentials"
	case KindInvalidToken:
		return "invalid or expired token"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not found"
	case KindStoreUnavailable:
		return "store unavailable"
	default:
		return "internal error"
	}
}

// Error carries an explicit kind; errors.Is matches on kind alone.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func E(kind Kind, op string, err error) *Error { return &Error{Kind: kind, Op: op, Err: err} }

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrValidation         = &Error{Kind: KindValidation}
	ErrEmailTaken         = &Error{Kind: KindEmailTaken}
	ErrInvalidCredentials = &Error{Kind: KindInvalidCredentials}
	ErrInvalidToken       = &Error{Kind: KindInvalidToken}
	ErrForbidden          = &Error{Kind: KindForbidden}
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrStoreUnavailable   = &Error{Kind: KindStoreUnavailable}
)

// KindOf returns the kind of the outermost *Error in the chain, KindInternal otherwise.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}
