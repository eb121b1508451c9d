package errors

import (
	// Go Internal Packages
	"errors"
	"fmt"
)

// Kind classifies an error for callers that branch on failure class
// rather than on the exact message.
type Kind uint8

const (
	Other     Kind = iota // unclassified
	Invalid               // invalid input (params, body, config)
	NotFound              // requested entity does not exist
	Transport             // network / connection level failure
	Upstream              // upstream API answered with a non-success envelope
)

func (k Kind) String() string {
	switch k {
	case Invalid:
		return "invalid"
	case NotFound:
		return "not found"
	case Transport:
		return "transport failure"
	case Upstream:
		return "upstream failure"
	}
	return "error"
}

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

// E builds an *Error from a kind, a message and an optional wrapped cause.
func E(kind Kind, msg string, err error) error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Msg, e.Err.Error())
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf extracts the kind of err, walking the wrap chain.
// Errors that are not *Error report Other.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Other
}

// Is reports whether err carries the given kind anywhere in its chain.
func Is(kind Kind, err error) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Kind == kind {
			return true
		}
		err = e.Err
	}
	return false
}
