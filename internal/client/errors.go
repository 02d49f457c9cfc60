// ABOUTME: Typed failure returned by every API client operation
// ABOUTME: Carries one human-readable message plus the kind of failure

package client

import (
	"errors"
	"strconv"
	"strings"
)

// Kind classifies a client failure
type Kind int

const (
	// KindRemote is any server or transport failure
	KindRemote Kind = iota
	// KindValidation is malformed local input caught before dispatch
	KindValidation
	// KindAuthentication is a rejected sign-in
	KindAuthentication
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case KindRemote:
		return "remote"
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	default:
		return "unknown"
	}
}

// Error is the only error type the client returns. Message is safe to show
// to the user; Err keeps the underlying cause for logs.
type Error struct {
	Kind    Kind
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Detail returns the message with status and cause for diagnostics
func (e *Error) Detail() string {
	var sb strings.Builder
	sb.WriteString(e.Op)
	sb.WriteString(": ")
	sb.WriteString(e.Message)
	if e.Status != 0 {
		sb.WriteString(" (status ")
		sb.WriteString(strconv.Itoa(e.Status))
		sb.WriteString(")")
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func validationError(op, msg string) *Error {
	return &Error{Kind: KindValidation, Op: op, Message: msg}
}

func kindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// IsValidation reports whether err is a local validation failure
func IsValidation(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindValidation
}

// IsAuthentication reports whether err is a rejected sign-in
func IsAuthentication(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindAuthentication
}

// IsRemote reports whether err came from the server or the transport
func IsRemote(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindRemote
}

// Message extracts the user-facing message from any error
func Message(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
