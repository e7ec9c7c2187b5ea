package svcerr

import "strings"

// Kind categorizes a service error reported by the identity provider boundary.
// The set is closed: the provider client is the only producer, so consumers
// can switch over it exhaustively.
type Kind string

const (
	Network       Kind = "network"
	NotAuthorized Kind = "not_authorized"
	Other         Kind = "other"
)

// NetworkErrorMessage is the exact message carried by a refresh failure that
// never reached the service. Sessions must survive these.
const NetworkErrorMessage = "Network error"

// notAuthorizedPrefix marks provider error codes that signal a terminal
// authorization failure (the session is gone and the user must sign in again).
const notAuthorizedPrefix = "NotAuthorizedException"

// Error is a structured error originating from the identity provider.
type Error struct {
	Kind    Kind
	Code    string // provider error code, e.g. "NotAuthorizedException"
	Message string
	Err     error // optional underlying error
}

func (e *Error) Error() string {
	if e.Code != "" {
		return e.Code + ": " + e.Message
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New constructs a service Error with an explicit kind.
func New(k Kind, code, msg string, err error) *Error {
	return &Error{Kind: k, Code: code, Message: msg, Err: err}
}

// NewNetwork wraps a transport-level failure. The message is pinned to the
// network sentinel so callers can rely on it.
func NewNetwork(err error) *Error {
	return &Error{Kind: Network, Message: NetworkErrorMessage, Err: err}
}

// FromCode classifies a provider-side rejection by its error code.
func FromCode(code, message string) *Error {
	if strings.HasPrefix(code, notAuthorizedPrefix) {
		return &Error{Kind: NotAuthorized, Code: code, Message: message}
	}
	return &Error{Kind: Other, Code: code, Message: message}
}
