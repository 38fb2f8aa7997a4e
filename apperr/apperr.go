package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an operation failure. Every kind maps onto a stable HTTP
// status so the handler layer can translate consistently.
type Kind int

const (
	KindValidation Kind = iota
	KindUnauthorized
	KindPermissionDenied
	KindNotFound
	KindConflict
	KindAlreadyExists
	KindInternal
)

// Error is the single error type crossing the service boundary.
type Error struct {
	Kind    Kind
	Message string

	// Field names the failing field for validation errors.
	Field string

	// Permission context, set for KindPermissionDenied.
	Action     string
	ActorRole  string
	TargetRole string
}

func (e *Error) Error() string {
	if e.Kind == KindValidation && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// Validation reports a field-level constraint violation.
func Validation(field, message string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: message}
}

// Unauthorized reports a missing or invalid identity.
func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

// PermissionDenied reports that the actor's role is insufficient for action.
func PermissionDenied(action, actorRole, targetRole string) *Error {
	msg := fmt.Sprintf("role %s may not perform %s", actorRole, action)
	if targetRole != "" {
		msg = fmt.Sprintf("role %s may not perform %s on a %s", actorRole, action, targetRole)
	}
	return &Error{
		Kind:       KindPermissionDenied,
		Message:    msg,
		Action:     action,
		ActorRole:  actorRole,
		TargetRole: targetRole,
	}
}

// NotFound reports a missing or out-of-scope resource.
func NotFound(resource string) *Error {
	return &Error{Kind: KindNotFound, Message: resource + " not found"}
}

// Conflict reports an invariant violation.
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// AlreadyExists reports a duplicate where uniqueness is required.
func AlreadyExists(message string) *Error {
	return &Error{Kind: KindAlreadyExists, Message: message}
}

// Internal wraps an unexpected failure.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: err.Error()}
}

// KindOf extracts the kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Status maps an error to its HTTP status code.
func Status(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindPermissionDenied:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict, KindAlreadyExists:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
