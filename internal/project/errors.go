package project

import (
	"errors"
	"fmt"
)

// Error kinds. Every failure surfaced by the store or the mutation engine
// wraps exactly one of these so callers can branch with errors.Is.
var (
	// ErrValidation indicates bad or missing arguments relative to the current model.
	ErrValidation = errors.New("validation failed")

	// ErrDuplicateName indicates a name collides with an existing entity.
	ErrDuplicateName = errors.New("duplicate name")

	// ErrUnknownGroup indicates a function was assigned to a missing resource or group.
	ErrUnknownGroup = errors.New("unknown resource or function group")

	// ErrUnknownTarget indicates an auth binding target does not exist.
	ErrUnknownTarget = errors.New("unknown auth target")

	// ErrNotFound indicates the named entity (or the model file) does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates the project directory already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrAlreadyBound indicates the target already carries an auth binding.
	ErrAlreadyBound = errors.New("auth already bound")

	// ErrCorruptModel indicates the persisted model cannot be parsed into the schema.
	ErrCorruptModel = errors.New("corrupt project model")

	// ErrWrite indicates the model file could not be written.
	ErrWrite = errors.New("write failed")

	// ErrMaterialization indicates an I/O failure while updating the file tree.
	ErrMaterialization = errors.New("materialization failed")

	// ErrInconsistent indicates a rollback failed and the tree needs manual inspection.
	ErrInconsistent = errors.New("project tree left inconsistent")

	// ErrExternalTool indicates a shelled-out process returned failure.
	ErrExternalTool = errors.New("external tool failed")
)

// kinds lists every error kind in the order KindOf checks them.
// ErrInconsistent comes first because it wraps the materialization failure.
var kinds = []error{
	ErrInconsistent,
	ErrCorruptModel,
	ErrDuplicateName,
	ErrUnknownGroup,
	ErrUnknownTarget,
	ErrAlreadyExists,
	ErrAlreadyBound,
	ErrNotFound,
	ErrWrite,
	ErrMaterialization,
	ErrExternalTool,
	ErrValidation,
}

// Error carries the operation, the entity it concerned and its kind.
type Error struct {
	Op      string // operation, e.g. "add function"
	Subject string // entity name or file path
	Kind    error  // one of the Err* kinds
	Err     error  // underlying cause, may be nil
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Subject != "" {
		msg = fmt.Sprintf("%s %q", msg, e.Subject)
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Errorf builds an *Error whose cause is a formatted message.
func Errorf(kind error, op, subject, format string, args ...any) *Error {
	return &Error{Op: op, Subject: subject, Kind: kind, Err: fmt.Errorf(format, args...)}
}

// NewError builds an *Error without a separate cause.
func NewError(kind error, op, subject string) *Error {
	return &Error{Op: op, Subject: subject, Kind: kind}
}

// KindOf returns the error kind wrapped by err, or nil if err carries none.
func KindOf(err error) error {
	if err == nil {
		return nil
	}
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
