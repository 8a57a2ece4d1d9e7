// Package kerrors holds the shared error taxonomy every kernel subsystem
// reports through: invalid-argument, not-found, permission-denied,
// exists, exhausted, not-implemented, and malformed. Subsystems wrap one
// of these sentinels
// with fmt.Errorf's %w so the syscall dispatcher can collapse any of
// them to -1 without caring which subsystem raised it, while tests can
// still assert on the specific category with errors.Is.
package kerrors

import "errors"

var (
	ErrInvalid        = errors.New("invalid argument")
	ErrNotFound       = errors.New("not found")
	ErrPermission     = errors.New("permission denied")
	ErrExists         = errors.New("already exists")
	ErrExhausted      = errors.New("resource exhausted")
	ErrNotImplemented = errors.New("not implemented")
	ErrMalformed      = errors.New("malformed input")
)
