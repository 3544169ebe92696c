package store

import (
	"errors"
	"fmt"
)

var (
	// ErrMemberName indicates a member was registered without a name.
	ErrMemberName = errors.New("store: member name must not be empty")
	// ErrNilHandler indicates a member was registered without a body.
	ErrNilHandler = errors.New("store: member handler must not be nil")
	// ErrReservedName indicates a member name collides with a context member
	// the binders inject (state, getters, commit, ...).
	ErrReservedName = errors.New("store: member name is reserved")
	// ErrRoleConflict indicates the same member name was classified into two
	// different roles.
	ErrRoleConflict = errors.New("store: member already classified")
	// ErrInvalidModule indicates a declared sub-module is not a module
	// definition.
	ErrInvalidModule = errors.New("store: submodule must be a module definition")
	// ErrNoRuntime indicates a bound member was invoked outside a runtime,
	// leaving commit/dispatch unrouted.
	ErrNoRuntime = errors.New("store: no runtime attached to context")
)

// RoleConflictError reports a member registered under two roles. Construction
// of the definition fails rather than silently preferring one role.
type RoleConflictError struct {
	Member    string
	Existing  Role
	Requested Role
}

func (e *RoleConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("store: member %q already classified as %s, cannot also be %s", e.Member, e.Existing, e.Requested)
}

func (e *RoleConflictError) Unwrap() error {
	return ErrRoleConflict
}
