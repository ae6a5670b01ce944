// Package repository defines the user store interface, its MySQL and
// in-memory implementations, and the sentinel errors that higher layers
// use to distinguish failure scenarios without inspecting SQL errors.
package repository

import "errors"

// ErrNotFound is returned when no user matches the given selector.
var ErrNotFound = errors.New("user not found")

// ErrUsernameExists is returned when a write would duplicate a username,
// either detected up front or by the unique index at insert/update time.
var ErrUsernameExists = errors.New("username already exists")

// ErrEmailExists is the email counterpart of ErrUsernameExists.
var ErrEmailExists = errors.New("email already exists")
