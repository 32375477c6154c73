// Copyright (c) 2025 SRODBPatch
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package errors defines typed errors with categories for user-friendly reporting.
// Each error carries a machine-readable Kind so callers can tell a missing backup
// from a failed statement without string matching, and a juju/errors trace so a
// failure report can show where the error crossed each layer.
package errors

import (
	stderrors "errors"
	"fmt"

	jujuerrors "github.com/juju/errors"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// Configuration indicates an unreadable or invalid settings file.
	Configuration Kind = "configuration"
	// Connection indicates a network or authentication failure.
	Connection Kind = "connection"
	// BackupMissing indicates a restore was attempted without a backup table.
	BackupMissing Kind = "backup_missing"
	// StatementExecution indicates a SQL statement failed.
	StatementExecution Kind = "statement_execution"
	// InvalidIdentifier indicates a table name outside the allow-list.
	InvalidIdentifier Kind = "invalid_identifier"
	// PatchNotFound indicates an unknown patch name.
	PatchNotFound Kind = "patch_not_found"
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Err     error
}

// Error returns the message, followed by the cause when there is one.
// The kind is left out since the message is shown to users verbatim.
func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *E) Unwrap() error { return e.Err }

// Wrap annotates err with a kind and message, recording the caller location.
func Wrap(kind Kind, msg string, err error) error {
	return located(&E{Kind: kind, Message: msg, Err: err})
}

// New creates an error of the given kind with no underlying cause.
func New(kind Kind, msg string) error {
	return located(&E{Kind: kind, Message: msg})
}

// Newf is New with a format string.
func Newf(kind Kind, format string, args ...any) error {
	return located(&E{Kind: kind, Message: fmt.Sprintf(format, args...)})
}

// located records the frame two above it: the caller of the exported
// constructor that called located.
func located(e *E) error {
	err := jujuerrors.NewErrWithCause(e, "")
	err.SetLocation(2)
	return &err
}

// KindOf returns the kind of the first E in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *E
	if stderrors.As(err, &e) || stderrors.As(jujuerrors.Cause(err), &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Trace records the caller location on err without changing its message.
func Trace(err error) error {
	if err == nil {
		return nil
	}
	traced := jujuerrors.NewErrWithCause(err, "")
	traced.SetLocation(1)
	return &traced
}

// Details renders the location trace collected while err propagated.
func Details(err error) string {
	if err == nil {
		return ""
	}
	return jujuerrors.ErrorStack(err)
}
