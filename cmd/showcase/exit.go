package main

import (
	"errors"

	"github.com/mesh-intelligence/showcase/internal/assets"
	"github.com/mesh-intelligence/showcase/internal/restapi"
	"github.com/mesh-intelligence/showcase/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// sysError marks failures of the environment rather than of the operator's
// input: unreadable config, unreachable services, broken storage.
type sysError struct{ err error }

func (e *sysError) Error() string { return e.err.Error() }
func (e *sysError) Unwrap() error { return e.err }

func systemErr(err error) error {
	if err == nil {
		return nil
	}
	return &sysError{err: err}
}

// systemSentinels are collaborator failures the operator cannot fix by
// changing arguments.
var systemSentinels = []error{
	types.ErrUpload,
	types.ErrSave,
	types.ErrDetached,
	types.ErrDuplicateSlot,
	restapi.ErrUnavailable,
	assets.ErrS3Config,
}

// exitCode maps an error returned by a command to a process exit code.
// Anything not recognized as a system failure is the operator's to fix.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var se *sysError
	if errors.As(err, &se) {
		return exitSysError
	}
	for _, s := range systemSentinels {
		if errors.Is(err, s) {
			return exitSysError
		}
	}
	return exitUserError
}
