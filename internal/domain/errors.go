package domain

import (
	"errors"
	"fmt"
)

// ValidationError is raised before any network call and is always fixable by the caller.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func NewValidationError(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// RemoteReadError means the catalog could not be read; callers keep their last snapshot.
type RemoteReadError struct {
	Err error
}

func (e *RemoteReadError) Error() string {
	return fmt.Sprintf("failed to read catalog: %v", e.Err)
}

func (e *RemoteReadError) Unwrap() error {
	return e.Err
}

// UploadError means a blob write failed and nothing was persisted.
type UploadError struct {
	Path string
	Err  error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("failed to upload %s: %v", e.Path, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// PersistError means a catalog write was rejected.
type PersistError struct {
	Op  string
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("failed to %s media record: %v", e.Op, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}

func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsRemoteReadError(err error) bool {
	var target *RemoteReadError
	return errors.As(err, &target)
}

func IsUploadError(err error) bool {
	var target *UploadError
	return errors.As(err, &target)
}

func IsPersistError(err error) bool {
	var target *PersistError
	return errors.As(err, &target)
}
