package metrics

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
)

// FailureKind classifies why a source produced no value.
type FailureKind string

const (
	FailureTimeout          FailureKind = "timeout"
	FailurePermissionDenied FailureKind = "permission_denied"
	FailureUnsupported      FailureKind = "unsupported"
	FailureOSError          FailureKind = "os_error"
	FailureDisabled         FailureKind = "disabled"
)

// SourceFailure records a failed sample. It is a value in the snapshot, not a
// fatal error.
type SourceFailure struct {
	Source  Family
	Kind    FailureKind
	Message string
}

// NewFailure creates a failure for the given family.
func NewFailure(source Family, kind FailureKind, message string) *SourceFailure {
	return &SourceFailure{Source: source, Kind: kind, Message: message}
}

// Error implements the error interface.
func (f *SourceFailure) Error() string {
	if f.Message == "" {
		return fmt.Sprintf("%s: %s", f.Source, f.Kind)
	}
	return fmt.Sprintf("%s: %s: %s", f.Source, f.Kind, f.Message)
}

// Label is the short text shown in place of an unavailable value.
func (f *SourceFailure) Label() string {
	switch f.Kind {
	case FailureTimeout:
		return "timed out"
	case FailurePermissionDenied:
		return "permission denied"
	case FailureUnsupported:
		return "not supported"
	case FailureDisabled:
		return "disabled"
	default:
		return "unavailable"
	}
}

// ErrUnsupported is returned by sources that have no implementation for the
// current platform.
var ErrUnsupported = errors.New("not supported on this platform")

// FailureFromError maps a sampling error onto a SourceFailure.
func FailureFromError(source Family, err error) *SourceFailure {
	var sf *SourceFailure
	if errors.As(err, &sf) {
		return sf
	}

	kind := FailureOSError
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		kind = FailureTimeout
	case errors.Is(err, fs.ErrPermission):
		kind = FailurePermissionDenied
	case errors.Is(err, ErrUnsupported),
		errors.Is(err, errors.ErrUnsupported),
		errors.Is(err, fs.ErrNotExist),
		errors.Is(err, exec.ErrNotFound):
		kind = FailureUnsupported
	}
	return NewFailure(source, kind, err.Error())
}
