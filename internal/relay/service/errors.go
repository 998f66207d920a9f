package service

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized        = errors.New("unauthorized")
	ErrServerMisconfigured = errors.New("server misconfigured")
	ErrUpstreamFailure     = errors.New("upstream failure")
	ErrInvalidJob          = errors.New("invalid job")
	ErrInvalidCallback     = errors.New("invalid callback")
)

// MisconfiguredError names the setting the server is missing. It matches
// ErrServerMisconfigured with errors.Is.
type MisconfiguredError struct {
	Setting string
	Err     error
}

func (e *MisconfiguredError) Error() string {
	return fmt.Sprintf("server configuration error: %s not set", e.Setting)
}

func (e *MisconfiguredError) Is(target error) bool { return target == ErrServerMisconfigured }
func (e *MisconfiguredError) Unwrap() error        { return e.Err }

func misconfigured(setting string, cause error) error {
	return &MisconfiguredError{Setting: setting, Err: cause}
}

// UpstreamError describes a failed call to the workflow engine. Status is 0
// when the engine could not be reached at all.
type UpstreamError struct {
	Status  int
	Message string
	Err     error
}

func (e *UpstreamError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("workflow engine unreachable: %v", e.Err)
	}
	return fmt.Sprintf("workflow engine returned %d: %s", e.Status, e.Message)
}

func (e *UpstreamError) Is(target error) bool { return target == ErrUpstreamFailure }
func (e *UpstreamError) Unwrap() error        { return e.Err }
