package kdf

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidParameter = errors.New("invalid KDF parameter")
	ErrInvalidData      = errors.New("unable to read KDF parameters")
	ErrUnknownEngine    = errors.New("unknown KDF engine")
	ErrNoStrategy       = errors.New("no strategy supports these parameters")
)

// ParameterError identifies the parameter that failed validation.
type ParameterError struct {
	Key    string
	Reason string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("%s %q: %s", ErrInvalidParameter, e.Key, e.Reason)
}

func (e *ParameterError) Unwrap() error {
	return ErrInvalidParameter
}

func paramErr(key, format string, args ...any) error {
	return &ParameterError{Key: key, Reason: fmt.Sprintf(format, args...)}
}
