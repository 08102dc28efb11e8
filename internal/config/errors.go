package config

import (
	"errors"
	"fmt"
	"strings"
)

// Errors returned by configuration operations.
var (
	// ErrReadConfig indicates the command-set file could not be read.
	ErrReadConfig = errors.New("failed to read config file")

	// ErrParseConfig indicates the file is malformed or has an invalid shape.
	ErrParseConfig = errors.New("failed to parse config file")

	// ErrSetNotFound indicates the requested set is not defined.
	ErrSetNotFound = errors.New("set not found")

	// ErrEmptySet indicates the requested set has no commands.
	ErrEmptySet = errors.New("set is empty")

	// ErrInvalidOverride indicates a GHOP_ variable has an unusable value.
	ErrInvalidOverride = errors.New("invalid environment override")
)

// FileError describes a failure to read or parse a command-set file.
type FileError struct {
	// Path is the file path.
	Path string
	// Kind is ErrReadConfig or ErrParseConfig.
	Kind error
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *FileError) Error() string {
	return fmt.Sprintf("%s '%s': %v", e.Kind, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *FileError) Unwrap() error {
	return e.Err
}

// Is implements error matching against the error kind.
func (e *FileError) Is(target error) bool {
	return target == e.Kind
}

// SetError describes a missing or empty command set.
type SetError struct {
	// Path is the file path.
	Path string
	// Set is the requested set name.
	Set string
	// Available lists the defined set names, sorted.
	Available []string
	// Kind is ErrSetNotFound or ErrEmptySet.
	Kind error
}

// Error implements the error interface.
func (e *SetError) Error() string {
	if e.Kind == ErrEmptySet {
		return fmt.Sprintf("set '%s' in '%s' is empty", e.Set, e.Path)
	}
	names := "<none>"
	if len(e.Available) > 0 {
		names = strings.Join(e.Available, ", ")
	}
	return fmt.Sprintf("set '%s' not found in '%s'; available sets: %s", e.Set, e.Path, names)
}

// Is implements error matching against the error kind.
func (e *SetError) Is(target error) bool {
	return target == e.Kind
}
