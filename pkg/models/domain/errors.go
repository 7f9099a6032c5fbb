package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedFormat is returned for input files whose extension has no reader
var ErrUnsupportedFormat = errors.New("unsupported file type")

// ConfigurationError is a fatal problem with the run setup: file type, schema or settings.
// The run aborts before any row is processed.
type ConfigurationError struct {
	Op  string
	Err error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// IOError is a fatal failure to read an input or write an output
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// MissingColumnsError names every required column absent from an input table
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Columns, ", "))
}
