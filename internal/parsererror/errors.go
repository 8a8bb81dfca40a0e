// Package parsererror defines the error taxonomy of the ingestion pipeline.
// Callers tell the kinds apart with errors.As; messages are stable so they can be grepped.
package parsererror

import (
	"errors"
	"fmt"
)

// Fixed wrapping prefixes. Each is applied at exactly one boundary.
const (
	ArchiveAssemblyPrefix = "Exception Occurred while Creating DF from Zip :: "
	SanitizationPrefix    = "Exception Occurred while sanitizing MIS DF :: "
)

// ParseError represents a cell that could not be coerced to its configured type.
type ParseError struct {
	Parser string
	Field  string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: failed to parse %s='%s': %v",
		e.Parser, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// UnsupportedFormatError is returned when no reader exists for a file type.
type UnsupportedFormatError struct {
	FileType string
	FileName string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported file type '%s' for file '%s'", e.FileType, e.FileName)
}

// FormatReadError wraps a failure of an underlying reader.
type FormatReadError struct {
	FileName string
	Err      error
}

func (e *FormatReadError) Error() string {
	return fmt.Sprintf("failed to read file '%s': %v", e.FileName, e.Err)
}

func (e *FormatReadError) Unwrap() error {
	return e.Err
}

// ArchiveAssemblyError wraps any failure while building a table from an archive.
type ArchiveAssemblyError struct {
	Err error
}

func (e *ArchiveAssemblyError) Error() string {
	return ArchiveAssemblyPrefix + causeMessage(e.Err)
}

func (e *ArchiveAssemblyError) Unwrap() error {
	return e.Err
}

// SanitizationError wraps any failure while normalizing a parsed table.
type SanitizationError struct {
	Err error
}

func (e *SanitizationError) Error() string {
	return SanitizationPrefix + causeMessage(e.Err)
}

func (e *SanitizationError) Unwrap() error {
	return e.Err
}

// ThresholdViolationError reports a parsed table whose row count is outside
// the configured bounds. A zero bound is not enforced.
type ThresholdViolationError struct {
	Rows int
	Min  int
	Max  int
}

func (e *ThresholdViolationError) Error() string {
	switch {
	case e.Min > 0 && e.Rows < e.Min:
		return fmt.Sprintf("row count %d is below the minimum threshold %d", e.Rows, e.Min)
	case e.Max > 0 && e.Rows > e.Max:
		return fmt.Sprintf("row count %d exceeds the maximum threshold %d", e.Rows, e.Max)
	default:
		return fmt.Sprintf("row count %d is outside threshold [%d, %d]", e.Rows, e.Min, e.Max)
	}
}

// PasswordResolutionError reports a failed secret lookup or password derivation.
type PasswordResolutionError struct {
	SecretKey    string
	PasswordType string
	Err          error
}

func (e *PasswordResolutionError) Error() string {
	if e.PasswordType != "" {
		return fmt.Sprintf("failed to derive '%s' password: %v", e.PasswordType, e.Err)
	}
	return fmt.Sprintf("failed to resolve password secret '%s': %v", e.SecretKey, e.Err)
}

func (e *PasswordResolutionError) Unwrap() error {
	return e.Err
}

// ConfigError represents an invalid source configuration detected at load time.
type ConfigError struct {
	Source string
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("invalid source config field '%s': %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid config for source '%s' field '%s': %s", e.Source, e.Field, e.Reason)
}

// IsThresholdViolation reports whether err carries a ThresholdViolationError.
func IsThresholdViolation(err error) bool {
	var tv *ThresholdViolationError
	return errors.As(err, &tv)
}

func causeMessage(err error) string {
	if err == nil {
		return "<nil>"
	}
	return err.Error()
}
