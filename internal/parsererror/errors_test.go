package parsererror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseError(t *testing.T) {
	tests := []struct {
		name     string
		err      *ParseError
		expected string
	}{
		{
			name: "basic parse error",
			err: &ParseError{
				Parser: "dtype",
				Field:  "Amount",
				Value:  "12x",
				Err:    errors.New("invalid decimal"),
			},
			expected: "dtype: failed to parse Amount='12x': invalid decimal",
		},
		{
			name: "parse error with empty value",
			err: &ParseError{
				Parser: "dtype",
				Field:  "Settlement_Date",
				Value:  "",
				Err:    errors.New("empty date"),
			},
			expected: "dtype: failed to parse Settlement_Date='': empty date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestParseError_Unwrap(t *testing.T) {
	originalErr := errors.New("original error")
	parseErr := &ParseError{Parser: "dtype", Field: "Amount", Value: "x", Err: originalErr}

	assert.Equal(t, originalErr, parseErr.Unwrap())
	assert.True(t, errors.Is(parseErr, originalErr))
}

func TestArchiveAssemblyError(t *testing.T) {
	err := &ArchiveAssemblyError{Err: errors.New("An exception occurred")}
	assert.Equal(t, "Exception Occurred while Creating DF from Zip :: An exception occurred", err.Error())

	wrapped := fmt.Errorf("outer: %w", err)
	var target *ArchiveAssemblyError
	require.True(t, errors.As(wrapped, &target))
	assert.EqualError(t, target.Unwrap(), "An exception occurred")
}

func TestSanitizationError(t *testing.T) {
	err := &SanitizationError{Err: errors.New("test exception")}
	assert.Equal(t, "Exception Occurred while sanitizing MIS DF :: test exception", err.Error())
}

func TestThresholdViolationError(t *testing.T) {
	tests := []struct {
		name     string
		err      *ThresholdViolationError
		expected string
	}{
		{"below minimum", &ThresholdViolationError{Rows: 3, Min: 10}, "row count 3 is below the minimum threshold 10"},
		{"above maximum", &ThresholdViolationError{Rows: 2001, Max: 2000}, "row count 2001 exceeds the maximum threshold 2000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestIsThresholdViolation(t *testing.T) {
	inner := &ThresholdViolationError{Rows: 1, Min: 2}
	assert.True(t, IsThresholdViolation(&SanitizationError{Err: inner}))
	assert.False(t, IsThresholdViolation(&SanitizationError{Err: errors.New("boom")}))
}

func TestPasswordResolutionError(t *testing.T) {
	cause := errors.New("secret not found")
	err := &PasswordResolutionError{SecretKey: "CYB_HDFC_ZIP_PASSWORD", Err: cause}
	assert.Equal(t, "failed to resolve password secret 'CYB_HDFC_ZIP_PASSWORD': secret not found", err.Error())
	assert.ErrorIs(t, err, cause)

	dyn := &PasswordResolutionError{PasswordType: "password_changes_wrt_time", Err: cause}
	assert.Contains(t, dyn.Error(), "password_changes_wrt_time")
}

func TestUnsupportedFormatError(t *testing.T) {
	err := &UnsupportedFormatError{FileType: "img", FileName: "test.pdf"}
	assert.Equal(t, "unsupported file type 'img' for file 'test.pdf'", err.Error())
}

func TestFormatReadError(t *testing.T) {
	cause := errors.New("bare \" in non-quoted field")
	err := &FormatReadError{FileName: "test.csv", Err: cause}
	assert.Equal(t, "failed to read file 'test.csv': bare \" in non-quoted field", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestConfigError(t *testing.T) {
	err := &ConfigError{Source: "file_source_1", Field: "columns_mapping", Reason: "unknown canonical column 'Foo'"}
	assert.Equal(t, "invalid config for source 'file_source_1' field 'columns_mapping': unknown canonical column 'Foo'", err.Error())

	noSource := &ConfigError{Field: "threshold", Reason: "min greater than max"}
	assert.Equal(t, "invalid source config field 'threshold': min greater than max", noSource.Error())
}
