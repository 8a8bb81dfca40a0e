// Package archive assembles one table out of the entries of an archive.
package archive

import (
	"slices"

	"fjacquet/mis-parser/internal/filetype"
)

// Reasons an entry is left out of assembly, in evaluation order.
const (
	SkipUnknownType     = "unknown_type"
	SkipIgnoredType     = "ignored_extension"
	SkipIgnoredName     = "ignored_name"
	SkipPasswordMissing = "password_unavailable"
)

// SkipReason returns why an entry is skipped, or "" when it is admitted.
// The rules are evaluated in order and the first match wins:
//  1. the detected type is empty (directory or undeterminable type)
//  2. the detected type is in ignoreExtensions
//  3. the entry name is in ignoreNames
//  4. passwordMarker is set, meaning no usable password applies to the entry
func SkipReason(entryName string, detected filetype.FileType, ignoreExtensions []filetype.FileType, ignoreNames []string, passwordMarker *string) string {
	switch {
	case detected == filetype.Unknown:
		return SkipUnknownType
	case len(ignoreExtensions) > 0 && slices.Contains(ignoreExtensions, detected):
		return SkipIgnoredType
	case len(ignoreNames) > 0 && slices.Contains(ignoreNames, entryName):
		return SkipIgnoredName
	case passwordMarker != nil:
		return SkipPasswordMissing
	default:
		return ""
	}
}

// ShouldSkip reports whether an entry is excluded from assembly.
func ShouldSkip(entryName string, detected filetype.FileType, ignoreExtensions []filetype.FileType, ignoreNames []string, passwordMarker *string) bool {
	return SkipReason(entryName, detected, ignoreExtensions, ignoreNames, passwordMarker) != ""
}
