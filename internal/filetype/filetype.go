// Package filetype names the input formats the pipeline understands and
// detects the format of a file or archive entry from its name.
package filetype

import (
	"fmt"
	"path"
	"strings"
)

// FileType is a lower-case format identifier such as "csv" or "xlsx".
// Detection may yield identifiers outside the known set; readers reject those.
type FileType string

const (
	Unknown FileType = ""
	CSV     FileType = "csv"
	TXT     FileType = "txt"
	XLSX    FileType = "xlsx"
	XLS     FileType = "xls"
	PDF     FileType = "pdf"
	ZIP     FileType = "zip"
	MT940   FileType = "mt940"
)

var known = map[FileType]bool{
	CSV:   true,
	TXT:   true,
	XLSX:  true,
	XLS:   true,
	PDF:   true,
	ZIP:   true,
	MT940: true,
}

// aliases maps extensions that share a reader onto the canonical identifier.
var aliases = map[string]FileType{
	"sta":  MT940,
	"940":  MT940,
	"xlsm": XLSX,
	"tsv":  TXT,
	"dat":  TXT,
}

// Parse turns a configured identifier into a FileType. Unknown identifiers are rejected.
func Parse(s string) (FileType, error) {
	ft := FileType(strings.ToLower(strings.TrimSpace(s)))
	if alias, ok := aliases[string(ft)]; ok {
		return alias, nil
	}
	if !known[ft] {
		return Unknown, fmt.Errorf("unknown file type %q", s)
	}
	return ft, nil
}

// UnmarshalText lets configuration files carry file types as plain strings.
func (f *FileType) UnmarshalText(text []byte) error {
	ft, err := Parse(string(text))
	if err != nil {
		return err
	}
	*f = ft
	return nil
}

// IsWorkbook reports whether the type is read with the workbook reader.
func (f FileType) IsWorkbook() bool {
	return f == XLSX || f == XLS
}

// IsDelimited reports whether the type is read as delimited text.
func (f FileType) IsDelimited() bool {
	return f == CSV || f == TXT
}

// Detect derives the type of an entry from its name. Directory entries
// (trailing slash) and names without an extension yield Unknown.
func Detect(name string) FileType {
	if name == "" || strings.HasSuffix(name, "/") || strings.HasSuffix(name, "\\") {
		return Unknown
	}
	return FromExtension(path.Ext(strings.ReplaceAll(name, "\\", "/")))
}

// FromExtension maps an extension, with or without its leading dot, onto a
// FileType. Aliases resolve to their canonical identifier.
func FromExtension(ext string) FileType {
	ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	if ext == "" {
		return Unknown
	}
	if alias, ok := aliases[ext]; ok {
		return alias
	}
	return FileType(ext)
}
