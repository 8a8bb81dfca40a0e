// Package dateutils holds the date layouts found in MIS extracts and the
// helpers that parse and format them.
package dateutils

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Date layouts seen in settlement files.
const (
	DateLayoutISO       = "2006-01-02"
	DateLayoutDashed    = "02-01-2006"
	DateLayoutSlashed   = "02/01/2006"
	DateLayoutDotted    = "02.01.2006"
	DateLayoutFull      = "2006-01-02 15:04:05"
	DateLayoutDashedDT  = "02-01-2006 15:04:05"
	DateLayoutSlashedDT = "02/01/2006 15:04:05"
	DateLayoutWithMonth = "02-Jan-2006"
	DateLayoutCompact   = "02012006"
	DateLayoutMT940     = "060102"
)

// CommonFormats is the ordered list of layouts ParseDate tries. Day-first layouts
// come before month-first ones because acquirer files are day-first.
var CommonFormats = []string{
	DateLayoutDashedDT,
	DateLayoutSlashedDT,
	DateLayoutFull,
	DateLayoutISO + "T15:04:05Z07:00",
	DateLayoutISO,
	DateLayoutDashed,
	DateLayoutSlashed,
	DateLayoutDotted,
	DateLayoutWithMonth,
	"02-Jan-2006 15:04:05",
	"2-Jan-06",
	"2006/01/02",
	"01/02/2006",
}

var whitespace = regexp.MustCompile(`\s+`)

// ParseDate attempts to parse a date string using CommonFormats.
// Returns the parsed time and the matching layout.
func ParseDate(dateStr string) (time.Time, string, error) {
	dateStr = CleanDateString(dateStr)
	if dateStr == "" {
		return time.Time{}, "", fmt.Errorf("empty date")
	}

	for _, format := range CommonFormats {
		if t, err := time.Parse(format, dateStr); err == nil {
			return t, format, nil
		}
	}

	return time.Time{}, "", fmt.Errorf("unable to parse date: %s", dateStr)
}

// CleanDateString trims and collapses internal whitespace.
func CleanDateString(dateStr string) string {
	return whitespace.ReplaceAllString(strings.TrimSpace(dateStr), " ")
}

// FormatCompact renders a date as zero-padded DDMMYYYY.
func FormatCompact(date time.Time) string {
	return date.Format(DateLayoutCompact)
}

// ParseMT940Date parses the YYMMDD dates of SWIFT statements.
func ParseMT940Date(s string) (time.Time, error) {
	t, err := time.Parse(DateLayoutMT940, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid MT940 date %q: %w", s, err)
	}
	return t, nil
}

// ToISODate formats a time.Time value as an ISO date (YYYY-MM-DD)
func ToISODate(date time.Time) string {
	return date.Format(DateLayoutISO)
}
