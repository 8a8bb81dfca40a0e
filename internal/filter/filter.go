// Package filter restricts a table to the rows whose transaction type matches a
// configured value list.
package filter

import (
	"errors"
	"fmt"
	"strings"

	"fjacquet/mis-parser/internal/models"
)

// ErrUnknownFilterType is returned for a filter type with no row predicate.
var ErrUnknownFilterType = errors.New("unknown filter type")

// FilterEntries keeps the rows of t whose column value matches values under ft.
// A nil value list or an empty filter type returns t unchanged, as does an
// empty table without the column.
func FilterEntries(t *models.Table, column string, values []string, ft models.FilterType) (*models.Table, error) {
	if values == nil || ft == models.FilterNone {
		return t, nil
	}

	var match func(v string) bool
	switch ft {
	case models.FilterEquals:
		set := make(map[string]struct{}, len(values))
		for _, v := range values {
			set[v] = struct{}{}
		}
		match = func(v string) bool {
			_, ok := set[v]
			return ok
		}
	case models.FilterStartsWith:
		match = func(v string) bool {
			for _, prefix := range values {
				if strings.HasPrefix(v, prefix) {
					return true
				}
			}
			return false
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFilterType, string(ft))
	}

	if !t.HasColumn(column) {
		if t.Len() == 0 {
			return t, nil
		}
		return nil, fmt.Errorf("filter column '%s' not found", column)
	}
	idx := t.ColumnIndex(column)

	out := models.NewTable(t.Columns...)
	for _, row := range t.Rows {
		var v string
		if idx < len(row) {
			v = row[idx]
		}
		if match(v) {
			out.Rows = append(out.Rows, row)
		}
	}
	return out, nil
}

// Apply runs the filter declared by f, if any.
func Apply(t *models.Table, f *models.TransactionTypeFilter) (*models.Table, error) {
	if f == nil {
		return t, nil
	}
	return FilterEntries(t, f.Column, f.Values, f.Type)
}
