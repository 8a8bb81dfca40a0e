package dispatcher

import (
	"errors"
	"sort"
	"strings"

	"fjacquet/mis-parser/internal/dateutils"
	"fjacquet/mis-parser/internal/models"
	"fjacquet/mis-parser/internal/parsererror"

	"github.com/shopspring/decimal"
)

// applyDTypes coerces the configured columns in place. str and date columns
// keep their text so identifiers never lose precision, though dates must parse;
// numeric columns are validated and written without thousands separators.
// Empty cells stay empty.
func applyDTypes(t *models.Table, dtypes map[string]models.DType) error {
	columns := make([]string, 0, len(dtypes))
	for c := range dtypes {
		columns = append(columns, c)
	}
	sort.Strings(columns)

	for _, column := range columns {
		idx := t.ColumnIndex(column)
		if idx < 0 {
			continue
		}
		dtype := dtypes[column]
		for _, row := range t.Rows {
			if idx >= len(row) {
				continue
			}
			v, err := coerce(row[idx], dtype)
			if err != nil {
				return &parsererror.ParseError{Parser: string(dtype), Field: column, Value: row[idx], Err: err}
			}
			row[idx] = v
		}
	}
	return nil
}

func coerce(value string, dtype models.DType) (string, error) {
	switch dtype {
	case models.DTypeInt, models.DTypeFloat:
		v := strings.TrimSpace(value)
		if v == "" {
			return "", nil
		}
		d, err := decimal.NewFromString(strings.ReplaceAll(v, ",", ""))
		if err != nil {
			return "", err
		}
		if dtype == models.DTypeInt {
			if !d.IsInteger() {
				return "", errNotInteger
			}
			return d.StringFixed(0), nil
		}
		scale := int32(0)
		if d.Exponent() < 0 {
			scale = -d.Exponent()
		}
		return d.StringFixed(scale), nil
	case models.DTypeDate:
		v := strings.TrimSpace(value)
		if v == "" {
			return "", nil
		}
		if _, _, err := dateutils.ParseDate(v); err != nil {
			return "", err
		}
		return v, nil
	default:
		return value, nil
	}
}

var errNotInteger = errors.New("value is not an integer")
