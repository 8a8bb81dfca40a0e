package dispatcher

import (
	"fmt"
	"io"
	"slices"

	"fjacquet/mis-parser/internal/models"

	"github.com/xuri/excelize/v2"
)

func openWorkbook(r io.Reader) (*excelize.File, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	return f, nil
}

// readSheet reads one sheet, the first one when opts.SheetName is empty.
func readSheet(r io.Reader, opts ReadOptions) (*models.Table, error) {
	f, err := openWorkbook(r)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	sheet := opts.SheetName
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	} else if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("sheet '%s' not found", sheet)
	}
	return sheetTable(f, sheet, opts)
}

func readAllSheets(r io.Reader, opts ReadOptions) ([]Sheet, error) {
	f, err := openWorkbook(r)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var sheets []Sheet
	for _, name := range f.GetSheetList() {
		table, err := sheetTable(f, name, opts)
		if err != nil {
			return nil, err
		}
		sheets = append(sheets, Sheet{Name: name, Table: table})
	}
	return sheets, nil
}

func sheetTable(f *excelize.File, sheet string, opts ReadOptions) (*models.Table, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet '%s': %w", sheet, err)
	}
	rows = dropBlankRecords(rows)
	if opts.SkipRows > 0 && !slices.Contains(opts.DisableSkipRowsSheets, sheet) {
		if opts.SkipRows >= len(rows) {
			rows = nil
		} else {
			rows = rows[opts.SkipRows:]
		}
	}
	table, err := buildTable(rows, opts.HeaderInfo)
	if err != nil {
		return nil, fmt.Errorf("sheet '%s': %w", sheet, err)
	}
	return table, nil
}
