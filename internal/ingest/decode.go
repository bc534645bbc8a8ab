package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// Format identifies a supported upload encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLS  Format = "xls"
	FormatXLSX Format = "xlsx"
)

// FormatFromFilename maps a file extension to a Format.
func FormatFromFilename(name string) (Format, bool) {
	switch Format(strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")) {
	case FormatCSV:
		return FormatCSV, true
	case FormatXLS:
		return FormatXLS, true
	case FormatXLSX:
		return FormatXLSX, true
	}
	return "", false
}

// Table is a decoded upload: the header row as written in the file and one
// raw row per data line keyed by those headers.
type Table struct {
	Headers []string
	Rows    []map[string]string
}

// DecodeFile reads the whole file at path using the decoder for format.
func DecodeFile(path string, format Format) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	switch format {
	case FormatCSV:
		return DecodeCSV(f)
	case FormatXLSX:
		return DecodeXLSX(f)
	case FormatXLS:
		return DecodeXLS(f)
	}
	return nil, ErrUnsupportedFormat
}

// DecodeCSV parses a CSV stream whose first record is the header row.
func DecodeCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // allow ragged rows
	reader.TrimLeadingSpace = true

	var grid [][]string
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: csv: %v", ErrParseFailure, err)
		}
		grid = append(grid, rec)
	}

	if len(grid) > 0 && len(grid[0]) > 0 {
		grid[0][0] = strings.TrimPrefix(grid[0][0], "\ufeff")
	}
	return tableFromGrid(grid)
}

// DecodeXLSX parses the first sheet of an Office Open XML workbook.
func DecodeXLSX(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: xlsx: %v", ErrParseFailure, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return &Table{}, nil
	}
	grid, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: xlsx: %v", ErrParseFailure, err)
	}
	return tableFromGrid(grid)
}

// DecodeXLS parses the first sheet of a legacy BIFF workbook.
func DecodeXLS(r io.ReadSeeker) (table *Table, err error) {
	// the BIFF reader panics on some malformed inputs
	defer func() {
		if p := recover(); p != nil {
			table = nil
			err = fmt.Errorf("%w: xls: %v", ErrParseFailure, p)
		}
	}()

	wb, err := xls.OpenReader(r, "utf-8")
	if err != nil {
		return nil, fmt.Errorf("%w: xls: %v", ErrParseFailure, err)
	}
	if wb == nil {
		return nil, fmt.Errorf("%w: xls: no workbook stream", ErrParseFailure)
	}
	if wb.NumSheets() == 0 {
		return &Table{}, nil
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, fmt.Errorf("%w: xls: first sheet unreadable", ErrParseFailure)
	}
	if sheet.MaxRow > 0 {
		// the budget is exactly the first sheet's rows, so later sheets are not read
		return tableFromGrid(wb.ReadAllCells(int(sheet.MaxRow) + 1))
	}

	// ReadAllCells skips single-row sheets.
	row := xlsRow(sheet, 0)
	if row == nil {
		return &Table{}, nil
	}
	rec := make([]string, 0, xlsMaxCols)
	for j := 0; j < xlsMaxCols; j++ {
		rec = append(rec, row.Col(j))
	}
	for len(rec) > 0 && rec[len(rec)-1] == "" {
		rec = rec[:len(rec)-1]
	}
	return tableFromGrid([][]string{rec})
}

// xlsMaxCols is the BIFF8 column limit.
const xlsMaxCols = 256

// xlsRow returns nil for a row index the sheet holds no record for.
func xlsRow(sheet *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return sheet.Row(i)
}

// tableFromGrid uses the first non-blank record as the header row. Blank
// records are skipped, short records are padded with empty values and header
// cells that are empty are ignored.
func tableFromGrid(grid [][]string) (*Table, error) {
	t := &Table{}
	headerAt := -1
	for i, rec := range grid {
		if !blank(rec) {
			headerAt = i
			break
		}
	}
	if headerAt < 0 {
		return t, nil
	}

	t.Headers = grid[headerAt]
	for _, rec := range grid[headerAt+1:] {
		if blank(rec) {
			continue
		}
		row := make(map[string]string, len(t.Headers))
		for j, h := range t.Headers {
			if strings.TrimSpace(h) == "" {
				continue
			}
			if j < len(rec) {
				row[h] = rec[j]
			} else {
				row[h] = ""
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// IsClientError reports whether err came from the upload content rather than
// from the server.
func IsClientError(err error) bool {
	return errors.Is(err, ErrMissingColumns) ||
		errors.Is(err, ErrParseFailure) ||
		errors.Is(err, ErrUnsupportedFormat) ||
		errors.Is(err, ErrEmptyFile)
}
