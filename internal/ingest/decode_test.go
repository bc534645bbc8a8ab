package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestDecodeCSV_HeaderAndRows(t *testing.T) {
	in := "\ufeffFirstName,Phone,Notes\nAlice,+911234567890,hi\n\nBob,+919876543210\n"
	table, err := DecodeCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := table.Headers[0]; got != "FirstName" {
		t.Errorf("BOM should be stripped from first header: got %q", got)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(table.Rows))
	}
	if table.Rows[1]["Notes"] != "" {
		t.Errorf("short row should be padded, got %q", table.Rows[1]["Notes"])
	}
	if table.Rows[0]["Phone"] != "+911234567890" {
		t.Errorf("row 0 phone: got %q", table.Rows[0]["Phone"])
	}
}

func TestDecodeCSV_Empty(t *testing.T) {
	table, err := DecodeCSV(strings.NewReader(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(table.Headers) != 0 || len(table.Rows) != 0 {
		t.Errorf("expected empty table, got %+v", table)
	}
}

func TestDecodeCSV_Malformed(t *testing.T) {
	in := "firstname,phone,notes\n\"unterminated,1,2\n"
	_, err := DecodeCSV(strings.NewReader(in))
	if !errors.Is(err, ErrParseFailure) {
		t.Fatalf("expected ErrParseFailure, got %v", err)
	}
}

func TestDecodeCSV_LargeFileWithinUploadLimit(t *testing.T) {
	var b strings.Builder
	b.WriteString("firstname,phone,notes\n")
	for i := 0; i < 25000; i++ {
		fmt.Fprintf(&b, "contact%d,+91%010d,follow up\n", i, i)
	}
	if b.Len() > MaxUploadSize {
		t.Fatalf("fixture is %d bytes, over the upload limit", b.Len())
	}

	table, err := DecodeCSV(strings.NewReader(b.String()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(table.Rows) != 25000 {
		t.Fatalf("expected 25000 rows, got %d", len(table.Rows))
	}
	if got := table.Rows[24999]["firstname"]; got != "contact24999" {
		t.Errorf("last row firstname: got %q", got)
	}
}

func TestDecodeXLSX_FirstSheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"FirstName", "Phone", "Notes"},
		{"Alice", "+911234567890", "vip"},
		{"Bob", "+919876543210", ""},
	}
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}

	path := filepath.Join(t.TempDir(), "contacts.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}

	table, err := DecodeFile(path, FormatXLSX)
	if err != nil {
		t.Fatalf("DecodeFile: %v", err)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(table.Rows))
	}
	if table.Rows[0]["FirstName"] != "Alice" || table.Rows[1]["Phone"] != "+919876543210" {
		t.Errorf("unexpected rows: %v", table.Rows)
	}
}

func TestDecodeFile_XLSXGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.xlsx")
	if err := os.WriteFile(path, []byte("not a zip archive"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err := DecodeFile(path, FormatXLSX)
	if !errors.Is(err, ErrParseFailure) {
		t.Fatalf("expected ErrParseFailure, got %v", err)
	}
}

func TestDecodeFile_XLS(t *testing.T) {
	tests := []struct {
		file    string
		headers []string
		rows    []map[string]string
	}{
		{
			// second sheet and the empty third row must not show up
			file:    "contacts.xls",
			headers: []string{"FirstName", "Phone", "Notes"},
			rows: []map[string]string{
				{"FirstName": "Alice", "Phone": "+911234567890", "Notes": "vip"},
				{"FirstName": "Bob", "Phone": "+919876543210", "Notes": ""},
			},
		},
		{
			file:    "header_only.xls",
			headers: []string{"FirstName", "Phone", "Notes"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			table, err := DecodeFile(filepath.Join("testdata", tt.file), FormatXLS)
			if err != nil {
				t.Fatalf("DecodeFile: %v", err)
			}
			if strings.Join(table.Headers, "|") != strings.Join(tt.headers, "|") {
				t.Errorf("headers = %q, want %q", table.Headers, tt.headers)
			}
			if len(table.Rows) != len(tt.rows) {
				t.Fatalf("expected %d rows, got %d: %v", len(tt.rows), len(table.Rows), table.Rows)
			}
			for i, want := range tt.rows {
				for k, v := range want {
					if got := table.Rows[i][k]; got != v {
						t.Errorf("row %d %s = %q, want %q", i, k, got, v)
					}
				}
				if len(table.Rows[i]) != len(want) {
					t.Errorf("row %d has keys %v", i, table.Rows[i])
				}
			}
		})
	}
}

func TestDecodeXLS_Garbage(t *testing.T) {
	tests := []struct {
		name string
		data func(t *testing.T) []byte
	}{
		{"not a compound file", func(t *testing.T) []byte {
			return []byte("FirstName,Phone,Notes\nAlice,1,x\n")
		}},
		{"no workbook stream", func(t *testing.T) []byte {
			data, err := os.ReadFile(filepath.Join("testdata", "contacts.xls"))
			if err != nil {
				t.Fatal(err)
			}
			return bytes.Replace(data, utf16le("Workbook"), utf16le("Workbank"), 1)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeXLS(bytes.NewReader(tt.data(t)))
			if !errors.Is(err, ErrParseFailure) {
				t.Fatalf("expected ErrParseFailure, got %v", err)
			}
		})
	}
}

func utf16le(s string) []byte {
	out := make([]byte, 0, 2*len(s))
	for _, r := range s {
		out = append(out, byte(r), 0)
	}
	return out
}

func TestFormatFromFilename(t *testing.T) {
	tests := []struct {
		name string
		want Format
		ok   bool
	}{
		{"list.csv", FormatCSV, true},
		{"LIST.XLSX", FormatXLSX, true},
		{"old.xls", FormatXLS, true},
		{"notes.txt", "", false},
		{"noext", "", false},
	}
	for _, tt := range tests {
		got, ok := FormatFromFilename(tt.name)
		if got != tt.want || ok != tt.ok {
			t.Errorf("FormatFromFilename(%q) = %q, %v; want %q, %v", tt.name, got, ok, tt.want, tt.ok)
		}
	}
}
