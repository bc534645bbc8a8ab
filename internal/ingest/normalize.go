package ingest

import (
	"sort"
	"strings"
)

// Row is a single normalized contact row keyed by lowercased column name.
type Row map[string]string

func (r Row) FirstName() string { return r[ColumnFirstName] }
func (r Row) Phone() string     { return r[ColumnPhone] }
func (r Row) Notes() string     { return r[ColumnNotes] }

// Extras returns the non-required columns of the row, or nil when there are none.
func (r Row) Extras() map[string]string {
	var out map[string]string
	for k, v := range r {
		switch k {
		case ColumnFirstName, ColumnPhone, ColumnNotes:
			continue
		}
		if out == nil {
			out = make(map[string]string)
		}
		out[k] = v
	}
	return out
}

func NormalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// Normalize trims and lowercases column names, trims values and drops rows
// that have neither a first name nor a phone. Surviving rows keep their order.
//
// When two raw keys collapse to the same normalized key, the first non-empty
// value in sorted raw-key order wins.
func Normalize(raw []map[string]string) []Row {
	out := make([]Row, 0, len(raw))
	for _, rec := range raw {
		keys := make([]string, 0, len(rec))
		for k := range rec {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		row := make(Row, len(rec))
		for _, k := range keys {
			nk := NormalizeKey(k)
			v := strings.TrimSpace(rec[k])
			if existing, ok := row[nk]; ok && existing != "" {
				continue
			}
			row[nk] = v
		}

		if row.FirstName() == "" && row.Phone() == "" {
			continue
		}
		out = append(out, row)
	}
	return out
}
