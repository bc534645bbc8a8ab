package ingest

// ValidateHeaders checks the header row of an upload for the required columns.
// Comparison is case-insensitive and ignores surrounding whitespace; extra
// columns are accepted.
func ValidateHeaders(headers []string) error {
	present := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		present[NormalizeKey(h)] = struct{}{}
	}

	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := present[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &MissingColumnsError{Columns: missing}
	}
	return nil
}
