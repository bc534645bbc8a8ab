package ingest

// MaxUploadSize bounds a contact list upload. Row counts are not capped.
const MaxUploadSize = 5 << 20 // 5 MB

// Required column names, in the order they are reported when missing.
const (
	ColumnFirstName = "firstname"
	ColumnPhone     = "phone"
	ColumnNotes     = "notes"
)

var RequiredColumns = []string{ColumnFirstName, ColumnPhone, ColumnNotes}
