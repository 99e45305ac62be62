package drive

// Google Drive mime types used across the ingestion pipelines.
const (
	MimeFolder      = "application/vnd.google-apps.folder"
	MimeGoogleSheet = "application/vnd.google-apps.spreadsheet"
	MimeXLSX        = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MimeXLS         = "application/vnd.ms-excel"
	MimeCSV         = "text/csv"
)

// SpreadsheetMimeTypes returns the default allow-list for change polling:
// the backend's native spreadsheet format plus the Excel formats the inbox
// receives.
func SpreadsheetMimeTypes() []string {
	return []string{MimeGoogleSheet, MimeXLSX, MimeXLS, MimeCSV}
}

// IsSpreadsheetMime reports whether mime belongs to the given allow-list.
func IsSpreadsheetMime(mime string, allow []string) bool {
	for _, candidate := range allow {
		if candidate == mime {
			return true
		}
	}
	return false
}
