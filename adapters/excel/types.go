package excel

// RawRowData represents a row of raw spreadsheet data as header keyed strings
type RawRowData map[string]string

// SheetData represents the raw parsed dataset before response mapping
type SheetData struct {
	Headers []string     // Column headers
	Rows    []RawRowData // Data rows
}
