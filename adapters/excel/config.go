package excel

// ReaderConfig holds configuration for the spreadsheet response source
type ReaderConfig struct {
	FilePath  string `json:"file_path"`
	SheetName string `json:"sheet_name"`
}

// DefaultReaderConfig returns sensible defaults for response files
func DefaultReaderConfig() ReaderConfig {
	return ReaderConfig{
		SheetName: "Sheet1",
	}
}
