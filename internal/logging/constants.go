package logging

// Standardized field names for structured logging.
// Keep them stable: dashboards and log queries filter on these keys.
const (
	FieldSource    = "source"
	FieldRunID     = "run_id"
	FieldFile      = "file_path"
	FieldArchive   = "archive"
	FieldEntry     = "entry"
	FieldFileType  = "file_type"
	FieldSheet     = "sheet"
	FieldStrategy  = "strategy"
	FieldReason    = "reason"
	FieldOperation = "operation"
	FieldError     = "error"
	FieldDuration  = "duration_ms"
	FieldCount     = "count"
	FieldRows      = "rows"
	FieldLocator   = "locator"
	FieldOutput    = "output_file"
)
