package logger

// FormatError exposes the pretty error rendering for white-box tests.
func FormatError(err error) string {
	return formatErrorEntries(collectErrorEntries(err))
}
