package pipeline

import "unicode/utf8"

// validateEncoding rejects uploads that are not UTF-8 text.
func validateEncoding(data []byte) error {
	if !utf8.Valid(data) {
		return &ValidationError{Reason: "file is not valid UTF-8"}
	}
	return nil
}

// validateHeaders requires at least one named column.
func validateHeaders(headers []string) error {
	for _, h := range headers {
		if h != "" {
			return nil
		}
	}
	return &ValidationError{Reason: "CSV header has no column names"}
}
