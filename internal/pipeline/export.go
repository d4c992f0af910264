package pipeline

import (
	"encoding/csv"
	"fmt"
	"io"

	"go-join-pipeline/internal/model"
)

// WriteCSV writes records as CSV. The header is the union of all field
// names in order of first appearance; absent fields and nulls are empty
// cells, strings are written bare and other values as compact JSON.
func WriteCSV(w io.Writer, data []model.Record) (int, error) {
	writer := csv.NewWriter(w)

	// Get all unique keys from all records
	seen := make(map[string]bool)
	var header []string
	for _, record := range data {
		for _, key := range record.Keys() {
			if !seen[key] {
				seen[key] = true
				header = append(header, key)
			}
		}
	}

	if err := writer.Write(header); err != nil {
		return 0, fmt.Errorf("failed to write header: %w", err)
	}

	// Write data rows
	recordCount := 0
	for _, record := range data {
		row := make([]string, 0, len(header))
		for _, key := range header {
			if record.KeyRaw(key) == "null" {
				row = append(row, "")
			} else {
				row = append(row, record.KeyString(key))
			}
		}

		if err := writer.Write(row); err != nil {
			return recordCount, fmt.Errorf("failed to write row: %w", err)
		}
		recordCount++
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return recordCount, fmt.Errorf("failed to flush CSV: %w", err)
	}
	return recordCount, nil
}
