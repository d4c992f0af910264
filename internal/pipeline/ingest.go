package pipeline

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"go-join-pipeline/internal/model"
)

var utf8BOM = []byte("\xef\xbb\xbf")

// extraFieldsKey holds the cells of a row that runs past the header.
const extraFieldsKey = "null"

// ParseCSV reads an uploaded CSV file into records. The first row is the
// header and every value is kept as a string. Rows shorter than the header
// get null for the missing fields; cells past the header are kept as a list
// under the "null" field.
func ParseCSV(r io.Reader) ([]model.Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &ValidationError{Reason: "failed to read upload", Err: err}
	}
	if err := validateEncoding(data); err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	csvReader := csv.NewReader(bytes.NewReader(data))
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1

	headers, err := csvReader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &ValidationError{Reason: "file is empty"}
	}
	if err != nil {
		return nil, &ValidationError{Reason: "failed to read CSV header", Err: err}
	}
	headers = cleanHeaders(headers)
	if err := validateHeaders(headers); err != nil {
		return nil, err
	}

	records := []model.Record{}
	for {
		row, err := csvReader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &ValidationError{Reason: "CSV read error", Err: err}
		}
		var rec model.Record
		for i, h := range headers {
			if i < len(row) {
				value, _ := json.Marshal(row[i])
				rec.Set(h, value)
			} else {
				rec.Set(h, json.RawMessage("null"))
			}
		}
		if len(row) > len(headers) {
			extra, _ := json.Marshal(row[len(headers):])
			rec.Set(extraFieldsKey, extra)
		}
		records = append(records, rec)
	}

	return records, nil
}

// cleanHeaders trims whitespace and removes all quotes from header names.
func cleanHeaders(headers []string) []string {
	out := make([]string, len(headers))
	for i, h := range headers {
		clean := strings.TrimSpace(h)
		clean = strings.ReplaceAll(clean, `"`, "")
		out[i] = clean
	}
	return out
}
