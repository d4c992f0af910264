package model

import "time"

// Dataset is a named, immutable collection of records.
type Dataset struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	RecordCount int       `json:"record_count"`
	CreatedAt   time.Time `json:"created_at"`
	Content     []Record  `json:"content,omitempty"`
}

// Summary returns the dataset without its content, as listings show it.
func (d Dataset) Summary() Dataset {
	d.Content = nil
	return d
}
