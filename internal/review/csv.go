package review

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// ReadCSV decodes a raw review export. The export's column set varies across
// scrapes, so columns are resolved by header name (case-insensitive) and
// missing optional columns simply yield empty fields. Only the review text
// column is mandatory.
func ReadCSV(r io.Reader) ([]Review, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // exports are ragged

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}

	textCol, ok := idx["review"]
	if !ok {
		return nil, fmt.Errorf("required column %q not found in header %v", "review", header)
	}

	field := func(record []string, name string) string {
		i, ok := idx[name]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}

	var reviews []Review
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV line %d: %w", line, err)
		}
		if textCol >= len(record) {
			continue
		}

		reviews = append(reviews, Review{
			ID:               field(record, "reviewid"),
			Text:             record[textCol],
			Language:         field(record, "language"),
			Rating:           field(record, "rating"),
			Playtime:         field(record, "playtime"),
			TimestampUpdated: field(record, "timestamp_updated"),
			TimestampCreated: field(record, "timestamp_created"),
		})
	}

	return reviews, nil
}
