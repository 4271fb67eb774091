package batch

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// ReadTextsCSV reads a CSV file and returns the values from the "text" column.
func ReadTextsCSV(r io.Reader) ([]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	textIdx := -1
	for i, col := range header {
		if strings.EqualFold(strings.TrimSpace(col), "text") {
			textIdx = i
			break
		}
	}
	if textIdx < 0 {
		return nil, fmt.Errorf("missing required column %q", "text")
	}

	var texts []string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if textIdx >= len(rec) {
			return nil, fmt.Errorf("row has %d columns, want at least %d", len(rec), textIdx+1)
		}
		texts = append(texts, rec[textIdx])
	}
	return texts, nil
}

// WriteCSV writes rows under Header.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write(row.record()); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
