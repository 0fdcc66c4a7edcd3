package collector

import (
	"encoding/csv"
	"io"
	"strings"
)

// readCSV parses ConvertTo-Csv output into header-keyed rows.
// Malformed rows are skipped.
func readCSV(output string) []map[string]string {
	reader := csv.NewReader(strings.NewReader(output))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []map[string]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		row := make(map[string]string, len(header))
		for i, field := range record {
			if i < len(header) {
				row[header[i]] = strings.TrimSpace(field)
			}
		}
		rows = append(rows, row)
	}
	return rows
}
