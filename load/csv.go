package load

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/AtticusColwell/game-data-collector-primitive/extract"
)

// RecordsToCSV flattens a resultSet-shaped header row plus untyped data rows
// into CSV bytes.
func RecordsToCSV(headers []string, rows [][]any) ([]byte, error) {
	if len(headers) == 0 {
		return nil, fmt.Errorf("received no CSV headers")
	}

	var buffer bytes.Buffer
	writer := csv.NewWriter(&buffer)

	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	record := make([]string, len(headers))
	for _, row := range rows {
		for i := range headers {
			if i < len(row) {
				record[i] = extract.FormatValue(row[i])
			} else {
				record[i] = ""
			}
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV writer: %w", err)
	}

	return buffer.Bytes(), nil
}

// AddColumn appends a constant-valued column to every row of a CSV, e.g. to
// tag per-player files with their season before loading them into one table.
func AddColumn(csvData []byte, name, value string) ([]byte, error) {
	reader := csv.NewReader(bytes.NewReader(csvData))

	var buffer bytes.Buffer
	writer := csv.NewWriter(&buffer)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	header = append(header, name)
	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV data: %w", err)
		}

		record = append(record, value)
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV data: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV writer: %w", err)
	}

	return buffer.Bytes(), nil
}

// ConcatCSVs concatenates multiple CSV files into a single CSV file.
// All parts must share the header of the first non-empty CSV.
func ConcatCSVs(csvs [][]byte) ([]byte, error) {
	if len(csvs) == 0 {
		return nil, fmt.Errorf("received empty CSV data")
	}

	// Filter out empty CSVs
	var parts [][]byte
	for _, c := range csvs {
		if len(bytes.TrimSpace(c)) > 0 {
			parts = append(parts, c)
		}
	}

	if len(parts) == 0 {
		return nil, fmt.Errorf("all CSV inputs were empty")
	}

	if len(parts) == 1 {
		return parts[0], nil
	}

	var buffer bytes.Buffer
	writer := csv.NewWriter(&buffer)

	firstReader := csv.NewReader(bytes.NewReader(parts[0]))
	header, err := firstReader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header from first CSV: %w", err)
	}

	// Check headers in all parts match the first one
	for i, part := range parts[1:] {
		reader := csv.NewReader(bytes.NewReader(part))
		currentHeader, err := reader.Read()
		if err != nil {
			return nil, fmt.Errorf("failed to read header from part %d: %w", i+2, err)
		}
		if len(currentHeader) != len(header) {
			return nil, fmt.Errorf("mismatched number of columns in part %d: expected %d, got %d", i+2, len(header), len(currentHeader))
		}
		for j, col := range header {
			if currentHeader[j] != col {
				return nil, fmt.Errorf("mismatched column name in part %d: expected '%s', got '%s' at position %d", i+2, col, currentHeader[j], j+1)
			}
		}
	}

	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for _, part := range parts {
		reader := csv.NewReader(bytes.NewReader(part))
		// Skip the header row of every part
		if _, err := reader.Read(); err != nil {
			return nil, fmt.Errorf("failed to skip header: %w", err)
		}

		for {
			record, err := reader.Read()
			if err == io.EOF {
				break
			}
			if err != nil {
				return nil, fmt.Errorf("failed to read CSV record: %w", err)
			}

			if err := writer.Write(record); err != nil {
				return nil, fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV writer: %w", err)
	}

	return buffer.Bytes(), nil
}

// RemoveDuplicateRows removes duplicate rows from a CSV byte slice while
// preserving the header and keeping the first occurrence of any duplicate.
func RemoveDuplicateRows(csvData []byte) ([]byte, error) {
	if len(bytes.TrimSpace(csvData)) == 0 {
		return nil, fmt.Errorf("received empty CSV data")
	}

	reader := csv.NewReader(bytes.NewReader(csvData))
	var buffer bytes.Buffer
	writer := csv.NewWriter(&buffer)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	seen := make(map[string]bool)

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}

		key := strings.Join(record, "\x00")

		if !seen[key] {
			seen[key] = true
			if err := writer.Write(record); err != nil {
				return nil, fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV writer: %w", err)
	}

	return buffer.Bytes(), nil
}
