// Package tabular parses uploaded delimited files into the record tables
// the preparation pipeline consumes. csv files use the comma; txt files
// sniff comma, tab, then semicolon and keep the first delimiter that
// yields more than one column. Spreadsheet formats are not supported.
package tabular

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/canopywatch/canopy-engine/pkg/models"
)

var txtDelimiters = []rune{',', '\t', ';'}

// Supported reports whether the file extension can be parsed.
func Supported(filename string) bool {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), ".")) {
	case "csv", "txt":
		return true
	default:
		return false
	}
}

// Parse reads a delimited file into a Table. The first row is the header;
// header names are whitespace-trimmed. Empty cells become nil so the
// pipeline's missing-value gate sees them as nulls, not parse errors.
func Parse(r io.Reader, filename string) (models.Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return models.Table{}, fmt.Errorf("read upload: %w", err)
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	switch ext {
	case "csv":
		return parseDelimited(data, ',')
	case "txt":
		for _, delim := range txtDelimiters {
			table, err := parseDelimited(data, delim)
			if err == nil && len(table.Columns) > 1 {
				return table, nil
			}
		}
		return models.Table{}, fmt.Errorf("cannot determine delimiter for %s", filename)
	default:
		return models.Table{}, fmt.Errorf("unsupported file format: %s", ext)
	}
}

func parseDelimited(data []byte, delim rune) (models.Table, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delim
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return models.Table{}, fmt.Errorf("read header: %w", err)
	}
	columns := make([]string, len(header))
	for i, name := range header {
		columns[i] = strings.TrimSpace(name)
	}

	var rows []models.Record
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return models.Table{}, fmt.Errorf("read row %d: %w", len(rows)+2, err)
		}
		row := make(models.Record, len(columns))
		for i, col := range columns {
			if i >= len(fields) || strings.TrimSpace(fields[i]) == "" {
				row[col] = nil
				continue
			}
			row[col] = strings.TrimSpace(fields[i])
		}
		rows = append(rows, row)
	}

	return models.Table{Columns: columns, Rows: rows}, nil
}
