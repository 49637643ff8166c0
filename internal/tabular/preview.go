// Package tabular reads delimiter-separated files for preview. Callers
// pass paths already resolved by the sandbox layer.
package tabular

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
)

// ErrEmpty is returned when the file contains no header row.
var ErrEmpty = errors.New("file is empty")

// Preview holds the header row and up to the requested number of data
// rows of a tabular file.
type Preview struct {
	Headers   []string
	Rows      [][]string
	Truncated bool
}

// Read parses the file at path using delimiter, returning the header and
// at most maxRows data rows. Ragged rows are tolerated.
func Read(path string, delimiter rune, maxRows int) (*Preview, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	headers, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmpty
		}
		return nil, err
	}

	p := &Preview{Headers: headers, Rows: [][]string{}}
	for len(p.Rows) < maxRows {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return p, nil
		}
		if err != nil {
			return nil, err
		}
		p.Rows = append(p.Rows, row)
	}
	p.Truncated = true
	return p, nil
}
