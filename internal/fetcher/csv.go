// Package fetcher streams tabular input files (CSV, NDJSON, XLSX and ZIP archives) into the pipeline.
package fetcher

import (
	"context"
	"encoding/csv"
	"io"
	"strings"

	"github.com/rotisserie/eris"
)

// CSVOptions configures the streaming CSV parser.
type CSVOptions struct {
	Delimiter  rune // default ','
	Comment    rune // comment character (0 = none)
	LazyQuotes bool
	TrimSpace  bool
}

// Record is a CSV row keyed by header column name.
type Record struct {
	index  map[string]int
	fields []string
}

// Get returns the value of the named column, or "" when the column is
// missing from the header or the row is short.
func (r Record) Get(col string) string {
	i, ok := r.index[col]
	if !ok || i >= len(r.fields) {
		return ""
	}
	return r.fields[i]
}

// Has reports whether the header contains the named column.
func (r Record) Has(col string) bool {
	_, ok := r.index[col]
	return ok
}

// StreamCSV reads a CSV file with a header row and sends each data row as
// a Record. Both channels are closed when processing completes; at most
// one error is sent.
func StreamCSV(ctx context.Context, r io.Reader, opts CSVOptions) (<-chan Record, <-chan error) {
	rowCh := make(chan Record, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(rowCh)
		defer close(errCh)

		reader := csv.NewReader(r)
		if opts.Delimiter != 0 {
			reader.Comma = opts.Delimiter
		}
		if opts.Comment != 0 {
			reader.Comment = opts.Comment
		}
		reader.LazyQuotes = opts.LazyQuotes
		reader.FieldsPerRecord = -1 // allow variable fields
		reader.ReuseRecord = false

		header, err := reader.Read()
		if err == io.EOF {
			return
		}
		if err != nil {
			errCh <- eris.Wrap(err, "csv: read header")
			return
		}
		index := make(map[string]int, len(header))
		for i, col := range header {
			col = strings.TrimSpace(strings.TrimPrefix(col, "\ufeff"))
			if _, dup := index[col]; !dup {
				index[col] = i
			}
		}

		for {
			if ctx.Err() != nil {
				errCh <- eris.Wrap(ctx.Err(), "csv: context cancelled")
				return
			}

			fields, err := reader.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				errCh <- eris.Wrap(err, "csv: read row")
				return
			}

			if opts.TrimSpace {
				for i, field := range fields {
					fields[i] = strings.TrimSpace(field)
				}
			}

			select {
			case rowCh <- Record{index: index, fields: fields}:
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "csv: context cancelled")
				return
			}
		}
	}()

	return rowCh, errCh
}

// ParseDelimiter converts a configured delimiter name or character into a
// rune. Accepts "tab", "\t", "comma", "pipe" or any single character.
func ParseDelimiter(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "", ",", "comma":
		return ',', nil
	case "tab", `\t`, "\t":
		return '\t', nil
	case "pipe", "|":
		return '|', nil
	case ";", "semicolon":
		return ';', nil
	}
	runes := []rune(s)
	if len(runes) != 1 {
		return 0, eris.Errorf("csv: invalid delimiter %q", s)
	}
	return runes[0], nil
}
