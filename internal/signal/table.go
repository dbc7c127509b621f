// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package signal reads delimited signal tables, smooths one numeric column
// with a centered moving average, and writes the table back with the
// smoothed values appended.
package signal

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/pdiddy/media-batch/pkg/types"
)

// Table is a header row plus row-major records of equal width. Cells are
// kept as read so untouched columns are written back verbatim.
type Table struct {
	Header []string
	Rows   [][]string
}

// missingValues are cells read as NaN rather than rejected. The set mirrors
// the usual CSV conventions for absent measurements.
var missingValues = map[string]bool{
	"": true, "#N/A": true, "#N/A N/A": true, "#NA": true, "-1.#IND": true,
	"-1.#QNAN": true, "-NaN": true, "-nan": true, "1.#IND": true, "1.#QNAN": true,
	"<NA>": true, "N/A": true, "NA": true, "NULL": true, "NaN": true,
	"None": true, "n/a": true, "nan": true, "null": true,
}

// utf8BOM is the byte-order mark spreadsheet tools put before the header.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadTable parses comma-delimited text whose first record is the header.
// A leading UTF-8 byte-order mark is skipped. Rows whose width differs from
// the header's return an error wrapping types.ErrParse.
func ReadTable(r io.Reader) (*Table, error) {
	br := bufio.NewReader(r)
	if b, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(b, utf8BOM) {
		if _, err := br.Discard(len(utf8BOM)); err != nil {
			return nil, fmt.Errorf("reading header: %w: %w", types.ErrParse, err)
		}
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = 0

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("reading header: %w: table is empty", types.ErrParse)
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w: %w", types.ErrParse, err)
	}

	t := &Table{Header: header}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading rows: %w: %w", types.ErrParse, err)
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}

// WriteTable writes t as comma-delimited text with its header.
func WriteTable(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}
	return cw.Error()
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// ColumnIndex returns the position of the first column named name, or -1.
func (t *Table) ColumnIndex(name string) int {
	return slices.Index(t.Header, name)
}

// Column returns the cells of the named column. A missing column returns an
// error wrapping types.ErrSchema.
func (t *Table) Column(name string) ([]string, error) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil, fmt.Errorf("%w: column %q not found in header %v", types.ErrSchema, name, t.Header)
	}
	cells := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		cells[i] = row[idx]
	}
	return cells, nil
}

// Float64Column parses the named column as float64. Missing-value markers
// (empty cells, "NaN", "NA", ...) become NaN. Any other non-numeric cell
// returns an error wrapping types.ErrParse that names its 1-based data row.
func (t *Table) Float64Column(name string) ([]float64, error) {
	cells, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	values := make([]float64, len(cells))
	for i, cell := range cells {
		s := strings.TrimSpace(cell)
		if missingValues[s] {
			values[i] = math.NaN()
			continue
		}
		v, err := parseNumber(s)
		if err != nil {
			return nil, fmt.Errorf("%w: column %q row %d: %q is not a number", types.ErrParse, name, i+1, cell)
		}
		values[i] = v
	}
	return values, nil
}

// parseNumber parses a decimal float. Hexadecimal literals such as 0x1p-2,
// which strconv accepts, are rejected. Infinity spellings ("inf",
// "-Infinity") are accepted.
func parseNumber(s string) (float64, error) {
	digits := strings.TrimLeft(s, "+-")
	if len(digits) > 1 && digits[0] == '0' && (digits[1] == 'x' || digits[1] == 'X') {
		return 0, fmt.Errorf("hexadecimal literal %q", s)
	}
	return strconv.ParseFloat(s, 64)
}

// SetColumn stores values under name. An existing column of that name is
// overwritten in place; otherwise the column is appended last.
func (t *Table) SetColumn(name string, values []string) error {
	if len(values) != len(t.Rows) {
		return fmt.Errorf("setting column %q: %d values for %d rows", name, len(values), len(t.Rows))
	}
	idx := t.ColumnIndex(name)
	if idx < 0 {
		t.Header = append(t.Header, name)
		for i := range t.Rows {
			t.Rows[i] = append(t.Rows[i], values[i])
		}
		return nil
	}
	for i := range t.Rows {
		t.Rows[i][idx] = values[i]
	}
	return nil
}
