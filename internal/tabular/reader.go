package tabular

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// utf8BOM is the byte-order marker some Windows tools prepend to exports.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParsedTable is the parsed form of one delimited input file.
// Every row has exactly len(Headers) fields.
type ParsedTable struct {
	Headers   []string
	Rows      [][]string
	Delimiter rune

	// BlankRows counts data rows dropped because every field was empty
	// after trimming. They are reported so callers can tally them as
	// skipped rather than silently losing them.
	BlankRows int
}

// HeaderIndex maps lowercased header names to their column position.
type HeaderIndex map[string]int

// MakeHeaderIndex builds a HeaderIndex from a header row.
// Keys are lowercased for case-insensitive matching.
func MakeHeaderIndex(headers []string) HeaderIndex {
	idx := make(HeaderIndex, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(CleanCell(h))] = i
	}
	return idx
}

// Read parses the file at path. A file that cannot be opened yields an
// empty table and no error: the caller treats it as nothing to import.
func Read(path string) (*ParsedTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return &ParsedTable{}, nil
	}
	return Parse(data)
}

// Parse parses delimited content. The first line drives delimiter
// detection, then the whole input is scanned again with the detected
// separator. The first record becomes the header row; the marker byte
// sequence of a UTF-8 BOM is stripped before it can reach the first
// header cell.
func Parse(data []byte) (*ParsedTable, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	delim := DetectDelimiter(firstLine(data))

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse delimited content: %w", err)
	}

	t := &ParsedTable{Delimiter: delim}
	if len(records) == 0 {
		return t, nil
	}

	t.Headers = cleanFields(records[0])

	width := len(t.Headers)
	for _, rec := range records[1:] {
		fields := cleanFields(rec)
		if isEmptyRow(fields) {
			t.BlankRows++
			continue
		}
		row := make([]string, width)
		copy(row, fields)
		t.Rows = append(t.Rows, row)
	}

	return t, nil
}

// firstLine returns the content up to the first newline, without the
// line terminator.
func firstLine(data []byte) string {
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		data = data[:i]
	}
	return strings.TrimSuffix(string(data), "\r")
}

// cleanFields trims every field of a record.
func cleanFields(rec []string) []string {
	out := make([]string, len(rec))
	for i, f := range rec {
		out[i] = CleanCell(f)
	}
	return out
}

// CleanCell trims whitespace and strips common spreadsheet artifacts:
// the Excel formula prefix (="...") and stray surrounding quotes.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	return strings.Trim(s, `"'`)
}

// isEmptyRow reports whether every field is empty. Fields are assumed to
// be trimmed already.
func isEmptyRow(fields []string) bool {
	for _, f := range fields {
		if f != "" {
			return false
		}
	}
	return true
}
