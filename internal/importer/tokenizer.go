package importer

// tokenizer.go turns decoded file text into a RawTable.
//
// Input files come from banks and spreadsheets with no agreed format, so
// the parser tolerates a UTF-8 BOM, mixed line endings, blank lines and a
// field delimiter that may be a comma, semicolon or tab. The first
// non-blank line is always the header row.

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"
)

var (
	// ErrNoData is returned when a non-empty input yields no data rows.
	ErrNoData = errors.New("arquivo sem linhas de dados")

	// ErrNoColumns is returned when the header row yields no columns.
	ErrNoColumns = errors.New("arquivo sem colunas reconhecíveis")
)

// candidate delimiters, checked in order. Semicolon before comma: pt-BR
// exports use ';' as the field separator and ',' as the decimal mark.
var delimiters = []rune{';', '\t', ','}

// Parse tokenizes decoded text into headers and rows. It is a pure
// function: encoding resolution happens upstream, and the returned
// RawTable is never touched again by this package.
func Parse(rawText string) (*RawTable, error) {
	rawText = strings.TrimPrefix(rawText, "\uFEFF")

	lines := splitLines(rawText)
	if len(lines) == 0 {
		return nil, ErrNoData
	}

	delim := detectDelimiter(lines[0])

	headers, err := splitRecord(lines[0], delim)
	if err != nil || len(headers) == 0 {
		return nil, ErrNoColumns
	}
	for i, h := range headers {
		headers[i] = strings.TrimSpace(h)
	}
	if len(headers) == 1 && headers[0] == "" {
		return nil, ErrNoColumns
	}

	rows := make([]map[string]string, 0, len(lines)-1)
	for _, line := range lines[1:] {
		cells, err := splitRecord(line, delim)
		if err != nil {
			// Unbalanced quotes etc.: keep the raw line as a single cell
			// under the first header rather than dropping the row.
			cells = []string{line}
		}
		row := make(map[string]string, len(headers))
		for i, cell := range cells {
			if i >= len(headers) {
				break
			}
			row[headers[i]] = cell
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, ErrNoData
	}

	return &RawTable{Headers: headers, Rows: rows}, nil
}

// detectDelimiter picks the candidate that splits the header line into the
// most fields. Ties resolve in candidate order.
func detectDelimiter(headerLine string) rune {
	best := ','
	bestCount := 0
	for _, d := range delimiters {
		n := strings.Count(headerLine, string(d))
		if n > bestCount {
			best = d
			bestCount = n
		}
	}
	return best
}

// splitLines splits on \n, trims \r, and drops blank lines so they are
// never counted as data rows.
func splitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// splitRecord parses a single line with encoding/csv so quoted cells that
// contain the delimiter survive.
func splitRecord(line string, delim rune) ([]string, error) {
	r := csv.NewReader(strings.NewReader(line))
	r.Comma = delim
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	record, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	return record, err
}
