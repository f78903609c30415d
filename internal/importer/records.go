package importer

// records.go builds normalized records from raw rows and aggregates them.
//
// BuildRecords is a pure projection of (rows, mapping, categories): the
// wizard re-invokes it after every mapping edit and gets a fresh slice
// each time. Nothing here caches or patches a previous result.

import "strings"

// Canonical row-level failure messages, in check order.
const (
	reasonNoDescription = "Sem descrição"
	reasonBadAmount     = "Valor inválido"
	reasonBadDate       = "Data inválida"
)

// BuildRecords normalizes every raw row into a Record. For each semantic
// field the leftmost header (in header order) mapped to it supplies the
// cell; fields with no mapped header fall back to their documented
// defaults (empty description, amount 0, no date, expense, no category).
// Records come back in row order, one per input row, valid or not.
func BuildRecords(table *RawTable, mapping FieldMapping, categories []Category) []Record {
	cols := resolveColumns(table.Headers, mapping)
	catIndex := indexCategories(categories)

	records := make([]Record, 0, len(table.Rows))
	for i, row := range table.Rows {
		records = append(records, buildRecord(i, row, cols, catIndex))
	}
	return records
}

// columns holds, per semantic field, the winning header ("" when absent).
type columns struct {
	date        string
	description string
	amount      string
	category    string
	txType      string
}

// resolveColumns picks the first header in header order for each field.
// A second header mapped to the same field is silently ignored.
func resolveColumns(headers []string, mapping FieldMapping) columns {
	var c columns
	for _, h := range headers {
		switch mapping[h] {
		case FieldDate:
			if c.date == "" {
				c.date = h
			}
		case FieldDescription:
			if c.description == "" {
				c.description = h
			}
		case FieldAmount:
			if c.amount == "" {
				c.amount = h
			}
		case FieldCategory:
			if c.category == "" {
				c.category = h
			}
		case FieldType:
			if c.txType == "" {
				c.txType = h
			}
		}
	}
	return c
}

func buildRecord(index int, row map[string]string, cols columns, catIndex map[string]Category) Record {
	rec := Record{
		Index: index,
		Valid: true,
		Type:  TypeExpense,
	}

	// Checks run in a fixed order and only the first failure is kept.
	rec.Description = strings.TrimSpace(cell(row, cols.description))
	if rec.Description == "" {
		rec.Valid = false
		rec.ErrorReason = reasonNoDescription
	}

	rec.Amount = ParseAmount(cell(row, cols.amount))
	if rec.Amount <= 0 && rec.Valid {
		rec.Valid = false
		rec.ErrorReason = reasonBadAmount
	}

	rec.Date = ParseDate(cell(row, cols.date))
	if rec.Date == "" && rec.Valid {
		rec.Valid = false
		rec.ErrorReason = reasonBadDate
	}

	rec.Type = ParseType(cell(row, cols.txType))

	if raw := strings.TrimSpace(cell(row, cols.category)); raw != "" {
		if cat, ok := catIndex[strings.ToLower(raw)]; ok {
			rec.CategoryID = cat.ID
			rec.CategoryName = cat.Name
		} else {
			// Unknown category: keep the text, leave the id empty and let
			// the persistence layer decide whether to create it.
			rec.CategoryName = raw
		}
	}

	return rec
}

// cell returns the raw value for a header, or "" when the header is absent
// from the mapping or the row is short.
func cell(row map[string]string, header string) string {
	if header == "" {
		return ""
	}
	return row[header]
}

// indexCategories builds a case-insensitive name lookup.
func indexCategories(categories []Category) map[string]Category {
	idx := make(map[string]Category, len(categories))
	for _, c := range categories {
		idx[strings.ToLower(c.Name)] = c
	}
	return idx
}

// Summarize partitions records by validity and totals the accepted set.
// O(n), cheap enough to run after every mapping change.
func Summarize(records []Record) Summary {
	var s Summary
	for _, r := range records {
		if r.Valid {
			s.Accepted++
			s.TotalAmount += r.Amount
		} else {
			s.Rejected++
		}
	}
	return s
}

// Accepted returns the valid records in row order.
func Accepted(records []Record) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if r.Valid {
			out = append(out, r)
		}
	}
	return out
}
