package importer

// normalize.go provides pure cell-level normalizers for the messy reality
// of exported spreadsheets: mixed decimal conventions ("1.234,56" vs
// "1,234.56"), accounting negatives, currency symbols, and half a dozen
// date layouts. None of these functions ever fail; absence of a usable
// value is reported through the owning record's validity flag instead.

import (
	"fmt"
	"strconv"
	"strings"
)

// currencySymbols are stripped from amounts before parsing.
var currencySymbols = []string{"R$", "$", "€", "£"}

// ParseAmount extracts an unsigned decimal magnitude from a raw cell.
// Sign conventions (leading '-', accounting parentheses) are detected and
// discarded: direction belongs to the transaction type, not the amount.
// Returns 0 for anything unparseable.
func ParseAmount(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}

	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = s[1 : len(s)-1]
	}
	for _, sym := range currencySymbols {
		s = strings.ReplaceAll(s, sym, "")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "-")
	s = strings.TrimPrefix(s, "+")
	s = strings.ReplaceAll(s, " ", "")

	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")

	switch {
	case lastComma >= 0 && lastDot >= 0:
		// Both present: the later one is the decimal mark, the earlier one
		// is thousands grouping.
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		// Lone comma: decimal mark when at most 2 digits follow it,
		// thousands grouping otherwise ("1,234" is one thousand...).
		if len(s)-lastComma-1 <= 2 {
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// dateSeparators accepted between day, month and year.
const dateSeparators = "/-."

// ParseDate normalizes a raw cell to an ISO calendar date (YYYY-MM-DD).
// Accepted inputs: an ISO prefix taken verbatim, or day-first layouts
// D[D]sepM[M]sepYYYY and D[D]sepM[M]sepYY with sep in "/-.". Two-digit
// years above 50 land in 19xx, the rest in 20xx. Only range checks are
// applied (month 1-12, day 1-31); the day is not validated against the
// month. Returns "" for anything else.
func ParseDate(raw string) string {
	s := strings.TrimSpace(raw)
	if len(s) >= 10 && isISOPrefix(s[:10]) {
		return s[:10]
	}

	parts := strings.FieldsFunc(s, func(r rune) bool {
		return strings.ContainsRune(dateSeparators, r)
	})
	if len(parts) != 3 {
		return ""
	}

	day, err1 := strconv.Atoi(parts[0])
	month, err2 := strconv.Atoi(parts[1])
	year, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return ""
	}

	switch len(parts[2]) {
	case 2:
		if year > 50 {
			year += 1900
		} else {
			year += 2000
		}
	case 4:
		// keep as-is
	default:
		return ""
	}

	if month < 1 || month > 12 || day < 1 || day > 31 {
		return ""
	}

	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}

// isISOPrefix reports whether s looks like YYYY-MM-DD.
func isISOPrefix(s string) bool {
	if len(s) != 10 || s[4] != '-' || s[7] != '-' {
		return false
	}
	for i, c := range s {
		if i == 4 || i == 7 {
			continue
		}
		if c < '0' || c > '9' {
			return false
		}
	}
	month, _ := strconv.Atoi(s[5:7])
	day, _ := strconv.Atoi(s[8:10])
	return month >= 1 && month <= 12 && day >= 1 && day <= 31
}

// typeSynonyms maps normalized labels to transaction types. Anything not
// listed, including the empty string, is an expense.
var typeSynonyms = map[string]TxType{
	"income":       TypeIncome,
	"receita":      TypeIncome,
	"renda":        TypeIncome,
	"entrada":      TypeIncome,
	"credito":      TypeIncome,
	"credit":       TypeIncome,
	"bill":         TypeBill,
	"conta":        TypeBill,
	"boleto":       TypeBill,
	"fatura":       TypeBill,
	"fixa":         TypeBill,
	"recurring":    TypeBill,
	"subscription": TypeBill,
}

// ParseType maps a free-text label to a transaction type. Never fails.
func ParseType(raw string) TxType {
	key := foldHeader(raw)
	if t, ok := typeSynonyms[key]; ok {
		return t
	}
	return TypeExpense
}
