package importer

// mapping.go guesses which semantic field each source column feeds.
//
// Header matching is accent- and case-insensitive: "Descrição", "DESCRICAO"
// and "descricao" all land on the description field. The synonym sets
// cover the Portuguese and English header names seen in real bank and
// spreadsheet exports.

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// fieldSynonyms lists, per semantic field, the folded header names that
// auto-map to it. Order matters: the first field whose set contains the
// header wins.
var fieldSynonyms = []struct {
	field Field
	names map[string]bool
}{
	{FieldDate, set("data", "date", "dia", "data mov", "data movimento", "data valor", "vencimento")},
	{FieldDescription, set("descricao", "description", "desc", "historico", "nome", "name", "memo", "lancamento", "titulo", "merchant", "estabelecimento")},
	{FieldAmount, set("valor", "amount", "value", "montante", "quantia", "preco", "total", "importe", "vlr")},
	{FieldCategory, set("categoria", "category", "grupo", "classificacao", "rubrica")},
	{FieldType, set("tipo", "type", "natureza", "movimento", "operacao")},
}

func set(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

// SuggestMapping proposes a semantic field for each header. Headers that
// match no synonym set map to FieldIgnore. Each header is matched
// independently; two headers may both land on the same field, and the row
// builder resolves that by taking the leftmost.
func SuggestMapping(headers []string) FieldMapping {
	mapping := make(FieldMapping, len(headers))
	for _, h := range headers {
		mapping[h] = matchField(foldHeader(h))
	}
	return mapping
}

func matchField(folded string) Field {
	for _, fs := range fieldSynonyms {
		if fs.names[folded] {
			return fs.field
		}
	}
	return FieldIgnore
}

// foldTransformer strips combining marks after canonical decomposition,
// turning "ção" into "cao".
var foldTransformer = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// foldHeader lower-cases, trims and removes diacritics from a header name.
func foldHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		return s
	}
	return folded
}
