package importer

// Field identifies the semantic destination a source column can be mapped to.
type Field string

const (
	FieldDate        Field = "date"
	FieldDescription Field = "description"
	FieldAmount      Field = "amount"
	FieldCategory    Field = "category"
	FieldType        Field = "type"
	FieldIgnore      Field = "ignore"
)

// TxType is the direction of a transaction. Amounts are stored as
// magnitudes; direction is carried here, never in the amount.
type TxType string

const (
	TypeIncome  TxType = "income"
	TypeBill    TxType = "bill"
	TypeExpense TxType = "expense"
)

// RawTable is the parsed form of an uploaded file: the header row plus one
// map per data row. Rows shorter than the header simply omit the trailing
// keys. A RawTable is never mutated after Parse returns it.
type RawTable struct {
	Headers []string
	Rows    []map[string]string
}

// FieldMapping assigns each header to a semantic field. It is owned by the
// caller (the wizard edits it between suggestion and preview); the row
// builder only reads it. Multiple headers may map to the same field; the
// leftmost header in header order wins.
type FieldMapping map[string]Field

// Category is a read-only reference to a known ledger category.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Record is one normalized, validity-flagged row. Valid is true iff the
// description is non-empty, the amount is strictly positive and the date
// parsed. ErrorReason holds the first failing check only.
type Record struct {
	Index        int     `json:"index"`
	Valid        bool    `json:"valid"`
	ErrorReason  string  `json:"errorReason,omitempty"`
	Description  string  `json:"description"`
	Amount       float64 `json:"amount"`
	Date         string  `json:"date,omitempty"` // YYYY-MM-DD, empty when unparseable
	Type         TxType  `json:"type"`
	CategoryID   string  `json:"categoryId,omitempty"`
	CategoryName string  `json:"categoryName,omitempty"`
}

// Summary is the derived aggregate over a record set. It is recomputed
// from scratch whenever rows, mapping or categories change.
type Summary struct {
	Accepted    int     `json:"accepted"`
	Rejected    int     `json:"rejected"`
	TotalAmount float64 `json:"totalAmount"`
}
