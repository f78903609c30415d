// Package importer converts loosely-structured delimited text into
// validated transaction records ready for bulk insertion into the ledger.
//
// This package is the core of the import flow and has no transport or
// storage dependencies. The wizard UI, the HTTP layer and the tests all
// drive the same pipeline:
//
//	table, err := importer.Parse(text)          // tokenize
//	mapping := importer.SuggestMapping(table.Headers)
//	// ... the user adjusts the mapping ...
//	records := importer.BuildRecords(table, mapping, categories)
//	summary := importer.Summarize(records)
//
// Parse, SuggestMapping, BuildRecords and Summarize are pure functions:
// identical inputs yield identical outputs, and every call returns fresh
// values. The surrounding flow simply recomputes after each edit instead
// of patching previous results.
//
// Rows never fail individually. A row that cannot be normalized becomes a
// Record with Valid=false and the first failing check in ErrorReason; it
// is excluded from the accepted set and the total but stays visible for
// audit. Only structural problems (no columns, no data) and persistence
// problems are errors.
//
// Service adds the two effectful operations, Commit and Undo, on top of a
// Store interface implemented by internal/store.
package importer
