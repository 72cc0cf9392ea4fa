// Package dataset loads and validates the tabular business datasets behind
// the dashboard. A Loader resolves a dataset name through a Source (embedded
// samples, a CSV directory, SQLite or Google Sheets) and parses it into an
// immutable, date-ordered model.Dataset. Any invalid row fails the whole load.
package dataset
