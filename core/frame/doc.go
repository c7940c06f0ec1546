// Package frame turns raw dataset payloads into tabular dataframes.
//
// Supported formats, dispatched purely on the filename suffix:
//   - .parquet: columnar binary
//   - .csv: delimited text
//   - .json: line-delimited records, falling back to a whole-document array
package frame
