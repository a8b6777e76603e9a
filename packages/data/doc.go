// Package data reads the values behind declared data sources.
//
// Supported kinds:
//   - excel: rows of a worksheet, keyed by the header row
//   - json:  a JSON document, optionally narrowed by a gjson selector
//   - yaml:  a YAML document, optionally narrowed by a gjson selector
//   - env:   a .env file, optionally narrowed to a single key
//   - sql:   the rows returned by a query against a connection string
//
// Loaded values can be checked against a JSON schema with ValidateSchema.
package data
