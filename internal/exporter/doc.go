// Package exporter writes dashboard rollups to CSV and Excel files for
// offline reporting. CSV output is prefixed with a UTF-8 BOM so Excel
// opens it correctly; Excel output places each rollup on its own sheet.
package exporter
