package ledger

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"salesdash/internal/errors"
)

// dayFirstFormats are the accepted contract date layouts. The ledger uses
// day-before-month ordering, so "03/04/2024" is the 3rd of April.
var dayFirstFormats = []string{
	"2/1/2006",
	"2-1-2006",
	"2.1.2006",
	"2/1/2006 15:04",
	"2006-01-02",
}

// Loader reads a delimited or Excel ledger file and produces a cleaned
// Dataset. Loading is all-or-nothing: a missing required column or an
// unparseable date or amount aborts the load.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a ledger loader with the given logger.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger.With(slog.String("component", "ledger_loader"))}
}

// Load reads the ledger file at path and returns the cleaned dataset.
// CSV is chosen for .csv files, Excel for .xlsx/.xlsm; anything else is
// rejected before touching the file contents.
func (l *Loader) Load(ctx context.Context, path string) (*Dataset, error) {
	start := time.Now()

	var rows [][]string
	var err error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		rows, err = readCSVRows(path)
	case ".xlsx", ".xlsm":
		rows, err = readExcelRows(path)
	default:
		return nil, errors.NewAppValidationError(fmt.Sprintf("unsupported ledger format %q", ext))
	}
	if err != nil {
		return nil, err
	}

	records, err := l.buildRecords(rows)
	if err != nil {
		return nil, err
	}

	ds := &Dataset{
		Records:  records,
		Source:   path,
		Version:  uuid.New().String(),
		LoadedAt: time.Now(),
	}

	l.logger.InfoContext(ctx, "ledger loaded",
		slog.String("path", path),
		slog.String("version", ds.Version),
		slog.Int("record_count", len(records)),
		slog.Duration("duration", time.Since(start)))

	return ds, nil
}

// readCSVRows reads the entire CSV file into memory.
func readCSVRows(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.NewStorageError("failed to open ledger file", err).WithContext("path", path)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // ragged rows are validated per-cell below

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.NewParsingError("failed to read ledger CSV", err).WithContext("path", path)
	}
	return rows, nil
}

// readExcelRows reads the first sheet of an Excel workbook.
func readExcelRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.NewStorageError("failed to open ledger workbook", err).WithContext("path", path)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.NewParsingError("ledger workbook has no sheets", nil).WithContext("path", path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.NewParsingError("failed to read ledger sheet", err).WithContext("sheet", sheets[0])
	}
	return rows, nil
}

// buildRecords converts raw rows into cleaned SaleRecords. The first row
// is the header; its columns are matched case-insensitively against the
// canonical names.
func (l *Loader) buildRecords(rows [][]string) ([]SaleRecord, error) {
	if len(rows) == 0 {
		return nil, errors.NewParsingError("ledger file is empty", nil)
	}

	columns, err := mapColumns(rows[0])
	if err != nil {
		return nil, err
	}

	records := make([]SaleRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rowNum := i + 2 // 1-based, after the header

		if isBlankRow(row) {
			continue
		}

		rec, err := buildRecord(row, columns, rowNum)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, nil
}

// mapColumns resolves header names to column indices and verifies that
// every required column is present.
func mapColumns(header []string) (map[string]int, error) {
	columns := make(map[string]int, len(header))
	known := append(append([]string{}, RequiredColumns...), ColLatitude, ColLongitude)
	for i, name := range header {
		trimmed := strings.TrimSpace(name)
		for _, canonical := range known {
			if strings.EqualFold(trimmed, canonical) {
				columns[canonical] = i
				break
			}
		}
	}

	for _, required := range RequiredColumns {
		if _, ok := columns[required]; !ok {
			return nil, errors.NewParsingError(fmt.Sprintf("ledger is missing required column %q", required), nil)
		}
	}
	return columns, nil
}

// buildRecord cleans a single data row.
func buildRecord(row []string, columns map[string]int, rowNum int) (SaleRecord, error) {
	cell := func(col string) string {
		idx, ok := columns[col]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	date, err := parseDayFirstDate(cell(ColContractDate))
	if err != nil {
		return SaleRecord{}, errors.NewParsingError(fmt.Sprintf("row %d: invalid contract date %q", rowNum, cell(ColContractDate)), err)
	}

	amount, err := parseAmount(cell(ColContractAmount))
	if err != nil {
		return SaleRecord{}, errors.NewParsingError(fmt.Sprintf("row %d: invalid contract amount %q", rowNum, cell(ColContractAmount)), err)
	}

	rec := SaleRecord{
		UnitID:         cell(ColUnitID),
		Project:        cell(ColProject),
		ContractDate:   date,
		ContractAmount: amount,
		Bedrooms:       cell(ColBedrooms),
		YearMonth:      YearMonthKey(date),
	}

	areas := []struct {
		col string
		dst *float64
	}{
		{ColCoveredArea, &rec.CoveredArea},
		{ColCoveredVeranda, &rec.CoveredVeranda},
		{ColTotalCovered, &rec.TotalCovered},
	}
	for _, a := range areas {
		v, err := parseArea(cell(a.col))
		if err != nil {
			return SaleRecord{}, errors.NewParsingError(fmt.Sprintf("row %d: invalid %s %q", rowNum, a.col, cell(a.col)), err)
		}
		*a.dst = v
	}

	coords := []struct {
		col string
		dst **float64
	}{
		{ColLatitude, &rec.Latitude},
		{ColLongitude, &rec.Longitude},
	}
	for _, c := range coords {
		raw := cell(c.col)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return SaleRecord{}, errors.NewParsingError(fmt.Sprintf("row %d: invalid %s %q", rowNum, c.col, raw), err)
		}
		*c.dst = &v
	}

	return rec, nil
}

// parseDayFirstDate resolves a textual date under the day-before-month
// convention. A contract date is a calendar day: any time-of-day carried
// by a timestamped layout is truncated so inclusive date bounds hold.
func parseDayFirstDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range dayFirstFormats {
		if t, err := time.Parse(layout, raw); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized day-first date %q", raw)
}

// parseAmount strips thousands separators and parses a monetary value.
func parseAmount(raw string) (float64, error) {
	if raw == "" {
		return 0, fmt.Errorf("empty amount")
	}
	cleaned := strings.ReplaceAll(raw, ",", "")
	return strconv.ParseFloat(cleaned, 64)
}

// parseArea parses an area cell, zero-filling missing values. Zero rather
// than a mean substitute: an absent measurement must not look observed.
func parseArea(raw string) (float64, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
}

// isBlankRow reports whether every cell in the row is empty.
func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
