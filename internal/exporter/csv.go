package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"salesdash/internal/ledger"
)

// CSVWriter provides CSV export functionality for dashboard rollups
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger.With(slog.String("component", "csv_exporter"))}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes data to a CSV file with the given options
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) error {
	w.logger.Info("writing CSV file",
		slog.String("file_path", filePath),
		slog.Int("record_count", len(options.Records)))

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	// BOM helps Excel recognize UTF-8
	if options.BOMPrefix {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	return writer.Error()
}

// WriteTimeline exports the monthly rollup
func (w *CSVWriter) WriteTimeline(filePath string, buckets []ledger.MonthlyBucket) error {
	records := make([][]string, 0, len(buckets))
	for _, b := range buckets {
		records = append(records, []string{
			b.YearMonth,
			formatFloat(b.TotalSales),
			formatInt(b.UnitsSold),
		})
	}
	return w.WriteCSV(filePath, WriteOptions{
		Headers:   []string{"Year-Month", "Total Sales", "Units Sold"},
		Records:   records,
		BOMPrefix: true,
	})
}

// WriteProjects exports the per-project rollup
func (w *CSVWriter) WriteProjects(filePath string, rows []ledger.ProjectMetrics) error {
	records := make([][]string, 0, len(rows))
	for _, p := range rows {
		records = append(records, []string{
			p.Project,
			formatFloat(p.TotalSales),
			formatFloat(p.AveragePrice),
			formatInt(p.UnitsSold),
			formatFloat(p.AverageSize),
			formatOptionalFloat(p.PricePerSqm),
		})
	}
	return w.WriteCSV(filePath, WriteOptions{
		Headers:   []string{"Project", "Total Sales", "Average Price", "Units Sold", "Average Size", "Price per Sqm"},
		Records:   records,
		BOMPrefix: true,
	})
}

// WriteBedrooms exports the per-bedroom-count rollup
func (w *CSVWriter) WriteBedrooms(filePath string, rows []ledger.BedroomMetrics) error {
	records := make([][]string, 0, len(rows))
	for _, b := range rows {
		records = append(records, []string{
			formatFloat(b.Bedrooms),
			formatFloat(b.TotalSales),
			formatFloat(b.AveragePrice),
			formatInt(b.UnitsSold),
			formatFloat(b.AverageSize),
			formatOptionalFloat(b.PricePerSqm),
		})
	}
	return w.WriteCSV(filePath, WriteOptions{
		Headers:   []string{"Bedrooms", "Total Sales", "Average Price", "Units Sold", "Average Size", "Price per Sqm"},
		Records:   records,
		BOMPrefix: true,
	})
}

// WriteMap exports the geographic concentration rollup
func (w *CSVWriter) WriteMap(filePath string, points []ledger.MapPoint) error {
	records := make([][]string, 0, len(points))
	for _, p := range points {
		reference := ""
		if p.Reference {
			reference = "yes"
		}
		records = append(records, []string{
			p.Project,
			formatFloat(p.Latitude),
			formatFloat(p.Longitude),
			formatFloat(p.TotalSales),
			formatInt(p.UnitsSold),
			formatFloat(p.MarkerSize),
			reference,
		})
	}
	return w.WriteCSV(filePath, WriteOptions{
		Headers:   []string{"Project", "Latitude", "Longitude", "Total Sales", "Units Sold", "Marker Size", "Reference"},
		Records:   records,
		BOMPrefix: true,
	})
}
