package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"salesdash/internal/ledger"
)

// Sheet names in the exported workbook.
const (
	SheetTimeline = "Timeline"
	SheetProjects = "Projects"
	SheetBedrooms = "Bedrooms"
	SheetMap      = "Map"
)

// ExcelWriter exports all dashboard rollups into one workbook
type ExcelWriter struct {
	logger *slog.Logger
}

// NewExcelWriter creates a new Excel writer instance
func NewExcelWriter(logger *slog.Logger) *ExcelWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExcelWriter{logger: logger.With(slog.String("component", "excel_exporter"))}
}

// Report bundles the four rollups for a single export
type Report struct {
	Timeline []ledger.MonthlyBucket
	Projects []ledger.ProjectMetrics
	Bedrooms []ledger.BedroomMetrics
	Map      []ledger.MapPoint
}

// WriteReport writes the workbook with one sheet per rollup
func (w *ExcelWriter) WriteReport(filePath string, report Report) error {
	w.logger.Info("writing Excel report",
		slog.String("file_path", filePath),
		slog.Int("timeline_rows", len(report.Timeline)),
		slog.Int("project_rows", len(report.Projects)))

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := w.writeTimelineSheet(f, report.Timeline); err != nil {
		return err
	}
	if err := w.writeProjectsSheet(f, report.Projects); err != nil {
		return err
	}
	if err := w.writeBedroomsSheet(f, report.Bedrooms); err != nil {
		return err
	}
	if err := w.writeMapSheet(f, report.Map); err != nil {
		return err
	}

	// Drop the default sheet so the workbook opens on the timeline
	f.DeleteSheet("Sheet1")

	if err := f.SaveAs(filePath); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func (w *ExcelWriter) writeSheet(f *excelize.File, sheet string, header []interface{}, rows [][]interface{}) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header on %s: %w", sheet, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d on %s: %w", i+2, sheet, err)
		}
	}
	return nil
}

func (w *ExcelWriter) writeTimelineSheet(f *excelize.File, buckets []ledger.MonthlyBucket) error {
	rows := make([][]interface{}, 0, len(buckets))
	for _, b := range buckets {
		rows = append(rows, []interface{}{b.YearMonth, b.TotalSales, b.UnitsSold})
	}
	return w.writeSheet(f, SheetTimeline,
		[]interface{}{"Year-Month", "Total Sales", "Units Sold"}, rows)
}

func (w *ExcelWriter) writeProjectsSheet(f *excelize.File, projects []ledger.ProjectMetrics) error {
	rows := make([][]interface{}, 0, len(projects))
	for _, p := range projects {
		var pricePerSqm interface{}
		if p.PricePerSqm != nil {
			pricePerSqm = *p.PricePerSqm
		}
		rows = append(rows, []interface{}{
			p.Project, p.TotalSales, p.AveragePrice, p.UnitsSold, p.AverageSize, pricePerSqm,
		})
	}
	return w.writeSheet(f, SheetProjects,
		[]interface{}{"Project", "Total Sales", "Average Price", "Units Sold", "Average Size", "Price per Sqm"}, rows)
}

func (w *ExcelWriter) writeBedroomsSheet(f *excelize.File, bedrooms []ledger.BedroomMetrics) error {
	rows := make([][]interface{}, 0, len(bedrooms))
	for _, b := range bedrooms {
		var pricePerSqm interface{}
		if b.PricePerSqm != nil {
			pricePerSqm = *b.PricePerSqm
		}
		rows = append(rows, []interface{}{
			b.Bedrooms, b.TotalSales, b.AveragePrice, b.UnitsSold, b.AverageSize, pricePerSqm,
		})
	}
	return w.writeSheet(f, SheetBedrooms,
		[]interface{}{"Bedrooms", "Total Sales", "Average Price", "Units Sold", "Average Size", "Price per Sqm"}, rows)
}

func (w *ExcelWriter) writeMapSheet(f *excelize.File, points []ledger.MapPoint) error {
	rows := make([][]interface{}, 0, len(points))
	for _, p := range points {
		rows = append(rows, []interface{}{
			p.Project, p.Latitude, p.Longitude, p.TotalSales, p.UnitsSold, p.MarkerSize, p.Reference,
		})
	}
	return w.writeSheet(f, SheetMap,
		[]interface{}{"Project", "Latitude", "Longitude", "Total Sales", "Units Sold", "Marker Size", "Reference"}, rows)
}
