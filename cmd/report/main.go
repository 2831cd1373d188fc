package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"salesdash/internal/config"
	"salesdash/internal/exporter"
	"salesdash/internal/ledger"
)

func main() {
	ledgerPath := flag.String("ledger", "", "path to the sales ledger (defaults to configured ledger path)")
	outputDir := flag.String("out", "reports", "output directory for the report files")
	format := flag.String("format", "csv", "output format: csv or xlsx")
	start := flag.String("start", "", "inclusive start date filter (YYYY-MM-DD)")
	end := flag.String("end", "", "inclusive end date filter (YYYY-MM-DD)")
	project := flag.String("project", "", "filter to a single project")
	bedrooms := flag.String("bedrooms", "", "filter to a raw bedroom value")
	priceMin := flag.Float64("price-min", -1, "inclusive minimum contract amount")
	priceMax := flag.Float64("price-max", -1, "inclusive maximum contract amount")
	flag.Parse()

	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	path := *ledgerPath
	if path == "" {
		path = cfg.Ledger.Path
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		slog.Error("Sales ledger not found", "path", path)
		os.Exit(1)
	}

	spec, err := buildFilter(*start, *end, *project, *bedrooms, *priceMin, *priceMax)
	if err != nil {
		slog.Error("Invalid filter", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	logger := slog.Default()

	slog.Info("Loading sales ledger", "path", path)
	ds, err := ledger.NewLoader(logger).Load(ctx, path)
	if err != nil {
		slog.Error("Failed to load sales ledger", "error", err)
		os.Exit(1)
	}
	slog.Info("Loaded sales ledger", "records", len(ds.Records))

	view := ledger.Apply(ds, spec)
	if view.Empty() && view.Filtered {
		slog.Warn("Filters matched no records; report will be empty")
	}

	var ref *ledger.ReferencePoint
	if cfg.Ledger.Reference.Enabled {
		ref = &ledger.ReferencePoint{
			Label:      cfg.Ledger.Reference.Label,
			Latitude:   cfg.Ledger.Reference.Latitude,
			Longitude:  cfg.Ledger.Reference.Longitude,
			MarkerSize: cfg.Ledger.Reference.MarkerSize,
		}
	}

	report := exporter.Report{
		Timeline: ledger.MonthlyRollup(view),
		Projects: ledger.ProjectRollup(view),
		Bedrooms: ledger.BedroomRollup(view),
		Map:      ledger.GeoRollup(view, ref, cfg.Ledger.MarkerScale),
	}

	switch *format {
	case "csv":
		err = writeCSVReport(logger, *outputDir, report)
	case "xlsx":
		err = exporter.NewExcelWriter(logger).WriteReport(
			filepath.Join(*outputDir, "sales_report.xlsx"), report)
	default:
		err = fmt.Errorf("unsupported format %q (want csv or xlsx)", *format)
	}
	if err != nil {
		slog.Error("Failed to write report", "error", err)
		os.Exit(1)
	}

	slog.Info("Report written",
		"out", *outputDir,
		"format", *format,
		"records", len(view.Records))
}

// buildFilter converts the CLI flags into a filter specification.
func buildFilter(start, end, project, bedrooms string, priceMin, priceMax float64) (ledger.FilterSpec, error) {
	var spec ledger.FilterSpec

	if start != "" {
		t, err := time.Parse("2006-01-02", start)
		if err != nil {
			return spec, fmt.Errorf("invalid -start date %q: %w", start, err)
		}
		spec.Start = &t
	}
	if end != "" {
		t, err := time.Parse("2006-01-02", end)
		if err != nil {
			return spec, fmt.Errorf("invalid -end date %q: %w", end, err)
		}
		spec.End = &t
	}
	if spec.Start != nil && spec.End != nil && spec.End.Before(*spec.Start) {
		return spec, fmt.Errorf("-end must not precede -start")
	}
	if project != "" {
		spec.Project = &project
	}
	if bedrooms != "" {
		spec.Bedrooms = &bedrooms
	}
	if priceMin >= 0 {
		spec.PriceMin = &priceMin
	}
	if priceMax >= 0 {
		spec.PriceMax = &priceMax
	}
	if spec.PriceMin != nil && spec.PriceMax != nil && *spec.PriceMax < *spec.PriceMin {
		return spec, fmt.Errorf("-price-max must not be below -price-min")
	}
	return spec, nil
}

// writeCSVReport writes one CSV file per rollup.
func writeCSVReport(logger *slog.Logger, dir string, report exporter.Report) error {
	w := exporter.NewCSVWriter(logger)

	if err := w.WriteTimeline(filepath.Join(dir, "timeline.csv"), report.Timeline); err != nil {
		return err
	}
	if err := w.WriteProjects(filepath.Join(dir, "projects.csv"), report.Projects); err != nil {
		return err
	}
	if err := w.WriteBedrooms(filepath.Join(dir, "bedrooms.csv"), report.Bedrooms); err != nil {
		return err
	}
	return w.WriteMap(filepath.Join(dir, "map.csv"), report.Map)
}
