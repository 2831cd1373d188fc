package services

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"salesdash/internal/config"
	"salesdash/internal/infrastructure"
	"salesdash/internal/ledger"
)

// Meta describes the view a rollup was computed from. Empty and Filtered
// together let the frontend distinguish "no data loaded" from "filters
// matched nothing".
type Meta struct {
	Count    int       `json:"count"`
	Filtered bool      `json:"filtered"`
	Empty    bool      `json:"empty"`
	Version  string    `json:"version"`
	LoadedAt time.Time `json:"loaded_at"`
}

// OptionsResult lists the selectable filter values derived from the full
// dataset, never from a filtered view.
type OptionsResult struct {
	Projects   []string   `json:"projects"`
	Bedrooms   []string   `json:"bedrooms"`
	DateMin    *time.Time `json:"date_min,omitempty"`
	DateMax    *time.Time `json:"date_max,omitempty"`
	PriceMin   float64    `json:"price_min"`
	PriceMax   float64    `json:"price_max"`
	TotalUnits int        `json:"total_units"`
}

// TimelineResult is the monthly sales rollup with view metadata.
type TimelineResult struct {
	Buckets []ledger.MonthlyBucket `json:"buckets"`
	Meta    Meta                   `json:"meta"`
}

// ProjectsResult is the per-project rollup with view metadata.
type ProjectsResult struct {
	Projects []ledger.ProjectMetrics `json:"projects"`
	Meta     Meta                    `json:"meta"`
}

// BedroomsResult is the per-bedroom-count rollup with view metadata.
type BedroomsResult struct {
	Bedrooms []ledger.BedroomMetrics `json:"bedrooms"`
	Meta     Meta                    `json:"meta"`
}

// MapResult is the geographic concentration rollup with view metadata.
type MapResult struct {
	Points []ledger.MapPoint `json:"points"`
	Meta   Meta              `json:"meta"`
}

// DashboardService computes dashboard rollups over the cached sales
// ledger. All methods are safe for concurrent use; the underlying
// dataset snapshot is immutable.
type DashboardService struct {
	store   *ledger.Store
	cfg     config.LedgerConfig
	metrics *infrastructure.BusinessMetrics
	logger  *slog.Logger
}

// NewDashboardService creates a dashboard service backed by the given store.
func NewDashboardService(store *ledger.Store, cfg config.LedgerConfig, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardService{
		store:   store,
		cfg:     cfg,
		metrics: metrics,
		logger:  logger.With(slog.String("component", "dashboard_service")),
	}
}

// view loads the dataset and applies the filter specification.
func (s *DashboardService) view(ctx context.Context, spec ledger.FilterSpec) (ledger.View, *ledger.Dataset, error) {
	_, hit := s.store.Cached(s.cfg.Path)

	start := time.Now()
	ds, err := s.store.Load(ctx, s.cfg.Path)
	if !hit {
		infrastructure.RecordLedgerLoad(ctx, s.metrics, s.cfg.Path, datasetLen(ds), time.Since(start), err)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "ledger load failed",
			slog.String("path", s.cfg.Path),
			slog.String("error", err.Error()))
		return ledger.View{}, nil, err
	}

	if s.metrics != nil {
		if hit {
			s.metrics.LedgerCacheHits.Add(ctx, 1)
		} else {
			s.metrics.LedgerCacheMisses.Add(ctx, 1)
		}
	}

	v := ledger.Apply(ds, spec)
	if v.Empty() && v.Filtered {
		s.logger.DebugContext(ctx, "filters matched no records",
			slog.Int("dataset_records", len(ds.Records)))
	}
	return v, ds, nil
}

func datasetLen(ds *ledger.Dataset) int {
	if ds == nil {
		return 0
	}
	return len(ds.Records)
}

func meta(v ledger.View, ds *ledger.Dataset) Meta {
	return Meta{
		Count:    len(v.Records),
		Filtered: v.Filtered,
		Empty:    v.Empty(),
		Version:  ds.Version,
		LoadedAt: ds.LoadedAt,
	}
}

// Options returns the selectable filter values. Filters never constrain
// the option lists; they always reflect the full ledger.
func (s *DashboardService) Options(ctx context.Context) (*OptionsResult, error) {
	ds, err := s.store.Load(ctx, s.cfg.Path)
	if err != nil {
		return nil, err
	}

	projectSet := make(map[string]struct{})
	bedroomSet := make(map[string]struct{})
	res := &OptionsResult{TotalUnits: len(ds.Records)}

	for i, r := range ds.Records {
		projectSet[r.Project] = struct{}{}
		if r.Bedrooms != "" {
			bedroomSet[r.Bedrooms] = struct{}{}
		}

		if i == 0 {
			d := r.ContractDate
			res.DateMin, res.DateMax = &d, &d
			res.PriceMin, res.PriceMax = r.ContractAmount, r.ContractAmount
			continue
		}
		if r.ContractDate.Before(*res.DateMin) {
			d := r.ContractDate
			res.DateMin = &d
		}
		if r.ContractDate.After(*res.DateMax) {
			d := r.ContractDate
			res.DateMax = &d
		}
		if r.ContractAmount < res.PriceMin {
			res.PriceMin = r.ContractAmount
		}
		if r.ContractAmount > res.PriceMax {
			res.PriceMax = r.ContractAmount
		}
	}

	res.Projects = sortedKeys(projectSet)
	res.Bedrooms = sortedKeys(bedroomSet)
	return res, nil
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Timeline computes the monthly sales rollup for the filtered view.
func (s *DashboardService) Timeline(ctx context.Context, spec ledger.FilterSpec) (*TimelineResult, error) {
	v, ds, err := s.view(ctx, spec)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	buckets := ledger.MonthlyRollup(v)
	infrastructure.RecordRollup(ctx, s.metrics, "timeline", time.Since(start))

	return &TimelineResult{Buckets: buckets, Meta: meta(v, ds)}, nil
}

// Projects computes the per-project rollup for the filtered view.
func (s *DashboardService) Projects(ctx context.Context, spec ledger.FilterSpec) (*ProjectsResult, error) {
	v, ds, err := s.view(ctx, spec)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	rows := ledger.ProjectRollup(v)
	infrastructure.RecordRollup(ctx, s.metrics, "projects", time.Since(start))

	return &ProjectsResult{Projects: rows, Meta: meta(v, ds)}, nil
}

// Bedrooms computes the per-bedroom-count rollup for the filtered view.
func (s *DashboardService) Bedrooms(ctx context.Context, spec ledger.FilterSpec) (*BedroomsResult, error) {
	v, ds, err := s.view(ctx, spec)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	rows := ledger.BedroomRollup(v)
	infrastructure.RecordRollup(ctx, s.metrics, "bedrooms", time.Since(start))

	return &BedroomsResult{Bedrooms: rows, Meta: meta(v, ds)}, nil
}

// Map computes the geographic concentration rollup for the filtered
// view, including the configured reference point when enabled.
func (s *DashboardService) Map(ctx context.Context, spec ledger.FilterSpec) (*MapResult, error) {
	v, ds, err := s.view(ctx, spec)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	points := ledger.GeoRollup(v, s.referencePoint(), s.cfg.MarkerScale)
	infrastructure.RecordRollup(ctx, s.metrics, "map", time.Since(start))

	return &MapResult{Points: points, Meta: meta(v, ds)}, nil
}

// referencePoint converts the reference configuration into a rollup
// input, or nil when disabled.
func (s *DashboardService) referencePoint() *ledger.ReferencePoint {
	ref := s.cfg.Reference
	if !ref.Enabled {
		return nil
	}
	return &ledger.ReferencePoint{
		Label:      ref.Label,
		Latitude:   ref.Latitude,
		Longitude:  ref.Longitude,
		MarkerSize: ref.MarkerSize,
	}
}
