package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "salesdash/internal/errors"
	"salesdash/internal/ledger"
	"salesdash/internal/services"
)

// stubDashboardService captures the bound filter and returns canned rollups.
type stubDashboardService struct {
	lastSpec ledger.FilterSpec
	err      error
}

func (s *stubDashboardService) Options(ctx context.Context) (*services.OptionsResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &services.OptionsResult{
		Projects:   []string{"Hillside", "Seaview"},
		Bedrooms:   []string{"1", "2"},
		TotalUnits: 4,
	}, nil
}

func (s *stubDashboardService) Timeline(ctx context.Context, spec ledger.FilterSpec) (*services.TimelineResult, error) {
	s.lastSpec = spec
	if s.err != nil {
		return nil, s.err
	}
	return &services.TimelineResult{
		Buckets: []ledger.MonthlyBucket{{YearMonth: "2024-01", TotalSales: 300000, UnitsSold: 2}},
		Meta:    services.Meta{Count: 2, Filtered: !spec.IsZero()},
	}, nil
}

func (s *stubDashboardService) Projects(ctx context.Context, spec ledger.FilterSpec) (*services.ProjectsResult, error) {
	s.lastSpec = spec
	if s.err != nil {
		return nil, s.err
	}
	return &services.ProjectsResult{
		Projects: []ledger.ProjectMetrics{{Project: "Seaview", TotalSales: 450000, UnitsSold: 3}},
		Meta:     services.Meta{Count: 3, Filtered: !spec.IsZero()},
	}, nil
}

func (s *stubDashboardService) Bedrooms(ctx context.Context, spec ledger.FilterSpec) (*services.BedroomsResult, error) {
	s.lastSpec = spec
	if s.err != nil {
		return nil, s.err
	}
	return &services.BedroomsResult{
		Bedrooms: []ledger.BedroomMetrics{{Bedrooms: 2, TotalSales: 350000, UnitsSold: 2}},
		Meta:     services.Meta{Count: 2, Filtered: !spec.IsZero()},
	}, nil
}

func (s *stubDashboardService) Map(ctx context.Context, spec ledger.FilterSpec) (*services.MapResult, error) {
	s.lastSpec = spec
	if s.err != nil {
		return nil, s.err
	}
	return &services.MapResult{
		Points: []ledger.MapPoint{{Project: "Seaview", Latitude: 34.68, Longitude: 33.04, UnitsSold: 3}},
		Meta:   services.Meta{Count: 3, Filtered: !spec.IsZero()},
	}, nil
}

func newTestHandler(svc DashboardServiceInterface) *DashboardHandler {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return NewDashboardHandler(svc, logger, apierrors.NewErrorHandler(logger, false))
}

func doRequest(t *testing.T, h *DashboardHandler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestGetTimeline_Success(t *testing.T) {
	svc := &stubDashboardService{}
	rec := doRequest(t, newTestHandler(svc), "/timeline")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)

	assert.Equal(t, "success", body["status"])
	assert.Equal(t, float64(2), body["count"])
	assert.Equal(t, false, body["filtered"])
	assert.Equal(t, false, body["empty"])
	require.NotNil(t, body["data"])
}

func TestGetTimeline_FilterBinding(t *testing.T) {
	svc := &stubDashboardService{}
	rec := doRequest(t, newTestHandler(svc),
		"/timeline?start=2024-01-01&end=2024-06-30&price_min=100000&price_max=500000&project=Seaview&bedrooms=2")

	require.Equal(t, http.StatusOK, rec.Code)

	spec := svc.lastSpec
	require.NotNil(t, spec.Start)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), *spec.Start)
	require.NotNil(t, spec.End)
	assert.Equal(t, time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), *spec.End)
	require.NotNil(t, spec.PriceMin)
	assert.Equal(t, 100000.0, *spec.PriceMin)
	require.NotNil(t, spec.PriceMax)
	assert.Equal(t, 500000.0, *spec.PriceMax)
	require.NotNil(t, spec.Project)
	assert.Equal(t, "Seaview", *spec.Project)
	require.NotNil(t, spec.Bedrooms)
	assert.Equal(t, "2", *spec.Bedrooms)
}

func TestGetTimeline_NoParamsUnconstrained(t *testing.T) {
	svc := &stubDashboardService{}
	doRequest(t, newTestHandler(svc), "/timeline")

	assert.True(t, svc.lastSpec.IsZero())
}

func TestBindFilter_ValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		target string
	}{
		{"malformed start date", "/timeline?start=01-15-2024"},
		{"malformed end date", "/timeline?end=yesterday"},
		{"non-numeric price_min", "/timeline?price_min=cheap"},
		{"negative price_max", "/timeline?price_max=-5"},
		{"end before start", "/timeline?start=2024-06-01&end=2024-01-01"},
		{"price_max below price_min", "/timeline?price_min=500000&price_max=100000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubDashboardService{}
			rec := doRequest(t, newTestHandler(svc), tt.target)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			body := decodeBody(t, rec)
			assert.Equal(t, "/errors/validation", body["type"])
		})
	}
}

func TestGetProjects_ServiceError(t *testing.T) {
	svc := &stubDashboardService{err: apierrors.NewStorageError("read sales ledger", io.ErrUnexpectedEOF)}
	rec := doRequest(t, newTestHandler(svc), "/projects")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "/errors/ledger/storage", body["type"])
}

func TestGetOptions(t *testing.T) {
	svc := &stubDashboardService{}
	rec := doRequest(t, newTestHandler(svc), "/options")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, float64(4), body["count"])
}

func TestGetBedroomsAndMap(t *testing.T) {
	svc := &stubDashboardService{}
	h := newTestHandler(svc)

	rec := doRequest(t, h, "/bedrooms")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", decodeBody(t, rec)["status"])

	rec = doRequest(t, h, "/map?project=Seaview")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["filtered"])
}
