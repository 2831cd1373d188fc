package services

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesdash/internal/config"
	"salesdash/internal/ledger"
)

const ledgerHeader = "Unit ID,Project,Contract Date,Contract Amount,Bedrooms,Covered Area,Covered Veranda,Total Covered,Latitude,Longitude\n"

const ledgerRows = ledgerHeader +
	"A-1,Seaview,15/01/2024,\"200,000\",2,80,10,90,34.68,33.04\n" +
	"A-2,Seaview,20/01/2024,100000,1,50,5,55,34.68,33.04\n" +
	"A-3,Seaview,10/02/2024,150000,2,80,10,90,34.69,33.05\n" +
	"B-1,Hillside,05/03/2024,300000,studio,110,0,110,,\n"

func testService(t *testing.T, csv string, mutate func(*config.LedgerConfig)) *DashboardService {
	t.Helper()

	path := filepath.Join(t.TempDir(), "sales.csv")
	require.NoError(t, os.WriteFile(path, []byte(csv), 0644))

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	store := ledger.NewStore(ledger.NewLoader(logger))

	cfg := config.LedgerConfig{
		Path:        path,
		MarkerScale: 100,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	return NewDashboardService(store, cfg, nil, logger)
}

func ptr[T any](v T) *T { return &v }

func TestDashboardService_Options(t *testing.T) {
	svc := testService(t, ledgerRows, nil)

	res, err := svc.Options(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Hillside", "Seaview"}, res.Projects)
	assert.Equal(t, []string{"1", "2", "studio"}, res.Bedrooms)
	assert.Equal(t, 4, res.TotalUnits)
	assert.Equal(t, 100000.0, res.PriceMin)
	assert.Equal(t, 300000.0, res.PriceMax)
	require.NotNil(t, res.DateMin)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), *res.DateMin)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), *res.DateMax)
}

func TestDashboardService_Options_SkipsBlankBedrooms(t *testing.T) {
	rows := ledgerHeader +
		"A-1,Seaview,15/01/2024,200000,2,80,10,90,,\n" +
		"A-2,Seaview,20/01/2024,100000,,50,5,55,,\n"
	svc := testService(t, rows, nil)

	res, err := svc.Options(context.Background())
	require.NoError(t, err)

	// A row without a bedroom value must not produce a blank choice.
	assert.Equal(t, []string{"2"}, res.Bedrooms)
	assert.Equal(t, 2, res.TotalUnits)
}

func TestDashboardService_Timeline(t *testing.T) {
	svc := testService(t, ledgerRows, nil)

	res, err := svc.Timeline(context.Background(), ledger.FilterSpec{})
	require.NoError(t, err)

	require.Len(t, res.Buckets, 3)
	assert.Equal(t, "2024-01", res.Buckets[0].YearMonth)
	assert.Equal(t, 300000.0, res.Buckets[0].TotalSales)
	assert.Equal(t, 2, res.Buckets[0].UnitsSold)

	assert.Equal(t, 4, res.Meta.Count)
	assert.False(t, res.Meta.Filtered)
	assert.False(t, res.Meta.Empty)
	assert.NotEmpty(t, res.Meta.Version)
}

func TestDashboardService_Timeline_Filtered(t *testing.T) {
	svc := testService(t, ledgerRows, nil)

	spec := ledger.FilterSpec{Project: ptr("Seaview")}
	res, err := svc.Timeline(context.Background(), spec)
	require.NoError(t, err)

	require.Len(t, res.Buckets, 2)
	assert.Equal(t, 3, res.Meta.Count)
	assert.True(t, res.Meta.Filtered)
}

func TestDashboardService_Timeline_EmptyFilteredView(t *testing.T) {
	svc := testService(t, ledgerRows, nil)

	spec := ledger.FilterSpec{Project: ptr("Nowhere")}
	res, err := svc.Timeline(context.Background(), spec)
	require.NoError(t, err)

	assert.Empty(t, res.Buckets)
	assert.True(t, res.Meta.Filtered)
	assert.True(t, res.Meta.Empty)
	assert.Zero(t, res.Meta.Count)
}

func TestDashboardService_Projects(t *testing.T) {
	svc := testService(t, ledgerRows, nil)

	res, err := svc.Projects(context.Background(), ledger.FilterSpec{})
	require.NoError(t, err)

	require.Len(t, res.Projects, 2)
	// Ordered by total sales descending.
	assert.Equal(t, "Seaview", res.Projects[0].Project)
	assert.Equal(t, 450000.0, res.Projects[0].TotalSales)
	assert.Equal(t, "Hillside", res.Projects[1].Project)
}

func TestDashboardService_Bedrooms(t *testing.T) {
	svc := testService(t, ledgerRows, nil)

	res, err := svc.Bedrooms(context.Background(), ledger.FilterSpec{})
	require.NoError(t, err)

	// The studio row does not parse as a number and is excluded.
	require.Len(t, res.Bedrooms, 2)
	assert.Equal(t, 1.0, res.Bedrooms[0].Bedrooms)
	assert.Equal(t, 2.0, res.Bedrooms[1].Bedrooms)
	assert.Equal(t, 2, res.Bedrooms[1].UnitsSold)

	// Meta still counts every record in the view.
	assert.Equal(t, 4, res.Meta.Count)
}

func TestDashboardService_Map(t *testing.T) {
	t.Run("without reference", func(t *testing.T) {
		svc := testService(t, ledgerRows, nil)

		res, err := svc.Map(context.Background(), ledger.FilterSpec{})
		require.NoError(t, err)

		// Hillside has no coordinates and is excluded.
		require.Len(t, res.Points, 1)
		assert.Equal(t, "Seaview", res.Points[0].Project)
		assert.Equal(t, 3, res.Points[0].UnitsSold)
		assert.False(t, res.Points[0].Reference)
	})

	t.Run("with reference point", func(t *testing.T) {
		svc := testService(t, ledgerRows, func(cfg *config.LedgerConfig) {
			cfg.Reference = config.ReferenceConfig{
				Enabled:    true,
				Label:      "Subject Plot",
				Latitude:   34.707233,
				Longitude:  33.053359,
				MarkerSize: 10,
			}
		})

		res, err := svc.Map(context.Background(), ledger.FilterSpec{})
		require.NoError(t, err)

		require.Len(t, res.Points, 2)
		last := res.Points[len(res.Points)-1]
		assert.True(t, last.Reference)
		assert.Equal(t, "Subject Plot", last.Project)
		assert.Equal(t, 10.0, last.MarkerSize)
		assert.Zero(t, last.TotalSales)
	})
}

func TestDashboardService_LoadFailure(t *testing.T) {
	svc := testService(t, ledgerRows, func(cfg *config.LedgerConfig) {
		cfg.Path = filepath.Join(t.TempDir(), "missing.csv")
	})

	_, err := svc.Timeline(context.Background(), ledger.FilterSpec{})
	require.Error(t, err)

	_, err = svc.Options(context.Background())
	require.Error(t, err)
}
