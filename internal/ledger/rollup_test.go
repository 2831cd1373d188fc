package ledger

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func viewOf(records ...SaleRecord) View {
	for i := range records {
		if records[i].YearMonth == "" && !records[i].ContractDate.IsZero() {
			records[i].YearMonth = YearMonthKey(records[i].ContractDate)
		}
	}
	return View{Records: records, Filtered: true}
}

func TestMonthlyRollup(t *testing.T) {
	view := viewOf(
		SaleRecord{UnitID: "1", Project: "A", ContractDate: date(2024, 1, 5), ContractAmount: 100000},
		SaleRecord{UnitID: "2", Project: "A", ContractDate: date(2024, 1, 28), ContractAmount: 200000},
		SaleRecord{UnitID: "3", Project: "A", ContractDate: date(2024, 2, 14), ContractAmount: 150000},
	)

	buckets := MonthlyRollup(view)

	require.Len(t, buckets, 2)
	assert.Equal(t, MonthlyBucket{YearMonth: "2024-01", TotalSales: 300000, UnitsSold: 2}, buckets[0])
	assert.Equal(t, MonthlyBucket{YearMonth: "2024-02", TotalSales: 150000, UnitsSold: 1}, buckets[1])
}

func TestMonthlyRollup_ConservesCounts(t *testing.T) {
	view := viewOf(testDataset().Records...)

	buckets := MonthlyRollup(view)

	total := 0
	for _, b := range buckets {
		total += b.UnitsSold
	}
	assert.Equal(t, len(view.Records), total)

	// Buckets come back in chronological order.
	for i := 1; i < len(buckets); i++ {
		assert.Less(t, buckets[i-1].YearMonth, buckets[i].YearMonth)
	}
}

func TestProjectRollup(t *testing.T) {
	view := viewOf(
		SaleRecord{Project: "Seaview", ContractAmount: 100000, TotalCovered: 80},
		SaleRecord{Project: "Seaview", ContractAmount: 200000, TotalCovered: 120},
		SaleRecord{Project: "Hillside", ContractAmount: 500000, TotalCovered: 200},
	)

	rows := ProjectRollup(view)

	require.Len(t, rows, 2)
	// Ordered by total sales descending.
	assert.Equal(t, "Hillside", rows[0].Project)
	assert.Equal(t, "Seaview", rows[1].Project)

	seaview := rows[1]
	assert.Equal(t, 300000.0, seaview.TotalSales)
	assert.Equal(t, 150000.0, seaview.AveragePrice)
	assert.Equal(t, 2, seaview.UnitsSold)
	assert.Equal(t, 100.0, seaview.AverageSize)
	require.NotNil(t, seaview.PricePerSqm)
	assert.InDelta(t, 1500.0, *seaview.PricePerSqm, 1e-9)
}

func TestProjectRollup_ConservesSales(t *testing.T) {
	view := viewOf(testDataset().Records...)

	var viewTotal float64
	for _, r := range view.Records {
		viewTotal += r.ContractAmount
	}

	var rollupTotal float64
	for _, row := range ProjectRollup(view) {
		rollupTotal += row.TotalSales
	}
	assert.InDelta(t, viewTotal, rollupTotal, 1e-9)
}

func TestProjectRollup_ZeroSizeGuard(t *testing.T) {
	view := viewOf(
		SaleRecord{Project: "Offplan", ContractAmount: 90000, TotalCovered: 0},
	)

	rows := ProjectRollup(view)

	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].PricePerSqm)
}

func TestBedroomRollup_ExcludesNonNumeric(t *testing.T) {
	view := viewOf(
		SaleRecord{Project: "A", ContractDate: date(2024, 1, 1), ContractAmount: 100000, Bedrooms: "2", TotalCovered: 80},
		SaleRecord{Project: "A", ContractDate: date(2024, 1, 2), ContractAmount: 120000, Bedrooms: "2", TotalCovered: 90},
		SaleRecord{Project: "A", ContractDate: date(2024, 1, 3), ContractAmount: 70000, Bedrooms: "studio", TotalCovered: 40},
		SaleRecord{Project: "A", ContractDate: date(2024, 1, 4), ContractAmount: 150000, Bedrooms: "3", TotalCovered: 110},
	)

	rows := BedroomRollup(view)

	// "studio" is excluded here but still visible to the other rollups.
	require.Len(t, rows, 2)
	assert.Equal(t, 2.0, rows[0].Bedrooms)
	assert.Equal(t, 2, rows[0].UnitsSold)
	assert.Equal(t, 3.0, rows[1].Bedrooms)

	projects := ProjectRollup(view)
	require.Len(t, projects, 1)
	assert.Equal(t, 4, projects[0].UnitsSold)

	buckets := MonthlyRollup(view)
	require.Len(t, buckets, 1)
	assert.Equal(t, 4, buckets[0].UnitsSold)
}

func TestBedroomRollup_ExcludesNonFinite(t *testing.T) {
	// ParseFloat accepts these spellings; as group keys they would never
	// compare equal, so such rows stay out of the rollup like "studio".
	view := viewOf(
		SaleRecord{Project: "A", ContractDate: date(2024, 1, 1), ContractAmount: 100000, Bedrooms: "2", TotalCovered: 80},
		SaleRecord{Project: "A", ContractDate: date(2024, 1, 2), ContractAmount: 120000, Bedrooms: "NaN", TotalCovered: 90},
		SaleRecord{Project: "A", ContractDate: date(2024, 1, 3), ContractAmount: 70000, Bedrooms: "Inf", TotalCovered: 40},
		SaleRecord{Project: "A", ContractDate: date(2024, 1, 4), ContractAmount: 90000, Bedrooms: "-Inf", TotalCovered: 60},
	)

	rows := BedroomRollup(view)

	require.Len(t, rows, 1)
	assert.Equal(t, 2.0, rows[0].Bedrooms)
	assert.Equal(t, 1, rows[0].UnitsSold)
}

func TestGeoRollup(t *testing.T) {
	view := viewOf(
		SaleRecord{Project: "Seaview", ContractAmount: 250000, Latitude: ptr(34.60), Longitude: ptr(33.00)},
		SaleRecord{Project: "Seaview", ContractAmount: 150000, Latitude: ptr(34.70), Longitude: ptr(33.10)},
		SaleRecord{Project: "Inland", ContractAmount: 999999}, // no coordinates
	)
	ref := &ReferencePoint{Label: "Subject Plot", Latitude: 34.707233, Longitude: 33.053359, MarkerSize: 10}

	points := GeoRollup(view, ref, 100)

	require.Len(t, points, 2)

	seaview := points[0]
	assert.Equal(t, "Seaview", seaview.Project)
	assert.InDelta(t, 34.65, seaview.Latitude, 1e-9)
	assert.InDelta(t, 33.05, seaview.Longitude, 1e-9)
	assert.Equal(t, 400000.0, seaview.TotalSales)
	assert.Equal(t, 2, seaview.UnitsSold)
	assert.InDelta(t, math.Sqrt(400000)/100, seaview.MarkerSize, 1e-9)
	assert.False(t, seaview.Reference)

	// The configured reference point rides along with zero sales and a
	// fixed marker size.
	refPoint := points[1]
	assert.True(t, refPoint.Reference)
	assert.Equal(t, "Subject Plot", refPoint.Project)
	assert.Equal(t, 0.0, refPoint.TotalSales)
	assert.Equal(t, 10.0, refPoint.MarkerSize)
}

func TestGeoRollup_NoReference(t *testing.T) {
	view := viewOf(
		SaleRecord{Project: "Seaview", ContractAmount: 100, Latitude: ptr(1.0), Longitude: ptr(2.0)},
	)

	points := GeoRollup(view, nil, 0)

	require.Len(t, points, 1)
	assert.InDelta(t, math.Sqrt(100)/DefaultMarkerScale, points[0].MarkerSize, 1e-9)
}

func TestRollups_EmptyView(t *testing.T) {
	empty := View{Records: []SaleRecord{}, Filtered: true}

	assert.Empty(t, MonthlyRollup(empty))
	assert.Empty(t, ProjectRollup(empty))
	assert.Empty(t, BedroomRollup(empty))
	assert.Empty(t, GeoRollup(empty, nil, 0))

	// Non-nil so JSON encodes [] rather than null.
	assert.NotNil(t, MonthlyRollup(empty))
	assert.NotNil(t, ProjectRollup(empty))
	assert.NotNil(t, BedroomRollup(empty))
	assert.NotNil(t, GeoRollup(empty, nil, 0))
}
