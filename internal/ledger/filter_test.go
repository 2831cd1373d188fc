package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T { return &v }

func testDataset() *Dataset {
	records := []SaleRecord{
		{UnitID: "A-1", Project: "Seaview", ContractDate: date(2024, 1, 10), ContractAmount: 100000, Bedrooms: "1"},
		{UnitID: "A-2", Project: "Seaview", ContractDate: date(2024, 1, 20), ContractAmount: 200000, Bedrooms: "2"},
		{UnitID: "A-3", Project: "Seaview", ContractDate: date(2024, 2, 5), ContractAmount: 150000, Bedrooms: "2"},
		{UnitID: "B-1", Project: "Hillside", ContractDate: date(2024, 3, 1), ContractAmount: 300000, Bedrooms: "studio"},
	}
	for i := range records {
		records[i].YearMonth = YearMonthKey(records[i].ContractDate)
	}
	return &Dataset{Records: records, Version: "test"}
}

func TestApply(t *testing.T) {
	ds := testDataset()

	tests := []struct {
		name         string
		spec         FilterSpec
		wantUnits    []string
		wantFiltered bool
	}{
		{
			name:         "no predicates returns everything",
			spec:         FilterSpec{},
			wantUnits:    []string{"A-1", "A-2", "A-3", "B-1"},
			wantFiltered: false,
		},
		{
			name:         "date bounds are inclusive",
			spec:         FilterSpec{Start: ptr(date(2024, 1, 10)), End: ptr(date(2024, 2, 5))},
			wantUnits:    []string{"A-1", "A-2", "A-3"},
			wantFiltered: true,
		},
		{
			name:         "price bounds are inclusive",
			spec:         FilterSpec{PriceMin: ptr(150000.0), PriceMax: ptr(300000.0)},
			wantUnits:    []string{"A-2", "A-3", "B-1"},
			wantFiltered: true,
		},
		{
			name:         "project equality",
			spec:         FilterSpec{Project: ptr("Hillside")},
			wantUnits:    []string{"B-1"},
			wantFiltered: true,
		},
		{
			name:         "bedrooms equality matches raw value",
			spec:         FilterSpec{Bedrooms: ptr("studio")},
			wantUnits:    []string{"B-1"},
			wantFiltered: true,
		},
		{
			name:         "predicates are conjoined",
			spec:         FilterSpec{Project: ptr("Seaview"), Bedrooms: ptr("2"), PriceMax: ptr(160000.0)},
			wantUnits:    []string{"A-3"},
			wantFiltered: true,
		},
		{
			name:         "unknown project yields a valid empty view",
			spec:         FilterSpec{Project: ptr("Marina")},
			wantUnits:    []string{},
			wantFiltered: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := Apply(ds, tt.spec)
			assert.Equal(t, tt.wantFiltered, view.Filtered)
			assert.Equal(t, len(tt.wantUnits) == 0, view.Empty())

			units := make([]string, 0, len(view.Records))
			for _, r := range view.Records {
				units = append(units, r.UnitID)
			}
			assert.Equal(t, tt.wantUnits, units)
		})
	}
}

func TestApply_EndBoundIncludesTimestampedDates(t *testing.T) {
	// A ledger cell like "5/1/2024 15:04" carries a time of day; the
	// inclusive end bound must still catch a sale on the end date itself.
	contractDate, err := parseDayFirstDate("5/1/2024 15:04")
	require.NoError(t, err)

	ds := &Dataset{Records: []SaleRecord{
		{UnitID: "A-1", Project: "Seaview", ContractDate: contractDate, ContractAmount: 100000},
	}}

	view := Apply(ds, FilterSpec{End: ptr(date(2024, 1, 5))})
	require.Len(t, view.Records, 1)
	assert.Equal(t, "A-1", view.Records[0].UnitID)
}

func TestApply_Idempotent(t *testing.T) {
	ds := testDataset()
	spec := FilterSpec{Project: ptr("Seaview"), PriceMin: ptr(150000.0)}

	once := Apply(ds, spec)
	twice := Apply(&Dataset{Records: once.Records}, spec)

	assert.Equal(t, once.Records, twice.Records)
}

func TestApply_CommutativeAcrossPredicates(t *testing.T) {
	ds := testDataset()
	dateSpec := FilterSpec{Start: ptr(date(2024, 1, 15)), End: ptr(date(2024, 3, 1))}
	priceSpec := FilterSpec{PriceMin: ptr(150000.0)}

	dateThenPrice := Apply(&Dataset{Records: Apply(ds, dateSpec).Records}, priceSpec)
	priceThenDate := Apply(&Dataset{Records: Apply(ds, priceSpec).Records}, dateSpec)

	assert.Equal(t, dateThenPrice.Records, priceThenDate.Records)
}

func TestApply_DoesNotMutateSource(t *testing.T) {
	ds := testDataset()
	before := make([]SaleRecord, len(ds.Records))
	copy(before, ds.Records)

	view := Apply(ds, FilterSpec{Project: ptr("Seaview")})
	require.NotEmpty(t, view.Records)
	view.Records[0].Project = "mutated"

	assert.Equal(t, before, ds.Records)
}

func TestFilterSpec_IsZero(t *testing.T) {
	assert.True(t, FilterSpec{}.IsZero())
	assert.False(t, FilterSpec{Project: ptr("Seaview")}.IsZero())
	assert.False(t, FilterSpec{PriceMax: ptr(0.0)}.IsZero())
}
