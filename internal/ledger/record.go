package ledger

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Canonical ledger column names. The loader matches headers
// case-insensitively after trimming whitespace.
const (
	ColUnitID         = "Unit ID"
	ColProject        = "Project"
	ColContractDate   = "Contract Date"
	ColContractAmount = "Contract Amount"
	ColBedrooms       = "Bedrooms"
	ColCoveredArea    = "Covered Area"
	ColCoveredVeranda = "Covered Veranda"
	ColTotalCovered   = "Total Covered"
	ColLatitude       = "Latitude"
	ColLongitude      = "Longitude"
)

// RequiredColumns lists the columns a ledger file must contain.
// Latitude and Longitude are optional; records without them are simply
// excluded from the map rollup.
var RequiredColumns = []string{
	ColUnitID,
	ColProject,
	ColContractDate,
	ColContractAmount,
	ColBedrooms,
	ColCoveredArea,
	ColCoveredVeranda,
	ColTotalCovered,
}

// SaleRecord is one unit transaction from the sales ledger.
// Area fields are zero-filled at load time; coordinates are nil when the
// source row has no location. YearMonth is derived once from ContractDate
// and formatted so lexicographic order matches calendar order.
type SaleRecord struct {
	UnitID         string    `json:"unit_id"`
	Project        string    `json:"project"`
	ContractDate   time.Time `json:"contract_date"`
	ContractAmount float64   `json:"contract_amount"`
	Bedrooms       string    `json:"bedrooms"`
	CoveredArea    float64   `json:"covered_area"`
	CoveredVeranda float64   `json:"covered_veranda"`
	TotalCovered   float64   `json:"total_covered"`
	Latitude       *float64  `json:"latitude,omitempty"`
	Longitude      *float64  `json:"longitude,omitempty"`
	YearMonth      string    `json:"year_month"`
}

// BedroomCount parses the raw Bedrooms value as a finite number.
// Non-numeric values such as "studio" report ok=false; those records are
// excluded from the bedroom rollup but participate everywhere else.
// ParseFloat accepts "NaN" and "Inf" spellings, which would make broken
// group keys, so non-finite values report ok=false too.
func (r SaleRecord) BedroomCount() (float64, bool) {
	n, err := strconv.ParseFloat(strings.TrimSpace(r.Bedrooms), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// HasLocation reports whether both coordinates are present.
func (r SaleRecord) HasLocation() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// Dataset is an immutable snapshot of a cleaned ledger file.
// Version identifies the snapshot; nothing mutates Records after load, so
// concurrent readers may share a Dataset without locking.
type Dataset struct {
	Records  []SaleRecord `json:"records"`
	Source   string       `json:"source"`
	Version  string       `json:"version"`
	LoadedAt time.Time    `json:"loaded_at"`
}

// YearMonthKey formats a contract date as its monthly bucket key.
// Two dates in the same calendar month always share a key regardless of day.
func YearMonthKey(t time.Time) string {
	return t.Format("2006-01")
}
