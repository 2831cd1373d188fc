package ledger

import "time"

// FilterSpec is a conjunction of predicates over the dataset. Nil fields
// are unconstrained; there is no "All" sentinel value. Bounds are
// inclusive on both ends.
type FilterSpec struct {
	Start    *time.Time `json:"start,omitempty"`
	End      *time.Time `json:"end,omitempty"`
	PriceMin *float64   `json:"price_min,omitempty"`
	PriceMax *float64   `json:"price_max,omitempty"`
	Project  *string    `json:"project,omitempty"`
	Bedrooms *string    `json:"bedrooms,omitempty"`
}

// IsZero reports whether no predicate is set.
func (f FilterSpec) IsZero() bool {
	return f.Start == nil && f.End == nil &&
		f.PriceMin == nil && f.PriceMax == nil &&
		f.Project == nil && f.Bedrooms == nil
}

// Matches reports whether the record satisfies every set predicate.
func (f FilterSpec) Matches(r SaleRecord) bool {
	if f.Start != nil && r.ContractDate.Before(*f.Start) {
		return false
	}
	if f.End != nil && r.ContractDate.After(*f.End) {
		return false
	}
	if f.PriceMin != nil && r.ContractAmount < *f.PriceMin {
		return false
	}
	if f.PriceMax != nil && r.ContractAmount > *f.PriceMax {
		return false
	}
	if f.Project != nil && r.Project != *f.Project {
		return false
	}
	if f.Bedrooms != nil && r.Bedrooms != *f.Bedrooms {
		return false
	}
	return true
}

// View is a filtered, non-owning projection of a dataset. Filtered
// records whether any predicate was applied, so an empty filtered view is
// distinguishable from an unfiltered empty dataset and the frontend can
// show an "adjust your filters" notice instead of blank charts.
type View struct {
	Records  []SaleRecord `json:"records"`
	Filtered bool         `json:"filtered"`
}

// Empty reports whether the view holds no records. An empty view is a
// valid, expected outcome, not an error.
func (v View) Empty() bool {
	return len(v.Records) == 0
}

// Apply evaluates the filter specification against the dataset and
// returns the matching view. The dataset is never mutated; the view holds
// a fresh slice of the matching records.
func Apply(ds *Dataset, spec FilterSpec) View {
	view := View{
		Records:  make([]SaleRecord, 0, len(ds.Records)),
		Filtered: !spec.IsZero(),
	}
	for _, r := range ds.Records {
		if spec.Matches(r) {
			view.Records = append(view.Records, r)
		}
	}
	return view
}
