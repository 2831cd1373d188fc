package ledger

import (
	"math"
	"sort"
)

// DefaultMarkerScale divides sqrt(total sales) into a map marker size, so
// marker area grows roughly linearly with sales volume instead of
// exploding with raw euros used as radius.
const DefaultMarkerScale = 100.0

// MonthlyBucket is one point on the sales timeline.
type MonthlyBucket struct {
	YearMonth  string  `json:"year_month"`
	TotalSales float64 `json:"total_sales"`
	UnitsSold  int     `json:"units_sold"`
}

// ProjectMetrics is one row of the per-project rollup.
type ProjectMetrics struct {
	Project      string   `json:"project"`
	TotalSales   float64  `json:"total_sales"`
	AveragePrice float64  `json:"average_price"`
	UnitsSold    int      `json:"units_sold"`
	AverageSize  float64  `json:"average_size"`
	PricePerSqm  *float64 `json:"price_per_sqm"`
}

// BedroomMetrics is one row of the per-bedroom-count rollup.
type BedroomMetrics struct {
	Bedrooms     float64  `json:"bedrooms"`
	TotalSales   float64  `json:"total_sales"`
	AveragePrice float64  `json:"average_price"`
	UnitsSold    int      `json:"units_sold"`
	AverageSize  float64  `json:"average_size"`
	PricePerSqm  *float64 `json:"price_per_sqm"`
}

// ReferencePoint is a fixed spatial-context marker unioned into the map
// rollup. Its coordinates and label are deployment configuration, not
// ledger data; it carries no sales.
type ReferencePoint struct {
	Label      string  `json:"label"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	MarkerSize float64 `json:"marker_size"`
}

// MapPoint is one marker on the sales concentration map.
type MapPoint struct {
	Project    string  `json:"project"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	TotalSales float64 `json:"total_sales"`
	UnitsSold  int     `json:"units_sold"`
	MarkerSize float64 `json:"marker_size"`
	Reference  bool    `json:"reference,omitempty"`
}

// MonthlyRollup groups the view by year-month bucket and sums sales and
// unit counts. Buckets are ordered ascending by key, which is
// chronological because the key format sorts lexicographically in
// calendar order.
func MonthlyRollup(v View) []MonthlyBucket {
	byMonth := make(map[string]*MonthlyBucket)
	for _, r := range v.Records {
		b, ok := byMonth[r.YearMonth]
		if !ok {
			b = &MonthlyBucket{YearMonth: r.YearMonth}
			byMonth[r.YearMonth] = b
		}
		b.TotalSales += r.ContractAmount
		b.UnitsSold++
	}

	buckets := make([]MonthlyBucket, 0, len(byMonth))
	for _, b := range byMonth {
		buckets = append(buckets, *b)
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].YearMonth < buckets[j].YearMonth
	})
	return buckets
}

// groupAccumulator collects the shared sum/mean/count metrics.
type groupAccumulator struct {
	totalSales float64
	totalSize  float64
	units      int
}

func (g *groupAccumulator) add(r SaleRecord) {
	g.totalSales += r.ContractAmount
	g.totalSize += r.TotalCovered
	g.units++
}

func (g *groupAccumulator) averagePrice() float64 {
	if g.units == 0 {
		return 0
	}
	return g.totalSales / float64(g.units)
}

func (g *groupAccumulator) averageSize() float64 {
	if g.units == 0 {
		return 0
	}
	return g.totalSize / float64(g.units)
}

// pricePerSqm guards the derived ratio: a zero mean size yields nil, a
// missing value, never a NaN or Inf that would leak into a chart.
func pricePerSqm(avgPrice, avgSize float64) *float64 {
	if avgSize == 0 {
		return nil
	}
	ratio := avgPrice / avgSize
	return &ratio
}

// ProjectRollup groups the view by project and computes sales, price, and
// size metrics. Rows are ordered by total sales descending; ties break on
// project name for deterministic output.
func ProjectRollup(v View) []ProjectMetrics {
	byProject := make(map[string]*groupAccumulator)
	for _, r := range v.Records {
		g, ok := byProject[r.Project]
		if !ok {
			g = &groupAccumulator{}
			byProject[r.Project] = g
		}
		g.add(r)
	}

	rows := make([]ProjectMetrics, 0, len(byProject))
	for project, g := range byProject {
		avgPrice := g.averagePrice()
		avgSize := g.averageSize()
		rows = append(rows, ProjectMetrics{
			Project:      project,
			TotalSales:   g.totalSales,
			AveragePrice: avgPrice,
			UnitsSold:    g.units,
			AverageSize:  avgSize,
			PricePerSqm:  pricePerSqm(avgPrice, avgSize),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TotalSales != rows[j].TotalSales {
			return rows[i].TotalSales > rows[j].TotalSales
		}
		return rows[i].Project < rows[j].Project
	})
	return rows
}

// BedroomRollup restricts the view to records whose bedroom value parses
// as a number, then groups by that count with the same metric set and
// zero-size guard as the project rollup. Rows are ordered by bedroom
// count ascending.
func BedroomRollup(v View) []BedroomMetrics {
	byCount := make(map[float64]*groupAccumulator)
	for _, r := range v.Records {
		count, ok := r.BedroomCount()
		if !ok {
			continue
		}
		g, exists := byCount[count]
		if !exists {
			g = &groupAccumulator{}
			byCount[count] = g
		}
		g.add(r)
	}

	rows := make([]BedroomMetrics, 0, len(byCount))
	for count, g := range byCount {
		avgPrice := g.averagePrice()
		avgSize := g.averageSize()
		rows = append(rows, BedroomMetrics{
			Bedrooms:     count,
			TotalSales:   g.totalSales,
			AveragePrice: avgPrice,
			UnitsSold:    g.units,
			AverageSize:  avgSize,
			PricePerSqm:  pricePerSqm(avgPrice, avgSize),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Bedrooms < rows[j].Bedrooms
	})
	return rows
}

// GeoRollup restricts the view to records with both coordinates, groups
// by project, and computes the sales-weighted marker for each project
// centroid. The reference point, when configured, is appended last with
// its fixed marker size. A non-positive scale falls back to
// DefaultMarkerScale.
func GeoRollup(v View, ref *ReferencePoint, scale float64) []MapPoint {
	if scale <= 0 {
		scale = DefaultMarkerScale
	}

	type geoGroup struct {
		groupAccumulator
		latSum float64
		lonSum float64
	}

	byProject := make(map[string]*geoGroup)
	for _, r := range v.Records {
		if !r.HasLocation() {
			continue
		}
		g, ok := byProject[r.Project]
		if !ok {
			g = &geoGroup{}
			byProject[r.Project] = g
		}
		g.add(r)
		g.latSum += *r.Latitude
		g.lonSum += *r.Longitude
	}

	points := make([]MapPoint, 0, len(byProject)+1)
	for project, g := range byProject {
		points = append(points, MapPoint{
			Project:    project,
			Latitude:   g.latSum / float64(g.units),
			Longitude:  g.lonSum / float64(g.units),
			TotalSales: g.totalSales,
			UnitsSold:  g.units,
			MarkerSize: math.Sqrt(g.totalSales) / scale,
		})
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Project < points[j].Project
	})

	if ref != nil {
		points = append(points, MapPoint{
			Project:    ref.Label,
			Latitude:   ref.Latitude,
			Longitude:  ref.Longitude,
			MarkerSize: ref.MarkerSize,
			Reference:  true,
		})
	}
	return points
}
