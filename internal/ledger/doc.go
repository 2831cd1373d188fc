// Package ledger implements the sales ledger pipeline for the dashboard.
// It consolidates loading, cleaning, filtering, and aggregation into a
// cohesive package that handles the complete data lifecycle from file
// ingestion to chart-ready rollup tables.
//
// # Architecture
//
// The package is organized into four main components:
//
// 1. Loader: Reads CSV or Excel ledger files and extracts sale records
// 2. Store: Memoizes loaded datasets so each file is parsed at most once
// 3. Filter Engine: Applies a conjunction of predicates to produce a View
// 4. Aggregators: Group a View into monthly, project, bedroom, and map rollups
//
// # Usage
//
// Basic pipeline example:
//
//	loader := ledger.NewLoader(logger)
//	store := ledger.NewStore(loader)
//	ds, err := store.Load(ctx, "sales.csv")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	view := ledger.Apply(ds, ledger.FilterSpec{Project: &project})
//	buckets := ledger.MonthlyRollup(view)
//
// # Data Flow
//
// The typical data flow through this package:
//
//	Ledger File → Loader → Dataset → Filter Engine → View → Aggregators → Rollups
//
// # Error Handling
//
// Loading is all-or-nothing: the first malformed cell or missing column
// aborts the load with a parsing error naming the offending row. Filtering
// and aggregation have no error paths; an empty View is a valid input and
// yields empty rollups.
package ledger
