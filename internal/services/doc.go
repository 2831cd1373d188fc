// Package services contains the business logic layer between the HTTP
// transport and the ledger data layer.
//
// Architecture:
//
// The services layer follows the dependency injection pattern. Each
// service receives its dependencies (ledger store, configuration,
// logger, metrics) through its constructor and exposes context-aware
// methods that the HTTP handlers call.
//
// Services:
//
//   - DashboardService: loads the sales ledger through the cached
//     store, applies filters, and computes the dashboard rollups
//     (timeline, projects, bedrooms, map).
//   - HealthService: reports process health, build information, and
//     ledger reachability.
//
// Error Handling:
//
// Services return errors from the internal/errors package. Ledger load
// failures surface as AppError values with type classification so the
// transport layer can map them to RFC 7807 responses.
package services
