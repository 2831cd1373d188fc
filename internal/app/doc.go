// Package app wires the sales dashboard application together: it loads
// configuration, initializes logging and OpenTelemetry, constructs the
// ledger store and services, and assembles the chi router with the full
// middleware chain.
//
// Lifecycle:
//
//	app, err := app.NewApplication()
//	if err != nil { ... }
//	err = app.Run() // blocks until SIGINT/SIGTERM, then shuts down gracefully
//
// Middleware ordering on the main route group:
//
//	RequestID → RealIP → OTel → StructuredLogger → Recoverer →
//	SecurityHeaders → CORS → RateLimiter → Timeout
//
// The Prometheus /metrics endpoint is mounted outside the middleware
// group so scrapes stay cheap and unlogged.
package app
