// Package http implements HTTP request handlers for the sales dashboard
// web service. It provides a thin layer between HTTP transport and
// business logic, following the clean architecture principle of keeping
// handlers focused solely on HTTP concerns.
//
// # Architecture Principles
//
// Handlers in this package follow these principles:
//
//	1. Thin handlers - minimal logic, delegate to services
//	2. HTTP-only concerns - request parsing, response formatting
//	3. Error transformation - convert service errors to HTTP responses
//	4. No business logic - all logic belongs in the service layer
//
// # Request Flow
//
// A typical request flows through these layers:
//
//	HTTP Request → Chi Router → Middleware → Handler → Service → Ledger Store
//	                                              ↓
//	HTTP Response ← Handler ← Service Response ←─┘
//
// # Filter Binding
//
// Dashboard endpoints share a common query-string contract:
//
//	start=2024-01-01      inclusive lower contract-date bound
//	end=2024-06-30        inclusive upper contract-date bound
//	price_min=100000      inclusive lower contract-amount bound
//	price_max=500000      inclusive upper contract-amount bound
//	project=Seaview       exact project match
//	bedrooms=2            exact raw bedroom-value match
//
// Absent parameters are unconstrained. Validation failures return
// RFC 7807 problem responses with field details.
package http
