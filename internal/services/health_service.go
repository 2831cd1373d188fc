package services

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"time"

	"salesdash/internal/ledger"
)

// HealthService provides health check functionality
type HealthService struct {
	version    string
	buildTime  string
	ledgerPath string
	store      *ledger.Store
	startTime  time.Time
	logger     *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	BuildTime string                 `json:"build_time,omitempty"`
	Uptime    string                 `json:"uptime"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Ledger    LedgerHealth           `json:"ledger"`
}

// LedgerHealth reports reachability and cache state of the sales ledger.
type LedgerHealth struct {
	Path    string     `json:"path"`
	Exists  bool       `json:"exists"`
	Cached  bool       `json:"cached"`
	Records int        `json:"records,omitempty"`
	Loaded  *time.Time `json:"loaded_at,omitempty"`
}

// NewHealthService creates a new health service with injected dependencies
func NewHealthService(version, buildTime, ledgerPath string, store *ledger.Store, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("HealthService initialized",
		slog.String("version", version),
		slog.String("build_time", buildTime),
		slog.String("ledger_path", ledgerPath))

	return &HealthService{
		version:    version,
		buildTime:  buildTime,
		ledgerPath: ledgerPath,
		store:      store,
		startTime:  time.Now(),
		logger:     logger,
	}
}

// HealthCheck returns overall health status. The ledger is probed but
// never loaded here; health checks must stay cheap.
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	hs.logger.DebugContext(ctx, "HealthCheck: performing health check",
		slog.String("version", hs.version),
		slog.String("uptime", time.Since(hs.startTime).String()))

	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
		BuildTime: hs.buildTime,
		Uptime:    time.Since(hs.startTime).String(),
		Runtime: map[string]interface{}{
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
			"os":         runtime.GOOS,
			"arch":       runtime.GOARCH,
		},
		Ledger: hs.ledgerHealth(),
	}

	if !status.Ledger.Exists {
		status.Status = "degraded"
	}
	return status
}

// ledgerHealth probes the ledger file and cache without loading.
func (hs *HealthService) ledgerHealth() LedgerHealth {
	lh := LedgerHealth{Path: hs.ledgerPath}

	if _, err := os.Stat(hs.ledgerPath); err == nil {
		lh.Exists = true
	}

	if hs.store != nil {
		if ds, ok := hs.store.Cached(hs.ledgerPath); ok {
			lh.Cached = true
			lh.Records = len(ds.Records)
			loaded := ds.LoadedAt
			lh.Loaded = &loaded
		}
	}
	return lh
}
