package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/kronos/server/internal/observability"
	"github.com/hrygo/kronos/store/cache"
)

// cacheStatser is implemented by date services that cache scans.
type cacheStatser interface {
	CacheStats() cache.Stats
}

// MetricsResponse is the body of GET /api/v1/system/metrics.
type MetricsResponse struct {
	*observability.MetricsSnapshot
	SuccessRate float64      `json:"success_rate"`
	ScanCache   *cache.Stats `json:"scan_cache,omitempty"`
}

// GetMetrics returns the request counters collected since start.
// GET /api/v1/system/metrics
func (s *APIV1Service) GetMetrics(c echo.Context) error {
	snapshot := s.Metrics.Snapshot()
	resp := MetricsResponse{
		MetricsSnapshot: snapshot,
		SuccessRate:     snapshot.SuccessRate(),
	}
	if cs, ok := s.DateService.(cacheStatser); ok {
		stats := cs.CacheStats()
		resp.ScanCache = &stats
	}
	return c.JSON(http.StatusOK, resp)
}
