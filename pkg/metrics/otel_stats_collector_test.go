package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

type OtelStatsCollectorSuite struct {
	suite.Suite
	collector *OtelStatsCollector
}

func (s *OtelStatsCollectorSuite) SetupTest() {
	collector, err := NewOtelStatsCollectorWithConfig(CollectorConfig{
		MeterName:      "test-meter",
		ServiceName:    "test-service",
		ServiceVersion: "1.2.3",
	})
	s.Require().NoError(err)
	s.collector = collector
}

func (s *OtelStatsCollectorSuite) TearDownTest() {
	if s.collector != nil {
		_ = s.collector.Shutdown(context.Background())
	}
}

func (s *OtelStatsCollectorSuite) findMetric(name string) (metricdata.Metrics, bool) {
	var rm metricdata.ResourceMetrics
	s.Require().NoError(s.collector.reader.Collect(context.Background(), &rm))
	for _, scopeMetrics := range rm.ScopeMetrics {
		for _, m := range scopeMetrics.Metrics {
			if m.Name == name {
				return m, true
			}
		}
	}
	return metricdata.Metrics{}, false
}

func (s *OtelStatsCollectorSuite) TestRecordToolCall() {
	ctx := context.Background()
	s.collector.RecordToolCall(ctx, "workbenches_list", 100*time.Millisecond, nil)
	s.collector.RecordToolCall(ctx, "workbenches_list", 200*time.Millisecond, nil)
	s.collector.RecordToolCall(ctx, "workbench_stop", 50*time.Millisecond, errors.New("forbidden"))

	stats := s.collector.GetStats()
	s.Run("counts calls by tool", func() {
		s.Equal(int64(3), stats.TotalToolCalls)
		s.Equal(int64(2), stats.ToolCallsByName["workbenches_list"])
		s.Equal(int64(1), stats.ToolCallsByName["workbench_stop"])
	})
	s.Run("counts errors by tool", func() {
		s.Equal(int64(1), stats.ToolCallErrors)
		s.Equal(int64(1), stats.ToolErrorsByName["workbench_stop"])
		s.NotContains(stats.ToolErrorsByName, "workbenches_list")
	})
	s.Run("records durations", func() {
		m, found := s.findMetric("rhoai_mcp.tool.duration")
		s.Require().True(found, "rhoai_mcp.tool.duration histogram should exist")
		histogram, ok := m.Data.(metricdata.Histogram[float64])
		s.Require().True(ok, "rhoai_mcp.tool.duration should be a float64 histogram")
		s.Len(histogram.DataPoints, 2, "Should have one data point per tool")
		for _, dp := range histogram.DataPoints {
			s.Greater(dp.Sum, float64(0))
		}
	})
}

func (s *OtelStatsCollectorSuite) TestRecordHTTPRequest() {
	ctx := context.Background()
	s.collector.RecordHTTPRequest(ctx, "POST", "/mcp", 200, 50*time.Millisecond)
	s.collector.RecordHTTPRequest(ctx, "POST", "/mcp", 202, 10*time.Millisecond)
	s.collector.RecordHTTPRequest(ctx, "GET", "/healthz", 200, time.Millisecond)
	s.collector.RecordHTTPRequest(ctx, "GET", "/unknown", 404, time.Millisecond)
	s.collector.RecordHTTPRequest(ctx, "POST", "/mcp", 500, 200*time.Millisecond)

	stats := s.collector.GetStats()
	s.Equal(int64(5), stats.TotalHTTPRequests)
	s.Run("by status class", func() {
		s.Equal(int64(3), stats.HTTPRequestsByStatus["2xx"])
		s.Equal(int64(1), stats.HTTPRequestsByStatus["4xx"])
		s.Equal(int64(1), stats.HTTPRequestsByStatus["5xx"])
	})
	s.Run("by method", func() {
		s.Equal(int64(3), stats.HTTPRequestsByMethod["POST"])
		s.Equal(int64(2), stats.HTTPRequestsByMethod["GET"])
	})
	s.Run("by path", func() {
		s.Equal(int64(3), stats.HTTPRequestsByPath["/mcp"])
		s.Equal(int64(1), stats.HTTPRequestsByPath["/healthz"])
	})
}

func (s *OtelStatsCollectorSuite) TestRecordCacheLookup() {
	ctx := context.Background()
	s.Run("no lookups", func() {
		stats := s.collector.GetStats()
		s.Zero(stats.CacheHits)
		s.Zero(stats.CacheMisses)
		s.Zero(stats.CacheHitRatio)
	})
	s.collector.RecordCacheLookup(ctx, "workbenches", false)
	s.collector.RecordCacheLookup(ctx, "workbenches", true)
	s.collector.RecordCacheLookup(ctx, "workbenches", true)
	s.collector.RecordCacheLookup(ctx, "projects", false)
	stats := s.collector.GetStats()
	s.Run("counts hits and misses", func() {
		s.Equal(int64(2), stats.CacheHits)
		s.Equal(int64(2), stats.CacheMisses)
		s.InDelta(0.5, stats.CacheHitRatio, 0.0001)
	})
	s.Run("counts lookups by operation", func() {
		s.Equal(int64(3), stats.CacheLookupsByPrefix["workbenches"])
		s.Equal(int64(1), stats.CacheLookupsByPrefix["projects"])
	})
}

func (s *OtelStatsCollectorSuite) TestGetStats() {
	stats := s.collector.GetStats()
	s.Run("returns uptime and start time", func() {
		s.GreaterOrEqual(stats.UptimeSeconds, int64(0))
		s.Positive(stats.StartTime)
	})
	s.Run("initializes all maps", func() {
		s.NotNil(stats.ToolCallsByName)
		s.NotNil(stats.ToolErrorsByName)
		s.NotNil(stats.HTTPRequestsByPath)
		s.NotNil(stats.HTTPRequestsByStatus)
		s.NotNil(stats.HTTPRequestsByMethod)
		s.NotNil(stats.CacheLookupsByPrefix)
	})
}

func (s *OtelStatsCollectorSuite) TestServerInfoGauge() {
	m, found := s.findMetric("rhoai_mcp.server.info")
	s.Require().True(found, "rhoai_mcp.server.info gauge should exist")
	gauge, ok := m.Data.(metricdata.Gauge[int64])
	s.Require().True(ok, "rhoai_mcp.server.info should be an int64 gauge")
	s.Require().Len(gauge.DataPoints, 1)
	dp := gauge.DataPoints[0]
	s.Equal(int64(1), dp.Value)
	version, ok := dp.Attributes.Value("version")
	s.True(ok, "version attribute should exist")
	s.Equal("1.2.3", version.AsString())
	goVersion, ok := dp.Attributes.Value("go_version")
	s.True(ok, "go_version attribute should exist")
	s.Equal(runtime.Version(), goVersion.AsString())
}

func (s *OtelStatsCollectorSuite) TestPrometheusHandler() {
	ctx := context.Background()
	s.collector.RecordToolCall(ctx, "projects_list", 100*time.Millisecond, nil)
	s.collector.RecordHTTPRequest(ctx, "POST", "/mcp", 200, 50*time.Millisecond)
	s.collector.RecordCacheLookup(ctx, "projects", true)

	rec := httptest.NewRecorder()
	s.collector.PrometheusHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	s.Equal(http.StatusOK, rec.Code)
	body := rec.Body.String()
	s.Contains(body, "rhoai_mcp_tool_calls")
	s.Contains(body, "rhoai_mcp_tool_duration")
	s.Contains(body, "rhoai_mcp_http_requests")
	s.Contains(body, "rhoai_mcp_cache_lookups")
	s.Contains(body, "rhoai_mcp_server_info")
}

func TestOtelStatsCollector(t *testing.T) {
	suite.Run(t, new(OtelStatsCollectorSuite))
}
