package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SolrRequests counts outbound data API requests by core and HTTP status ("error" on transport failure).
	SolrRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bvbrc_solr_requests_total",
			Help: "Total number of requests sent to the BV-BRC data API",
		},
		[]string{"core", "status"},
	)
	// PagesFetched counts cursor pages consumed.
	PagesFetched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bvbrc_solr_pages_total",
			Help: "Total number of cursor pages fetched",
		},
		[]string{"core"},
	)
	// RecordsReturned counts records handed back to callers.
	RecordsReturned = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bvbrc_records_returned_total",
			Help: "Total number of records returned by queries",
		},
		[]string{"collection"},
	)
	// QueryDuration is the end-to-end latency of an accessor call.
	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bvbrc_query_duration_seconds",
			Help:    "Accessor query latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"collection", "op", "outcome"},
	)
	// ToolCalls counts MCP tool invocations.
	ToolCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bvbrc_tool_calls_total",
			Help: "Total number of MCP tool calls",
		},
		[]string{"collection", "outcome"},
	)
	// HTTPRequests counts requests served by the HTTP transport.
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bvbrc_http_requests_total",
			Help: "Total number of HTTP requests served",
		},
		[]string{"method", "route", "status"},
	)
	// HTTPDuration is the latency of served HTTP requests.
	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bvbrc_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// Outcome maps an error to the outcome label.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
