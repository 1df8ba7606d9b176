package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "docsite"

	metricLabelSite   = "site"
	metricLabelStatus = "status"
	metricLabelKind   = "kind"
	metricLabelResult = "result"
)

var (
	// PageRequestCounter count served page requests by site and status code
	PageRequestCounter = newCounterVec(
		"page_request_count",
		"Number of page requests",
		metricLabelSite, metricLabelStatus,
	)
	// PageRequestDuration observe the time it takes to answer a page request
	PageRequestDuration = newSummaryVec(
		"page_request_duration_seconds",
		"Seconds to load, expand and render a page",
		metricLabelSite, metricLabelStatus,
	)
	// SearchRequestCounter count search requests
	SearchRequestCounter = newCounterVec(
		"search_request_count",
		"Number of search requests",
		metricLabelSite, metricLabelResult,
	)
	// BuildCounter count build runs
	BuildCounter = newCounterVec(
		"build_count",
		"Number of site builds",
		metricLabelSite, metricLabelResult,
	)
	// BuildDuration observe the duration of each build
	BuildDuration = newSummaryVec(
		"build_duration_seconds",
		"Duration in seconds of a site build",
		metricLabelSite,
	)
	// LinkCounter count links touched while rendering
	LinkCounter = newCounterVec(
		"link_count",
		"Number of links seen while rendering, by kind and result",
		metricLabelKind, metricLabelResult,
	)
	// SitemapLoadCounter count sitemap loads from history
	SitemapLoadCounter = newCounterVec(
		"sitemap_load_count",
		"Number of attempts to load the current sitemap",
		metricLabelResult,
	)
	// SitemapNodesGauge number of nodes in the currently served sitemap
	SitemapNodesGauge = newGaugeVec(
		"sitemap_nodes_total",
		"Number of nodes in the currently served sitemap",
	)
)

func newSummaryVec(name, help string, labels ...string) *prometheus.SummaryVec {
	vec := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, labels)
	prometheus.MustRegister(vec)
	return vec
}

func newCounterVec(name, help string, labels ...string) *prometheus.CounterVec {
	vec := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, labels)
	prometheus.MustRegister(vec)
	return vec
}

func newGaugeVec(name, help string, labels ...string) *prometheus.GaugeVec {
	vec := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, labels)
	prometheus.MustRegister(vec)
	return vec
}
