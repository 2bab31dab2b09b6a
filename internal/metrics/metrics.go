// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Ledger ─────────────────────────────────────────────────────────────────

var LedgerMutations = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "budget",
	Subsystem: "ledger",
	Name:      "mutations_total",
	Help:      "Ledger mutations by operation and outcome.",
}, []string{"operation", "outcome"})

var LedgerBalance = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "budget",
	Subsystem: "ledger",
	Name:      "balance",
	Help:      "Current balance: total income minus total expenses.",
})

var LedgerTotalIncome = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "budget",
	Subsystem: "ledger",
	Name:      "total_income",
	Help:      "Current total income.",
})

var LedgerTotalExpenses = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "budget",
	Subsystem: "ledger",
	Name:      "total_expenses",
	Help:      "Current total expenses including sub-expenses.",
})

// ─── Events ─────────────────────────────────────────────────────────────────

var EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "budget",
	Subsystem: "events",
	Name:      "published_total",
	Help:      "Ledger change events by publish outcome.",
}, []string{"outcome"})

var EventsConsumed = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "budget",
	Subsystem: "events",
	Name:      "consumed_total",
	Help:      "Ledger change events handled by the worker, by alert level.",
}, []string{"level"})

// ─── HTTP ───────────────────────────────────────────────────────────────────

var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "budget",
	Subsystem: "http",
	Name:      "requests_total",
	Help:      "HTTP requests by route pattern, method and status code.",
}, []string{"route", "method", "status"})

var HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "budget",
	Subsystem: "http",
	Name:      "request_duration_seconds",
	Help:      "HTTP request latency by route pattern.",
	Buckets:   prometheus.DefBuckets,
}, []string{"route"})

var RateLimited = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "budget",
	Subsystem: "http",
	Name:      "rate_limited_total",
	Help:      "Requests rejected by the per-client rate limiter.",
})

var RateLimitClients = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "budget",
	Subsystem: "http",
	Name:      "rate_limit_clients",
	Help:      "Clients with an open rate limit window, sampled at scrape time.",
})

// ─── Tax cache ──────────────────────────────────────────────────────────────

var TaxCacheEvictions = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "budget",
	Subsystem: "tax_cache",
	Name:      "expired_total",
	Help:      "Cached net salary results removed after expiry.",
})

// RecordTotals publishes the ledger totals as gauges.
func RecordTotals(income, expenses, balance float64) {
	LedgerTotalIncome.Set(income)
	LedgerTotalExpenses.Set(expenses)
	LedgerBalance.Set(balance)
}
