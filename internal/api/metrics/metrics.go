// Package metrics defines all custom Prometheus metrics for the notes API.
// It is the single source of truth for metric names, labels, and help strings.
// Metrics register themselves with the default registry at import time via
// promauto; the router exposes them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "notes"

// SharesCreatedTotal counts notes that received a freshly minted share code.
// Label:
//   - origin: "share" (public flow) or "scratch" (note-management flow)
var SharesCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "shares_created_total",
		Help:      "Total number of notes created with a share code, by origin.",
	},
	[]string{"origin"},
)

// RetrievesTotal counts code lookups by outcome.
// Label:
//   - result: "ok", "not_found", "expired", "gone", or "error"
var RetrievesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "retrieves_total",
		Help:      "Total number of retrieve calls, by result.",
	},
	[]string{"result"},
)

// CodeGenerationRetriesTotal counts candidate codes discarded because they
// collided with an existing note. Under normal load this stays near zero.
var CodeGenerationRetriesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "code_generation_retries_total",
		Help:      "Total number of share-code candidates discarded due to collision.",
	},
)

// CacheLookupsTotal counts retrieve-path cache decisions.
// Label:
//   - result: "hit" or "miss"
var CacheLookupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_lookups_total",
		Help:      "Total number of retrieve cache lookups, by result (hit/miss).",
	},
	[]string{"result"},
)

// NotesReapedTotal counts notes deactivated by the explicit reap operation
// (the lazy read-path flip is not included).
var NotesReapedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reaped_total",
		Help:      "Total number of expired notes deactivated by the reaper.",
	},
)
