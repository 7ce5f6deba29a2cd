// Package metrics defines and registers all custom Prometheus metrics for
// the account system. It is the single source of truth for metric names,
// labels, and help strings. Metrics self-register with the default registry
// at package load via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "account"

// ── Record metrics ───────────────────────────────────────────────────────────

// RecordReadsTotal counts user-record reads.
// Label:
//   - result: "cache" (served from memory), "store" (read and enriched),
//     "expired" (session expiry triggered a clear), or "none" (no record)
var RecordReadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "record_reads_total",
		Help:      "Total number of user record reads, by outcome.",
	},
	[]string{"result"},
)

// RecordWritesTotal counts user-record writes.
// Label:
//   - result: "ok", "validation_error", or "store_error"
var RecordWritesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "record_writes_total",
		Help:      "Total number of user record writes, by outcome.",
	},
	[]string{"result"},
)

// PlanChangesTotal counts successful plan changes.
// Labels:
//   - from: previous plan id
//   - to: new plan id
var PlanChangesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "plan_changes_total",
		Help:      "Total number of successful plan changes, by transition.",
	},
	[]string{"from", "to"},
)

// ── Broadcast metrics ────────────────────────────────────────────────────────

// EventsEmittedTotal counts events fanned out to local listeners.
// Label:
//   - event: event name (e.g. "user_updated")
var EventsEmittedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_emitted_total",
		Help:      "Total number of events emitted on the local bus, by event name.",
	},
	[]string{"event"},
)

// SyncNoticesTotal counts cross-instance change notices.
// Label:
//   - direction: "sent" or "received"
var SyncNoticesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sync_notices_total",
		Help:      "Total number of cross-instance change notices, by direction.",
	},
	[]string{"direction"},
)

// ── Storage metrics ──────────────────────────────────────────────────────────

// StoreFallbacksTotal counts startup probes that fell back to the in-memory
// store because the shared area was unreachable or not writable.
var StoreFallbacksTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "store_fallbacks_total",
		Help:      "Total number of fallbacks to the in-memory store.",
	},
)

// WriteReplaysTotal counts offline write-queue replay attempts.
// Label:
//   - result: "ok" or "retry"
var WriteReplaysTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "write_replays_total",
		Help:      "Total number of queued write replay attempts, by outcome.",
	},
	[]string{"result"},
)

// ActivityArchivedTotal counts activity entries archived to the audit store.
var ActivityArchivedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "activity_archived_total",
		Help:      "Total number of activity entries archived.",
	},
)
