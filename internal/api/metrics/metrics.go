// Package metrics defines and registers all custom Prometheus metrics for the
// HydroChain credit registry. It is the single source of truth for metric
// names, labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "hydrochain"

// ── Issuance metrics ──────────────────────────────────────────────────────────

// CreditsIssuedTotal counts successfully issued credits.
// Label:
//   - settlement: "onchain" (real mint) or "simulated" (fallback)
var CreditsIssuedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "credits_issued_total",
		Help:      "Total number of credits issued, by settlement path.",
	},
	[]string{"settlement"},
)

// SettlementFallbackTotal counts issuance requests that used the simulated
// settlement path.
// Label:
//   - reason: "unconfigured" (no chain settings) or "mint_failed" (attempt raised)
var SettlementFallbackTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "settlement_fallback_total",
		Help:      "Total number of simulated settlement fallbacks, by reason.",
	},
	[]string{"reason"},
)

// SettlementDuration measures the latency of the single on-chain mint attempt,
// whether it succeeds or fails.
var SettlementDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "settlement_duration_seconds",
		Help:      "Duration of the on-chain mint attempt.",
		Buckets:   prometheus.DefBuckets,
	},
)

// ── Provenance metrics ────────────────────────────────────────────────────────

// TransactionsRecordedTotal counts provenance records successfully persisted
// by the audit recorder.
// Label:
//   - type: "issue", "transfer", or "retire"
var TransactionsRecordedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transactions_recorded_total",
		Help:      "Total number of provenance transactions persisted, by type.",
	},
	[]string{"type"},
)

// TransactionsDroppedTotal counts provenance records whose insert failed. The
// credit remains authoritative; these are reconciliation candidates.
var TransactionsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transactions_dropped_total",
		Help:      "Total number of provenance transactions that failed to persist.",
	},
)

// AuditQueueDepth tracks the current number of provenance records waiting in
// each recorder worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of records pending in each audit recorder worker channel.",
	},
	[]string{"worker_id"},
)
