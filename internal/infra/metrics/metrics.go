// Package metrics provides Prometheus metrics for Spikewise — counters for
// logged events, points, badges, insight sourcing, and completion outcomes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Events ─────────────────────────────────────────────────────────────────

// LogsCreated tracks logged sugar events.
var LogsCreated = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "spikewise",
	Name:      "logs_created_total",
	Help:      "Total sugar events logged.",
})

// UsersRegistered tracks device registrations.
var UsersRegistered = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "spikewise",
	Name:      "users_registered_total",
	Help:      "Total devices registered.",
})

// ─── Rewards ────────────────────────────────────────────────────────────────

// PointsAwarded tracks points granted by source.
var PointsAwarded = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "spikewise",
	Name:      "points_awarded_total",
	Help:      "Total points awarded.",
}, []string{"source"})

// SurpriseBonuses tracks how often the variable reward fired.
var SurpriseBonuses = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "spikewise",
	Name:      "surprise_bonuses_total",
	Help:      "Total surprise bonuses drawn.",
})

// BadgesAwarded tracks badge grants by milestone name.
var BadgesAwarded = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "spikewise",
	Name:      "badges_awarded_total",
	Help:      "Total badges awarded.",
}, []string{"badge"})

// StreakCurrent tracks the most recently computed streak length.
var StreakCurrent = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "spikewise",
	Name:      "streak_current_days",
	Help:      "Streak length of the most recently processed event.",
})

// ─── Insights ───────────────────────────────────────────────────────────────

// InsightsServed tracks insight responses by origin (ai or heuristic).
var InsightsServed = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "spikewise",
	Name:      "insights_served_total",
	Help:      "Total insights served, by origin.",
}, []string{"origin"})

// AIFallbacks tracks heuristic fallbacks by reason.
var AIFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "spikewise",
	Name:      "ai_fallbacks_total",
	Help:      "Heuristic fallbacks when the AI collaborator failed.",
}, []string{"reason"})

// ─── Completions ────────────────────────────────────────────────────────────

// Completions tracks action-completion attempts by outcome.
var Completions = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "spikewise",
	Name:      "completions_total",
	Help:      "Action completion attempts by outcome (ok, already_completed, expired).",
}, []string{"outcome"})
