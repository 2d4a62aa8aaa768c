package engine

import (
	"time"

	"github.com/spikewise/spikewise/internal/domain"
)

// InsightInput is the event and profile context for the heuristic engine.
type InsightInput struct {
	Type       string
	Intensity  int
	Steps      int
	SleepHours float64
	HeightCM   float64
	WeightKG   float64
	Now        time.Time
}

// insightContext holds the derived values the rule predicates read.
type insightContext struct {
	intensity  int
	steps      int
	sleepHours float64
	bmi        float64
	isMorning  bool // hour in [5, 12)
	isEvening  bool // hour >= 18
}

// insightRule pairs a predicate with its advice. Rules are evaluated in
// order, first match wins; the order is the behavioral contract.
type insightRule struct {
	name   string
	match  func(insightContext) bool
	advice domain.Advice
}

var insightRules = []insightRule{
	{
		name:  "weight_management",
		match: func(c insightContext) bool { return c.bmi > 25 && c.intensity > 3 },
		advice: domain.Advice{
			Insight: "Frequent sugar spikes can make it harder to manage weight over time.",
			Action:  "Try a 10-minute walk to use up this glucose immediately.",
		},
	},
	{
		name:  "active_day",
		match: func(c insightContext) bool { return c.steps > 8000 },
		advice: domain.Advice{
			Insight: "You've been active today, so your body can handle this better.",
			Action:  "Keep moving to burn off the extra energy.",
		},
	},
	{
		name:  "sleep_risk",
		match: func(c insightContext) bool { return c.steps < 3000 && c.isEvening },
		advice: domain.Advice{
			Insight: "Low activity today and sugar at night can disrupt your deep sleep.",
			Action:  "Try a 10-minute walk before bed to stabilize blood sugar.",
		},
	},
	{
		name:  "morning_crash",
		match: func(c insightContext) bool { return c.isMorning && c.intensity > 3 },
		advice: domain.Advice{
			Insight: "Starting the day with high sugar can lead to an energy crash by noon.",
			Action:  "Pair this with some protein (like nuts) to slow absorption.",
		},
	},
	{
		name:  "sleep_deprived",
		match: func(c insightContext) bool { return c.sleepHours < 6 },
		advice: domain.Advice{
			Insight: "You're tired, so your brain is craving quick energy. It's a trap.",
			Action:  "A short nap or fresh air is better than sugar right now.",
		},
	},
}

var defaultAdvice = domain.Advice{
	Insight: "Sugary treats gives a quick spike, but a crash follows soon.",
	Action:  "Drink a glass of water to help process the sugar.",
}

// DeriveInsight produces an (insight, action) pair from event context.
// Total function: exactly one rule fires, the default covers the rest. This
// is the guaranteed fallback behind the AI collaborator.
func DeriveInsight(in InsightInput) domain.Advice {
	hour := in.Now.Hour()
	ctx := insightContext{
		intensity:  in.Intensity,
		steps:      in.Steps,
		sleepHours: in.SleepHours,
		bmi:        rawBMI(in.HeightCM, in.WeightKG),
		isMorning:  hour >= 5 && hour < 12,
		isEvening:  hour >= DaytimeHourCutoff,
	}

	for _, r := range insightRules {
		if r.match(ctx) {
			return r.advice
		}
	}
	return defaultAdvice
}
