// Package engine implements the Spikewise reward and insight computation core.
// Every component is a pure function over explicit inputs: the wall clock is
// threaded through as a parameter and the single random draw comes from an
// injected source, so tests can pin both.
package engine

import (
	"math/rand"
	"time"

	"github.com/spikewise/spikewise/internal/domain"
)

// Scoring constants. All terms are additive on top of the base.
const (
	BasePoints    = 10
	StreakBonus   = 5 // consecutive-day continuation
	DaytimeBonus  = 3 // logged before 6 PM local
	ActivityBonus = 5 // steps above the active threshold

	ActiveStepsThreshold = 5000
	DaytimeHourCutoff    = 18

	// Variable reward: 30% chance of a 5-15 point surprise bonus.
	SurpriseChance = 0.3
	SurpriseMin    = 5
	SurpriseMax    = 15
)

// RewardInput is the user state and event context fed to the calculator.
type RewardInput struct {
	PreviousStreak int
	LastLogDate    time.Time // zero value = no prior log
	Steps          int
	Now            time.Time
}

// Calculator scores logged events. It holds only the random source for the
// surprise bonus; everything else is derived from the input.
type Calculator struct {
	rng *rand.Rand
}

// NewCalculator creates a calculator. A nil rng gets a time-seeded source.
func NewCalculator(rng *rand.Rand) *Calculator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Calculator{rng: rng}
}

// ComputeReward scores one event. The caller persists NewStreak/PointsEarned
// and sets the user's last log date to in.Now — no side effects here.
func (c *Calculator) ComputeReward(in RewardInput) domain.RewardResult {
	res := domain.RewardResult{PointsEarned: BasePoints}

	// Streak: compared on calendar days, hour/minute/second zeroed.
	switch {
	case in.LastLogDate.IsZero():
		res.NewStreak = 1
	default:
		switch diff := dayDiff(in.LastLogDate, in.Now); {
		case diff == 1:
			res.NewStreak = in.PreviousStreak + 1
			res.PointsEarned += StreakBonus
		case diff > 1:
			res.NewStreak = 1 // streak broken, no bonus
		default:
			// Same calendar day — repeat logs accumulate points but
			// never compound the streak.
			res.NewStreak = in.PreviousStreak
		}
	}

	if in.Now.Hour() < DaytimeHourCutoff {
		res.PointsEarned += DaytimeBonus
	}

	if in.Steps > ActiveStepsThreshold {
		res.PointsEarned += ActivityBonus
	}

	if c.rng.Float64() < SurpriseChance {
		res.SurpriseBonus = SurpriseMin + c.rng.Intn(SurpriseMax-SurpriseMin+1)
		res.PointsEarned += res.SurpriseBonus
	}

	return res
}

// dayDiff returns whole calendar days between two instants, truncating both
// to midnight in their own location first.
func dayDiff(earlier, later time.Time) int {
	return int(startOfDay(later).Sub(startOfDay(earlier)).Hours() / 24)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
