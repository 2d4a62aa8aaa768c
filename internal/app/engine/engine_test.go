package engine_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/spikewise/spikewise/internal/app/engine"
	"github.com/spikewise/spikewise/internal/domain"
)

// luckyCalc returns a calculator whose first draw wins the surprise bonus.
// Seed 1's first Float64 is ~0.604 (unlucky); seed 42's is ~0.373 (unlucky);
// we search for a seed deterministically instead of hardcoding one.
func luckyCalc(t *testing.T) *engine.Calculator {
	t.Helper()
	for seed := int64(0); seed < 1000; seed++ {
		if rand.New(rand.NewSource(seed)).Float64() < engine.SurpriseChance {
			return engine.NewCalculator(rand.New(rand.NewSource(seed)))
		}
	}
	t.Fatal("no lucky seed found")
	return nil
}

func unluckyCalc(t *testing.T) *engine.Calculator {
	t.Helper()
	for seed := int64(0); seed < 1000; seed++ {
		if rand.New(rand.NewSource(seed)).Float64() >= engine.SurpriseChance {
			return engine.NewCalculator(rand.New(rand.NewSource(seed)))
		}
	}
	t.Fatal("no unlucky seed found")
	return nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Reward Calculator
// ═══════════════════════════════════════════════════════════════════════════

func TestReward_FirstLogStartsStreak(t *testing.T) {
	calc := unluckyCalc(t)

	for _, prev := range []int{0, 1, 5, 100} {
		res := calc.ComputeReward(engine.RewardInput{
			PreviousStreak: prev,
			Steps:          0,
			Now:            time.Date(2025, 7, 1, 20, 0, 0, 0, time.UTC),
		})
		if res.NewStreak != 1 {
			t.Errorf("first log with prev=%d: streak = %d, want 1", prev, res.NewStreak)
		}
	}
}

func TestReward_ConsecutiveDayExtendsStreak(t *testing.T) {
	calc := unluckyCalc(t)

	now := time.Date(2025, 7, 2, 20, 0, 0, 0, time.UTC)
	res := calc.ComputeReward(engine.RewardInput{
		PreviousStreak: 2,
		LastLogDate:    now.AddDate(0, 0, -1),
		Steps:          0,
		Now:            now,
	})
	if res.NewStreak != 3 {
		t.Errorf("streak = %d, want 3", res.NewStreak)
	}
	// Base 10 + streak 5 (evening, low steps, no surprise)
	if res.PointsEarned != 15 {
		t.Errorf("points = %d, want 15 (base + streak bonus)", res.PointsEarned)
	}
}

func TestReward_SameDayKeepsStreak(t *testing.T) {
	calc := unluckyCalc(t)

	now := time.Date(2025, 7, 1, 21, 0, 0, 0, time.UTC)
	res := calc.ComputeReward(engine.RewardInput{
		PreviousStreak: 4,
		LastLogDate:    now.Add(-3 * time.Hour), // same calendar day
		Steps:          0,
		Now:            now,
	})
	if res.NewStreak != 4 {
		t.Errorf("same-day streak = %d, want 4 (unchanged)", res.NewStreak)
	}
	if res.PointsEarned != engine.BasePoints {
		t.Errorf("points = %d, want base %d (no streak bonus same day)", res.PointsEarned, engine.BasePoints)
	}
}

func TestReward_GapResetsStreak(t *testing.T) {
	now := time.Date(2025, 7, 10, 20, 0, 0, 0, time.UTC)
	for _, gap := range []int{2, 3, 30} {
		res := unluckyCalc(t).ComputeReward(engine.RewardInput{
			PreviousStreak: 6,
			LastLogDate:    now.AddDate(0, 0, -gap),
			Steps:          0,
			Now:            now,
		})
		if res.NewStreak != 1 {
			t.Errorf("gap %d days: streak = %d, want 1", gap, res.NewStreak)
		}
		if res.PointsEarned != engine.BasePoints {
			t.Errorf("gap %d days: points = %d, want %d (no streak bonus)", gap, res.PointsEarned, engine.BasePoints)
		}
	}
}

func TestReward_CalendarDayNotDuration(t *testing.T) {
	calc := unluckyCalc(t)

	// 23:30 yesterday to 00:30 today is one hour apart but one calendar day.
	last := time.Date(2025, 7, 1, 23, 30, 0, 0, time.UTC)
	now := time.Date(2025, 7, 2, 0, 30, 0, 0, time.UTC)
	res := calc.ComputeReward(engine.RewardInput{
		PreviousStreak: 1,
		LastLogDate:    last,
		Steps:          0,
		Now:            now,
	})
	if res.NewStreak != 2 {
		t.Errorf("streak = %d, want 2 (calendar-day diff)", res.NewStreak)
	}
}

func TestReward_DaytimeBonus(t *testing.T) {
	calc := unluckyCalc(t)

	morning := calc.ComputeReward(engine.RewardInput{
		Now: time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC),
	})
	if morning.PointsEarned != engine.BasePoints+engine.DaytimeBonus {
		t.Errorf("10 AM points = %d, want %d", morning.PointsEarned, engine.BasePoints+engine.DaytimeBonus)
	}

	calc = unluckyCalc(t)
	evening := calc.ComputeReward(engine.RewardInput{
		Now: time.Date(2025, 7, 1, 18, 0, 0, 0, time.UTC),
	})
	if evening.PointsEarned != engine.BasePoints {
		t.Errorf("6 PM points = %d, want %d (no daytime bonus)", evening.PointsEarned, engine.BasePoints)
	}
}

func TestReward_ActivityBonus(t *testing.T) {
	now := time.Date(2025, 7, 1, 20, 0, 0, 0, time.UTC)

	active := unluckyCalc(t).ComputeReward(engine.RewardInput{Steps: 5001, Now: now})
	if active.PointsEarned != engine.BasePoints+engine.ActivityBonus {
		t.Errorf("5001 steps points = %d, want %d", active.PointsEarned, engine.BasePoints+engine.ActivityBonus)
	}

	exact := unluckyCalc(t).ComputeReward(engine.RewardInput{Steps: 5000, Now: now})
	if exact.PointsEarned != engine.BasePoints {
		t.Errorf("5000 steps points = %d, want %d (threshold is exclusive)", exact.PointsEarned, engine.BasePoints)
	}
}

func TestReward_SurpriseBonusRange(t *testing.T) {
	now := time.Date(2025, 7, 1, 20, 0, 0, 0, time.UTC)

	res := luckyCalc(t).ComputeReward(engine.RewardInput{Now: now})
	if res.SurpriseBonus < engine.SurpriseMin || res.SurpriseBonus > engine.SurpriseMax {
		t.Errorf("surprise bonus %d outside [%d, %d]", res.SurpriseBonus, engine.SurpriseMin, engine.SurpriseMax)
	}
	if res.PointsEarned != engine.BasePoints+res.SurpriseBonus {
		t.Errorf("points = %d, want base + surprise %d", res.PointsEarned, engine.BasePoints+res.SurpriseBonus)
	}

	unlucky := unluckyCalc(t).ComputeReward(engine.RewardInput{Now: now})
	if unlucky.SurpriseBonus != 0 {
		t.Errorf("unlucky draw should give 0 surprise, got %d", unlucky.SurpriseBonus)
	}
}

func TestReward_PointsBounds(t *testing.T) {
	// Points always in [10, 38] no matter the input combination.
	times := []time.Time{
		time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC),
		time.Date(2025, 7, 1, 23, 0, 0, 0, time.UTC),
	}
	calc := engine.NewCalculator(rand.New(rand.NewSource(7)))
	for i := 0; i < 500; i++ {
		res := calc.ComputeReward(engine.RewardInput{
			PreviousStreak: i % 9,
			LastLogDate:    times[0].AddDate(0, 0, -(i % 4)),
			Steps:          (i * 997) % 12000,
			Now:            times[i%2],
		})
		if res.PointsEarned < 10 || res.PointsEarned > 38 {
			t.Fatalf("iteration %d: points %d outside [10, 38]", i, res.PointsEarned)
		}
	}
}

// Scenario from the product sheet: day-3 log, active morning.
func TestReward_DayThreeMorningScenario(t *testing.T) {
	now := time.Date(2025, 7, 3, 10, 0, 0, 0, time.UTC)
	in := engine.RewardInput{
		PreviousStreak: 2,
		LastLogDate:    now.AddDate(0, 0, -1),
		Steps:          6000,
		Now:            now,
	}

	res := unluckyCalc(t).ComputeReward(in)
	if res.NewStreak != 3 {
		t.Errorf("streak = %d, want 3", res.NewStreak)
	}
	if res.PointsEarned != 23 { // 10 + 5 + 3 + 5
		t.Errorf("points = %d, want 23", res.PointsEarned)
	}

	lucky := luckyCalc(t).ComputeReward(in)
	if lucky.PointsEarned < 28 || lucky.PointsEarned > 38 {
		t.Errorf("lucky points = %d, want in [28, 38]", lucky.PointsEarned)
	}

	_, awarded := engine.AwardBadges(nil, res.NewStreak, now)
	if awarded != "Sugar Scout" {
		t.Errorf("badge = %q, want Sugar Scout at streak 3", awarded)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Badge Awarder
// ═══════════════════════════════════════════════════════════════════════════

func TestBadges_Milestones(t *testing.T) {
	now := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		streak int
		want   string
	}{
		{1, "First Spike"},
		{2, ""},
		{3, "Sugar Scout"},
		{4, ""},
		{7, "Spike Crusher"},
		{8, ""},
		{21, ""},
	}
	for _, tt := range tests {
		badges, awarded := engine.AwardBadges(nil, tt.streak, now)
		if awarded != tt.want {
			t.Errorf("streak %d: awarded %q, want %q", tt.streak, awarded, tt.want)
		}
		wantLen := 0
		if tt.want != "" {
			wantLen = 1
		}
		if len(badges) != wantLen {
			t.Errorf("streak %d: badge set size %d, want %d", tt.streak, len(badges), wantLen)
		}
	}
}

func TestBadges_IdempotentOverName(t *testing.T) {
	now := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)

	badges, awarded := engine.AwardBadges(nil, 1, now)
	if awarded != "First Spike" {
		t.Fatalf("first award = %q, want First Spike", awarded)
	}

	// Streak reset back to 1 — milestone matches again but the badge exists.
	badges2, awarded2 := engine.AwardBadges(badges, 1, now.AddDate(0, 0, 10))
	if awarded2 != "" {
		t.Errorf("re-award = %q, want empty (already owned)", awarded2)
	}
	if len(badges2) != 1 {
		t.Errorf("badge set size %d after duplicate award, want 1", len(badges2))
	}
}

func TestBadges_PreservesExisting(t *testing.T) {
	now := time.Date(2025, 7, 7, 12, 0, 0, 0, time.UTC)
	owned := []domain.Badge{
		{Name: "First Spike", Icon: "🔥", AwardedAt: now.AddDate(0, 0, -6)},
		{Name: "Sugar Scout", Icon: "🥈", AwardedAt: now.AddDate(0, 0, -4)},
	}

	badges, awarded := engine.AwardBadges(owned, 7, now)
	if awarded != "Spike Crusher" {
		t.Errorf("awarded %q, want Spike Crusher", awarded)
	}
	if len(badges) != 3 {
		t.Errorf("badge set size %d, want 3", len(badges))
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Insight Heuristic Engine
// ═══════════════════════════════════════════════════════════════════════════

const (
	walkAction    = "Try a 10-minute walk to use up this glucose immediately."
	waterAction   = "Drink a glass of water to help process the sugar."
	proteinAction = "Pair this with some protein (like nuts) to slow absorption."
)

func TestInsight_RulePrecedence(t *testing.T) {
	noon := time.Date(2025, 7, 1, 13, 0, 0, 0, time.UTC)
	morning := time.Date(2025, 7, 1, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2025, 7, 1, 20, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		in         engine.InsightInput
		wantAction string
	}{
		{
			// Rule 1 beats everything else even when later rules also match.
			name: "high bmi wins over active day",
			in: engine.InsightInput{
				Intensity: 4, Steps: 9000, SleepHours: 4,
				HeightCM: 170, WeightKG: 82, // bmi ~28.4
				Now: morning,
			},
			wantAction: walkAction,
		},
		{
			name:       "active day",
			in:         engine.InsightInput{Intensity: 2, Steps: 8001, SleepHours: 8, Now: noon},
			wantAction: "Keep moving to burn off the extra energy.",
		},
		{
			name:       "evening couch sugar",
			in:         engine.InsightInput{Intensity: 2, Steps: 2000, SleepHours: 8, Now: evening},
			wantAction: "Try a 10-minute walk before bed to stabilize blood sugar.",
		},
		{
			name:       "morning heavy sugar",
			in:         engine.InsightInput{Intensity: 4, Steps: 4000, SleepHours: 8, Now: morning},
			wantAction: proteinAction,
		},
		{
			name:       "sleep deprived",
			in:         engine.InsightInput{Intensity: 2, Steps: 4000, SleepHours: 5, Now: noon},
			wantAction: "A short nap or fresh air is better than sugar right now.",
		},
		{
			name:       "default",
			in:         engine.InsightInput{Intensity: 2, Steps: 4000, SleepHours: 8, Now: noon},
			wantAction: waterAction,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := engine.DeriveInsight(tt.in)
			if got.Action != tt.wantAction {
				t.Errorf("action = %q, want %q", got.Action, tt.wantAction)
			}
			if got.Insight == "" {
				t.Error("insight must never be empty")
			}
		})
	}
}

func TestInsight_Deterministic(t *testing.T) {
	in := engine.InsightInput{
		Type: "Chai", Intensity: 4, Steps: 2500, SleepHours: 7,
		HeightCM: 160, WeightKG: 70,
		Now: time.Date(2025, 7, 1, 19, 0, 0, 0, time.UTC),
	}
	first := engine.DeriveInsight(in)
	for i := 0; i < 10; i++ {
		if got := engine.DeriveInsight(in); got != first {
			t.Fatalf("call %d diverged: %+v vs %+v", i, got, first)
		}
	}
}

func TestInsight_HighBMIRegardlessOfContext(t *testing.T) {
	// bmi 28, intensity 4 — rule 1 fires whatever steps/sleep say.
	for _, steps := range []int{0, 2000, 9000} {
		for _, sleep := range []float64{4, 8} {
			got := engine.DeriveInsight(engine.InsightInput{
				Intensity: 4, Steps: steps, SleepHours: sleep,
				HeightCM: 170, WeightKG: 28 * 1.7 * 1.7,
				Now: time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC),
			})
			if got.Action != walkAction {
				t.Errorf("steps=%d sleep=%.0f: action = %q, want weight-management walk", steps, sleep, got.Action)
			}
		}
	}
}

func TestInsight_MissingBodyMetricsSkipRuleOne(t *testing.T) {
	// No height/weight — bmi treated as 0, rule 1 can never fire.
	got := engine.DeriveInsight(engine.InsightInput{
		Intensity: 5, Steps: 4000, SleepHours: 8,
		Now: time.Date(2025, 7, 1, 13, 0, 0, 0, time.UTC),
	})
	if got.Action == walkAction {
		t.Error("rule 1 fired without body metrics")
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// BMI
// ═══════════════════════════════════════════════════════════════════════════

func TestBMI(t *testing.T) {
	tests := []struct {
		height, weight float64
		want           float64
	}{
		{170, 82, 28.4},
		{180, 75, 23.1},
		{160, 70, 27.3},
		{0, 70, 0},
		{170, 0, 0},
		{-1, 70, 0},
	}
	for _, tt := range tests {
		if got := engine.BMI(tt.height, tt.weight); got != tt.want {
			t.Errorf("BMI(%.0f, %.0f) = %.1f, want %.1f", tt.height, tt.weight, got, tt.want)
		}
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Action-Completion Validator
// ═══════════════════════════════════════════════════════════════════════════

func TestCompletion_Window(t *testing.T) {
	created := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		elapsed   time.Duration
		completed bool
		wantErr   error
	}{
		{"fresh", time.Minute, false, nil},
		{"just inside", 29*time.Minute + 59*time.Second, false, nil},
		{"exactly at boundary", 30 * time.Minute, false, nil},
		{"one second past", 30*time.Minute + time.Second, false, domain.ErrCompletionExpired},
		{"31 minutes old", 31 * time.Minute, false, domain.ErrCompletionExpired},
		{"already completed", time.Minute, true, domain.ErrAlreadyCompleted},
		{"completed beats expired", time.Hour, true, domain.ErrAlreadyCompleted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := engine.ValidateCompletion(created, tt.completed, created.Add(tt.elapsed))
			if err != tt.wantErr {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
