// Package tracker orchestrates the event-processing sequence: body metrics →
// reward calculator → badge awarder → insight engine, over one user snapshot
// per event. It owns the read-modify-write around the pure core so two
// simultaneous logs for one device cannot clobber each other's streak.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spikewise/spikewise/internal/app/engine"
	"github.com/spikewise/spikewise/internal/app/points"
	"github.com/spikewise/spikewise/internal/domain"
	"github.com/spikewise/spikewise/internal/infra/gemini"
	"github.com/spikewise/spikewise/internal/infra/metrics"
	"github.com/spikewise/spikewise/internal/infra/sqlite"
)

// InsightSource is the AI collaborator contract. The heuristic engine answers
// whenever the source is absent, errors, or returns unusable output.
type InsightSource interface {
	Enabled() bool
	Insight(ctx context.Context, req gemini.InsightRequest) (domain.Advice, error)
	AnalyzeText(ctx context.Context, text string) (domain.ItemAnalysis, error)
}

// Service wires storage, the pure engine, the points ledger, and the AI
// collaborator into the public tracking operations.
type Service struct {
	db     *sqlite.DB
	ledger *points.Service
	calc   *engine.Calculator
	ai     InsightSource // nil = heuristics only

	rng *rand.Rand // fallback label selection

	mu    sync.Mutex
	locks map[string]*sync.Mutex // per-device write serialization
}

// New creates a tracker service. ai may be nil; rng may be nil for a
// time-seeded source.
func New(db *sqlite.DB, ledger *points.Service, calc *engine.Calculator, ai InsightSource, rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{
		db:     db,
		ledger: ledger,
		calc:   calc,
		ai:     ai,
		rng:    rng,
		locks:  make(map[string]*sync.Mutex),
	}
}

// lockDevice serializes state updates per device identity.
func (s *Service) lockDevice(deviceID string) func() {
	s.mu.Lock()
	l, ok := s.locks[deviceID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[deviceID] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// ─── Registration ───────────────────────────────────────────────────────────

// RegisterRequest is the signup payload for a device.
type RegisterRequest struct {
	DeviceID      string
	Age           int
	Gender        string
	HeightCM      float64
	WeightKG      float64
	ActivityLevel domain.ActivityLevel
}

// Register creates a user for the device, or returns the existing one.
// The BMI snapshot is computed here, at registration, when both body
// measurements are present.
func (s *Service) Register(req RegisterRequest, now time.Time) (*domain.User, bool, error) {
	if req.DeviceID == "" {
		return nil, false, domain.ErrMissingDeviceID
	}

	unlock := s.lockDevice(req.DeviceID)
	defer unlock()

	if existing, err := s.db.GetUser(req.DeviceID); err == nil {
		return existing, false, nil
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, false, fmt.Errorf("load user: %w", err)
	}

	activity := req.ActivityLevel
	if activity == "" {
		activity = domain.ActivityModerate
	}

	u := domain.User{
		DeviceID:      req.DeviceID,
		Age:           req.Age,
		Gender:        req.Gender,
		HeightCM:      req.HeightCM,
		WeightKG:      req.WeightKG,
		ActivityLevel: activity,
		TargetSugar:   domain.DefaultTargetSugar,
		BMI:           engine.BMI(req.HeightCM, req.WeightKG),
		CreatedAt:     now,
	}

	if err := s.db.InsertUser(u); err != nil {
		return nil, false, fmt.Errorf("insert user: %w", err)
	}
	metrics.UsersRegistered.Inc()
	return &u, true, nil
}

// GetUser loads a user snapshot with badges.
func (s *Service) GetUser(deviceID string) (*domain.User, error) {
	return s.db.GetUser(deviceID)
}

// ─── Event logging ──────────────────────────────────────────────────────────

// LogRequest is one consumption event as submitted by the client.
type LogRequest struct {
	DeviceID   string
	Type       string
	Intensity  int // 0 = unset, defaulted below
	Steps      int
	SleepHours float64
	CustomText bool // free-text entry: ask the AI to extract item+intensity
}

// LogResult is everything the frontend renders after one logged event.
type LogResult struct {
	Log           domain.LogEntry `json:"log"`
	Streak        int             `json:"streak"`
	Points        int64           `json:"points"`
	PointsEarned  int             `json:"pointsEarned"`
	SurpriseBonus int             `json:"surpriseBonus"`
	NewBadge      string          `json:"newBadge,omitempty"`
	Insight       string          `json:"insight"`
	Action        string          `json:"action"`
}

// Fallback item labels when no type could be determined. Picked at random so
// repeated bare logs don't all read identically.
var textFallbacks = []string{"Quick Entry", "Text Note", "Manual Log"}

// LogEvent validates and scores one event, persists the deltas, and attaches
// an insight/action pair — AI-generated when possible, heuristic otherwise.
func (s *Service) LogEvent(ctx context.Context, req LogRequest, now time.Time) (*LogResult, error) {
	if req.DeviceID == "" {
		return nil, domain.ErrMissingDeviceID
	}

	// Free-text entries go through the AI for item extraction before the
	// defaulting below. Failure just leaves the raw text in place.
	if req.CustomText && req.Type != "" && req.Intensity == 0 && s.ai != nil && s.ai.Enabled() {
		if analysis, err := s.ai.AnalyzeText(ctx, req.Type); err == nil {
			if analysis.Item != "" {
				req.Type = analysis.Item
			}
			if analysis.Intensity >= 1 && analysis.Intensity <= 5 {
				req.Intensity = analysis.Intensity
			}
		} else {
			log.Printf("[tracker] text analysis failed, keeping raw entry: %v", err)
		}
	}

	// Caller-layer defaults. The core itself never substitutes.
	if req.Type == "" {
		req.Type = textFallbacks[s.rng.Intn(len(textFallbacks))]
	}
	if req.Intensity == 0 {
		req.Intensity = 3
	}

	if req.Intensity < 1 || req.Intensity > 5 {
		return nil, domain.ErrInvalidIntensity
	}
	if req.Steps < 0 {
		return nil, domain.ErrInvalidSteps
	}
	if req.SleepHours < 0 {
		return nil, domain.ErrInvalidSleep
	}

	unlock := s.lockDevice(req.DeviceID)
	defer unlock()

	user, err := s.db.GetUser(req.DeviceID)
	if err != nil {
		return nil, err
	}

	entry := domain.LogEntry{
		ID:        uuid.New().String(),
		DeviceID:  req.DeviceID,
		Type:      req.Type,
		Intensity: req.Intensity,
		CreatedAt: now,
	}
	if err := s.db.InsertLog(entry); err != nil {
		return nil, fmt.Errorf("insert log: %w", err)
	}

	// Reward calculator
	reward := s.calc.ComputeReward(engine.RewardInput{
		PreviousStreak: user.Streak,
		LastLogDate:    user.LastLogDate,
		Steps:          req.Steps,
		Now:            now,
	})

	newPoints := user.Points + int64(reward.PointsEarned)
	if err := s.db.UpdateUserState(req.DeviceID, reward.NewStreak, newPoints, now); err != nil {
		return nil, fmt.Errorf("update user state: %w", err)
	}
	if err := s.ledger.Record(req.DeviceID, domain.PointsLogReward, int64(reward.PointsEarned), entry.ID, newPoints, now); err != nil {
		return nil, fmt.Errorf("record points: %w", err)
	}

	// Badge awarder
	_, newBadge := engine.AwardBadges(user.Badges, reward.NewStreak, now)
	if newBadge != "" {
		for _, m := range engine.Milestones() {
			if m.Name == newBadge {
				if err := s.db.InsertBadge(req.DeviceID, domain.Badge{Name: m.Name, Icon: m.Icon, AwardedAt: now}); err != nil {
					return nil, fmt.Errorf("insert badge: %w", err)
				}
				metrics.BadgesAwarded.WithLabelValues(m.Name).Inc()
			}
		}
	}

	metrics.LogsCreated.Inc()
	metrics.PointsAwarded.WithLabelValues(string(domain.PointsLogReward)).Add(float64(reward.PointsEarned))
	metrics.StreakCurrent.Set(float64(reward.NewStreak))
	if reward.SurpriseBonus > 0 {
		metrics.SurpriseBonuses.Inc()
	}

	// Insight engine — run against the post-reward snapshot
	user.Streak = reward.NewStreak
	advice := s.adviceFor(ctx, user, req, now)
	if err := s.db.SetLogAdvice(entry.ID, advice); err != nil {
		return nil, fmt.Errorf("set log advice: %w", err)
	}
	entry.Action = advice.Action
	entry.Insight = advice.Insight

	return &LogResult{
		Log:           entry,
		Streak:        reward.NewStreak,
		Points:        newPoints,
		PointsEarned:  reward.PointsEarned,
		SurpriseBonus: reward.SurpriseBonus,
		NewBadge:      newBadge,
		Insight:       advice.Insight,
		Action:        advice.Action,
	}, nil
}

// adviceFor prefers the AI collaborator and falls back to the heuristic
// engine. The fallback is total — this path cannot fail.
func (s *Service) adviceFor(ctx context.Context, user *domain.User, req LogRequest, now time.Time) domain.Advice {
	// Context defaults: an unsynced pedometer reads as a normal day,
	// unknown sleep as a full night.
	steps := req.Steps
	if steps == 0 {
		steps = 5000
	}
	sleep := req.SleepHours
	if sleep == 0 {
		sleep = 7
	}

	if s.ai != nil && s.ai.Enabled() {
		advice, err := s.ai.Insight(ctx, gemini.InsightRequest{
			Type:          req.Type,
			Intensity:     req.Intensity,
			Steps:         steps,
			SleepHours:    sleep,
			Age:           user.Age,
			Gender:        user.Gender,
			ActivityLevel: user.ActivityLevel,
			TargetSugar:   user.TargetSugar,
			Streak:        user.Streak,
			Now:           now,
		})
		if err == nil {
			metrics.InsightsServed.WithLabelValues("ai").Inc()
			return advice
		}
		metrics.AIFallbacks.WithLabelValues(fallbackReason(err)).Inc()
		log.Printf("[tracker] insight fallback: %v", err)
	}

	metrics.InsightsServed.WithLabelValues("heuristic").Inc()
	return engine.DeriveInsight(engine.InsightInput{
		Type:       req.Type,
		Intensity:  req.Intensity,
		Steps:      steps,
		SleepHours: sleep,
		HeightCM:   user.HeightCM,
		WeightKG:   user.WeightKG,
		Now:        now,
	})
}

func fallbackReason(err error) string {
	if errors.Is(err, gemini.ErrDisabled) {
		return "disabled"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	return "error"
}

// ─── History ────────────────────────────────────────────────────────────────

// DefaultLogLimit caps the log history page.
const DefaultLogLimit = 20

// ListLogs returns the device's most recent logs, newest first.
func (s *Service) ListLogs(deviceID string, limit int) ([]domain.LogEntry, error) {
	if limit <= 0 || limit > DefaultLogLimit {
		limit = DefaultLogLimit
	}
	return s.db.ListLogs(deviceID, limit)
}

// PointsHistory returns the device's recent ledger entries.
func (s *Service) PointsHistory(deviceID string, limit int) ([]domain.PointsEntry, error) {
	return s.ledger.History(deviceID, limit)
}

// ─── Action completion ──────────────────────────────────────────────────────

// CompleteAction marks a log's suggested action as done inside the
// completion window and awards the flat bonus. Returns the user's new
// points balance.
func (s *Service) CompleteAction(ctx context.Context, logID string, now time.Time) (int64, error) {
	entry, err := s.db.GetLog(logID)
	if err != nil {
		return 0, err
	}

	if err := engine.ValidateCompletion(entry.CreatedAt, entry.ActionCompleted, now); err != nil {
		switch {
		case errors.Is(err, domain.ErrAlreadyCompleted):
			metrics.Completions.WithLabelValues("already_completed").Inc()
		case errors.Is(err, domain.ErrCompletionExpired):
			metrics.Completions.WithLabelValues("expired").Inc()
		}
		return 0, err
	}

	unlock := s.lockDevice(entry.DeviceID)
	defer unlock()

	// The completed-flag guard in the UPDATE makes the bonus at-most-once
	// even if two completion requests race past the validator.
	if err := s.db.CompleteLog(logID); err != nil {
		if errors.Is(err, domain.ErrAlreadyCompleted) {
			metrics.Completions.WithLabelValues("already_completed").Inc()
		}
		return 0, err
	}

	if err := s.db.AddPoints(entry.DeviceID, engine.CompletionBonus); err != nil {
		return 0, fmt.Errorf("add completion bonus: %w", err)
	}

	user, err := s.db.GetUser(entry.DeviceID)
	if err != nil {
		return 0, err
	}
	if err := s.ledger.Record(entry.DeviceID, domain.PointsCompletionBonus, engine.CompletionBonus, logID, user.Points, now); err != nil {
		return 0, fmt.Errorf("record bonus: %w", err)
	}

	metrics.Completions.WithLabelValues("ok").Inc()
	metrics.PointsAwarded.WithLabelValues(string(domain.PointsCompletionBonus)).Add(engine.CompletionBonus)
	return user.Points, nil
}
