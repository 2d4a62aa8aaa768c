package domain

import "time"

// LogEntry is one recorded sugar-consumption event.
// Lifecycle: created with ActionCompleted=false, mutated once by the insight
// flow to fill Action/Insight, mutated once more inside the completion window
// to flip ActionCompleted.
type LogEntry struct {
	ID        string    `json:"id"`
	DeviceID  string    `json:"device_id"`
	Type      string    `json:"type"`      // free-text item label ("Chai", "Cold Drink", ...)
	Intensity int       `json:"intensity"` // 1-5 scale
	CreatedAt time.Time `json:"created_at"`

	Action          string `json:"action"`
	Insight         string `json:"insight"`
	ActionCompleted bool   `json:"action_completed"`
}

// Advice is an (insight, corrective action) pair attached to a log entry.
// Produced by the AI collaborator when available, the heuristic engine otherwise.
type Advice struct {
	Insight string `json:"insight"`
	Action  string `json:"action"`
}

// ItemAnalysis is the AI collaborator's reading of a free-text food description.
type ItemAnalysis struct {
	Item      string `json:"item"`
	Intensity int    `json:"intensity"`
}

// RewardResult is the outcome of scoring one logged event.
type RewardResult struct {
	NewStreak     int `json:"new_streak"`
	PointsEarned  int `json:"points_earned"`
	SurpriseBonus int `json:"surprise_bonus"`
}

// PointsSource categorizes how points were earned.
type PointsSource string

const (
	PointsLogReward       PointsSource = "LOG_REWARD"
	PointsCompletionBonus PointsSource = "COMPLETION_BONUS"
)

// PointsEntry is one row of the append-only points ledger.
type PointsEntry struct {
	ID        int64        `json:"id"`
	DeviceID  string       `json:"device_id"`
	Timestamp time.Time    `json:"timestamp"`
	Source    PointsSource `json:"source"`
	Amount    int64        `json:"amount"`
	LogID     string       `json:"log_id,omitempty"`
	Balance   int64        `json:"balance"`
}
