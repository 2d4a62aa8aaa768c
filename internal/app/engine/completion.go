package engine

import (
	"time"

	"github.com/spikewise/spikewise/internal/domain"
)

// CompletionWindow is how long after creation a suggested action may still
// be marked completed.
const CompletionWindow = 30 * time.Minute

// CompletionBonus is the flat point reward for completing an action inside
// the window. Unconditional — no variable component, no cap.
const CompletionBonus = 7

// ValidateCompletion checks whether a log's action may be marked completed.
// Returns domain.ErrAlreadyCompleted when the flag is already set (which
// also guarantees the bonus is applied at most once per log), or
// domain.ErrCompletionExpired when the window has passed.
func ValidateCompletion(createdAt time.Time, actionCompleted bool, now time.Time) error {
	if actionCompleted {
		return domain.ErrAlreadyCompleted
	}
	if now.Sub(createdAt) > CompletionWindow {
		return domain.ErrCompletionExpired
	}
	return nil
}
