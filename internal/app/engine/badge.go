package engine

import (
	"time"

	"github.com/spikewise/spikewise/internal/domain"
)

// Milestones returns the streak-to-badge table. Each entry fires only when
// the new streak equals its value exactly.
func Milestones() []domain.Milestone {
	return []domain.Milestone{
		{Streak: 1, Name: "First Spike", Icon: "🔥"},
		{Streak: 3, Name: "Sugar Scout", Icon: "🥈"},
		{Streak: 7, Name: "Spike Crusher", Icon: "🏅"},
	}
}

// AwardBadges checks the new streak against the milestone table and appends
// at most one badge. Awarding is idempotent over the badge name: when the
// milestone matched but the badge is already owned, the set is unchanged and
// the returned name is empty.
func AwardBadges(badges []domain.Badge, newStreak int, now time.Time) ([]domain.Badge, string) {
	for _, m := range Milestones() {
		if m.Streak != newStreak {
			continue
		}
		for _, b := range badges {
			if b.Name == m.Name {
				return badges, "" // already owned
			}
		}
		badges = append(badges, domain.Badge{Name: m.Name, Icon: m.Icon, AwardedAt: now})
		return badges, m.Name
	}
	return badges, ""
}
