package usecase

import (
	"context"
	"log"
	"time"

	"modak-backend/internal/social/repository"
)

// A day counts toward the streak when at least this many minutes were focused
const streakThresholdMinutes = 30

// StreakUsecase recomputes every user's streak counter from the prior day's
// timer-activity log. Stateless between runs: the working window is derived
// from the current time at invocation.
type StreakUsecase struct {
	users      repository.UserRepository
	activities repository.ActivityRepository
	loc        *time.Location
}

// NewStreakUsecase creates a new StreakUsecase
func NewStreakUsecase(users repository.UserRepository, activities repository.ActivityRepository, loc *time.Location) *StreakUsecase {
	return &StreakUsecase{users: users, activities: activities, loc: loc}
}

// ComputeStreaks processes yesterday's activity for every user: >= 30
// focused minutes increments the streak by 1, anything less resets it to 0.
// Writes back only when the value changed. Per-user failures are logged and
// the scan continues. Returns the number of users updated.
func (u *StreakUsecase) ComputeStreaks(ctx context.Context) (int, error) {
	now := time.Now().In(u.loc)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, u.loc).AddDate(0, 0, -1)
	dayEnd := dayStart.AddDate(0, 0, 1).Add(-time.Millisecond)

	users, err := u.users.ListUsers(ctx)
	if err != nil {
		return 0, err
	}

	log.Printf("[Streak] Computing streaks for %d users (day %s)", len(users), dayStart.Format("2006-01-02"))
	updated := 0
	for _, user := range users {
		activities, err := u.activities.ListForDay(ctx, user.ID, dayStart, dayEnd)
		if err != nil {
			log.Printf("[Streak] Failed to load activities for user %s: %v", user.ID, err)
			continue
		}

		minutes := FocusMinutes(activities, dayEnd)
		streak := 0
		if minutes >= streakThresholdMinutes {
			streak = user.StreakDays + 1
		}
		if streak == user.StreakDays {
			continue
		}

		if err := u.users.UpdateStreak(ctx, user.ID, streak); err != nil {
			log.Printf("[Streak] Failed to update streak for user %s: %v", user.ID, err)
			continue
		}
		updated++
	}

	log.Printf("[Streak] Updated %d users", updated)
	return updated, nil
}
