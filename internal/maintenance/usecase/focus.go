package usecase

import (
	"time"

	"modak-backend/internal/social/domain"
)

// Sessions longer than this are rejected as anomalous (clock skew, missing
// events). Whole minutes.
const maxSessionMinutes = 300

// FocusMinutes reconstructs the total focused minutes from one day's ordered
// timer-activity log. Deterministic: the same log always yields the same
// total.
//
// A session opened by start (or resume) is closed by pause or end, adding
// floor(Δ/60) minutes when the duration falls in (0, 300]. Orphan
// pause/resume/end events and unknown types are ignored. A session still
// running when the log ends is treated as implicitly ending at dayEnd
// (23:59:59.999 of the day), capped at 300 minutes.
func FocusMinutes(activities []domain.TimerActivity, dayEnd time.Time) int {
	total := 0
	var sessionStart time.Time
	open := false
	running := false

	for _, activity := range activities {
		switch activity.Type {
		case domain.ActivityStart:
			sessionStart = activity.Timestamp
			open = true
			running = true
		case domain.ActivityPause:
			if open && running {
				total += validMinutes(sessionStart, activity.Timestamp)
				running = false
			}
		case domain.ActivityResume:
			if open && !running {
				sessionStart = activity.Timestamp
				running = true
			}
		case domain.ActivityEnd:
			if open && running {
				total += validMinutes(sessionStart, activity.Timestamp)
				open = false
				running = false
				sessionStart = time.Time{}
			}
		default:
			// unrecognized activity type, ignore
		}
	}

	if open && running {
		minutes := int(dayEnd.Sub(sessionStart).Minutes())
		if minutes > maxSessionMinutes {
			minutes = maxSessionMinutes
		}
		if minutes > 0 {
			total += minutes
		}
	}

	return total
}

// validMinutes returns the whole minutes between start and end, or 0 when
// the duration is outside (0, 300] (anomalous session).
func validMinutes(start, end time.Time) int {
	minutes := int(end.Sub(start).Minutes())
	if minutes <= 0 || minutes > maxSessionMinutes {
		return 0
	}
	return minutes
}
