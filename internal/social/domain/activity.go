package domain

import "time"

// Timer activity types, written by the client's focus timer.
const (
	ActivityStart  = "start"
	ActivityPause  = "pause"
	ActivityResume = "resume"
	ActivityEnd    = "end"
)

// TimerActivity is one users/{userId}/timerActivities/{id} log entry.
// The ordered per-day log is the source of truth for focus-time computation.
type TimerActivity struct {
	Type      string    `firestore:"type" json:"type"`
	Timestamp time.Time `firestore:"timestamp" json:"timestamp"`
}
