package domain

import "time"

// Membership is a denormalized cache of a group the user joined, kept on the
// user document so the client can render the group list without extra reads.
type Membership struct {
	GroupID    string `firestore:"group_id" json:"group_id"`
	GroupName  string `firestore:"group_name" json:"group_name"`
	GroupImage string `firestore:"group_image" json:"group_image"`
}

// User is the users/{userId} document
type User struct {
	ID           string       `firestore:"-" json:"id"`
	Nickname     string       `firestore:"nickname" json:"nickname"`
	Image        string       `firestore:"image" json:"image"`
	JoinGroups   []Membership `firestore:"joingroup" json:"joingroup"`
	StreakDays   int          `firestore:"streakDays" json:"streakDays"`
	LastActiveAt time.Time    `firestore:"lastActiveAt" json:"lastActiveAt"`
}
