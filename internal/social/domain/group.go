package domain

// Group is the groups/{groupId} document
type Group struct {
	ID          string `firestore:"-" json:"id"`
	Name        string `firestore:"name" json:"name"`
	Image       string `firestore:"image" json:"image"`
	MemberCount int64  `firestore:"memberCount" json:"memberCount"`
}

// GroupMember is the groups/{groupId}/members/{memberId} document.
// UserName/ProfileURL are denormalized copies of the user's profile.
// DailyFocusSeconds accumulates focus time per day ("2006-01-02" keys) and is
// drained into the group's monthly stats by the attendance job.
type GroupMember struct {
	ID                string           `firestore:"-" json:"id"`
	UserID            string           `firestore:"userId" json:"userId"`
	UserName          string           `firestore:"userName" json:"userName"`
	ProfileURL        string           `firestore:"profileUrl" json:"profileUrl"`
	DailyFocusSeconds map[string]int64 `firestore:"dailyFocusSeconds" json:"dailyFocusSeconds"`
}
