package domain

import "time"

// Notification types
const (
	TypeComment = "comment"
	TypeLike    = "like"
)

// Notification is one notifications/{userId}/items/{id} document. The sender
// name/image are a snapshot captured at send time, not a live link.
type Notification struct {
	ID                 string            `firestore:"-" json:"id"`
	UserID             string            `firestore:"-" json:"userId"` // target owner
	Type               string            `firestore:"type" json:"type"`
	TargetID           string            `firestore:"targetId" json:"targetId"`
	SenderID           string            `firestore:"senderId" json:"senderId"`
	SenderName         string            `firestore:"senderName" json:"senderName"`
	SenderProfileImage string            `firestore:"senderProfileImage" json:"senderProfileImage"`
	Title              string            `firestore:"title" json:"title"`
	Body               string            `firestore:"body" json:"body"`
	Data               map[string]string `firestore:"data" json:"data"`
	IsRead             bool              `firestore:"isRead" json:"isRead"`
	CreatedAt          time.Time         `firestore:"createdAt" json:"createdAt"`
	ReadAt             *time.Time        `firestore:"readAt" json:"readAt"`
}
