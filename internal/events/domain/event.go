package domain

import "encoding/json"

// Event types published by the write path
const (
	CommentCreated     = "comment.created"
	PostLikeCreated    = "post_like.created"
	PostLikeDeleted    = "post_like.deleted"
	CommentLikeCreated = "comment_like.created"
	CommentLikeDeleted = "comment_like.deleted"
	UserUpdated        = "user.updated"
	UserDeleted        = "user.deleted"
	GroupUpdated       = "group.updated"
	GroupDeleted       = "group.deleted"
)

// Event is the envelope delivered for every domain mutation: path parameters
// identifying the entity hierarchy plus the written document's after-state
// (and before-state for updates).
type Event struct {
	Type   string            `json:"type"`
	Params map[string]string `json:"params"`
	Before json.RawMessage   `json:"before,omitempty"`
	After  json.RawMessage   `json:"after,omitempty"`
}

// Param returns a path parameter or "" when absent
func (e *Event) Param(key string) string {
	return e.Params[key]
}
