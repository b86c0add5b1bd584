package domain

// Post is the posts/{postId} document. Author name/image are denormalized
// copies kept in sync by the profile-sync handler.
type Post struct {
	ID          string `firestore:"-" json:"id"`
	AuthorID    string `firestore:"authorId" json:"authorId"`
	AuthorName  string `firestore:"authorName" json:"authorName"`
	AuthorImage string `firestore:"authorImage" json:"authorImage"`
	Title       string `firestore:"title" json:"title"`
	LikeCount   int64  `firestore:"likeCount" json:"likeCount"`
}

// Comment is the posts/{postId}/comments/{commentId} document
type Comment struct {
	ID        string `firestore:"-" json:"id"`
	PostID    string `firestore:"-" json:"postId"`
	UserID    string `firestore:"userId" json:"userId"`
	UserName  string `firestore:"userName" json:"userName"`
	UserImage string `firestore:"userImage" json:"userImage"`
	Text      string `firestore:"text" json:"text"`
	LikeCount int64  `firestore:"likeCount" json:"likeCount"`
}
