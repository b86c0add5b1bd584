package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modak-backend/internal/notification/domain"
	socialdomain "modak-backend/internal/social/domain"
	"modak-backend/pkg/fcm"
)

type fakeUserRepo struct {
	users map[string]*socialdomain.User
	err   error
}

func (f *fakeUserRepo) FindByID(_ context.Context, id string) (*socialdomain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.users[id], nil
}
func (f *fakeUserRepo) ListUsers(context.Context) ([]*socialdomain.User, error) { return nil, nil }
func (f *fakeUserRepo) ListUserIDs(context.Context) ([]string, error)           { return nil, nil }
func (f *fakeUserRepo) UpdateStreak(context.Context, string, int) error         { return nil }
func (f *fakeUserRepo) RewriteMembershipCache(context.Context, string, socialdomain.Membership) error {
	return nil
}
func (f *fakeUserRepo) RemoveMembershipCache(context.Context, string, string) error { return nil }
func (f *fakeUserRepo) DeletePersonalRecords(context.Context, string) (int, error)  { return 0, nil }

type fakePostRepo struct {
	posts    map[string]*socialdomain.Post
	comments map[string]*socialdomain.Comment // key: postID/commentID
}

func (f *fakePostRepo) FindByID(_ context.Context, postID string) (*socialdomain.Post, error) {
	return f.posts[postID], nil
}
func (f *fakePostRepo) FindComment(_ context.Context, postID, commentID string) (*socialdomain.Comment, error) {
	return f.comments[postID+"/"+commentID], nil
}
func (f *fakePostRepo) UpdateAuthorProfile(context.Context, string, string, string) (int, error) {
	return 0, nil
}
func (f *fakePostRepo) UpdateCommentAuthorProfile(context.Context, string, string, string) (int, error) {
	return 0, nil
}
func (f *fakePostRepo) DeleteLikesByUser(context.Context, string) (int, error) { return 0, nil }

type fakeTokenRepo struct {
	tokens map[string][]string
}

func (f *fakeTokenRepo) ActiveTokens(_ context.Context, userID string) []string {
	return f.tokens[userID]
}
func (f *fakeTokenRepo) DeleteExpired(context.Context, string) (int, error) { return 0, nil }
func (f *fakeTokenRepo) DeleteAll(context.Context, string) (int, error)     { return 0, nil }

type likeDeletion struct {
	ownerID, postID, senderID, commentID string
}

type fakeNotificationRepo struct {
	recorded  []*domain.Notification
	recordErr error
	deletions []likeDeletion
	deleted   int
}

func (f *fakeNotificationRepo) Record(_ context.Context, n *domain.Notification) error {
	if f.recordErr != nil {
		return f.recordErr
	}
	f.recorded = append(f.recorded, n)
	return nil
}
func (f *fakeNotificationRepo) DeleteLikeNotifications(_ context.Context, ownerID, postID, senderID, commentID string) (int, error) {
	f.deletions = append(f.deletions, likeDeletion{ownerID, postID, senderID, commentID})
	return f.deleted, nil
}
func (f *fakeNotificationRepo) DeleteOlderThan(context.Context, time.Time) (int, error) {
	return 0, nil
}
func (f *fakeNotificationRepo) UpdateSenderProfile(context.Context, string, string, string, time.Time) (int, error) {
	return 0, nil
}
func (f *fakeNotificationRepo) DeleteByGroup(context.Context, string, time.Time) (int, error) {
	return 0, nil
}
func (f *fakeNotificationRepo) DeleteAllForUser(context.Context, string) (int, error) {
	return 0, nil
}

type fakePush struct {
	tokens []string
	sent   []fcm.NotificationData
	err    error
}

func (f *fakePush) SendEach(_ context.Context, tokens []string, n fcm.NotificationData) (*fcm.SendReport, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tokens = append(f.tokens, tokens...)
	f.sent = append(f.sent, n)
	return &fcm.SendReport{SuccessCount: len(tokens)}, nil
}

func newFixture() (*NotifyUsecase, *fakePostRepo, *fakeNotificationRepo, *fakePush) {
	users := &fakeUserRepo{users: map[string]*socialdomain.User{
		"bob": {ID: "bob", Nickname: "밥", Image: "https://img/bob.png"},
	}}
	posts := &fakePostRepo{
		posts: map[string]*socialdomain.Post{
			"post1": {ID: "post1", AuthorID: "alice", Title: "오늘의 집중 기록"},
		},
		comments: map[string]*socialdomain.Comment{
			"post1/c1": {ID: "c1", PostID: "post1", UserID: "alice", Text: "오늘도 화이팅!"},
		},
	}
	tokens := &fakeTokenRepo{tokens: map[string][]string{
		"alice": {"token-a", "token-b"},
	}}
	notifications := &fakeNotificationRepo{}
	push := &fakePush{}
	return NewNotifyUsecase(users, posts, tokens, notifications, push), posts, notifications, push
}

func TestCommentCreated(t *testing.T) {
	u, _, notifications, push := newFixture()

	result := u.CommentCreated(context.Background(), "post1", "c9", "bob", "좋은 글이네요")
	assert.True(t, result.Success)
	assert.Equal(t, domain.TypeComment, result.NotificationType)

	require.Len(t, notifications.recorded, 1)
	n := notifications.recorded[0]
	assert.Equal(t, "alice", n.UserID)
	assert.Equal(t, domain.TypeComment, n.Type)
	assert.Equal(t, "post1", n.TargetID)
	assert.Equal(t, "bob", n.SenderID)
	assert.Equal(t, "밥", n.SenderName)
	assert.Equal(t, "c9", n.Data["commentId"])

	// Push dispatched to the author's active tokens
	assert.Equal(t, []string{"token-a", "token-b"}, push.tokens)
	require.Len(t, push.sent, 1)
	assert.Equal(t, n.Title, push.sent[0].Title)
}

func TestCommentCreatedTruncatesBody(t *testing.T) {
	u, _, notifications, _ := newFixture()

	long := strings.Repeat("가", 120)
	result := u.CommentCreated(context.Background(), "post1", "c9", "bob", long)
	require.True(t, result.Success)

	require.Len(t, notifications.recorded, 1)
	n := notifications.recorded[0]
	// Body carries exactly the first 50 runes plus an ellipsis
	assert.Contains(t, n.Body, strings.Repeat("가", 50)+"...")
	assert.NotContains(t, n.Body, strings.Repeat("가", 51))
	// Data excerpt is capped at 100 runes, no ellipsis
	assert.Equal(t, strings.Repeat("가", 100), n.Data["commentContent"])
}

func TestCommentCreatedSelfSuppressed(t *testing.T) {
	u, posts, notifications, push := newFixture()
	posts.posts["post1"].AuthorID = "bob"

	result := u.CommentCreated(context.Background(), "post1", "c9", "bob", "내 글에 내 댓글")
	assert.True(t, result.Skipped)
	assert.Empty(t, notifications.recorded)
	assert.Empty(t, push.sent)
}

func TestCommentCreatedMissingPost(t *testing.T) {
	u, _, notifications, _ := newFixture()

	result := u.CommentCreated(context.Background(), "gone", "c9", "bob", "text")
	assert.True(t, result.Skipped)
	assert.Empty(t, notifications.recorded)
}

func TestCommentCreatedIncompleteEvent(t *testing.T) {
	u, _, notifications, push := newFixture()

	result := u.CommentCreated(context.Background(), "post1", "c9", "bob", "")
	assert.True(t, result.Skipped)
	assert.Empty(t, notifications.recorded)
	assert.Empty(t, push.sent)
}

func TestPostLikeCreated(t *testing.T) {
	u, _, notifications, push := newFixture()

	result := u.PostLikeCreated(context.Background(), "post1", "bob")
	assert.True(t, result.Success)
	assert.Equal(t, domain.TypeLike, result.NotificationType)

	require.Len(t, notifications.recorded, 1)
	n := notifications.recorded[0]
	assert.Equal(t, "alice", n.UserID)
	assert.Equal(t, domain.TypeLike, n.Type)
	assert.Equal(t, "오늘의 집중 기록", n.Data["postTitle"])
	require.Len(t, push.sent, 1)
}

func TestPostLikeCreatedSelfSuppressed(t *testing.T) {
	u, posts, notifications, _ := newFixture()
	posts.posts["post1"].AuthorID = "bob"

	result := u.PostLikeCreated(context.Background(), "post1", "bob")
	assert.True(t, result.Skipped)
	assert.Empty(t, notifications.recorded)
}

func TestCommentLikeCreatedTargetsPost(t *testing.T) {
	u, posts, notifications, _ := newFixture()
	posts.comments["post1/c1"].Text = strings.Repeat("나", 40)

	result := u.CommentLikeCreated(context.Background(), "post1", "c1", "bob")
	assert.True(t, result.Success)

	require.Len(t, notifications.recorded, 1)
	n := notifications.recorded[0]
	// The client navigates to the post; the comment id rides in data
	assert.Equal(t, "post1", n.TargetID)
	assert.Equal(t, "c1", n.Data["commentId"])
	assert.Equal(t, "alice", n.UserID)
	// Comment excerpt in the body is capped at 30 runes
	assert.Contains(t, n.Body, strings.Repeat("나", 30)+"...")
}

func TestCommentLikeCreatedSelfSuppressed(t *testing.T) {
	u, posts, notifications, _ := newFixture()
	posts.comments["post1/c1"].UserID = "bob"

	result := u.CommentLikeCreated(context.Background(), "post1", "c1", "bob")
	assert.True(t, result.Skipped)
	assert.Empty(t, notifications.recorded)
}

func TestPostLikeDeleted(t *testing.T) {
	u, _, notifications, _ := newFixture()
	notifications.deleted = 1

	result := u.PostLikeDeleted(context.Background(), "post1", "bob")
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.Count)

	require.Len(t, notifications.deletions, 1)
	// Empty comment id: a comment-like notification must not match
	assert.Equal(t, likeDeletion{"alice", "post1", "bob", ""}, notifications.deletions[0])
}

func TestCommentLikeDeletedDisambiguates(t *testing.T) {
	u, _, notifications, _ := newFixture()

	result := u.CommentLikeDeleted(context.Background(), "post1", "c1", "bob")
	assert.True(t, result.Success)

	require.Len(t, notifications.deletions, 1)
	assert.Equal(t, likeDeletion{"alice", "post1", "bob", "c1"}, notifications.deletions[0])
}

func TestDeliverPushFailureStillRecords(t *testing.T) {
	u, _, notifications, push := newFixture()
	push.err = errors.New("transport down")

	result := u.CommentCreated(context.Background(), "post1", "c9", "bob", "댓글")
	assert.NotEmpty(t, result.Err)
	// Recording runs concurrently and is unaffected by the push failure
	assert.Len(t, notifications.recorded, 1)
}

func TestDeliverRecordFailureSwallowed(t *testing.T) {
	u, _, notifications, push := newFixture()
	notifications.recordErr = errors.New("store down")

	result := u.CommentCreated(context.Background(), "post1", "c9", "bob", "댓글")
	assert.True(t, result.Success)
	assert.Len(t, push.sent, 1)
}
