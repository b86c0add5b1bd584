package usecase

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"modak-backend/internal/notification/domain"
	notifrepo "modak-backend/internal/notification/repository"
	socialrepo "modak-backend/internal/social/repository"
	"modak-backend/pkg/fcm"
)

// Body/excerpt character limits (rune counts, the texts are Korean)
const (
	commentBodyLimit     = 50
	commentLikeBodyLimit = 30
	dataExcerptLimit     = 100
)

const unknownUserName = "알 수 없는 사용자"

// PushSender dispatches one push message per token. Satisfied by *fcm.Client.
type PushSender interface {
	SendEach(ctx context.Context, tokens []string, notification fcm.NotificationData) (*fcm.SendReport, error)
}

// NotifyUsecase turns domain events into push notifications and durable
// notification records. Every method returns a Result, never an error, so
// the trigger infrastructure sees a normal return and does not retry.
type NotifyUsecase struct {
	users         socialrepo.UserRepository
	posts         socialrepo.PostRepository
	tokens        notifrepo.TokenRepository
	notifications notifrepo.NotificationRepository
	push          PushSender
}

// NewNotifyUsecase creates a new NotifyUsecase. push may be nil, in which
// case notifications are still recorded but no push is dispatched.
func NewNotifyUsecase(
	users socialrepo.UserRepository,
	posts socialrepo.PostRepository,
	tokens notifrepo.TokenRepository,
	notifications notifrepo.NotificationRepository,
	push PushSender,
) *NotifyUsecase {
	return &NotifyUsecase{
		users:         users,
		posts:         posts,
		tokens:        tokens,
		notifications: notifications,
		push:          push,
	}
}

// CommentCreated notifies the post author that someone commented on their post
func (u *NotifyUsecase) CommentCreated(ctx context.Context, postID, commentID, commenterID, text string) domain.Result {
	if postID == "" || commentID == "" || commenterID == "" || text == "" {
		log.Printf("[Notify] Incomplete comment event: post=%s comment=%s user=%s", postID, commentID, commenterID)
		return domain.Skip("incomplete comment data")
	}

	post, err := u.posts.FindByID(ctx, postID)
	if err != nil {
		log.Printf("[Notify] Failed to load post %s: %v", postID, err)
		return domain.Failure(err)
	}
	if post == nil {
		log.Printf("[Notify] Post %s not found, skipping comment notification", postID)
		return domain.Skip("post not found")
	}

	// A user's own comment never notifies themselves
	if commenterID == post.AuthorID {
		return domain.Skip("self comment")
	}

	commenter, err := u.users.FindByID(ctx, commenterID)
	if err != nil {
		log.Printf("[Notify] Failed to load commenter %s: %v", commenterID, err)
		return domain.Failure(err)
	}
	if commenter == nil {
		log.Printf("[Notify] Commenter %s not found, skipping comment notification", commenterID)
		return domain.Skip("commenter not found")
	}

	senderName := commenter.Nickname
	if senderName == "" {
		senderName = unknownUserName
	}

	notification := &domain.Notification{
		UserID:             post.AuthorID,
		Type:               domain.TypeComment,
		TargetID:           postID,
		SenderID:           commenterID,
		SenderName:         senderName,
		SenderProfileImage: commenter.Image,
		Title:              "새 댓글 알림",
		Body:               fmt.Sprintf("%s님이 회원님의 게시글에 댓글을 남겼습니다: \"%s\"", senderName, excerpt(text, commentBodyLimit)),
		Data: map[string]string{
			"postId":         postID,
			"commentId":      commentID,
			"commentContent": truncate(text, dataExcerptLimit),
		},
	}

	if err := u.deliver(ctx, notification); err != nil {
		log.Printf("[Notify] Failed to deliver comment notification: %v", err)
		return domain.Failure(err)
	}
	return domain.Sent(domain.TypeComment)
}

// PostLikeCreated notifies the post author that someone liked their post
func (u *NotifyUsecase) PostLikeCreated(ctx context.Context, postID, likerID string) domain.Result {
	if postID == "" || likerID == "" {
		return domain.Skip("incomplete like data")
	}

	post, err := u.posts.FindByID(ctx, postID)
	if err != nil {
		log.Printf("[Notify] Failed to load post %s: %v", postID, err)
		return domain.Failure(err)
	}
	if post == nil {
		log.Printf("[Notify] Post %s not found, skipping like notification", postID)
		return domain.Skip("post not found")
	}

	if likerID == post.AuthorID {
		return domain.Skip("self like")
	}

	liker, err := u.users.FindByID(ctx, likerID)
	if err != nil {
		log.Printf("[Notify] Failed to load liker %s: %v", likerID, err)
		return domain.Failure(err)
	}
	if liker == nil {
		log.Printf("[Notify] Liker %s not found, skipping like notification", likerID)
		return domain.Skip("liker not found")
	}

	senderName := liker.Nickname
	if senderName == "" {
		senderName = unknownUserName
	}

	postTitle := truncate(post.Title, commentBodyLimit)
	if postTitle == "" {
		postTitle = "게시글"
	}

	notification := &domain.Notification{
		UserID:             post.AuthorID,
		Type:               domain.TypeLike,
		TargetID:           postID,
		SenderID:           likerID,
		SenderName:         senderName,
		SenderProfileImage: liker.Image,
		Title:              "새 좋아요 알림",
		Body:               fmt.Sprintf("%s님이 회원님의 게시글에 좋아요를 눌렀습니다.", senderName),
		Data: map[string]string{
			"postId":    postID,
			"postTitle": postTitle,
		},
	}

	if err := u.deliver(ctx, notification); err != nil {
		log.Printf("[Notify] Failed to deliver like notification: %v", err)
		return domain.Failure(err)
	}
	return domain.Sent(domain.TypeLike)
}

// CommentLikeCreated notifies the comment author that someone liked their
// comment. The notification targets the post so the client navigates there;
// the comment id rides in the data payload.
func (u *NotifyUsecase) CommentLikeCreated(ctx context.Context, postID, commentID, likerID string) domain.Result {
	if postID == "" || commentID == "" || likerID == "" {
		return domain.Skip("incomplete comment-like data")
	}

	comment, err := u.posts.FindComment(ctx, postID, commentID)
	if err != nil {
		log.Printf("[Notify] Failed to load comment %s/%s: %v", postID, commentID, err)
		return domain.Failure(err)
	}
	if comment == nil {
		log.Printf("[Notify] Comment %s/%s not found, skipping like notification", postID, commentID)
		return domain.Skip("comment not found")
	}

	if likerID == comment.UserID {
		return domain.Skip("self like")
	}

	liker, err := u.users.FindByID(ctx, likerID)
	if err != nil {
		log.Printf("[Notify] Failed to load liker %s: %v", likerID, err)
		return domain.Failure(err)
	}
	if liker == nil {
		log.Printf("[Notify] Liker %s not found, skipping comment-like notification", likerID)
		return domain.Skip("liker not found")
	}

	senderName := liker.Nickname
	if senderName == "" {
		senderName = unknownUserName
	}

	notification := &domain.Notification{
		UserID:             comment.UserID,
		Type:               domain.TypeLike,
		TargetID:           postID,
		SenderID:           likerID,
		SenderName:         senderName,
		SenderProfileImage: liker.Image,
		Title:              "새 좋아요 알림",
		Body:               fmt.Sprintf("%s님이 회원님의 댓글에 좋아요를 눌렀습니다: \"%s\"", senderName, excerpt(comment.Text, commentLikeBodyLimit)),
		Data: map[string]string{
			"postId":      postID,
			"commentId":   commentID,
			"commentText": truncate(comment.Text, dataExcerptLimit),
		},
	}

	if err := u.deliver(ctx, notification); err != nil {
		log.Printf("[Notify] Failed to deliver comment-like notification: %v", err)
		return domain.Failure(err)
	}
	return domain.Sent(domain.TypeLike)
}

// PostLikeDeleted removes the notification created when the like was added.
// Best-effort compensation: if the creation record never made it, the query
// finds nothing and this is a no-op.
func (u *NotifyUsecase) PostLikeDeleted(ctx context.Context, postID, likerID string) domain.Result {
	post, err := u.posts.FindByID(ctx, postID)
	if err != nil {
		log.Printf("[Notify] Failed to load post %s: %v", postID, err)
		return domain.Failure(err)
	}
	if post == nil {
		return domain.Skip("post not found")
	}

	// commentID empty: only post-like notifications match
	removed, err := u.notifications.DeleteLikeNotifications(ctx, post.AuthorID, postID, likerID, "")
	if err != nil {
		log.Printf("[Notify] Failed to remove like notification: %v", err)
		return domain.Failure(err)
	}
	if removed > 0 {
		log.Printf("[Notify] Removed %d like notifications for post %s", removed, postID)
	}
	return domain.Removed(removed)
}

// CommentLikeDeleted removes the matching comment-like notification. The
// embedded comment id disambiguates it from a post-like notification with
// the same sender and post.
func (u *NotifyUsecase) CommentLikeDeleted(ctx context.Context, postID, commentID, likerID string) domain.Result {
	comment, err := u.posts.FindComment(ctx, postID, commentID)
	if err != nil {
		log.Printf("[Notify] Failed to load comment %s/%s: %v", postID, commentID, err)
		return domain.Failure(err)
	}
	if comment == nil {
		return domain.Skip("comment not found")
	}

	removed, err := u.notifications.DeleteLikeNotifications(ctx, comment.UserID, postID, likerID, commentID)
	if err != nil {
		log.Printf("[Notify] Failed to remove comment-like notification: %v", err)
		return domain.Failure(err)
	}
	if removed > 0 {
		log.Printf("[Notify] Removed %d comment-like notifications for comment %s", removed, commentID)
	}
	return domain.Removed(removed)
}

// deliver runs push dispatch and notification recording concurrently and
// waits for both. A recording failure is logged and swallowed (a missing
// record is acceptable degradation); a transport-level push failure is
// returned to the caller.
func (u *NotifyUsecase) deliver(ctx context.Context, n *domain.Notification) error {
	tokens := u.tokens.ActiveTokens(ctx, n.UserID)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if u.push == nil {
			return nil
		}
		_, err := u.push.SendEach(gctx, tokens, fcm.NotificationData{
			Title:    n.Title,
			Body:     n.Body,
			Type:     n.Type,
			TargetID: n.TargetID,
			SenderID: n.SenderID,
			Data:     n.Data,
		})
		return err
	})
	g.Go(func() error {
		if err := u.notifications.Record(ctx, n); err != nil {
			log.Printf("[Notify] Failed to record notification for user %s: %v", n.UserID, err)
		}
		return nil
	})
	return g.Wait()
}
