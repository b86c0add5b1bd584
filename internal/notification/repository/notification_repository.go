package repository

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"

	"modak-backend/internal/notification/domain"
	"modak-backend/pkg/firestoredb"
)

// NotificationRepository persists and prunes durable notification records
type NotificationRepository interface {
	// Record appends one notification to the target user's collection with a
	// server-assigned creation timestamp
	Record(ctx context.Context, n *domain.Notification) error

	// DeleteLikeNotifications deletes like notifications owned by ownerID
	// matching the post and sender. When commentID is non-empty the match
	// additionally requires the embedded comment id, so removing a
	// comment-like notification never removes a post-like notification with
	// the same sender/post.
	DeleteLikeNotifications(ctx context.Context, ownerID, postID, senderID, commentID string) (int, error)

	// DeleteOlderThan deletes every notification across all users created
	// before cutoff, committing chunks concurrently
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error)

	// UpdateSenderProfile rewrites the sender snapshot on notifications sent
	// by senderID since the given time. Older notifications are left stale;
	// they are near expiry anyway.
	UpdateSenderProfile(ctx context.Context, senderID, name, image string, since time.Time) (int, error)

	// DeleteByGroup deletes notifications since the given time whose data
	// payload references the group
	DeleteByGroup(ctx context.Context, groupID string, since time.Time) (int, error)

	// DeleteAllForUser deletes every notification owned by the user and the
	// container document
	DeleteAllForUser(ctx context.Context, userID string) (int, error)
}

type notificationRepository struct {
	client *firestore.Client
}

// NewNotificationRepository creates a Firestore-backed NotificationRepository
func NewNotificationRepository(client *firestore.Client) NotificationRepository {
	return &notificationRepository{client: client}
}

func (r *notificationRepository) items(userID string) *firestore.CollectionRef {
	return r.client.Collection("notifications").Doc(userID).Collection("items")
}

func (r *notificationRepository) Record(ctx context.Context, n *domain.Notification) error {
	_, err := r.items(n.UserID).Doc(uuid.New().String()).Set(ctx, map[string]interface{}{
		"type":               n.Type,
		"targetId":           n.TargetID,
		"senderId":           n.SenderID,
		"senderName":         n.SenderName,
		"senderProfileImage": n.SenderProfileImage,
		"title":              n.Title,
		"body":               n.Body,
		"data":               n.Data,
		"createdAt":          firestore.ServerTimestamp,
		"isRead":             false,
		"readAt":             nil,
	})
	if err != nil {
		return fmt.Errorf("failed to record notification for user %s: %w", n.UserID, err)
	}
	return nil
}

func (r *notificationRepository) DeleteLikeNotifications(ctx context.Context, ownerID, postID, senderID, commentID string) (int, error) {
	q := r.items(ownerID).
		Where("type", "==", domain.TypeLike).
		Where("targetId", "==", postID).
		Where("senderId", "==", senderID)
	if commentID != "" {
		q = q.Where("data.commentId", "==", commentID)
	}

	refs, err := collectRefs(q.Select().Documents(ctx))
	if err != nil {
		return 0, fmt.Errorf("failed to query like notifications for user %s: %w", ownerID, err)
	}
	return firestoredb.DeleteRefs(ctx, r.client, refs, firestoredb.DeleteBatchLimit)
}

func (r *notificationRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	refs, err := collectRefs(r.client.CollectionGroup("items").
		Where("createdAt", "<", cutoff).
		Select().
		Documents(ctx))
	if err != nil {
		return 0, fmt.Errorf("failed to query old notifications: %w", err)
	}
	return firestoredb.DeleteRefsConcurrent(ctx, r.client, refs, firestoredb.DeleteBatchLimit)
}

func (r *notificationRepository) UpdateSenderProfile(ctx context.Context, senderID, name, image string, since time.Time) (int, error) {
	refs, err := collectRefs(r.client.CollectionGroup("items").
		Where("senderId", "==", senderID).
		Where("createdAt", ">", since).
		Select().
		Documents(ctx))
	if err != nil {
		return 0, fmt.Errorf("failed to query notifications by sender %s: %w", senderID, err)
	}

	ops := make([]firestoredb.BatchOp, 0, len(refs))
	for _, ref := range refs {
		ref := ref
		ops = append(ops, func(b *firestore.WriteBatch) {
			b.Update(ref, []firestore.Update{
				{Path: "senderName", Value: name},
				{Path: "senderProfileImage", Value: image},
			})
		})
	}
	return firestoredb.ApplyOps(ctx, r.client, ops, firestoredb.DeleteBatchLimit)
}

func (r *notificationRepository) DeleteByGroup(ctx context.Context, groupID string, since time.Time) (int, error) {
	refs, err := collectRefs(r.client.CollectionGroup("items").
		Where("data.groupId", "==", groupID).
		Where("createdAt", ">", since).
		Select().
		Documents(ctx))
	if err != nil {
		return 0, fmt.Errorf("failed to query notifications for group %s: %w", groupID, err)
	}
	return firestoredb.DeleteRefs(ctx, r.client, refs, firestoredb.DeleteBatchLimit)
}

func (r *notificationRepository) DeleteAllForUser(ctx context.Context, userID string) (int, error) {
	refs, err := collectRefs(r.items(userID).Select().Documents(ctx))
	if err != nil {
		return 0, fmt.Errorf("failed to list notifications for user %s: %w", userID, err)
	}
	refs = append(refs, r.client.Collection("notifications").Doc(userID))
	return firestoredb.DeleteRefs(ctx, r.client, refs, firestoredb.DeleteBatchLimit)
}
