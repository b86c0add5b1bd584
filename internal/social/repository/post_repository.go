package repository

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"modak-backend/internal/social/domain"
	"modak-backend/pkg/firestoredb"
)

// PostRepository defines the interface for post and comment operations
type PostRepository interface {
	// FindByID returns the post or (nil, nil) if the document does not exist
	FindByID(ctx context.Context, postID string) (*domain.Post, error)

	// FindComment returns the comment or (nil, nil) if it does not exist
	FindComment(ctx context.Context, postID, commentID string) (*domain.Comment, error)

	// UpdateAuthorProfile rewrites the denormalized author name/image on
	// every post authored by authorID
	UpdateAuthorProfile(ctx context.Context, authorID, name, image string) (int, error)

	// UpdateCommentAuthorProfile rewrites the denormalized author name/image
	// on every comment written by authorID, batched in chunks
	UpdateCommentAuthorProfile(ctx context.Context, authorID, name, image string) (int, error)

	// DeleteLikesByUser removes the user's post-level and comment-level
	// likes, decrementing each target's like counter by the number removed
	DeleteLikesByUser(ctx context.Context, userID string) (int, error)
}

type postRepository struct {
	client *firestore.Client
}

// NewPostRepository creates a Firestore-backed PostRepository
func NewPostRepository(client *firestore.Client) PostRepository {
	return &postRepository{client: client}
}

func (r *postRepository) FindByID(ctx context.Context, postID string) (*domain.Post, error) {
	snap, err := r.client.Collection("posts").Doc(postID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, err
	}

	var post domain.Post
	if err := snap.DataTo(&post); err != nil {
		return nil, fmt.Errorf("failed to decode post %s: %w", postID, err)
	}
	post.ID = snap.Ref.ID
	return &post, nil
}

func (r *postRepository) FindComment(ctx context.Context, postID, commentID string) (*domain.Comment, error) {
	snap, err := r.client.Collection("posts").Doc(postID).Collection("comments").Doc(commentID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, err
	}

	var comment domain.Comment
	if err := snap.DataTo(&comment); err != nil {
		return nil, fmt.Errorf("failed to decode comment %s/%s: %w", postID, commentID, err)
	}
	comment.ID = snap.Ref.ID
	comment.PostID = postID
	return &comment, nil
}

func (r *postRepository) UpdateAuthorProfile(ctx context.Context, authorID, name, image string) (int, error) {
	refs, err := collectRefs(r.client.Collection("posts").
		Where("authorId", "==", authorID).
		Select().
		Documents(ctx))
	if err != nil {
		return 0, fmt.Errorf("failed to query posts by author %s: %w", authorID, err)
	}

	return updateRefs(ctx, r.client, refs, []firestore.Update{
		{Path: "authorName", Value: name},
		{Path: "authorImage", Value: image},
	})
}

func (r *postRepository) UpdateCommentAuthorProfile(ctx context.Context, authorID, name, image string) (int, error) {
	refs, err := collectRefs(r.client.CollectionGroup("comments").
		Where("userId", "==", authorID).
		Select().
		Documents(ctx))
	if err != nil {
		return 0, fmt.Errorf("failed to query comments by author %s: %w", authorID, err)
	}

	return updateRefs(ctx, r.client, refs, []firestore.Update{
		{Path: "userName", Value: name},
		{Path: "userImage", Value: image},
	})
}

// DeleteLikesByUser groups likes by their parent target before the counter
// decrement so each post/comment gets a single atomic Increment(-n) instead
// of one write per like.
func (r *postRepository) DeleteLikesByUser(ctx context.Context, userID string) (int, error) {
	iter := r.client.CollectionGroup("likes").
		Where("userId", "==", userID).
		Select().
		Documents(ctx)
	defer iter.Stop()

	likesByTarget := make(map[string][]*firestore.DocumentRef)
	targets := make(map[string]*firestore.DocumentRef)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("failed to query likes by user %s: %w", userID, err)
		}
		target := snap.Ref.Parent.Parent // posts/{id} or posts/{id}/comments/{id}
		if target == nil {
			continue
		}
		likesByTarget[target.Path] = append(likesByTarget[target.Path], snap.Ref)
		targets[target.Path] = target
	}

	var ops []firestoredb.BatchOp
	for path, likeRefs := range likesByTarget {
		for _, ref := range likeRefs {
			ref := ref
			ops = append(ops, func(b *firestore.WriteBatch) { b.Delete(ref) })
		}
		target := targets[path]
		removed := len(likeRefs)
		ops = append(ops, func(b *firestore.WriteBatch) {
			b.Update(target, []firestore.Update{
				{Path: "likeCount", Value: firestore.Increment(-removed)},
			})
		})
	}

	removedLikes := 0
	for _, refs := range likesByTarget {
		removedLikes += len(refs)
	}
	if _, err := firestoredb.ApplyOps(ctx, r.client, ops, firestoredb.MixedBatchLimit); err != nil {
		return 0, fmt.Errorf("failed to delete likes by user %s: %w", userID, err)
	}
	return removedLikes, nil
}

// updateRefs applies the same field updates to every ref in chunked batches
func updateRefs(ctx context.Context, client *firestore.Client, refs []*firestore.DocumentRef, updates []firestore.Update) (int, error) {
	ops := make([]firestoredb.BatchOp, 0, len(refs))
	for _, ref := range refs {
		ref := ref
		ops = append(ops, func(b *firestore.WriteBatch) { b.Update(ref, updates) })
	}
	return firestoredb.ApplyOps(ctx, client, ops, firestoredb.DeleteBatchLimit)
}
