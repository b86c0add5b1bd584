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

// Collections owned by a user that are wiped on account deletion, besides
// tokens and notifications which have their own repositories.
var personalCollections = []string{"timerActivities", "summaries", "bookmarks"}

// UserRepository defines the interface for user document operations
type UserRepository interface {
	// FindByID returns the user or (nil, nil) if the document does not exist
	FindByID(ctx context.Context, userID string) (*domain.User, error)

	// ListUsers returns every user document
	ListUsers(ctx context.Context) ([]*domain.User, error)

	// ListUserIDs returns every user document ID without decoding the documents
	ListUserIDs(ctx context.Context) ([]string, error)

	// UpdateStreak overwrites the user's streak-day counter
	UpdateStreak(ctx context.Context, userID string, days int) error

	// RewriteMembershipCache rewrites the cached joingroup entry matching
	// m.GroupID with m's name/image. No-op when the user has no such entry.
	RewriteMembershipCache(ctx context.Context, userID string, m domain.Membership) error

	// RemoveMembershipCache strips the cached joingroup entry for groupID
	RemoveMembershipCache(ctx context.Context, userID, groupID string) error

	// DeletePersonalRecords deletes the user's activity/summary/bookmark
	// subcollections and returns the number of documents removed
	DeletePersonalRecords(ctx context.Context, userID string) (int, error)
}

type userRepository struct {
	client *firestore.Client
}

// NewUserRepository creates a Firestore-backed UserRepository
func NewUserRepository(client *firestore.Client) UserRepository {
	return &userRepository{client: client}
}

func (r *userRepository) doc(userID string) *firestore.DocumentRef {
	return r.client.Collection("users").Doc(userID)
}

func (r *userRepository) FindByID(ctx context.Context, userID string) (*domain.User, error) {
	snap, err := r.doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, err
	}

	var user domain.User
	if err := snap.DataTo(&user); err != nil {
		return nil, fmt.Errorf("failed to decode user %s: %w", userID, err)
	}
	user.ID = snap.Ref.ID
	return &user, nil
}

func (r *userRepository) ListUsers(ctx context.Context) ([]*domain.User, error) {
	var users []*domain.User
	iter := r.client.Collection("users").Documents(ctx)
	defer iter.Stop()
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var user domain.User
		if err := snap.DataTo(&user); err != nil {
			return nil, fmt.Errorf("failed to decode user %s: %w", snap.Ref.ID, err)
		}
		user.ID = snap.Ref.ID
		users = append(users, &user)
	}
	return users, nil
}

func (r *userRepository) ListUserIDs(ctx context.Context) ([]string, error) {
	var ids []string
	iter := r.client.Collection("users").Select().Documents(ctx)
	defer iter.Stop()
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		ids = append(ids, snap.Ref.ID)
	}
	return ids, nil
}

func (r *userRepository) UpdateStreak(ctx context.Context, userID string, days int) error {
	_, err := r.doc(userID).Update(ctx, []firestore.Update{
		{Path: "streakDays", Value: days},
	})
	return err
}

// The joingroup cache is a nested array value, so updating one entry is a
// full-field rewrite, not a point update.
func (r *userRepository) RewriteMembershipCache(ctx context.Context, userID string, m domain.Membership) error {
	user, err := r.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}

	changed := false
	for i := range user.JoinGroups {
		if user.JoinGroups[i].GroupID == m.GroupID {
			user.JoinGroups[i].GroupName = m.GroupName
			user.JoinGroups[i].GroupImage = m.GroupImage
			changed = true
		}
	}
	if !changed {
		return nil
	}

	_, err = r.doc(userID).Update(ctx, []firestore.Update{
		{Path: "joingroup", Value: user.JoinGroups},
	})
	return err
}

func (r *userRepository) RemoveMembershipCache(ctx context.Context, userID, groupID string) error {
	user, err := r.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}

	kept := user.JoinGroups[:0]
	for _, m := range user.JoinGroups {
		if m.GroupID != groupID {
			kept = append(kept, m)
		}
	}
	if len(kept) == len(user.JoinGroups) {
		return nil
	}

	_, err = r.doc(userID).Update(ctx, []firestore.Update{
		{Path: "joingroup", Value: kept},
	})
	return err
}

func (r *userRepository) DeletePersonalRecords(ctx context.Context, userID string) (int, error) {
	total := 0
	for _, name := range personalCollections {
		refs, err := collectRefs(r.doc(userID).Collection(name).Select().Documents(ctx))
		if err != nil {
			return total, fmt.Errorf("failed to list %s for user %s: %w", name, userID, err)
		}
		n, err := firestoredb.DeleteRefs(ctx, r.client, refs, firestoredb.DeleteBatchLimit)
		total += n
		if err != nil {
			return total, fmt.Errorf("failed to delete %s for user %s: %w", name, userID, err)
		}
	}
	return total, nil
}

// collectRefs drains a document iterator into a slice of refs
func collectRefs(iter *firestore.DocumentIterator) ([]*firestore.DocumentRef, error) {
	defer iter.Stop()
	var refs []*firestore.DocumentRef
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		refs = append(refs, snap.Ref)
	}
	return refs, nil
}
