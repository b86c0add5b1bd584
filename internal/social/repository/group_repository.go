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

// AttendanceEntry is one member's focus total for one day, ready to be copied
// into the group's monthly stats.
type AttendanceEntry struct {
	MemberID string
	UserID   string
	Seconds  int64
}

// GroupRepository defines the interface for group document operations
type GroupRepository interface {
	// FindByID returns the group or (nil, nil) if the document does not exist
	FindByID(ctx context.Context, groupID string) (*domain.Group, error)

	// ListGroupIDs returns every group document ID
	ListGroupIDs(ctx context.Context) ([]string, error)

	// ListMembers returns every member of the group
	ListMembers(ctx context.Context, groupID string) ([]*domain.GroupMember, error)

	// UpdateMemberProfile rewrites the denormalized name/image on every
	// membership record of the user, across all groups
	UpdateMemberProfile(ctx context.Context, userID, name, image string) (int, error)

	// RemoveUserMemberships deletes the user's membership records across all
	// groups, decrementing each affected group's member counter by the
	// number removed. Returns the number of memberships removed.
	RemoveUserMemberships(ctx context.Context, userID string) (int, error)

	// DeleteMembers deletes every member record of the group and returns the
	// user IDs of the removed members
	DeleteMembers(ctx context.Context, groupID string) ([]string, error)

	// DeleteMonthlyStats deletes the group's monthly attendance-stats documents
	DeleteMonthlyStats(ctx context.Context, groupID string) (int, error)

	// CommitAttendance copies each entry into the group's monthly stats
	// document under days.{date}.members.{userId} and drains the member's
	// accumulator field for that date. The write and the drain of one entry
	// always commit in the same atomic batch.
	CommitAttendance(ctx context.Context, groupID, month, date string, entries []AttendanceEntry) (int, error)
}

type groupRepository struct {
	client *firestore.Client
}

// NewGroupRepository creates a Firestore-backed GroupRepository
func NewGroupRepository(client *firestore.Client) GroupRepository {
	return &groupRepository{client: client}
}

func (r *groupRepository) doc(groupID string) *firestore.DocumentRef {
	return r.client.Collection("groups").Doc(groupID)
}

func (r *groupRepository) FindByID(ctx context.Context, groupID string) (*domain.Group, error) {
	snap, err := r.doc(groupID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, err
	}

	var group domain.Group
	if err := snap.DataTo(&group); err != nil {
		return nil, fmt.Errorf("failed to decode group %s: %w", groupID, err)
	}
	group.ID = snap.Ref.ID
	return &group, nil
}

func (r *groupRepository) ListGroupIDs(ctx context.Context) ([]string, error) {
	var ids []string
	iter := r.client.Collection("groups").Select().Documents(ctx)
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

func (r *groupRepository) ListMembers(ctx context.Context, groupID string) ([]*domain.GroupMember, error) {
	var members []*domain.GroupMember
	iter := r.doc(groupID).Collection("members").Documents(ctx)
	defer iter.Stop()
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var member domain.GroupMember
		if err := snap.DataTo(&member); err != nil {
			return nil, fmt.Errorf("failed to decode member %s/%s: %w", groupID, snap.Ref.ID, err)
		}
		member.ID = snap.Ref.ID
		members = append(members, &member)
	}
	return members, nil
}

func (r *groupRepository) UpdateMemberProfile(ctx context.Context, userID, name, image string) (int, error) {
	refs, err := collectRefs(r.client.CollectionGroup("members").
		Where("userId", "==", userID).
		Select().
		Documents(ctx))
	if err != nil {
		return 0, fmt.Errorf("failed to query memberships of user %s: %w", userID, err)
	}

	return updateRefs(ctx, r.client, refs, []firestore.Update{
		{Path: "userName", Value: name},
		{Path: "profileUrl", Value: image},
	})
}

func (r *groupRepository) RemoveUserMemberships(ctx context.Context, userID string) (int, error) {
	refs, err := collectRefs(r.client.CollectionGroup("members").
		Where("userId", "==", userID).
		Select().
		Documents(ctx))
	if err != nil {
		return 0, fmt.Errorf("failed to query memberships of user %s: %w", userID, err)
	}

	// Group memberships by owning group so each group gets one decrement.
	byGroup := make(map[string][]*firestore.DocumentRef)
	groupRefs := make(map[string]*firestore.DocumentRef)
	for _, ref := range refs {
		group := ref.Parent.Parent
		if group == nil {
			continue
		}
		byGroup[group.Path] = append(byGroup[group.Path], ref)
		groupRefs[group.Path] = group
	}

	var ops []firestoredb.BatchOp
	for path, memberRefs := range byGroup {
		for _, ref := range memberRefs {
			ref := ref
			ops = append(ops, func(b *firestore.WriteBatch) { b.Delete(ref) })
		}
		group := groupRefs[path]
		removed := len(memberRefs)
		ops = append(ops, func(b *firestore.WriteBatch) {
			b.Update(group, []firestore.Update{
				{Path: "memberCount", Value: firestore.Increment(-removed)},
			})
		})
	}

	if _, err := firestoredb.ApplyOps(ctx, r.client, ops, firestoredb.MixedBatchLimit); err != nil {
		return 0, fmt.Errorf("failed to remove memberships of user %s: %w", userID, err)
	}
	return len(refs), nil
}

func (r *groupRepository) DeleteMembers(ctx context.Context, groupID string) ([]string, error) {
	iter := r.doc(groupID).Collection("members").Documents(ctx)
	defer iter.Stop()

	var refs []*firestore.DocumentRef
	var userIDs []string
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list members of group %s: %w", groupID, err)
		}
		refs = append(refs, snap.Ref)
		if uid, err := snap.DataAt("userId"); err == nil {
			if s, ok := uid.(string); ok && s != "" {
				userIDs = append(userIDs, s)
			}
		}
	}

	if _, err := firestoredb.DeleteRefs(ctx, r.client, refs, firestoredb.DeleteBatchLimit); err != nil {
		return userIDs, fmt.Errorf("failed to delete members of group %s: %w", groupID, err)
	}
	return userIDs, nil
}

func (r *groupRepository) DeleteMonthlyStats(ctx context.Context, groupID string) (int, error) {
	refs, err := collectRefs(r.doc(groupID).Collection("monthlyStats").Select().Documents(ctx))
	if err != nil {
		return 0, fmt.Errorf("failed to list monthly stats of group %s: %w", groupID, err)
	}
	return firestoredb.DeleteRefs(ctx, r.client, refs, firestoredb.DeleteBatchLimit)
}

func (r *groupRepository) CommitAttendance(ctx context.Context, groupID, month, date string, entries []AttendanceEntry) (int, error) {
	statsRef := r.doc(groupID).Collection("monthlyStats").Doc(month)

	// Each entry is two writes (stats merge + accumulator delete). Chunking
	// by entry keeps a member's pair inside one atomic batch, so a failed
	// chunk never leaves a drained accumulator without its stats record.
	perChunk := firestoredb.MixedBatchLimit / 2
	return firestoredb.ApplyBatched(ctx, entries, perChunk, func(ctx context.Context, chunk []AttendanceEntry) error {
		b := r.client.Batch()
		for _, entry := range chunk {
			b.Set(statsRef, map[string]interface{}{
				"days": map[string]interface{}{
					date: map[string]interface{}{
						"members": map[string]interface{}{
							entry.UserID: entry.Seconds,
						},
					},
				},
			}, firestore.MergeAll)
			b.Update(r.doc(groupID).Collection("members").Doc(entry.MemberID), []firestore.Update{
				{FieldPath: firestore.FieldPath{"dailyFocusSeconds", date}, Value: firestore.Delete},
			})
		}
		_, err := b.Commit(ctx)
		return err
	})
}
