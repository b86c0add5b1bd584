package usecase

import (
	"context"
	"log"
	"time"

	notifrepo "modak-backend/internal/notification/repository"
	"modak-backend/internal/social/domain"
	"modak-backend/internal/social/repository"
)

// Notifications older than this are left stale on profile sync and pruned
// eventually by the purge job.
const notificationSyncWindow = 30 * 24 * time.Hour

// ProfileSyncResult reports how many documents each category touched
type ProfileSyncResult struct {
	Skipped       bool   `json:"skipped,omitempty"`
	Memberships   int    `json:"memberships"`
	Posts         int    `json:"posts"`
	Comments      int    `json:"comments"`
	Notifications int    `json:"notifications"`
	Err           string `json:"error,omitempty"`
}

// GroupSyncResult reports how many member caches were rewritten
type GroupSyncResult struct {
	Skipped bool   `json:"skipped,omitempty"`
	Members int    `json:"members"`
	Err     string `json:"error,omitempty"`
}

// SyncUsecase propagates changes to mutable fields into their denormalized
// copies. Each collection's update runs in its own failure boundary so one
// failure never aborts the rest of the fan-out.
type SyncUsecase struct {
	users         repository.UserRepository
	posts         repository.PostRepository
	groups        repository.GroupRepository
	notifications notifrepo.NotificationRepository
}

// NewSyncUsecase creates a new SyncUsecase
func NewSyncUsecase(
	users repository.UserRepository,
	posts repository.PostRepository,
	groups repository.GroupRepository,
	notifications notifrepo.NotificationRepository,
) *SyncUsecase {
	return &SyncUsecase{
		users:         users,
		posts:         posts,
		groups:        groups,
		notifications: notifications,
	}
}

// ProfileUpdated fans a nickname/image change out to the user's group
// memberships, posts, comments, and recent sent notifications
func (u *SyncUsecase) ProfileUpdated(ctx context.Context, userID string, before, after *domain.User) ProfileSyncResult {
	if before == nil || after == nil {
		return ProfileSyncResult{Skipped: true}
	}

	nicknameChanged := before.Nickname != after.Nickname
	imageChanged := before.Image != after.Image
	if !nicknameChanged && !imageChanged {
		log.Printf("[ProfileSync] No profile change for user %s, skipping", userID)
		return ProfileSyncResult{Skipped: true}
	}

	log.Printf("[ProfileSync] Syncing profile of user %s (nickname=%v image=%v)", userID, nicknameChanged, imageChanged)
	var result ProfileSyncResult

	n, err := u.groups.UpdateMemberProfile(ctx, userID, after.Nickname, after.Image)
	if err != nil {
		log.Printf("[ProfileSync] Failed to sync memberships of user %s: %v", userID, err)
	}
	result.Memberships = n

	n, err = u.posts.UpdateAuthorProfile(ctx, userID, after.Nickname, after.Image)
	if err != nil {
		log.Printf("[ProfileSync] Failed to sync posts of user %s: %v", userID, err)
	}
	result.Posts = n

	n, err = u.posts.UpdateCommentAuthorProfile(ctx, userID, after.Nickname, after.Image)
	if err != nil {
		log.Printf("[ProfileSync] Failed to sync comments of user %s: %v", userID, err)
	}
	result.Comments = n

	n, err = u.notifications.UpdateSenderProfile(ctx, userID, after.Nickname, after.Image, time.Now().Add(-notificationSyncWindow))
	if err != nil {
		log.Printf("[ProfileSync] Failed to sync notifications of user %s: %v", userID, err)
	}
	result.Notifications = n

	log.Printf("[ProfileSync] Synced user %s: %d memberships, %d posts, %d comments, %d notifications",
		userID, result.Memberships, result.Posts, result.Comments, result.Notifications)
	return result
}

// GroupUpdated rewrites the cached group name/image on every member's user
// document. The cache lives in a nested array, so this is a per-member
// read-modify-write rather than a single batch.
func (u *SyncUsecase) GroupUpdated(ctx context.Context, groupID string, before, after *domain.Group) GroupSyncResult {
	if before == nil || after == nil {
		return GroupSyncResult{Skipped: true}
	}

	if before.Name == after.Name && before.Image == after.Image {
		log.Printf("[GroupSync] No group change for group %s, skipping", groupID)
		return GroupSyncResult{Skipped: true}
	}

	members, err := u.groups.ListMembers(ctx, groupID)
	if err != nil {
		log.Printf("[GroupSync] Failed to list members of group %s: %v", groupID, err)
		return GroupSyncResult{Err: err.Error()}
	}

	var result GroupSyncResult
	cached := domain.Membership{GroupID: groupID, GroupName: after.Name, GroupImage: after.Image}
	for _, member := range members {
		if err := u.users.RewriteMembershipCache(ctx, member.UserID, cached); err != nil {
			log.Printf("[GroupSync] Failed to rewrite cache for user %s: %v", member.UserID, err)
			continue
		}
		result.Members++
	}

	log.Printf("[GroupSync] Synced group %s to %d member caches", groupID, result.Members)
	return result
}
