package usecase

import (
	"context"
	"log"
	"time"

	notifrepo "modak-backend/internal/notification/repository"
	"modak-backend/internal/social/repository"
)

// Recent notifications referencing a deleted group are removed within this
// trailing window; older ones expire via the purge job.
const groupNotificationWindow = 30 * 24 * time.Hour

// CleanupResult reports the aggregate number of documents processed
type CleanupResult struct {
	Processed int    `json:"processed"`
	Err       string `json:"error,omitempty"`
}

// CleanupUsecase runs the cascades triggered by account and group deletion.
// Every category is independently fault-isolated: a failure in one never
// blocks the others.
type CleanupUsecase struct {
	users         repository.UserRepository
	posts         repository.PostRepository
	groups        repository.GroupRepository
	tokens        notifrepo.TokenRepository
	notifications notifrepo.NotificationRepository
}

// NewCleanupUsecase creates a new CleanupUsecase
func NewCleanupUsecase(
	users repository.UserRepository,
	posts repository.PostRepository,
	groups repository.GroupRepository,
	tokens notifrepo.TokenRepository,
	notifications notifrepo.NotificationRepository,
) *CleanupUsecase {
	return &CleanupUsecase{
		users:         users,
		posts:         posts,
		groups:        groups,
		tokens:        tokens,
		notifications: notifications,
	}
}

// AccountDeleted cascades a user deletion: push tokens, personal records,
// owned notifications, group memberships (with member-counter decrements),
// and likes (with like-counter decrements grouped by target).
func (u *CleanupUsecase) AccountDeleted(ctx context.Context, userID string) CleanupResult {
	log.Printf("[Cleanup] Account deletion cascade for user %s", userID)
	var result CleanupResult

	n, err := u.tokens.DeleteAll(ctx, userID)
	if err != nil {
		log.Printf("[Cleanup] Failed to delete tokens of user %s: %v", userID, err)
	}
	result.Processed += n

	n, err = u.users.DeletePersonalRecords(ctx, userID)
	if err != nil {
		log.Printf("[Cleanup] Failed to delete personal records of user %s: %v", userID, err)
	}
	result.Processed += n

	n, err = u.notifications.DeleteAllForUser(ctx, userID)
	if err != nil {
		log.Printf("[Cleanup] Failed to delete notifications of user %s: %v", userID, err)
	}
	result.Processed += n

	n, err = u.groups.RemoveUserMemberships(ctx, userID)
	if err != nil {
		log.Printf("[Cleanup] Failed to remove memberships of user %s: %v", userID, err)
	}
	result.Processed += n

	n, err = u.posts.DeleteLikesByUser(ctx, userID)
	if err != nil {
		log.Printf("[Cleanup] Failed to delete likes of user %s: %v", userID, err)
	}
	result.Processed += n

	log.Printf("[Cleanup] Account cascade for user %s processed %d documents", userID, result.Processed)
	return result
}

// GroupDeleted cascades a group deletion: member records (stripping each
// removed member's cached membership entry), monthly stats, and recent
// notifications referencing the group.
func (u *CleanupUsecase) GroupDeleted(ctx context.Context, groupID string) CleanupResult {
	log.Printf("[Cleanup] Group deletion cascade for group %s", groupID)
	var result CleanupResult

	memberIDs, err := u.groups.DeleteMembers(ctx, groupID)
	if err != nil {
		log.Printf("[Cleanup] Failed to delete members of group %s: %v", groupID, err)
	}
	result.Processed += len(memberIDs)
	for _, userID := range memberIDs {
		if err := u.users.RemoveMembershipCache(ctx, userID, groupID); err != nil {
			log.Printf("[Cleanup] Failed to strip membership cache of user %s: %v", userID, err)
		}
	}

	n, err := u.groups.DeleteMonthlyStats(ctx, groupID)
	if err != nil {
		log.Printf("[Cleanup] Failed to delete monthly stats of group %s: %v", groupID, err)
	}
	result.Processed += n

	n, err = u.notifications.DeleteByGroup(ctx, groupID, time.Now().Add(-groupNotificationWindow))
	if err != nil {
		log.Printf("[Cleanup] Failed to delete notifications of group %s: %v", groupID, err)
	}
	result.Processed += n

	log.Printf("[Cleanup] Group cascade for group %s processed %d documents", groupID, result.Processed)
	return result
}
