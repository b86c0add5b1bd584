package usecase

import (
	"context"
	"log"
	"time"

	notifrepo "modak-backend/internal/notification/repository"
	"modak-backend/internal/social/repository"
)

// Notifications are retained for 30 days
const notificationRetention = 30 * 24 * time.Hour

// PurgeUsecase prunes stale notifications and expired push tokens
type PurgeUsecase struct {
	users         repository.UserRepository
	tokens        notifrepo.TokenRepository
	notifications notifrepo.NotificationRepository
}

// NewPurgeUsecase creates a new PurgeUsecase
func NewPurgeUsecase(users repository.UserRepository, tokens notifrepo.TokenRepository, notifications notifrepo.NotificationRepository) *PurgeUsecase {
	return &PurgeUsecase{users: users, tokens: tokens, notifications: notifications}
}

// PurgeOldNotifications deletes every notification across all users older
// than the retention window. Safe to re-run: the window is recomputed from
// wall-clock time and deletes are idempotent.
func (u *PurgeUsecase) PurgeOldNotifications(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-notificationRetention)
	deleted, err := u.notifications.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		log.Printf("[Purge] Notification purge failed after %d deletes: %v", deleted, err)
		return deleted, err
	}
	log.Printf("[Purge] Deleted %d old notifications", deleted)
	return deleted, nil
}

// PurgeExpiredTokens removes tokens unused for 90 days, user by user. A
// per-user failure is logged and the scan continues.
func (u *PurgeUsecase) PurgeExpiredTokens(ctx context.Context) (int, error) {
	userIDs, err := u.users.ListUserIDs(ctx)
	if err != nil {
		return 0, err
	}

	log.Printf("[Purge] Scanning %d users for expired tokens", len(userIDs))
	total := 0
	for i, userID := range userIDs {
		n, err := u.tokens.DeleteExpired(ctx, userID)
		if err != nil {
			log.Printf("[Purge] Failed to purge tokens of user %s: %v", userID, err)
			continue
		}
		total += n
		if (i+1)%100 == 0 {
			log.Printf("[Purge] Processed %d/%d users, %d tokens deleted so far", i+1, len(userIDs), total)
		}
	}

	log.Printf("[Purge] Deleted %d expired tokens", total)
	return total, nil
}
