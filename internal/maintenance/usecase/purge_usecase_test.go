package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modak-backend/internal/notification/domain"
	socialdomain "modak-backend/internal/social/domain"
)

type fakePurgeUsers struct {
	ids []string
}

func (f *fakePurgeUsers) FindByID(context.Context, string) (*socialdomain.User, error) {
	return nil, nil
}
func (f *fakePurgeUsers) ListUsers(context.Context) ([]*socialdomain.User, error) { return nil, nil }
func (f *fakePurgeUsers) ListUserIDs(context.Context) ([]string, error)           { return f.ids, nil }
func (f *fakePurgeUsers) UpdateStreak(context.Context, string, int) error         { return nil }
func (f *fakePurgeUsers) RewriteMembershipCache(context.Context, string, socialdomain.Membership) error {
	return nil
}
func (f *fakePurgeUsers) RemoveMembershipCache(context.Context, string, string) error { return nil }
func (f *fakePurgeUsers) DeletePersonalRecords(context.Context, string) (int, error) {
	return 0, nil
}

type fakePurgeTokens struct {
	deletedFor []string
	perUser    int
	errFor     string
}

func (f *fakePurgeTokens) ActiveTokens(context.Context, string) []string { return nil }
func (f *fakePurgeTokens) DeleteExpired(_ context.Context, userID string) (int, error) {
	if userID == f.errFor {
		return 0, errors.New("batch failed")
	}
	f.deletedFor = append(f.deletedFor, userID)
	return f.perUser, nil
}
func (f *fakePurgeTokens) DeleteAll(context.Context, string) (int, error) { return 0, nil }

type fakePurgeNotifications struct {
	cutoff  time.Time
	deleted int
}

func (f *fakePurgeNotifications) Record(context.Context, *domain.Notification) error { return nil }
func (f *fakePurgeNotifications) DeleteLikeNotifications(context.Context, string, string, string, string) (int, error) {
	return 0, nil
}
func (f *fakePurgeNotifications) DeleteOlderThan(_ context.Context, cutoff time.Time) (int, error) {
	f.cutoff = cutoff
	return f.deleted, nil
}
func (f *fakePurgeNotifications) UpdateSenderProfile(context.Context, string, string, string, time.Time) (int, error) {
	return 0, nil
}
func (f *fakePurgeNotifications) DeleteByGroup(context.Context, string, time.Time) (int, error) {
	return 0, nil
}
func (f *fakePurgeNotifications) DeleteAllForUser(context.Context, string) (int, error) {
	return 0, nil
}

func TestPurgeOldNotifications(t *testing.T) {
	notifications := &fakePurgeNotifications{deleted: 1200}
	u := NewPurgeUsecase(&fakePurgeUsers{}, &fakePurgeTokens{}, notifications)

	deleted, err := u.PurgeOldNotifications(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1200, deleted)

	// Retention window is 30 days, recomputed from wall-clock time
	expected := time.Now().Add(-30 * 24 * time.Hour)
	assert.WithinDuration(t, expected, notifications.cutoff, time.Minute)
}

func TestPurgeExpiredTokens(t *testing.T) {
	users := &fakePurgeUsers{ids: []string{"u1", "u2", "u3"}}
	tokens := &fakePurgeTokens{perUser: 2}
	u := NewPurgeUsecase(users, tokens, &fakePurgeNotifications{})

	deleted, err := u.PurgeExpiredTokens(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, deleted)
	assert.Equal(t, []string{"u1", "u2", "u3"}, tokens.deletedFor)
}

func TestPurgeExpiredTokensPerUserIsolation(t *testing.T) {
	users := &fakePurgeUsers{ids: []string{"u1", "broken", "u3"}}
	tokens := &fakePurgeTokens{perUser: 1, errFor: "broken"}
	u := NewPurgeUsecase(users, tokens, &fakePurgeNotifications{})

	deleted, err := u.PurgeExpiredTokens(context.Background())
	require.NoError(t, err)
	// The failing user is logged and skipped, the scan continues
	assert.Equal(t, 2, deleted)
	assert.Equal(t, []string{"u1", "u3"}, tokens.deletedFor)
}
