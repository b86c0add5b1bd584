package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAccountDeleted(t *testing.T) {
	users := &fakeUsers{personalDocs: 10}
	posts := &fakePosts{likes: 4}
	groups := &fakeGroups{removed: 2}
	tokens := &fakeTokens{deletedAll: 3}
	notifications := &fakeNotifications{userDocs: 25}
	u := NewCleanupUsecase(users, posts, groups, tokens, notifications)

	result := u.AccountDeleted(context.Background(), "alice")

	// Tokens + personal records + notifications + memberships + likes
	assert.Equal(t, 3+10+25+2+4, result.Processed)
}

func TestAccountDeletedCategoryIsolation(t *testing.T) {
	// Token deletion fails but every other category still runs
	users := &fakeUsers{personalDocs: 10}
	posts := &fakePosts{likes: 4}
	tokens := &fakeTokens{allErr: errors.New("batch failed")}
	u := NewCleanupUsecase(users, posts, &fakeGroups{removed: 1}, tokens, &fakeNotifications{userDocs: 5})

	result := u.AccountDeleted(context.Background(), "alice")
	assert.Equal(t, 10+5+1+4, result.Processed)
}

func TestAccountDeletedLikesFailureIsolated(t *testing.T) {
	posts := &fakePosts{likesErr: errors.New("collection group query failed")}
	u := NewCleanupUsecase(&fakeUsers{personalDocs: 2}, posts, &fakeGroups{}, &fakeTokens{deletedAll: 1}, &fakeNotifications{})

	result := u.AccountDeleted(context.Background(), "alice")
	assert.Equal(t, 3, result.Processed)
}

func TestGroupDeleted(t *testing.T) {
	users := &fakeUsers{}
	groups := &fakeGroups{deletedIDs: []string{"alice", "bob"}, statsDocs: 6}
	notifications := &fakeNotifications{groupDocs: 9}
	u := NewCleanupUsecase(users, &fakePosts{}, groups, &fakeTokens{}, notifications)

	result := u.GroupDeleted(context.Background(), "g1")

	// Members + monthly stats + notifications
	assert.Equal(t, 2+6+9, result.Processed)
	// Every removed member also loses the cached membership entry
	assert.ElementsMatch(t, []string{"alice", "bob"}, users.removedCaches)
	assert.Equal(t, "g1", notifications.deletedGroup)

	// Notification removal only reaches back 30 days
	expected := time.Now().Add(-30 * 24 * time.Hour)
	assert.WithinDuration(t, expected, notifications.groupSince, time.Minute)
}

func TestGroupDeletedEmptyGroup(t *testing.T) {
	users := &fakeUsers{}
	u := NewCleanupUsecase(users, &fakePosts{}, &fakeGroups{statsDocs: 1}, &fakeTokens{}, &fakeNotifications{})

	result := u.GroupDeleted(context.Background(), "g1")
	assert.Equal(t, 1, result.Processed)
	assert.Empty(t, users.removedCaches)
}
