package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modak-backend/internal/social/domain"
	"modak-backend/internal/social/repository"
)

type attendanceCommit struct {
	groupID, month, date string
	entries              []repository.AttendanceEntry
}

type fakeAttendanceGroups struct {
	groupIDs   []string
	members    map[string][]*domain.GroupMember
	commits    []attendanceCommit
	membersErr string // group ID whose member listing fails
}

func (f *fakeAttendanceGroups) FindByID(context.Context, string) (*domain.Group, error) {
	return nil, nil
}
func (f *fakeAttendanceGroups) ListGroupIDs(context.Context) ([]string, error) {
	return f.groupIDs, nil
}
func (f *fakeAttendanceGroups) ListMembers(_ context.Context, groupID string) ([]*domain.GroupMember, error) {
	if groupID == f.membersErr {
		return nil, errors.New("query failed")
	}
	return f.members[groupID], nil
}
func (f *fakeAttendanceGroups) UpdateMemberProfile(context.Context, string, string, string) (int, error) {
	return 0, nil
}
func (f *fakeAttendanceGroups) RemoveUserMemberships(context.Context, string) (int, error) {
	return 0, nil
}
func (f *fakeAttendanceGroups) DeleteMembers(context.Context, string) ([]string, error) {
	return nil, nil
}
func (f *fakeAttendanceGroups) DeleteMonthlyStats(context.Context, string) (int, error) {
	return 0, nil
}
func (f *fakeAttendanceGroups) CommitAttendance(_ context.Context, groupID, month, date string, entries []repository.AttendanceEntry) (int, error) {
	f.commits = append(f.commits, attendanceCommit{groupID, month, date, entries})
	return len(entries), nil
}

func TestAggregateAttendance(t *testing.T) {
	yesterday := time.Now().UTC().AddDate(0, 0, -1)
	date := yesterday.Format("2006-01-02")

	groups := &fakeAttendanceGroups{
		groupIDs: []string{"g1"},
		members: map[string][]*domain.GroupMember{
			"g1": {
				{ID: "m1", UserID: "alice", DailyFocusSeconds: map[string]int64{date: 5400}},
				{ID: "m2", UserID: "bob", DailyFocusSeconds: map[string]int64{date: 0}},
				{ID: "m3", UserID: "carol"}, // no accumulator at all
				{ID: "m4", UserID: "dave", DailyFocusSeconds: map[string]int64{"2020-01-01": 900}},
			},
		},
	}

	u := NewAttendanceUsecase(groups, time.UTC)
	total, err := u.AggregateAttendance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	require.Len(t, groups.commits, 1)
	commit := groups.commits[0]
	assert.Equal(t, "g1", commit.groupID)
	assert.Equal(t, date, commit.date)
	assert.Equal(t, yesterday.Format("2006-01"), commit.month)
	// Only the member with a positive accumulator for yesterday is drained,
	// and the seconds are copied verbatim
	require.Len(t, commit.entries, 1)
	assert.Equal(t, repository.AttendanceEntry{MemberID: "m1", UserID: "alice", Seconds: 5400}, commit.entries[0])
}

func TestAggregateAttendancePerGroupIsolation(t *testing.T) {
	yesterday := time.Now().UTC().AddDate(0, 0, -1)
	date := yesterday.Format("2006-01-02")

	groups := &fakeAttendanceGroups{
		groupIDs: []string{"broken", "g2"},
		members: map[string][]*domain.GroupMember{
			"g2": {{ID: "m1", UserID: "alice", DailyFocusSeconds: map[string]int64{date: 60}}},
		},
		membersErr: "broken",
	}

	u := NewAttendanceUsecase(groups, time.UTC)
	total, err := u.AggregateAttendance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, groups.commits, 1)
	assert.Equal(t, "g2", groups.commits[0].groupID)
}

func TestAggregateAttendanceNothingToDrain(t *testing.T) {
	groups := &fakeAttendanceGroups{
		groupIDs: []string{"g1"},
		members:  map[string][]*domain.GroupMember{"g1": {{ID: "m1", UserID: "alice"}}},
	}

	u := NewAttendanceUsecase(groups, time.UTC)
	total, err := u.AggregateAttendance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.Empty(t, groups.commits)
}
