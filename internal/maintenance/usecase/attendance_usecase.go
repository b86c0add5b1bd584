package usecase

import (
	"context"
	"log"
	"time"

	"modak-backend/internal/social/repository"
)

// AttendanceUsecase drains each member's prior-day focus accumulator into
// the group's monthly attendance stats. Each day's accumulator is consumed
// exactly once.
type AttendanceUsecase struct {
	groups repository.GroupRepository
	loc    *time.Location
}

// NewAttendanceUsecase creates a new AttendanceUsecase
func NewAttendanceUsecase(groups repository.GroupRepository, loc *time.Location) *AttendanceUsecase {
	return &AttendanceUsecase{groups: groups, loc: loc}
}

// AggregateAttendance copies yesterday's per-member focus seconds (verbatim)
// into groups/{id}/monthlyStats/{YYYY-MM} and clears the consumed
// accumulator fields. Per-group failures are logged and the scan continues.
// Returns the number of members aggregated.
func (u *AttendanceUsecase) AggregateAttendance(ctx context.Context) (int, error) {
	yesterday := time.Now().In(u.loc).AddDate(0, 0, -1)
	date := yesterday.Format("2006-01-02")
	month := yesterday.Format("2006-01")

	groupIDs, err := u.groups.ListGroupIDs(ctx)
	if err != nil {
		return 0, err
	}

	log.Printf("[Attendance] Aggregating %s for %d groups", date, len(groupIDs))
	total := 0
	for _, groupID := range groupIDs {
		members, err := u.groups.ListMembers(ctx, groupID)
		if err != nil {
			log.Printf("[Attendance] Failed to list members of group %s: %v", groupID, err)
			continue
		}

		var entries []repository.AttendanceEntry
		for _, member := range members {
			seconds, ok := member.DailyFocusSeconds[date]
			if !ok || seconds <= 0 {
				continue
			}
			entries = append(entries, repository.AttendanceEntry{
				MemberID: member.ID,
				UserID:   member.UserID,
				Seconds:  seconds,
			})
		}
		if len(entries) == 0 {
			continue
		}

		n, err := u.groups.CommitAttendance(ctx, groupID, month, date, entries)
		if err != nil {
			log.Printf("[Attendance] Failed to commit attendance for group %s after %d members: %v", groupID, n, err)
		}
		total += n
	}

	log.Printf("[Attendance] Aggregated %d members", total)
	return total, nil
}
