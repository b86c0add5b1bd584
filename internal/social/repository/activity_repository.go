package repository

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"modak-backend/internal/social/domain"
)

// ActivityRepository defines the interface for timer-activity log access
type ActivityRepository interface {
	// ListForDay returns the user's timer activities within [start, end],
	// ordered by timestamp ascending
	ListForDay(ctx context.Context, userID string, start, end time.Time) ([]domain.TimerActivity, error)
}

type activityRepository struct {
	client *firestore.Client
}

// NewActivityRepository creates a Firestore-backed ActivityRepository
func NewActivityRepository(client *firestore.Client) ActivityRepository {
	return &activityRepository{client: client}
}

func (r *activityRepository) ListForDay(ctx context.Context, userID string, start, end time.Time) ([]domain.TimerActivity, error) {
	iter := r.client.Collection("users").Doc(userID).Collection("timerActivities").
		Where("timestamp", ">=", start).
		Where("timestamp", "<=", end).
		OrderBy("timestamp", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var activities []domain.TimerActivity
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list timer activities for user %s: %w", userID, err)
		}
		var activity domain.TimerActivity
		if err := snap.DataTo(&activity); err != nil {
			return nil, fmt.Errorf("failed to decode timer activity %s: %w", snap.Ref.ID, err)
		}
		activities = append(activities, activity)
	}
	return activities, nil
}
