package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"modak-backend/internal/maintenance/usecase"
)

// Job cadences (in the configured timezone, Asia/Seoul by default)
const (
	notificationPurgeSpec = "0 0 * * *" // daily 00:00
	tokenPurgeSpec        = "0 2 * * 0" // weekly Sunday 02:00
	aggregationSpec       = "0 1 * * *" // daily 01:00
)

// MaintenanceScheduler runs the periodic maintenance jobs on a cron schedule
type MaintenanceScheduler struct {
	cron       *cron.Cron
	purge      *usecase.PurgeUsecase
	streaks    *usecase.StreakUsecase
	attendance *usecase.AttendanceUsecase
}

// NewMaintenanceScheduler creates a scheduler bound to the given location
func NewMaintenanceScheduler(
	loc *time.Location,
	purge *usecase.PurgeUsecase,
	streaks *usecase.StreakUsecase,
	attendance *usecase.AttendanceUsecase,
) *MaintenanceScheduler {
	return &MaintenanceScheduler{
		cron:       cron.New(cron.WithLocation(loc)),
		purge:      purge,
		streaks:    streaks,
		attendance: attendance,
	}
}

// Start registers the jobs and begins the cron loop
func (s *MaintenanceScheduler) Start() error {
	if _, err := s.cron.AddFunc(notificationPurgeSpec, s.runNotificationPurge); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(tokenPurgeSpec, s.runTokenPurge); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(aggregationSpec, s.runAggregation); err != nil {
		return err
	}

	s.cron.Start()
	log.Println("[Scheduler] Maintenance scheduler started")
	return nil
}

// Stop gracefully stops the scheduler
func (s *MaintenanceScheduler) Stop() {
	s.cron.Stop()
	log.Println("[Scheduler] Maintenance scheduler stopped")
}

func (s *MaintenanceScheduler) runNotificationPurge() {
	log.Println("[Scheduler] Running notification purge")
	if _, err := s.purge.PurgeOldNotifications(context.Background()); err != nil {
		log.Printf("[Scheduler] Notification purge failed: %v", err)
	}
}

func (s *MaintenanceScheduler) runTokenPurge() {
	log.Println("[Scheduler] Running token purge")
	if _, err := s.purge.PurgeExpiredTokens(context.Background()); err != nil {
		log.Printf("[Scheduler] Token purge failed: %v", err)
	}
}

// Streak computation and attendance aggregation share the 01:00 slot
func (s *MaintenanceScheduler) runAggregation() {
	log.Println("[Scheduler] Running daily aggregation")
	ctx := context.Background()
	if _, err := s.streaks.ComputeStreaks(ctx); err != nil {
		log.Printf("[Scheduler] Streak computation failed: %v", err)
	}
	if _, err := s.attendance.AggregateAttendance(ctx); err != nil {
		log.Printf("[Scheduler] Attendance aggregation failed: %v", err)
	}
}
