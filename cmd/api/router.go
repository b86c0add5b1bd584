package api

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"modak-backend/internal/maintenance/usecase"
)

// SetupRoutes wires the ops surface: health check plus manual triggers for
// the maintenance jobs (the same jobs the cron scheduler runs).
func SetupRoutes(r *gin.Engine, purge *usecase.PurgeUsecase, streaks *usecase.StreakUsecase, attendance *usecase.AttendanceUsecase) {
	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Manual job triggers, async: the job outcome lands in the logs
		api.POST("/jobs/:name/run", func(c *gin.Context) {
			name := c.Param("name")

			var job func(context.Context) (int, error)
			switch name {
			case "notification-purge":
				job = purge.PurgeOldNotifications
			case "token-purge":
				job = purge.PurgeExpiredTokens
			case "streaks":
				job = streaks.ComputeStreaks
			case "attendance":
				job = attendance.AggregateAttendance
			default:
				c.JSON(http.StatusNotFound, gin.H{"error": "unknown job: " + name})
				return
			}

			go func() {
				if _, err := job(context.Background()); err != nil {
					log.Printf("[API] Manual job %s failed: %v", name, err)
				}
			}()
			c.JSON(http.StatusAccepted, gin.H{"status": "started", "job": name})
		})
	}
}
