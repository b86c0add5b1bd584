package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                string
	GoogleProjectID     string
	GoogleCredentials   string
	FirebaseCredentials string
	EventsTopic         string
	SchedulerTimezone   string
	SchedulerEnabled    bool
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		Port:                getEnv("PORT", "8080"),
		GoogleProjectID:     getEnv("GOOGLE_PROJECT_ID", ""),
		GoogleCredentials:   getEnv("GOOGLE_CREDENTIALS", ""),
		FirebaseCredentials: getEnv("FIREBASE_CREDENTIALS", ""),
		EventsTopic:         getEnv("EVENTS_TOPIC", "domain-events"),
		SchedulerTimezone:   getEnv("SCHEDULER_TIMEZONE", "Asia/Seoul"),
		SchedulerEnabled:    getEnv("SCHEDULER_ENABLED", "true") == "true",
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
